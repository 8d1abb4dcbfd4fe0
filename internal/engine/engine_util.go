package engine

import "strings"

// ParseDifficulty accepts the client names and the aliases the server uses.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "normal", "medium":
		return DifficultyNormal, true
	case "impossible", "hard":
		return DifficultyImpossible, true
	default:
		return DifficultyNone, false
	}
}

func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "menu":
		return PhaseMenu, true
	case "playing":
		return PhasePlaying, true
	case "paused":
		return PhasePaused, true
	case "gameOver", "game_over":
		return PhaseGameOver, true
	case "victory":
		return PhaseVictory, true
	default:
		return "", false
	}
}

func ClampLevel(level int) int {
	return clamp(level, MinLevel, MaxLevel)
}

// NextLevel is the level unlocked by winning level.
func NextLevel(level int) int {
	return min(MaxLevel, level+1)
}

type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Delta maps a direction to its grid step; ok is false for unknown names.
func (d Direction) Delta() (dx, dy int, ok bool) {
	switch d {
	case DirUp:
		return 0, -1, true
	case DirDown:
		return 0, 1, true
	case DirLeft:
		return -1, 0, true
	case DirRight:
		return 1, 0, true
	default:
		return 0, 0, false
	}
}

func difficultyOr(d, fallback Difficulty) Difficulty {
	if d == DifficultyNone {
		return fallback
	}
	return d
}
