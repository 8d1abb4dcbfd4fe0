package tui

import (
	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/progress"
	"github.com/gdamore/tcell/v2"
)

// Intent is what a key press asks for. At most one field is set.
type Intent struct {
	Quit       bool
	ToggleMute bool
	Action     *engine.Action
}

func act(a engine.Action) Intent { return Intent{Action: &a} }

var arrows = map[tcell.Key]engine.Direction{
	tcell.KeyUp:    engine.DirUp,
	tcell.KeyDown:  engine.DirDown,
	tcell.KeyLeft:  engine.DirLeft,
	tcell.KeyRight: engine.DirRight,
}

var wasd = map[rune]engine.Direction{
	'w': engine.DirUp,
	's': engine.DirDown,
	'a': engine.DirLeft,
	'd': engine.DirRight,
}

var difficultyKeys = map[rune]engine.Difficulty{
	'e': engine.DifficultyEasy,
	'o': engine.DifficultyNormal,
	'i': engine.DifficultyImpossible,
}

// Translate maps a key press to an intent given what is on screen. Keys that
// mean nothing in the current phase give the zero Intent.
func Translate(ev *tcell.EventKey, st engine.State, rec progress.Record) Intent {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Intent{Quit: true}
	case tcell.KeyEnter:
		if st.Phase == engine.PhaseMenu {
			return act(engine.Action{Type: engine.ActStartGame})
		}
		return Intent{}
	case tcell.KeyRune:
	default:
		if dir, ok := arrows[ev.Key()]; ok {
			return move(st, dir)
		}
		return Intent{}
	}

	r := ev.Rune()
	if dir, ok := wasd[r]; ok {
		return move(st, dir)
	}

	switch r {
	case 'q':
		return Intent{Quit: true}
	case 'm':
		return Intent{ToggleMute: true}
	case 'r':
		return act(engine.Action{Type: engine.ActResetGame})
	case 'n':
		if st.Phase == engine.PhaseVictory {
			return act(engine.Action{Type: engine.ActNextLevel})
		}
	case 'y':
		if st.PuzzleActive() {
			return act(engine.Action{Type: engine.ActCompletePuzzle})
		}
	case 'x':
		if st.PuzzleActive() {
			return act(engine.Action{Type: engine.ActFailPuzzle})
		}
	case 'h':
		if st.ShowPuzzle {
			return act(engine.Action{Type: engine.ActHidePuzzle})
		}
	case '1', '2', '3', '4', '5', '6':
		level := int(r - '0')
		if st.Phase == engine.PhaseMenu && st.Difficulty != engine.DifficultyNone &&
			rec.IsUnlocked(st.Difficulty, level) {
			return act(engine.Action{Type: engine.ActStartGame, Level: level})
		}
	default:
		if d, ok := difficultyKeys[r]; ok && st.Phase == engine.PhaseMenu {
			return act(engine.Action{Type: engine.ActSetDifficulty, Difficulty: d})
		}
	}
	return Intent{}
}

func move(st engine.State, dir engine.Direction) Intent {
	if st.Phase != engine.PhasePlaying || st.PuzzleActive() {
		return Intent{}
	}
	return act(engine.Action{Type: engine.ActMove, Direction: dir})
}
