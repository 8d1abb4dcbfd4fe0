// Package types holds the request bodies of the remote game API.
//
// Every endpoint answers with a full game snapshot:
//
//	game_id | gameId: string
//	phase: "menu" | "playing" | "paused" | "gameOver" | "victory"
//	difficulty: "easy" | "normal" | "impossible"
//	level: number
//	maze: number[][]          // 0 path, 1 wall, 2 exit, 3 start, 4 trap, 5 key
//	player_position | playerPosition: {x, y}
//	health, energy, time | time_left, score, lives: number
//	keys_required, keys_collected, map_timer | mapTimer: number
//	enemies: {id, position: {x, y}}[]
//	puzzle: {sequence, progress} | null
//	map_visible | mapVisible, flashlightActive, compassActive,
//	isTimeFrozen, player_hit: boolean
package types

// POST /game/start
type StartRequest struct {
	Difficulty string `json:"difficulty"`
	Level      int    `json:"level,omitempty"` // omitted means level 1
}

// POST /game/move
type MoveRequest struct {
	GameID string `json:"game_id"`
	DX     int    `json:"dx"`
	DY     int    `json:"dy"`
}

// POST /game/puzzle
type PuzzleRequest struct {
	GameID  string `json:"game_id"`
	Correct bool   `json:"correct"`
}

// POST /game/tick
type TickRequest struct {
	GameID string `json:"game_id"`
}
