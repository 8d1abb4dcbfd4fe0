package engine

type Phase string

const (
	PhaseMenu     Phase = "menu"
	PhasePlaying  Phase = "playing"
	PhasePaused   Phase = "paused"
	PhaseGameOver Phase = "gameOver"
	PhaseVictory  Phase = "victory"
)

type Difficulty string

const (
	DifficultyNone       Difficulty = ""
	DifficultyEasy       Difficulty = "easy"
	DifficultyNormal     Difficulty = "normal"
	DifficultyImpossible Difficulty = "impossible"
)

// Difficulties lists every playable difficulty in menu order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyImpossible}

const (
	MinLevel = 1
	MaxLevel = 6
)

// Maze cell codes as sent by the server.
const (
	CellPath  = 0
	CellWall  = 1
	CellExit  = 2
	CellStart = 3
	CellTrap  = 4
	CellKey   = 5
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Enemy struct {
	ID       string   `json:"id,omitempty"` // empty when the server sent no usable id
	Position Position `json:"position"`
}

type Puzzle struct {
	Sequence []string `json:"sequence"`
	Progress []string `json:"progress"`
}

// State is the canonical session shape. Values are replaced wholesale on
// every accepted update; slices inside a State are never mutated after
// construction, so copies may share them.
type State struct {
	GameID     string     `json:"game_id"`
	Phase      Phase      `json:"phase"`
	Difficulty Difficulty `json:"difficulty"`
	Level      int        `json:"level"`
	Maze       [][]int    `json:"maze"`
	Player     Position   `json:"player_position"`

	Health        int `json:"health"`
	Energy        int `json:"energy"`
	TimeLeft      int `json:"time_left"`
	Score         int `json:"score"`
	Lives         int `json:"lives"`
	KeysRequired  int `json:"keys_required"`
	KeysCollected int `json:"keys_collected"`
	MapTimer      int `json:"map_timer"`

	Enemies    []Enemy `json:"enemies"`
	Puzzle     *Puzzle `json:"puzzle"`
	ShowPuzzle bool    `json:"show_puzzle"`

	MapVisible       bool `json:"map_visible"`
	FlashlightActive bool `json:"flashlightActive"`
	CompassActive    bool `json:"compassActive"`
	IsTimeFrozen     bool `json:"isTimeFrozen"`
	PlayerHit        bool `json:"player_hit"`
}

// DefaultState is the menu state shown before any session exists.
func DefaultState() State {
	return State{
		Phase:    PhaseMenu,
		Level:    MinLevel,
		Maze:     [][]int{},
		Health:   100,
		Energy:   100,
		TimeLeft: 300,
		Enemies:  []Enemy{},
	}
}

// Width is the column count of the maze; zero for an empty maze.
func (s State) Width() int {
	if len(s.Maze) == 0 {
		return 0
	}
	return len(s.Maze[0])
}

func (s State) Height() int { return len(s.Maze) }

// InBounds reports whether p lies inside the maze.
func (s State) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.Width() && p.Y < s.Height()
}

// PuzzleActive reports whether a puzzle blocks movement.
func (s State) PuzzleActive() bool {
	return s.ShowPuzzle || s.Puzzle != nil
}
