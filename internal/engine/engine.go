package engine

import (
	"errors"
	"fmt"
)

var ErrPreconditionNotMet = errors.New("precondition not met")
var ErrInvalidPayload = errors.New("invalid action payload")
var ErrUnsupportedAction = errors.New("unsupported action")

type ActionType string

const (
	ActSetDifficulty  ActionType = "SET_DIFFICULTY"
	ActStartGame      ActionType = "START_GAME"
	ActMove           ActionType = "MOVE"
	ActTick           ActionType = "TICK"
	ActCompletePuzzle ActionType = "COMPLETE_PUZZLE"
	ActFailPuzzle     ActionType = "FAIL_PUZZLE"
	ActNextLevel      ActionType = "NEXT_LEVEL"
	ActResetGame      ActionType = "RESET_GAME"
	ActUnlockLevel    ActionType = "UNLOCK_LEVEL"
	ActShowPuzzle     ActionType = "SHOW_PUZZLE"
	ActHidePuzzle     ActionType = "HIDE_PUZZLE"
	ActRefresh        ActionType = "REFRESH"
)

/*
	SET_DIFFICULTY -> local field update (menu only)
	START_GAME     -> CallStart, applied floor moves to seq-1
	MOVE           -> CallMove (playing, no puzzle)
	TICK           -> CallTick (playing)
	COMPLETE/FAIL  -> CallPuzzle (puzzle active)
	NEXT_LEVEL     -> CallStart with min(6, level+1)
	RESET_GAME     -> menu state, seq consumed and marked applied
	UNLOCK_LEVEL   -> UnlockLevel
	SHOW/HIDE      -> local overlay toggle
	REFRESH        -> CallState

	Accepted response entering victory -> RecordVictory (once per transition)
*/

// Action is a user or timer intent. Only the fields relevant to Type are read.
type Action struct {
	Type       ActionType
	Difficulty Difficulty
	Level      int
	Direction  Direction
	DX, DY     int
	Puzzle     *Puzzle
}

type CommandType string

const (
	CmdCallStart     CommandType = "CallStart"
	CmdCallMove      CommandType = "CallMove"
	CmdCallTick      CommandType = "CallTick"
	CmdCallPuzzle    CommandType = "CallPuzzle"
	CmdCallState     CommandType = "CallState"
	CmdRecordVictory CommandType = "RecordVictory"
	CmdUnlockLevel   CommandType = "UnlockLevel"
)

// Command is a side effect requested by Apply or Accept. Call commands carry
// the sequence number their response must be tagged with.
type Command struct {
	Type       CommandType
	Seq        uint64
	Origin     ActionType
	GameID     string
	Difficulty Difficulty
	Level      int
	DX, DY     int
	Correct    bool
	TimeLeft   int
	Score      int
}

// IsCall reports whether the command goes to the remote game API.
func (c Command) IsCall() bool {
	switch c.Type {
	case CmdCallStart, CmdCallMove, CmdCallTick, CmdCallPuzzle, CmdCallState:
		return true
	}
	return false
}

// Response is the raw result of a call command, tagged with its sequence number.
type Response struct {
	Seq    uint64
	Origin ActionType
	Raw    any
}

// Session is the controller's view: the canonical state plus the last issued
// and last applied sequence numbers. Starting holds the sequence number of an
// unresolved start call; session calls are refused until it resolves, since
// their responses would describe the previous game.
type Session struct {
	State    State
	Issued   uint64
	Applied  uint64
	Starting uint64
}

func NewSession() Session {
	return Session{State: DefaultState()}
}

func (s Session) issue() (Session, uint64) {
	s.Issued++
	return s, s.Issued
}

func precondition(a ActionType, why string) error {
	return fmt.Errorf("%s: %w: %s", a, ErrPreconditionNotMet, why)
}

func invalid(a ActionType, why string) error {
	return fmt.Errorf("%s: %w: %s", a, ErrInvalidPayload, why)
}

// Apply reduces an action against the session. It never performs I/O: remote
// calls and progress mutations come back as commands. On error the session is
// returned unchanged and no command is issued.
func Apply(s Session, a Action) (Session, []Command, error) {
	st := s.State

	switch a.Type {
	case ActSetDifficulty:
		if st.Phase != PhaseMenu {
			return s, nil, precondition(a.Type, "not in menu")
		}
		d, ok := ParseDifficulty(string(a.Difficulty))
		if !ok {
			return s, nil, invalid(a.Type, fmt.Sprintf("unknown difficulty %q", a.Difficulty))
		}
		st.Difficulty = d
		s.State = st
		return s, nil, nil

	case ActStartGame:
		if st.Difficulty == DifficultyNone {
			return s, nil, precondition(a.Type, "no difficulty chosen")
		}
		level := MinLevel
		if a.Level != 0 {
			level = ClampLevel(a.Level)
		}
		return start(s, a.Type, st.Difficulty, level)

	case ActNextLevel:
		return start(s, a.Type, difficultyOr(st.Difficulty, DifficultyNormal), NextLevel(st.Level))

	case ActMove:
		if st.Phase != PhasePlaying || st.GameID == "" {
			return s, nil, precondition(a.Type, "not playing")
		}
		if s.Starting != 0 {
			return s, nil, precondition(a.Type, "start in flight")
		}
		if st.PuzzleActive() {
			return s, nil, precondition(a.Type, "puzzle active")
		}
		dx, dy := a.DX, a.DY
		if a.Direction != "" {
			var ok bool
			if dx, dy, ok = a.Direction.Delta(); !ok {
				return s, nil, invalid(a.Type, fmt.Sprintf("unknown direction %q", a.Direction))
			}
		}
		if dx == 0 && dy == 0 {
			return s, nil, invalid(a.Type, "zero step")
		}
		s, seq := s.issue()
		return s, []Command{{Type: CmdCallMove, Seq: seq, Origin: a.Type, GameID: st.GameID, DX: dx, DY: dy}}, nil

	case ActTick:
		if st.Phase != PhasePlaying || st.GameID == "" {
			return s, nil, precondition(a.Type, "not playing")
		}
		if s.Starting != 0 {
			return s, nil, precondition(a.Type, "start in flight")
		}
		s, seq := s.issue()
		return s, []Command{{Type: CmdCallTick, Seq: seq, Origin: a.Type, GameID: st.GameID}}, nil

	case ActCompletePuzzle, ActFailPuzzle:
		if !st.PuzzleActive() || st.GameID == "" {
			return s, nil, precondition(a.Type, "no active puzzle")
		}
		if s.Starting != 0 {
			return s, nil, precondition(a.Type, "start in flight")
		}
		s, seq := s.issue()
		return s, []Command{{
			Type:    CmdCallPuzzle,
			Seq:     seq,
			Origin:  a.Type,
			GameID:  st.GameID,
			Correct: a.Type == ActCompletePuzzle,
		}}, nil

	case ActRefresh:
		if st.GameID == "" {
			return s, nil, precondition(a.Type, "no session")
		}
		if s.Starting != 0 {
			return s, nil, precondition(a.Type, "start in flight")
		}
		s, seq := s.issue()
		return s, []Command{{Type: CmdCallState, Seq: seq, Origin: a.Type, GameID: st.GameID}}, nil

	case ActResetGame:
		// Consuming a sequence number here makes every outstanding response stale.
		s, seq := s.issue()
		s.Applied = seq
		s.Starting = 0
		next := DefaultState()
		next.Difficulty = st.Difficulty
		s.State = next
		return s, nil, nil

	case ActUnlockLevel:
		if a.Level < MinLevel || a.Level > MaxLevel {
			return s, nil, invalid(a.Type, fmt.Sprintf("level %d out of range", a.Level))
		}
		d := difficultyOr(a.Difficulty, difficultyOr(st.Difficulty, DifficultyNormal))
		if _, ok := ParseDifficulty(string(d)); !ok {
			return s, nil, invalid(a.Type, fmt.Sprintf("unknown difficulty %q", d))
		}
		return s, []Command{{Type: CmdUnlockLevel, Origin: a.Type, Difficulty: d, Level: a.Level}}, nil

	case ActShowPuzzle:
		st.Puzzle = a.Puzzle
		st.ShowPuzzle = true
		s.State = st
		return s, nil, nil

	case ActHidePuzzle:
		st.Puzzle = nil
		st.ShowPuzzle = false
		s.State = st
		return s, nil, nil

	default:
		return s, nil, fmt.Errorf("%q: %w", a.Type, ErrUnsupportedAction)
	}
}

func start(s Session, origin ActionType, d Difficulty, level int) (Session, []Command, error) {
	s, seq := s.issue()
	// Anything issued before this start belongs to the previous session.
	s.Applied = max(s.Applied, seq-1)
	s.Starting = seq
	return s, []Command{{Type: CmdCallStart, Seq: seq, Origin: origin, Difficulty: d, Level: level}}, nil
}

// Stale reports whether the outcome of the call stamped seq, issued for
// origin, would be refused. Failures of stale calls are not surfaced.
func Stale(s Session, seq uint64, origin ActionType) bool {
	if seq <= s.Applied || seq > s.Issued {
		return true
	}
	return origin == ActTick && s.State.Phase != PhasePlaying
}

// Accept installs a response if it is newer than the applied one. It returns
// false, with the session unchanged, for stale responses and for tick
// responses that arrive after the session stopped playing.
func Accept(s Session, r Response) (Session, []Command, bool) {
	if Stale(s, r.Seq, r.Origin) {
		return s, nil, false
	}

	prev := s.State
	next := DefaultState()
	if n := Normalize(r.Raw); n != nil {
		next = *n
	}
	if next.Difficulty == DifficultyNone {
		next.Difficulty = prev.Difficulty
	}

	s.State = next
	s.Applied = r.Seq
	if r.Seq >= s.Starting {
		s.Starting = 0
	}

	var cmds []Command
	if next.Phase == PhaseVictory && prev.Phase != PhaseVictory {
		cmds = append(cmds, Command{
			Type:       CmdRecordVictory,
			Origin:     r.Origin,
			Difficulty: difficultyOr(next.Difficulty, DifficultyNormal),
			Level:      next.Level,
			TimeLeft:   next.TimeLeft,
			Score:      next.Score,
		})
	}
	return s, cmds, true
}

// Fail records that the call stamped seq produced no response. The session
// state is left as it was; only a pending start is released.
func Fail(s Session, seq uint64) Session {
	if s.Starting == seq {
		s.Starting = 0
	}
	return s
}
