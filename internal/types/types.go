// Package types holds the messages exchanged with bridge clients.
package types

import (
	"fmt"
	"strings"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/fog"
	"github.com/DoyleJ11/mindmaze-client/internal/progress"
	"github.com/DoyleJ11/mindmaze-client/internal/session"
)

// ClientMessage is an intent. Type is the action name, e.g. "MOVE".
type ClientMessage struct {
	Type       string         `json:"type"`
	Difficulty string         `json:"difficulty,omitempty"`
	Level      int            `json:"level,omitempty"`
	Direction  string         `json:"direction,omitempty"`
	DX         int            `json:"dx,omitempty"`
	DY         int            `json:"dy,omitempty"`
	Puzzle     *engine.Puzzle `json:"puzzle,omitempty"`
}

type ServerMessage struct {
	Type     string            `json:"type"` // "StateSnapshot" | "Error"
	Version  int               `json:"version,omitempty"`
	State    *engine.State     `json:"state,omitempty"`
	Visible  []engine.Position `json:"visible,omitempty"`
	Progress *progress.Record  `json:"progress,omitempty"`
	Error    string            `json:"error,omitempty"`
}

var actions = map[string]engine.ActionType{}

func init() {
	for _, t := range []engine.ActionType{
		engine.ActSetDifficulty, engine.ActStartGame, engine.ActMove, engine.ActTick,
		engine.ActCompletePuzzle, engine.ActFailPuzzle, engine.ActNextLevel,
		engine.ActResetGame, engine.ActUnlockLevel, engine.ActShowPuzzle,
		engine.ActHidePuzzle, engine.ActRefresh,
	} {
		actions[string(t)] = t
	}
}

// Action converts the message. Payload validation is left to the engine.
func (m ClientMessage) Action() (engine.Action, error) {
	t, ok := actions[strings.ToUpper(m.Type)]
	if !ok {
		return engine.Action{}, fmt.Errorf("%q: %w", m.Type, engine.ErrUnsupportedAction)
	}
	return engine.Action{
		Type:       t,
		Difficulty: engine.Difficulty(m.Difficulty),
		Level:      m.Level,
		Direction:  engine.Direction(m.Direction),
		DX:         m.DX,
		DY:         m.DY,
		Puzzle:     m.Puzzle,
	}, nil
}

func SnapshotMessage(version int, st engine.State, rec progress.Record, err error) ServerMessage {
	msg := ServerMessage{
		Type:     "StateSnapshot",
		Version:  version,
		State:    &st,
		Visible:  fog.ForState(st).Cells(),
		Progress: &rec,
	}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}

func FromSnapshot(s session.Snapshot) ServerMessage {
	return SnapshotMessage(s.Version, s.State, s.Progress, s.Err)
}

func FromView(v session.View) ServerMessage {
	return SnapshotMessage(v.Version, v.Session.State, v.Progress, v.Err)
}

func ErrorMessage(err error) ServerMessage {
	return ServerMessage{Type: "Error", Error: err.Error()}
}
