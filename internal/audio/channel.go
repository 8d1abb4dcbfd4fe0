package audio

import "github.com/DoyleJ11/mindmaze-client/internal/engine"

// Channel is one playable audio track.
type Channel int

const (
	ChannelNone Channel = iota
	ChannelMenuLoop
	ChannelGameplayLoop
	ChannelVictoryOneShot
	ChannelLoseOneShot
)

var channelNames = map[Channel]string{
	ChannelNone:           "none",
	ChannelMenuLoop:       "menuLoop",
	ChannelGameplayLoop:   "gameplayLoop",
	ChannelVictoryOneShot: "victoryOneShot",
	ChannelLoseOneShot:    "loseOneShot",
}

func (c Channel) String() string {
	if n, ok := channelNames[c]; ok {
		return n
	}
	return "unknown"
}

// Loops reports whether the channel repeats until stopped.
func (c Channel) Loops() bool {
	return c == ChannelMenuLoop || c == ChannelGameplayLoop
}

// ChannelFor maps a session phase to the channel that should be audible.
func ChannelFor(p engine.Phase) Channel {
	switch p {
	case engine.PhaseMenu:
		return ChannelMenuLoop
	case engine.PhasePlaying, engine.PhasePaused:
		return ChannelGameplayLoop
	case engine.PhaseVictory:
		return ChannelVictoryOneShot
	case engine.PhaseGameOver:
		return ChannelLoseOneShot
	default:
		return ChannelNone
	}
}
