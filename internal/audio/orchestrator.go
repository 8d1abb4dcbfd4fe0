package audio

import (
	"context"
	"errors"
	"sync"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/kv"
	"go.uber.org/zap"
)

// MuteKey is the storage key of the persisted mute flag ("1" or "0").
const MuteKey = "mindmaze_bgm_muted"

// ErrPlaybackDeferred is returned by a Backend that refuses to start audio
// until the user has interacted with the application.
var ErrPlaybackDeferred = errors.New("playback deferred until user gesture")

// Backend plays channels. Start resumes a channel from its current position;
// Stop pauses it and rewinds it to the beginning.
type Backend interface {
	Start(ch Channel) error
	Pause(ch Channel)
	Stop(ch Channel)
}

// Orchestrator keeps exactly one channel current, driven by phase changes.
type Orchestrator struct {
	mu      sync.Mutex
	backend Backend
	prefs   kv.Store
	log     *zap.Logger

	current Channel
	started bool // current has produced sound since it became current
	muted   bool
	pending bool // a start was deferred and waits for a gesture
}

// NewOrchestrator reads the persisted mute flag from prefs. No channel is
// current until the first SetPhase.
func NewOrchestrator(ctx context.Context, backend Backend, prefs kv.Store, log *zap.Logger) *Orchestrator {
	o := &Orchestrator{backend: backend, prefs: prefs, log: log.Named("audio")}
	v, err := prefs.Get(ctx, MuteKey)
	switch {
	case err == nil:
		o.muted = v == "1"
	case !errors.Is(err, kv.ErrNotFound):
		o.log.Warn("read mute flag", zap.Error(err))
	}
	return o
}

// SetPhase switches channels when the phase maps to a different one. The
// outgoing channel is always stopped and rewound first.
func (o *Orchestrator) SetPhase(p engine.Phase) {
	o.mu.Lock()
	defer o.mu.Unlock()

	target := ChannelFor(p)
	if target == o.current {
		return
	}
	if o.current != ChannelNone {
		o.backend.Stop(o.current)
	}
	o.log.Debug("channel change", zap.Stringer("from", o.current), zap.Stringer("to", target))
	o.current = target
	o.started = false
	o.pending = false

	if target == ChannelNone || o.muted {
		return
	}
	o.start()
}

// SetMuted pauses or resumes the current channel without rewinding it and
// persists the flag. A one-shot that already began resumes where it was;
// one that was muted from the start is skipped.
func (o *Orchestrator) SetMuted(ctx context.Context, muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setMuted(ctx, muted)
}

// ToggleMute flips the mute flag and returns the new value.
func (o *Orchestrator) ToggleMute(ctx context.Context) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setMuted(ctx, !o.muted)
	return o.muted
}

func (o *Orchestrator) setMuted(ctx context.Context, muted bool) {
	if muted == o.muted {
		return
	}
	o.muted = muted

	switch {
	case o.current == ChannelNone:
	case muted:
		if o.started {
			o.backend.Pause(o.current)
		}
	case o.current.Loops() || o.started:
		o.start()
	}

	v := "0"
	if muted {
		v = "1"
	}
	if err := o.prefs.Set(ctx, MuteKey, v); err != nil {
		o.log.Warn("persist mute flag", zap.Error(err))
	}
}

func (o *Orchestrator) Muted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

func (o *Orchestrator) Current() Channel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Pending reports whether a deferred start waits for a user gesture.
func (o *Orchestrator) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// NotifyGesture is called on every pointer or key event. It retries a
// deferred start once and clears the pending flag.
func (o *Orchestrator) NotifyGesture() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.pending {
		return
	}
	o.pending = false
	if o.muted || o.current == ChannelNone {
		return
	}
	o.start()
}

// Run follows phases until ctx ends or the channel closes, then stops the
// current channel.
func (o *Orchestrator) Run(ctx context.Context, phases <-chan engine.Phase) {
	defer o.release()
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-phases:
			if !ok {
				return
			}
			o.SetPhase(p)
		}
	}
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != ChannelNone {
		o.backend.Stop(o.current)
	}
	o.current = ChannelNone
	o.started = false
	o.pending = false
}

// start must be called with o.mu held.
func (o *Orchestrator) start() {
	err := o.backend.Start(o.current)
	switch {
	case errors.Is(err, ErrPlaybackDeferred):
		o.pending = true
	case err != nil:
		o.log.Warn("start channel", zap.Stringer("channel", o.current), zap.Error(err))
	default:
		o.started = true
	}
}
