// Package tui is the terminal front end: it renders session snapshots and
// turns key presses into actions.
package tui

import (
	"context"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/session"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

type Dispatcher interface {
	Dispatch(a engine.Action)
}

type Audio interface {
	NotifyGesture()
	ToggleMute(ctx context.Context) bool
	Muted() bool
}

type UI struct {
	screen  tcell.Screen
	actions Dispatcher
	audio   Audio
	log     *zap.Logger
	last    session.Snapshot
}

// New takes an initialised screen. Run finalises it.
func New(screen tcell.Screen, actions Dispatcher, audio Audio, log *zap.Logger) *UI {
	return &UI{
		screen:  screen,
		actions: actions,
		audio:   audio,
		log:     log.Named("tui"),
		last:    session.Snapshot{State: engine.DefaultState()},
	}
}

// Run draws every snapshot and handles input until the user quits, ctx
// ends or snaps is closed.
func (u *UI) Run(ctx context.Context, snaps <-chan session.Snapshot) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer u.screen.Fini()
	defer close(quit)

	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return // screen finalised
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	u.redraw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			u.last = snap
			u.redraw()

		case ev := <-events:
			if !u.handle(ctx, ev) {
				u.log.Info("quit requested")
				return nil
			}
		}
	}
}

// handle reports false when the UI should exit.
func (u *UI) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
		u.redraw()

	case *tcell.EventKey:
		u.audio.NotifyGesture()
		in := Translate(ev, u.last.State, u.last.Progress)
		switch {
		case in.Quit:
			return false
		case in.ToggleMute:
			u.audio.ToggleMute(ctx)
			u.redraw()
		case in.Action != nil:
			u.actions.Dispatch(*in.Action)
		}
	}
	return true
}

func (u *UI) redraw() {
	draw(u.screen, u.last, u.audio.Muted())
}
