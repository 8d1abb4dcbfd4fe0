// Package session runs the game session: one goroutine owns the canonical
// state, interprets the commands the engine asks for, gates responses by
// sequence number and drives the 1s tick while a game is being played.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/progress"
	"go.uber.org/zap"
)

// TickInterval is how often TICK fires while playing.
const TickInterval = time.Second

var ErrClosed = errors.New("session closed")

// GameAPI is the remote game server. Every call returns the raw snapshot.
type GameAPI interface {
	Start(ctx context.Context, d engine.Difficulty, level int) (any, error)
	Move(ctx context.Context, gameID string, dx, dy int) (any, error)
	Puzzle(ctx context.Context, gameID string, correct bool) (any, error)
	Tick(ctx context.Context, gameID string) (any, error)
	State(ctx context.Context, gameID string) (any, error)
}

// ProgressRecorder is the durable progress ledger.
type ProgressRecorder interface {
	RecordVictory(ctx context.Context, d engine.Difficulty, level, timeLeft, score int) progress.Record
	UnlockLevel(ctx context.Context, level int, d engine.Difficulty) progress.Record
	Snapshot() progress.Record
}

type Msg interface{ isSessionMsg() }

// FromUser carries an intent. Reply, when set, receives the result of
// reducing it (nil, or a wrapped engine error).
type FromUser struct {
	Action engine.Action
	Reply  chan error
}

func (FromUser) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

// Snapshot is pushed to every subscriber after each visible change. Err is
// the last call failure, cleared by the next accepted response.
type Snapshot struct {
	Version  int
	State    engine.State
	Progress progress.Record
	Err      error
}

type View struct {
	Version    int
	NumClients int
	Session    engine.Session
	Progress   progress.Record
	Ticking    bool
	Err        error
}

// result is what a call goroutine hands back to the loop.
type result struct {
	cmd engine.Command
	raw any
	err error
}

type Manager struct {
	inbox    chan Msg
	results  chan result
	sess     engine.Session
	version  int
	lastErr  error
	clients  map[string]chan Snapshot
	api      GameAPI
	progress ProgressRecorder
	clock    Clock
	ticker   Ticker
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	calls  sync.WaitGroup
	done   chan struct{}
}

func New(parent context.Context, api GameAPI, prog ProgressRecorder, clock Clock, log *zap.Logger) *Manager {
	ctx, cancel := context.WithCancel(parent)

	m := &Manager{
		inbox:    make(chan Msg, 64),
		results:  make(chan result, 16),
		sess:     engine.NewSession(),
		clients:  make(map[string]chan Snapshot),
		api:      api,
		progress: prog,
		clock:    clock,
		log:      log.Named("session"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go m.loop()
	return m
}

func (m *Manager) Inbox() chan<- Msg { return m.inbox }

// Done is closed once the loop has exited.
func (m *Manager) Done() <-chan struct{} { return m.done }

func (m *Manager) send(msg Msg) bool {
	select {
	case m.inbox <- msg:
		return true
	case <-m.done:
		return false
	}
}

// Dispatch queues an intent without waiting for it to be reduced.
func (m *Manager) Dispatch(a engine.Action) {
	m.send(FromUser{Action: a})
}

// Do reduces an intent and reports whether it was accepted. It does not
// wait for the remote call the intent may have issued.
func (m *Manager) Do(ctx context.Context, a engine.Action) error {
	reply := make(chan error, 1)
	if !m.send(FromUser{Action: a, Reply: reply}) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrClosed
	}
}

// Join subscribes outbox. The current snapshot is delivered right away.
func (m *Manager) Join(id string, outbox chan Snapshot) bool {
	return m.send(Join{ClientID: id, Outbox: outbox})
}

func (m *Manager) Leave(id string) {
	m.send(Leave{ClientID: id})
}

// Snapshot returns the current view, or the zero View once closed.
func (m *Manager) Snapshot() View {
	reply := make(chan View, 1)
	if !m.send(GetState{Reply: reply}) {
		return View{}
	}
	select {
	case v := <-reply:
		return v
	case <-m.done:
		return View{}
	}
}

// Close stops the loop and the tick timer, closes every subscriber outbox
// and waits for in-flight calls to give up.
func (m *Manager) Close() {
	m.send(Shutdown{})
	<-m.done
	m.calls.Wait()
}

func (m *Manager) loop() {
	defer close(m.done)
	for {
		var tick <-chan time.Time
		if m.ticker != nil {
			tick = m.ticker.C()
		}

		select {
		case <-m.ctx.Done():
			m.shutdown()
			return

		case <-tick:
			// Refused while not playing or while a start is unresolved.
			_ = m.reduce(engine.Action{Type: engine.ActTick})

		case r := <-m.results:
			m.install(r)

		case msg := <-m.inbox:
			switch msg := msg.(type) {
			case Join:
				m.clients[msg.ClientID] = msg.Outbox
				m.deliver(msg.ClientID, msg.Outbox, m.snapshot())

			case Leave:
				delete(m.clients, msg.ClientID)

			case FromUser:
				err := m.reduce(msg.Action)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case GetState:
				msg.Reply <- View{
					Version:    m.version,
					NumClients: len(m.clients),
					Session:    m.sess,
					Progress:   m.progress.Snapshot(),
					Ticking:    m.ticker != nil,
					Err:        m.lastErr,
				}

			case Shutdown:
				m.shutdown()
				return
			}
		}
	}
}

// reduce applies an intent and runs the commands it produced.
func (m *Manager) reduce(a engine.Action) error {
	next, cmds, err := engine.Apply(m.sess, a)
	if err != nil {
		if errors.Is(err, engine.ErrPreconditionNotMet) {
			if a.Type != engine.ActTick {
				m.log.Debug("action dropped", zap.Error(err))
			}
		} else {
			m.log.Warn("action rejected", zap.Error(err))
		}
		return err
	}

	changed := localChange(a.Type)
	m.sess = next
	for _, cmd := range cmds {
		if m.run(cmd) {
			changed = true
		}
	}
	m.syncTicker()
	if changed {
		m.publish()
	}
	return nil
}

// localChange reports whether the action alters the state without a call.
func localChange(t engine.ActionType) bool {
	switch t {
	case engine.ActSetDifficulty, engine.ActResetGame, engine.ActShowPuzzle, engine.ActHidePuzzle:
		return true
	}
	return false
}

// run executes one command. It reports whether progress changed.
func (m *Manager) run(cmd engine.Command) bool {
	switch cmd.Type {
	case engine.CmdRecordVictory:
		m.log.Info("victory",
			zap.String("difficulty", string(cmd.Difficulty)),
			zap.Int("level", cmd.Level),
			zap.Int("time_left", cmd.TimeLeft),
			zap.Int("score", cmd.Score),
		)
		m.progress.RecordVictory(m.ctx, cmd.Difficulty, cmd.Level, cmd.TimeLeft, cmd.Score)
		return true

	case engine.CmdUnlockLevel:
		m.progress.UnlockLevel(m.ctx, cmd.Level, cmd.Difficulty)
		return true
	}

	if cmd.IsCall() {
		m.calls.Add(1)
		go m.call(cmd)
	}
	return false
}

// call performs a remote call off the loop. It is never cancelled on its own;
// a late response is neutralised by the sequence gate. Teardown cancels it.
func (m *Manager) call(cmd engine.Command) {
	defer m.calls.Done()

	var (
		raw any
		err error
	)
	switch cmd.Type {
	case engine.CmdCallStart:
		raw, err = m.api.Start(m.ctx, cmd.Difficulty, cmd.Level)
	case engine.CmdCallMove:
		raw, err = m.api.Move(m.ctx, cmd.GameID, cmd.DX, cmd.DY)
	case engine.CmdCallTick:
		raw, err = m.api.Tick(m.ctx, cmd.GameID)
	case engine.CmdCallPuzzle:
		raw, err = m.api.Puzzle(m.ctx, cmd.GameID, cmd.Correct)
	case engine.CmdCallState:
		raw, err = m.api.State(m.ctx, cmd.GameID)
	}

	select {
	case m.results <- result{cmd: cmd, raw: raw, err: err}:
	case <-m.ctx.Done():
	}
}

func (m *Manager) install(r result) {
	seq := r.cmd.Seq
	if r.err != nil {
		stale := engine.Stale(m.sess, seq, r.cmd.Origin)
		m.sess = engine.Fail(m.sess, seq)
		if stale {
			m.log.Debug("stale call failed", zap.Uint64("seq", seq), zap.Error(r.err))
			return
		}
		m.log.Warn("call failed",
			zap.String("action", string(r.cmd.Origin)),
			zap.Uint64("seq", seq),
			zap.Error(r.err),
		)
		m.lastErr = r.err
		m.publish()
		return
	}

	next, cmds, ok := engine.Accept(m.sess, engine.Response{Seq: seq, Origin: r.cmd.Origin, Raw: r.raw})
	if !ok {
		m.log.Debug("response dropped",
			zap.String("action", string(r.cmd.Origin)),
			zap.Uint64("seq", seq),
			zap.Uint64("applied", m.sess.Applied),
		)
		return
	}

	prevPhase := m.sess.State.Phase
	m.sess = next
	m.lastErr = nil
	for _, cmd := range cmds {
		m.run(cmd)
	}
	if next.State.Phase != prevPhase {
		m.log.Info("phase change",
			zap.String("from", string(prevPhase)),
			zap.String("to", string(next.State.Phase)),
			zap.String("game_id", next.State.GameID),
		)
	}
	m.syncTicker()
	m.publish()
}

// syncTicker runs the tick timer exactly while a game is being played.
func (m *Manager) syncTicker() {
	st := m.sess.State
	want := st.Phase == engine.PhasePlaying && st.GameID != ""
	switch {
	case want && m.ticker == nil:
		m.ticker = m.clock.NewTicker(TickInterval)
	case !want && m.ticker != nil:
		m.ticker.Stop()
		m.ticker = nil
	}
}

func (m *Manager) snapshot() Snapshot {
	return Snapshot{
		Version:  m.version,
		State:    m.sess.State,
		Progress: m.progress.Snapshot(),
		Err:      m.lastErr,
	}
}

func (m *Manager) publish() {
	m.version++
	snap := m.snapshot()
	for id, ch := range m.clients {
		m.deliver(id, ch, snap)
	}
}

func (m *Manager) deliver(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		// Client is slow/full - drop them.
		m.log.Debug("dropping slow subscriber", zap.String("client", id))
		close(ch)
		delete(m.clients, id)
	}
}

func (m *Manager) shutdown() {
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
	for id, ch := range m.clients {
		close(ch) // no more snapshots
		delete(m.clients, id)
	}
	m.cancel()
}
