package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/kv"
	"github.com/DoyleJ11/mindmaze-client/internal/progress"
	"github.com/DoyleJ11/mindmaze-client/internal/session"
	"github.com/DoyleJ11/mindmaze-client/internal/types"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// instantAPI answers every call with a small playing snapshot.
type instantAPI struct{}

func (instantAPI) snap(id string) any {
	return map[string]any{
		"game_id":         id,
		"phase":           "playing",
		"difficulty":      "easy",
		"maze":            []any{[]any{0.0, 0.0, 0.0, 0.0}, []any{0.0, 1.0, 1.0, 2.0}},
		"player_position": map[string]any{"x": 0.0, "y": 0.0},
	}
}

func (a instantAPI) Start(context.Context, engine.Difficulty, int) (any, error) {
	return a.snap("g-1"), nil
}
func (a instantAPI) Move(_ context.Context, id string, _, _ int) (any, error) { return a.snap(id), nil }
func (a instantAPI) Puzzle(_ context.Context, id string, _ bool) (any, error) { return a.snap(id), nil }
func (a instantAPI) Tick(_ context.Context, id string) (any, error)           { return a.snap(id), nil }
func (a instantAPI) State(_ context.Context, id string) (any, error)          { return a.snap(id), nil }

func newBridge(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	log := zaptest.NewLogger(t)
	m := session.New(context.Background(), instantAPI{},
		progress.NewStore(kv.NewMemStore(), log), session.RealClock{}, log)
	srv := httptest.NewServer(SetupRoutes(m, log))
	t.Cleanup(func() {
		srv.Close()
		m.Close()
	})
	return srv, m
}

func postAction(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/actions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getState(t *testing.T, srv *httptest.Server) types.ServerMessage {
	t.Helper()
	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg types.ServerMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	return msg
}

func TestHealthz(t *testing.T) {
	srv, _ := newBridge(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPostAction_StatusCodes(t *testing.T) {
	srv, _ := newBridge(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"accepted", `{"type":"SET_DIFFICULTY","difficulty":"hard"}`, http.StatusAccepted},
		{"precondition", `{"type":"MOVE","direction":"up"}`, http.StatusConflict},
		{"invalid payload", `{"type":"UNLOCK_LEVEL","level":9}`, http.StatusBadRequest},
		{"unknown type", `{"type":"JUMP"}`, http.StatusBadRequest},
		{"bad json", `{"type":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, postAction(t, srv, tc.body).StatusCode)
		})
	}

	assert.Equal(t, engine.DifficultyImpossible, getState(t, srv).State.Difficulty)
}

func TestPostAction_StartGameReachesPlaying(t *testing.T) {
	srv, _ := newBridge(t)

	require.Equal(t, http.StatusAccepted, postAction(t, srv, `{"type":"SET_DIFFICULTY","difficulty":"easy"}`).StatusCode)
	require.Equal(t, http.StatusAccepted, postAction(t, srv, `{"type":"START_GAME"}`).StatusCode)

	require.Eventually(t, func() bool {
		return getState(t, srv).State.Phase == engine.PhasePlaying
	}, time.Second, 10*time.Millisecond)

	msg := getState(t, srv)
	assert.Equal(t, "g-1", msg.State.GameID)
	// Radius 1 around (0,0) on a 4x2 grid.
	assert.ElementsMatch(t, []engine.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, msg.Visible)
}

func TestProgress(t *testing.T) {
	srv, _ := newBridge(t)
	require.Equal(t, http.StatusAccepted, postAction(t, srv, `{"type":"UNLOCK_LEVEL","level":3,"difficulty":"normal"}`).StatusCode)

	resp, err := http.Get(srv.URL + "/progress")
	require.NoError(t, err)
	defer resp.Body.Close()

	var rec progress.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.True(t, rec.IsUnlocked(engine.DifficultyNormal, 3))
}

func readMessage(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebsocket_StreamsSnapshotsAndErrors(t *testing.T) {
	srv, m := newBridge(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readMessage(t, conn)
	assert.Equal(t, "StateSnapshot", first.Type)
	assert.Equal(t, engine.PhaseMenu, first.State.Phase)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"SET_DIFFICULTY","difficulty":"normal"}`)))
	next := readMessage(t, conn)
	assert.Equal(t, "StateSnapshot", next.Type)
	assert.Equal(t, engine.DifficultyNormal, next.State.Difficulty)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"MOVE","direction":"left"}`)))
	errMsg := readMessage(t, conn)
	assert.Equal(t, "Error", errMsg.Type)
	assert.Contains(t, errMsg.Error, "precondition not met")

	assert.Equal(t, 1, m.Snapshot().NumClients)
}
