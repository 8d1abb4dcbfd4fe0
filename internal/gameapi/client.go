// Package gameapi is the HTTP client of the remote game server.
package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NetworkError is returned when a call could not be made or the server
// answered with a non-success status.
type NetworkError struct {
	Op     string
	Status int // zero when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// maxBody bounds how much of a response is read.
const maxBody = 4 << 20

type Client struct {
	BaseURL string
	HTTP    *http.Client
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     log.Named("gameapi"),
	}
}

// Start creates a new game. A zero level lets the server pick level 1.
func (c *Client) Start(ctx context.Context, d engine.Difficulty, level int) (any, error) {
	return c.do(ctx, "start", http.MethodPost, "/game/start",
		types.StartRequest{Difficulty: string(d), Level: level})
}

func (c *Client) Move(ctx context.Context, gameID string, dx, dy int) (any, error) {
	return c.do(ctx, "move", http.MethodPost, "/game/move",
		types.MoveRequest{GameID: gameID, DX: dx, DY: dy})
}

func (c *Client) Puzzle(ctx context.Context, gameID string, correct bool) (any, error) {
	return c.do(ctx, "puzzle", http.MethodPost, "/game/puzzle",
		types.PuzzleRequest{GameID: gameID, Correct: correct})
}

func (c *Client) Tick(ctx context.Context, gameID string) (any, error) {
	return c.do(ctx, "tick", http.MethodPost, "/game/tick",
		types.TickRequest{GameID: gameID})
}

// State fetches the current snapshot without advancing the game.
func (c *Client) State(ctx context.Context, gameID string) (any, error) {
	return c.do(ctx, "state", http.MethodGet, "/game/state/"+url.PathEscape(gameID), nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body any) (any, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	started := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.log.Debug("call failed", zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("call",
		zap.String("op", op),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &NetworkError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("server said %q", strings.TrimSpace(string(msg))),
		}
	}

	var out any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return out, nil
}
