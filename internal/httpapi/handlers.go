package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DoyleJ11/mindmaze-client/internal/engine"
	"github.com/DoyleJ11/mindmaze-client/internal/session"
	"github.com/DoyleJ11/mindmaze-client/internal/types"
	"go.uber.org/zap"
)

// State returns the current session view with its visible cells.
func State(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.FromView(m.Snapshot()))
	}
}

func Progress(m *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.Snapshot().Progress)
	}
}

// PostAction reduces one ClientMessage. 202 means the action was accepted;
// any remote call it issued completes asynchronously.
func PostAction(m *session.Manager, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cm types.ClientMessage
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&cm); err != nil {
			writeJSON(w, http.StatusBadRequest, types.ServerMessage{Type: "Error", Error: "bad json"})
			return
		}
		a, err := cm.Action()
		if err == nil {
			err = m.Do(r.Context(), a)
		}
		if err != nil {
			log.Debug("action refused", zap.String("type", cm.Type), zap.Error(err))
			writeJSON(w, statusFor(err), types.ErrorMessage(err))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrPreconditionNotMet):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidPayload), errors.Is(err, engine.ErrUnsupportedAction):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
