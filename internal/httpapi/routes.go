package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/mindmaze-client/internal/session"
	"github.com/DoyleJ11/mindmaze-client/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(m *session.Manager, log *zap.Logger) http.Handler {
	log = log.Named("bridge")
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/state", State(m))
	r.Get("/progress", Progress(m))
	r.Post("/actions", PostAction(m, log))
	r.Get("/ws", ws.Handler(m, log))
	return r
}
