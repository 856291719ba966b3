package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jaminalder/tictactoe-solver/internal/app"
	"github.com/jaminalder/tictactoe-solver/internal/bootstrap"
)

const defaultHeartbeat = 15 * time.Second

// NewServer wires routes and returns an http.Handler. It also installs the
// board fragment renderer used for SSE and websocket broadcasts.
func NewServer(s *app.Service, cfg bootstrap.Config, log *zap.SugaredLogger) http.Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &handlers{
		svc:         s,
		tpl:         loadTemplates(),
		log:         log,
		heartbeat:   cfg.HeartbeatInterval,
		defaultMode: app.ModePvP,
	}
	if h.heartbeat <= 0 {
		h.heartbeat = defaultHeartbeat
	}
	if m, err := app.ParseMode(cfg.DefaultMode); err == nil {
		h.defaultMode = m
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/join", h.join)
		r.Post("/play", h.play)
		r.Post("/restart", h.restart)
		r.Post("/reset", h.reset)
		r.Post("/mode", h.mode)
		r.Get("/hint", h.hint)
		r.Get("/events", h.events)
		r.Get("/ws", h.stream)
	})
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/best-move", h.bestMove)
		r.Post("/outcome", h.outcome)
	})
	return r
}
