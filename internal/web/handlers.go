package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jaminalder/tictactoe-solver/internal/app"
	"github.com/jaminalder/tictactoe-solver/internal/domain"
)

type handlers struct {
	svc         *app.Service
	tpl         *templates
	log         *zap.SugaredLogger
	heartbeat   time.Duration
	defaultMode app.Mode
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardData(gs, errMsg))
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.index, "base", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mode := h.defaultMode
	if m := r.Form.Get("mode"); m != "" {
		parsed, err := app.ParseMode(m)
		if err != nil {
			http.Error(w, "unknown mode", http.StatusBadRequest)
			return
		}
		mode = parsed
	}
	gs, err := h.svc.CreateGame(mode)
	if err != nil {
		h.log.Errorw("create game failed", "error", err)
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ensure cookie and auto-claim seat
	pid := ensurePlayerCookie(w, r)
	_, _, _ = h.svc.Join(id, pid)

	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.game, "base", newBoardData(*gs, "")))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil || gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, ""))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()

	gs, err := h.playForm(id, pid, r)
	var errMsg string
	if err != nil {
		if g, ok := h.svc.Get(id); ok {
			gs = g
		}
		errMsg = moveErrorMessage(err)
		h.log.Debugw("move rejected", "game", id, "player", pid, "error", err)
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, errMsg))
}

// playForm accepts either a cell index or a row/column pair.
func (h *handlers) playForm(id, pid string, r *http.Request) (*app.GameState, error) {
	if s := r.Form.Get("cell"); s != "" {
		idx, err := strconv.Atoi(s)
		if err != nil {
			return nil, domain.ErrOutOfBounds
		}
		return h.svc.Play(id, pid, idx)
	}
	ri, errR := strconv.Atoi(r.Form.Get("r"))
	ci, errC := strconv.Atoi(r.Form.Get("c"))
	if errR != nil || errC != nil {
		return nil, domain.ErrOutOfBounds
	}
	return h.svc.PlayAt(id, pid, ri, ci)
}

func moveErrorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, app.ErrNotAPlayer):
		return "You are a spectator"
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	default:
		return "Invalid move"
	}
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, r, h.svc.Restart)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, r, h.svc.Reset)
}

func (h *handlers) mode(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	mode, err := app.ParseMode(r.Form.Get("mode"))
	if err != nil {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	h.respondState(w, r, func(id string) (*app.GameState, error) {
		return h.svc.SetMode(id, mode)
	})
}

func (h *handlers) respondState(w http.ResponseWriter, r *http.Request, op func(string) (*app.GameState, error)) {
	gs, err := op(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.log.Errorw("game update failed", "error", err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, ""))
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// non-EventSource requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "event: board\n")
			_, _ = fmt.Fprintf(w, "data: %s\n\n", oneLine(b))
			flusher.Flush()
		}
	}
}

// oneLine strips newlines so a fragment fits in a single SSE data field.
func oneLine(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != '\n' && c != '\r' {
			out = append(out, c)
		}
	}
	return out
}
