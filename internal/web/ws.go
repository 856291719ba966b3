package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// stream pushes board fragments over a websocket, the same payloads the SSE
// endpoint emits. The current board is sent first.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	// subscribe before the snapshot so no move falls between the two
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debugw("websocket upgrade failed", "game", id, "error", err)
		return
	}
	defer conn.Close()

	// reader detects the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeWS(conn, websocket.TextMessage, h.renderBoard(*gs, "")); err != nil {
		return
	}
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			if err := writeWS(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		case b, ok := <-ch:
			if !ok {
				_ = writeWS(conn, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := writeWS(conn, websocket.TextMessage, b); err != nil {
				h.log.Debugw("websocket write failed", "game", id, "error", err)
				return
			}
		}
	}
}

func writeWS(conn *websocket.Conn, kind int, payload []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(kind, payload)
}
