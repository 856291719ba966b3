package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jaminalder/tictactoe-solver/internal/app"
	"github.com/jaminalder/tictactoe-solver/internal/domain"
	"github.com/jaminalder/tictactoe-solver/internal/engine"
)

type positionRequest struct {
	Board string `json:"board"`
	Side  string `json:"side,omitempty"`
}

type bestMoveResponse struct {
	Board string `json:"board"`
	Side  string `json:"side"`
	Move  *int   `json:"move"`
	Score int    `json:"score"`
	Nodes int    `json:"nodes"`
}

type outcomeResponse struct {
	Board   string `json:"board"`
	Outcome string `json:"outcome"`
	Line    []int  `json:"line,omitempty"`
}

type moveScore struct {
	Move  int `json:"move"`
	Score int `json:"score"`
}

type hintResponse struct {
	Side  string      `json:"side"`
	Best  *int        `json:"best"`
	Moves []moveScore `json:"moves"`
}

func (h *handlers) bestMove(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, err.Error())
		return
	}
	pos, err := domain.ParsePosition(req.Board)
	if err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, err.Error())
		return
	}
	side := pos.SideToMove()
	if req.Side != "" {
		if side, err = domain.ParseMark(req.Side); err != nil {
			writeJSONError(h.log, w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res := engine.BestMove(pos, side)
	resp := bestMoveResponse{Board: pos.String(), Side: side.String(), Score: res.Score, Nodes: res.Nodes}
	if res.HasMove() {
		resp.Move = &res.Move
	}
	h.log.Debugw("best move", "board", resp.Board, "side", resp.Side, "move", res.Move, "score", res.Score, "nodes", res.Nodes)
	writeJSON(h.log, w, http.StatusOK, resp)
}

func (h *handlers) outcome(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, err.Error())
		return
	}
	pos, err := domain.ParsePosition(req.Board)
	if err != nil {
		writeJSONError(h.log, w, http.StatusBadRequest, err.Error())
		return
	}
	resp := outcomeResponse{Board: pos.String(), Outcome: domain.TerminalState(pos).String()}
	if ln, ok := domain.WinningLine(pos); ok {
		resp.Line = ln[:]
	}
	writeJSON(h.log, w, http.StatusOK, resp)
}

func (h *handlers) hint(w http.ResponseWriter, r *http.Request) {
	side, moves, err := h.svc.Hint(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(h.log, w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrGameOver):
		writeJSONError(h.log, w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeJSONError(h.log, w, http.StatusInternalServerError, "hint failed")
		return
	}

	resp := hintResponse{Side: side.String(), Moves: make([]moveScore, 0, len(moves))}
	bestScore := engine.Loss - 1
	for _, ms := range moves {
		resp.Moves = append(resp.Moves, moveScore{Move: ms.Move, Score: ms.Score})
		if ms.Score > bestScore {
			bestScore = ms.Score
			m := ms.Move
			resp.Best = &m
		}
	}
	writeJSON(h.log, w, http.StatusOK, resp)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON: " + err.Error())
	}
	return nil
}

func writeJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("writeJSON encode error: %v", err)
	}
}

func writeJSONError(log *zap.SugaredLogger, w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	log.Debugf("writeJSONError: %s", msg)
}
