package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jaminalder/tictactoe-solver/internal/domain"
	"github.com/jaminalder/tictactoe-solver/internal/engine"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotAPlayer  = errors.New("not a player")
	ErrBadMode     = errors.New("unknown game mode")
)

// Mode selects who sits in the O seat.
type Mode string

const (
	ModePvP  Mode = "pvp"
	ModeVsAI Mode = "ai"
)

// ParseMode accepts "pvp" or "ai".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePvP, ModeVsAI:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadMode, s)
}

// AISide is the mark the engine plays in ModeVsAI.
const AISide = domain.O

// Tally counts finished games of one session.
type Tally struct {
	XWins int
	OWins int
	Draws int
}

func (t *Tally) record(g domain.Game) {
	switch {
	case !g.Over:
	case g.Winner == domain.X:
		t.XWins++
	case g.Winner == domain.O:
		t.OWins++
	default:
		t.Draws++
	}
}

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Mode    Mode
	Game    domain.Game
	X       string
	O       string
	Tally   Tally
	Created time.Time
	Updated time.Time
}

// AIPlays reports whether the engine holds the O seat.
func (gs GameState) AIPlays() bool { return gs.Mode == ModeVsAI }

type subscriber struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// send delivers without blocking; it reports false when the buffer is full.
func (s *subscriber) send(b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- b:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service manages games and subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	search func(domain.Position, domain.Mark) engine.Result
	log    *zap.SugaredLogger
}

// NewService creates a service with a renderer that broadcasts nothing useful.
func NewService(log *zap.SugaredLogger) *Service {
	return NewServiceWithRenderer(log, nil)
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(log *zap.SugaredLogger, renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = func(gs GameState) []byte { return nil }
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
		search: engine.BestMove,
		log:    log,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame(mode Mode) (*GameState, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	gs := &GameState{ID: newGameID(), Mode: mode, Game: domain.New(), Created: now, Updated: now}
	if mode == ModeVsAI {
		gs.O = aiSeat
	}
	s.games[gs.ID] = gs
	s.log.Infow("game created", "game", gs.ID, "mode", mode)
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Mark, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	switch {
	case playerID == "" || playerID == aiSeat:
	case gs.X == "" || gs.X == playerID:
		gs.X = playerID
		side = domain.X
	case gs.O == "" || gs.O == playerID:
		gs.O = playerID
		side = domain.O
	}
	gs.Updated = time.Now()
	cp := *gs
	return side, &cp, nil
}

// Play validates seat and turn, applies a move, lets the engine answer in
// ModeVsAI, and broadcasts the new state.
func (s *Service) Play(id, playerID string, idx int) (*GameState, error) {
	return s.play(id, playerID, func(g *domain.Game) error { return g.Play(idx) })
}

// PlayAt is Play addressed by row and column.
func (s *Service) PlayAt(id, playerID string, r, c int) (*GameState, error) {
	return s.play(id, playerID, func(g *domain.Game) error { return g.PlayAt(r, c) })
}

func (s *Service) play(id, playerID string, move func(*domain.Game) error) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	var seat domain.Mark
	switch {
	case playerID == "" || playerID == aiSeat:
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	case gs.X == playerID:
		seat = domain.X
	case gs.O == playerID:
		seat = domain.O
	default:
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if gs.Game.Over {
		s.mu.Unlock()
		return nil, domain.ErrGameOver
	}
	if seat != gs.Game.Turn {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := move(&gs.Game); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if gs.Mode == ModeVsAI && !gs.Game.Over && gs.Game.Turn == AISide {
		if !s.answer(gs) {
			// the round was reset while the engine was thinking
			cp := *gs
			s.mu.Unlock()
			return &cp, nil
		}
	}
	gs.Tally.record(gs.Game)
	gs.Updated = time.Now()
	if gs.Game.Over {
		s.log.Infow("game finished", "game", id, "outcome", gs.Game.Outcome().String(), "moves", gs.Game.Moves)
	}
	cp := s.publishLocked(id, gs)
	return &cp, nil
}

// answer lets the engine play for AISide. It is called with s.mu held and
// releases it for the search; it reports false if the board changed meanwhile,
// in which case nothing is played.
func (s *Service) answer(gs *GameState) bool {
	board := gs.Game.Board
	s.mu.Unlock()
	res := s.search(board, AISide)
	s.mu.Lock()

	if gs.Game.Board != board || gs.Game.Over || gs.Game.Turn != AISide {
		s.log.Debugw("engine move discarded", "game", gs.ID, "move", res.Move)
		return false
	}
	if !res.HasMove() {
		return true
	}
	if err := gs.Game.Play(res.Move); err != nil {
		s.log.Errorw("engine move rejected", "game", gs.ID, "move", res.Move, "error", err)
		return true
	}
	s.log.Debugw("engine moved", "game", gs.ID, "move", res.Move, "score", res.Score, "nodes", res.Nodes)
	return true
}

// Restart starts a new round on the same seats and keeps the tally.
func (s *Service) Restart(id string) (*GameState, error) {
	return s.reset(id, false, "")
}

// Reset starts a new round and clears the tally.
func (s *Service) Reset(id string) (*GameState, error) {
	return s.reset(id, true, "")
}

// SetMode switches between PvP and playing the engine; it implies Reset.
func (s *Service) SetMode(id string, mode Mode) (*GameState, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	return s.reset(id, true, mode)
}

func (s *Service) reset(id string, clearTally bool, mode Mode) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	gs.Game = domain.New()
	if clearTally {
		gs.Tally = Tally{}
	}
	if mode != "" && mode != gs.Mode {
		gs.Mode = mode
		switch {
		case mode == ModeVsAI:
			gs.O = aiSeat
		case gs.O == aiSeat:
			gs.O = ""
		}
	}
	gs.Updated = time.Now()
	s.log.Debugw("game reset", "game", id, "mode", gs.Mode, "tally_cleared", clearTally)
	cp := s.publishLocked(id, gs)
	return &cp, nil
}

// Hint scores every legal move for the side to move.
func (s *Service) Hint(id string) (domain.Mark, []engine.MoveScore, error) {
	gs, ok := s.Get(id)
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	if gs.Game.Over {
		return domain.Empty, nil, domain.ErrGameOver
	}
	return gs.Game.Turn, engine.Analyze(gs.Game.Board, gs.Game.Turn), nil
}

// publishLocked snapshots gs, unlocks s.mu and fans the payload out.
// Slow subscribers are closed and dropped.
func (s *Service) publishLocked(id string, gs *GameState) GameState {
	cp := *gs
	subs := s.copySubsLocked(id)
	payload := s.render(cp)
	s.mu.Unlock()

	var toDrop []*subscriber
	for sub := range subs {
		if !sub.send(payload) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
		s.log.Debugw("dropped slow subscribers", "game", id, "count", len(toDrop))
	}
	return cp
}

// Subscribe registers a subscriber for an existing game. Returns a channel and
// an unsubscribe func, or ErrNotFound.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
