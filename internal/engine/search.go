// Package engine implements exhaustive alpha-beta search for Tic-Tac-Toe.
//
// Scores are always from the point of view of the side the top-level call
// was made for: +1 when it wins, -1 when it loses, 0 for a draw. Scores are
// not discounted by depth, so a slow forced win is worth as much as an
// immediate one and the lowest-index move among equals is chosen.
package engine

import (
	"github.com/jaminalder/tictactoe-solver/internal/domain"
)

// NoMove is reported when the position has no move to make.
const NoMove = -1

const (
	Win  = 1
	Loss = -1
	Tie  = 0

	// bounds outside the score range, used as the initial window
	minScore = -2
	maxScore = 2
)

// Result is the outcome of a top-level search.
type Result struct {
	Move  int
	Score int
	Nodes int
}

// HasMove reports whether a move was found.
func (r Result) HasMove() bool { return r.Move != NoMove }

// MoveScore is the exact value of a single legal move.
type MoveScore struct {
	Move  int
	Score int
}

type searcher struct {
	maximizer domain.Mark
	nodes     int
}

// BestMove returns the optimal move for side. Terminal and full positions
// yield (NoMove, 0). The caller's position is never modified.
func BestMove(pos domain.Position, side domain.Mark) Result {
	res := Result{Move: NoMove, Score: Tie}
	if domain.TerminalState(pos).Terminal() {
		return res
	}
	s := &searcher{maximizer: side}
	best := minScore
	for _, idx := range domain.LegalMoves(pos) {
		score := s.child(&pos, idx, side)
		// strict comparison keeps the lowest index among equals
		if score > best {
			best = score
			res.Move = idx
		}
	}
	res.Score = best
	res.Nodes = s.nodes
	return res
}

// Analyze scores every legal move for side, in ascending index order.
func Analyze(pos domain.Position, side domain.Mark) []MoveScore {
	if domain.TerminalState(pos).Terminal() {
		return nil
	}
	s := &searcher{maximizer: side}
	moves := domain.LegalMoves(pos)
	out := make([]MoveScore, 0, len(moves))
	for _, idx := range moves {
		out = append(out, MoveScore{Move: idx, Score: s.child(&pos, idx, side)})
	}
	return out
}

// Value is the game-theoretic value of pos for side, with side to move.
func Value(pos domain.Position, side domain.Mark) int {
	s := &searcher{maximizer: side}
	return s.evaluate(&pos, side, minScore, maxScore)
}

// child plays idx for side, scores the reply with a full window and undoes it.
func (s *searcher) child(pos *domain.Position, idx int, side domain.Mark) int {
	if err := pos.Place(idx, side); err != nil {
		return minScore
	}
	score := s.evaluate(pos, side.Opponent(), minScore, maxScore)
	pos.Remove(idx)
	return score
}

func (s *searcher) terminalScore(out domain.Outcome) int {
	switch w := out.Winner(); {
	case w == s.maximizer:
		return Win
	case w == domain.Empty:
		return Tie
	default:
		return Loss
	}
}

func (s *searcher) evaluate(pos *domain.Position, toMove domain.Mark, alpha, beta int) int {
	s.nodes++
	if out := domain.TerminalState(*pos); out.Terminal() {
		return s.terminalScore(out)
	}

	if toMove == s.maximizer {
		best := minScore
		for idx := 0; idx < domain.Size; idx++ {
			if pos.Place(idx, toMove) != nil {
				continue
			}
			score := s.evaluate(pos, toMove.Opponent(), alpha, beta)
			pos.Remove(idx)

			best = max(best, score)
			alpha = max(alpha, best)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := maxScore
	for idx := 0; idx < domain.Size; idx++ {
		if pos.Place(idx, toMove) != nil {
			continue
		}
		score := s.evaluate(pos, toMove.Opponent(), alpha, beta)
		pos.Remove(idx)

		best = min(best, score)
		beta = min(beta, best)
		if beta <= alpha {
			break
		}
	}
	return best
}
