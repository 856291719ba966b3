package engine

import (
	"testing"

	"github.com/jaminalder/tictactoe-solver/internal/domain"
)

func mustParse(t *testing.T, s string) domain.Position {
	t.Helper()
	p, err := domain.ParsePosition(s)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", s, err)
	}
	return p
}

// minimax is the unpruned reference search.
func minimax(pos domain.Position, toMove, maximizer domain.Mark) int {
	if out := domain.TerminalState(pos); out.Terminal() {
		switch out.Winner() {
		case maximizer:
			return Win
		case domain.Empty:
			return Tie
		default:
			return Loss
		}
	}
	best := maxScore
	if toMove == maximizer {
		best = minScore
	}
	for _, idx := range domain.LegalMoves(pos) {
		next := pos
		next[idx] = toMove
		score := minimax(next, toMove.Opponent(), maximizer)
		if toMove == maximizer {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}

// reachable walks every position reachable from the empty board with X first.
func reachable(visit func(domain.Position, domain.Mark)) {
	seen := make(map[domain.Position]bool)
	var walk func(domain.Position, domain.Mark)
	walk = func(p domain.Position, side domain.Mark) {
		if seen[p] {
			return
		}
		seen[p] = true
		visit(p, side)
		if domain.TerminalState(p).Terminal() {
			return
		}
		for _, idx := range domain.LegalMoves(p) {
			next := p
			next[idx] = side
			walk(next, side.Opponent())
		}
	}
	walk(domain.Position{}, domain.X)
}

func TestEmptyBoardIsADrawAndPicksCornerZero(t *testing.T) {
	res := BestMove(domain.Position{}, domain.X)
	if res.Move != 0 || res.Score != Tie {
		t.Fatalf("expected (0, 0), got (%d, %d)", res.Move, res.Score)
	}
	if res.Nodes == 0 {
		t.Fatalf("expected node count to be reported")
	}
}

func TestTakesImmediateWin(t *testing.T) {
	res := BestMove(mustParse(t, "XX.OO...."), domain.X)
	if res.Move != 2 || res.Score != Win {
		t.Fatalf("expected (2, +1), got (%d, %d)", res.Move, res.Score)
	}
}

func TestBlocksWhenOpponentThreatens(t *testing.T) {
	// O to move must block row 0 at 2 or lose.
	res := BestMove(mustParse(t, "XX..O...."), domain.O)
	if res.Move != 2 {
		t.Fatalf("expected block at 2, got %d (score %d)", res.Move, res.Score)
	}
	if res.Score != Tie {
		t.Fatalf("expected draw after block, got %d", res.Score)
	}
}

func TestForcedLossScoresMinusOneForEveryMove(t *testing.T) {
	// X threatens 2 and 6 at once; O cannot cover both.
	pos := mustParse(t, "XX.XO...O")
	res := BestMove(pos, domain.O)
	if res.Score != Loss {
		t.Fatalf("expected forced loss, got score %d", res.Score)
	}
	if res.Move != 2 {
		t.Fatalf("expected lowest-index move 2, got %d", res.Move)
	}
	for _, idx := range domain.LegalMoves(pos) {
		next := pos
		next[idx] = domain.O
		if got := minimax(next, domain.X, domain.O); got > res.Score {
			t.Fatalf("move %d scores %d, better than chosen %d", idx, got, res.Score)
		}
	}
	for _, ms := range Analyze(pos, domain.O) {
		if ms.Score != Loss {
			t.Fatalf("move %d: expected -1, got %d", ms.Move, ms.Score)
		}
	}
}

func TestScoresAreNotDiscountedByDepth(t *testing.T) {
	// X wins at once on 8, but 3 also forces a win and has the lower index.
	pos := mustParse(t, "XOO.X....")
	res := BestMove(pos, domain.X)
	if res.Move != 3 || res.Score != Win {
		t.Fatalf("expected (3, +1), got (%d, %d)", res.Move, res.Score)
	}
	scores := Analyze(pos, domain.X)
	var atEight int
	for _, ms := range scores {
		if ms.Move == 8 {
			atEight = ms.Score
		}
	}
	if atEight != Win {
		t.Fatalf("immediate win at 8 should also score +1, got %d", atEight)
	}
}

func TestTerminalAndFullBoardsReturnNoMove(t *testing.T) {
	for _, b := range []string{"XOXXOOOXX", "XXX.O..O.", "XXXOOXOXO"} {
		res := BestMove(mustParse(t, b), domain.O)
		if res.HasMove() || res.Score != Tie {
			t.Fatalf("%s: expected (none, 0), got (%d, %d)", b, res.Move, res.Score)
		}
		if Analyze(mustParse(t, b), domain.O) != nil {
			t.Fatalf("%s: expected no analysis", b)
		}
	}
}

func TestBestMoveLeavesCallerPositionUntouched(t *testing.T) {
	pos := mustParse(t, "X...O....")
	before := pos
	BestMove(pos, domain.X)
	Analyze(pos, domain.X)
	Value(pos, domain.X)
	if pos != before {
		t.Fatalf("position mutated: %v", pos)
	}
}

func TestPrunedSearchMatchesReferenceOnEveryReachablePosition(t *testing.T) {
	positions := 0
	reachable(func(p domain.Position, side domain.Mark) {
		positions++
		out := domain.TerminalState(p)
		if out.Terminal() {
			return
		}
		for _, maximizer := range []domain.Mark{side, side.Opponent()} {
			s := &searcher{maximizer: maximizer}
			work := p
			got := s.evaluate(&work, side, minScore, maxScore)
			want := minimax(p, side, maximizer)
			if got != want {
				t.Fatalf("%v side=%v max=%v: pruned %d, reference %d", p, side, maximizer, got, want)
			}
			if work != p {
				t.Fatalf("%v: evaluate did not restore the position", p)
			}
		}

		res := BestMove(p, side)
		if !res.HasMove() {
			t.Fatalf("%v: no move for non-terminal position", p)
		}
		if res.Score != minimax(p, side, side) {
			t.Fatalf("%v: best move score %d differs from reference", p, res.Score)
		}
		// chosen move is the first one reaching the best score
		for _, ms := range Analyze(p, side) {
			if ms.Score > res.Score {
				t.Fatalf("%v: move %d scores %d > %d", p, ms.Move, ms.Score, res.Score)
			}
			if ms.Score == res.Score {
				if ms.Move != res.Move {
					t.Fatalf("%v: expected first best move %d, got %d", p, ms.Move, res.Move)
				}
				break
			}
		}
	})
	if positions != 5478 {
		t.Fatalf("expected 5478 reachable positions, got %d", positions)
	}
}

func TestTerminalPositionsHaveASingleWinner(t *testing.T) {
	reachable(func(p domain.Position, _ domain.Mark) {
		out := domain.TerminalState(p)
		if !out.Terminal() {
			return
		}
		winners := make(map[domain.Mark]int)
		for _, ln := range domain.Lines {
			if p[ln[0]] != domain.Empty && p[ln[0]] == p[ln[1]] && p[ln[1]] == p[ln[2]] {
				winners[p[ln[0]]]++
			}
		}
		switch out {
		case domain.Draw:
			if len(winners) != 0 || !p.Full() {
				t.Fatalf("%v: draw with lines %v", p, winners)
			}
		default:
			if len(winners) != 1 || winners[out.Winner()] == 0 {
				t.Fatalf("%v: %v with lines %v", p, out, winners)
			}
		}
	})
}

func TestPerfectSelfPlayDraws(t *testing.T) {
	var p domain.Position
	side := domain.X
	for !domain.TerminalState(p).Terminal() {
		res := BestMove(p, side)
		if err := p.Place(res.Move, side); err != nil {
			t.Fatalf("engine chose illegal move %d on %v: %v", res.Move, p, err)
		}
		side = side.Opponent()
	}
	if out := domain.TerminalState(p); out != domain.Draw {
		t.Fatalf("expected draw, got %v on %v", out, p)
	}
}

func TestValueOfTerminalPosition(t *testing.T) {
	p := mustParse(t, "XXX.O..O.")
	if v := Value(p, domain.X); v != Win {
		t.Fatalf("expected +1 for X, got %d", v)
	}
	if v := Value(p, domain.O); v != Loss {
		t.Fatalf("expected -1 for O, got %d", v)
	}
}
