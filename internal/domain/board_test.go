package domain

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, s string) Position {
	t.Helper()
	p, err := ParsePosition(s)
	if err != nil {
		t.Fatalf("ParsePosition(%q): %v", s, err)
	}
	return p
}

func TestTerminalState(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Outcome
	}{
		{"empty", ".........", Ongoing},
		{"row 0 X wins", "XXX.O..O.", XWins},
		{"col 1 O wins", "XO..OX.O.", OWins},
		{"diag X wins", "XO..XO..X", XWins},
		{"anti diag O wins", "XXO.O.OX.", OWins},
		{"draw", "XOXXOOOXX", Draw},
		{"in progress", "XOX.O.OX.", Ongoing},
		{"win on full board beats draw", "XXXOOXOXO", XWins},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.board)
			if got := TerminalState(p); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			// idempotent on an unmutated position
			if again := TerminalState(p); again != tt.want {
				t.Fatalf("second call returned %v", again)
			}
		})
	}
}

func TestWinningLine(t *testing.T) {
	p := mustParse(t, "O.X.X.O.X")
	if _, ok := WinningLine(p); ok {
		t.Fatalf("expected no winning line")
	}
	p = mustParse(t, "O.XOX.OX.")
	ln, ok := WinningLine(p)
	if !ok || ln != (Line{0, 3, 6}) {
		t.Fatalf("expected column 0, got %v ok=%v", ln, ok)
	}
}

func TestPlaceRejectsInvalidMoves(t *testing.T) {
	var p Position
	for _, idx := range []int{-1, 9, 100} {
		if err := p.Place(idx, X); err != ErrOutOfBounds {
			t.Fatalf("expected ErrOutOfBounds for %d, got %v", idx, err)
		}
	}
	if err := p.Place(4, X); err != nil {
		t.Fatalf("place failed: %v", err)
	}
	err := p.Place(4, O)
	if err != ErrOccupied || !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrOccupied wrapping ErrInvalidMove, got %v", err)
	}
	if err := p.Place(0, Empty); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("placing Empty should be invalid, got %v", err)
	}
	if p[4] != X {
		t.Fatalf("occupied cell changed: %v", p[4])
	}
}

func TestPlaceRemoveRoundTrip(t *testing.T) {
	start := mustParse(t, "X.O.X.O..")
	for _, idx := range LegalMoves(start) {
		for _, m := range []Mark{X, O} {
			p := start
			if err := p.Place(idx, m); err != nil {
				t.Fatalf("place %d: %v", idx, err)
			}
			if p == start {
				t.Fatalf("place %d did not change the position", idx)
			}
			p.Remove(idx)
			if p != start {
				t.Fatalf("round trip at %d: got %v want %v", idx, p, start)
			}
		}
	}
}

func TestLegalMovesAscending(t *testing.T) {
	p := mustParse(t, "X.O.X.O..")
	got := LegalMoves(p)
	want := []int{1, 3, 5, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if n := len(LegalMoves(mustParse(t, "XOXXOOOXX"))); n != 0 {
		t.Fatalf("full board has %d legal moves", n)
	}
}

func TestParsePosition(t *testing.T) {
	p := mustParse(t, "x-o_ .XOo")
	if p.String() != "X.O...XOO" {
		t.Fatalf("unexpected round trip: %q", p.String())
	}
	for _, bad := range []string{"", "XXXX", "XXXXXXXXXX", "XXXXoooo?"} {
		if _, err := ParsePosition(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSideToMove(t *testing.T) {
	if s := mustParse(t, ".........").SideToMove(); s != X {
		t.Fatalf("X moves first, got %v", s)
	}
	if s := mustParse(t, "X........").SideToMove(); s != O {
		t.Fatalf("expected O, got %v", s)
	}
	if s := mustParse(t, "XO.......").SideToMove(); s != X {
		t.Fatalf("expected X, got %v", s)
	}
}

func TestMarkHelpers(t *testing.T) {
	if X.Opponent() != O || O.Opponent() != X || Empty.Opponent() != Empty {
		t.Fatalf("unexpected opponents")
	}
	if m, err := ParseMark(" o "); err != nil || m != O {
		t.Fatalf("ParseMark: %v %v", m, err)
	}
	if _, err := ParseMark("Z"); err == nil {
		t.Fatalf("expected error for Z")
	}
	if XWins.Winner() != X || OWins.Winner() != O || Draw.Winner() != Empty {
		t.Fatalf("unexpected winners")
	}
	if Ongoing.Terminal() || !Draw.Terminal() {
		t.Fatalf("unexpected terminal flags")
	}
}

func TestIndex(t *testing.T) {
	if idx, err := Index(2, 1); err != nil || idx != 7 {
		t.Fatalf("Index(2,1) = %d, %v", idx, err)
	}
	if _, err := Index(3, 0); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}
