// Package render draws positions and search results for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tictactoe-solver/internal/domain"
	"github.com/jaminalder/tictactoe-solver/internal/engine"
)

const (
	colorX    = "#E88388"
	colorO    = "#66C2CD"
	colorGood = "#A8CC8C"
	colorBad  = "#E88388"
)

type Terminal struct {
	out *termenv.Output
}

// NewTerminal detects the colour profile of w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{out: termenv.NewOutput(w)}
}

// NewPlain renders without escape sequences.
func NewPlain(w io.Writer) *Terminal {
	return &Terminal{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
}

func (t *Terminal) mark(m domain.Mark, idx int, bold bool) string {
	switch m {
	case domain.X:
		s := t.out.String("X").Foreground(t.out.Color(colorX))
		if bold {
			s = s.Bold().Underline()
		}
		return s.String()
	case domain.O:
		s := t.out.String("O").Foreground(t.out.Color(colorO))
		if bold {
			s = s.Bold().Underline()
		}
		return s.String()
	}
	return t.out.String(fmt.Sprint(idx)).Faint().String()
}

// Position prints a 3x3 grid; empty cells show their index and the winning
// line, if any, is emphasised.
func (t *Terminal) Position(pos domain.Position) {
	var win [domain.Size]bool
	if ln, ok := domain.WinningLine(pos); ok {
		for _, i := range ln {
			win[i] = true
		}
	}
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			cells[c] = " " + t.mark(pos[i], i, win[i]) + " "
		}
		fmt.Fprintln(t.out, strings.Join(cells, "|"))
		if r < 2 {
			fmt.Fprintln(t.out, "---+---+---")
		}
	}
}

// Outcome prints the terminal classification of pos.
func (t *Terminal) Outcome(out domain.Outcome) {
	switch out {
	case domain.XWins, domain.OWins:
		fmt.Fprintf(t.out, "%s wins\n", t.out.String(out.Winner().String()).Bold())
	case domain.Draw:
		fmt.Fprintln(t.out, "draw")
	default:
		fmt.Fprintln(t.out, "in progress")
	}
}

// Value prints the game-theoretic value of a position for side.
func (t *Terminal) Value(side domain.Mark, v int) {
	fmt.Fprintf(t.out, "value for %v: %s\n", side, t.score(v))
}

// Analysis prints every scored move for side and marks the chosen one.
func (t *Terminal) Analysis(side domain.Mark, moves []engine.MoveScore, best engine.Result) {
	fmt.Fprintf(t.out, "%v to move, value %s (%d nodes)\n", side, t.score(best.Score), best.Nodes)
	for _, ms := range moves {
		prefix := "  "
		if ms.Move == best.Move {
			prefix = t.out.String("* ").Bold().String()
		}
		fmt.Fprintf(t.out, "%scell %d: %s\n", prefix, ms.Move, t.score(ms.Score))
	}
}

func (t *Terminal) score(s int) string {
	switch {
	case s > 0:
		return t.out.String("win").Foreground(t.out.Color(colorGood)).String()
	case s < 0:
		return t.out.String("loss").Foreground(t.out.Color(colorBad)).String()
	default:
		return "draw"
	}
}
