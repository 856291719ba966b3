package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Mark is the content of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// ParseMark reads "X" or "O" (case-insensitive).
func ParseMark(s string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	}
	return Empty, fmt.Errorf("invalid mark %q", s)
}

// Size is the number of cells on the board.
const Size = 9

// Position is a 3x3 board stored row-major.
type Position [Size]Mark

// Line is a row, column or diagonal.
type Line [3]int

// Lines lists every winning line: rows, columns, diagonals.
var Lines = [8]Line{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Outcome classifies a position.
type Outcome uint8

const (
	Ongoing Outcome = iota
	XWins
	OWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case XWins:
		return "x_wins"
	case OWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Terminal reports whether the game has concluded.
func (o Outcome) Terminal() bool { return o != Ongoing }

// Winner returns the winning mark, or Empty for draws and running games.
func (o Outcome) Winner() Mark {
	switch o {
	case XWins:
		return X
	case OWins:
		return O
	default:
		return Empty
	}
}

// Errors returned by domain operations. ErrOutOfBounds and ErrOccupied
// both match ErrInvalidMove with errors.Is.
var (
	ErrInvalidMove = errors.New("invalid move")
	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrInvalidMove)
	ErrOccupied    = fmt.Errorf("%w: cell occupied", ErrInvalidMove)
	ErrGameOver    = errors.New("game over")
)

// Index converts row r and column c (0..2) to a cell index.
func Index(r, c int) (int, error) {
	if r < 0 || r > 2 || c < 0 || c > 2 {
		return 0, ErrOutOfBounds
	}
	return r*3 + c, nil
}

// Place puts mark on an empty cell.
func (p *Position) Place(idx int, mark Mark) error {
	if idx < 0 || idx >= Size {
		return ErrOutOfBounds
	}
	if mark != X && mark != O {
		return fmt.Errorf("%w: cannot place %v", ErrInvalidMove, mark)
	}
	if p[idx] != Empty {
		return ErrOccupied
	}
	p[idx] = mark
	return nil
}

// Remove clears a cell. It only undoes a Place made by the same caller.
func (p *Position) Remove(idx int) {
	if idx < 0 || idx >= Size {
		return
	}
	p[idx] = Empty
}

// Count returns how many cells hold mark.
func (p Position) Count(mark Mark) int {
	n := 0
	for _, c := range p {
		if c == mark {
			n++
		}
	}
	return n
}

// Full reports whether no empty cell remains.
func (p Position) Full() bool { return p.Count(Empty) == 0 }

// SideToMove infers whose turn it is from the mark counts; X moves first.
func (p Position) SideToMove() Mark {
	if p.Count(X) > p.Count(O) {
		return O
	}
	return X
}

// WinningLine returns the first satisfied line in Lines order.
func WinningLine(p Position) (Line, bool) {
	for _, ln := range Lines {
		if p[ln[0]] != Empty && p[ln[0]] == p[ln[1]] && p[ln[1]] == p[ln[2]] {
			return ln, true
		}
	}
	return Line{}, false
}

// TerminalState checks wins before draws.
func TerminalState(p Position) Outcome {
	if ln, ok := WinningLine(p); ok {
		if p[ln[0]] == X {
			return XWins
		}
		return OWins
	}
	if p.Full() {
		return Draw
	}
	return Ongoing
}

// LegalMoves returns the empty cells in ascending order.
func LegalMoves(p Position) []int {
	moves := make([]int, 0, Size)
	for i, c := range p {
		if c == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// ParsePosition reads nine cells: X, O, and one of ".-_ " for empty.
func ParsePosition(s string) (Position, error) {
	var p Position
	cells := []rune(s)
	if len(cells) != Size {
		return p, fmt.Errorf("board must have %d cells, got %d", Size, len(cells))
	}
	for i, r := range cells {
		switch r {
		case 'X', 'x':
			p[i] = X
		case 'O', 'o':
			p[i] = O
		case '.', '-', '_', ' ':
			p[i] = Empty
		default:
			return Position{}, fmt.Errorf("invalid cell %q at %d", r, i)
		}
	}
	return p, nil
}

func (p Position) String() string {
	var b strings.Builder
	b.Grow(Size)
	for _, c := range p {
		b.WriteString(c.String())
	}
	return b.String()
}
