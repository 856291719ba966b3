package domain

// Board is the position a game is played on.
type Board = Position

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Turn   Mark
	Winner Mark
	Over   bool
	Moves  int
}

// New returns a new game with X to move.
func New() Game {
	return Game{Turn: X}
}

// PlayAt plays the current turn at row r, column c (0..2).
func (g *Game) PlayAt(r, c int) error {
	if g.Over {
		return ErrGameOver
	}
	idx, err := Index(r, c)
	if err != nil {
		return err
	}
	return g.Play(idx)
}

// Play places the current turn's mark on cell idx.
func (g *Game) Play(idx int) error {
	if g.Over {
		return ErrGameOver
	}
	if err := g.Board.Place(idx, g.Turn); err != nil {
		return err
	}
	g.Moves++

	switch out := TerminalState(g.Board); out {
	case XWins, OWins:
		g.Winner = out.Winner()
		g.Over = true
		return nil
	case Draw:
		g.Winner = Empty
		g.Over = true
		return nil
	}

	g.Turn = g.Turn.Opponent()
	return nil
}

// Outcome derives the result from the board.
func (g Game) Outcome() Outcome {
	return TerminalState(g.Board)
}
