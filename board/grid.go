package board

import "fmt"

// GridBoard is the array-of-cells representation. It behaves exactly like
// BitBoard; masks are built on demand with GuardedLayout, so it never shows
// the row wrap.
type GridBoard struct {
	cells  [Height][Width]Player
	toMove Player
	pieces int
}

func NewGridBoard() *GridBoard {
	return &GridBoard{toMove: Player1}
}

func (g *GridBoard) Drop(col int) error {
	if col < 0 || col >= Width {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	for row := 0; row < Height; row++ {
		if g.cells[row][col] == NoPlayer {
			g.cells[row][col] = g.toMove
			g.toMove = g.toMove.Opponent()
			g.pieces++
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrColumnFull, col)
}

func (g *GridBoard) Undo(col int) error {
	if col < 0 || col >= Width {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	for row := Height - 1; row >= 0; row-- {
		if p := g.cells[row][col]; p != NoPlayer {
			g.cells[row][col] = NoPlayer
			g.toMove = p
			g.pieces--
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrEmptyColumn, col)
}

func (g *GridBoard) IsValidMove(col int) bool {
	return col >= 0 && col < Width && g.cells[Height-1][col] == NoPlayer
}

func (g *GridBoard) Occupant(col, row int) Player {
	if col < 0 || col >= Width || row < 0 || row >= Height {
		return NoPlayer
	}
	return g.cells[row][col]
}

func (g *GridBoard) Winner() Player {
	return winner(g.Bits(Player1), g.Bits(Player2), GuardedLayout)
}

func (g *GridBoard) ToMove() Player { return g.toMove }
func (g *GridBoard) NumPieces() int { return g.pieces }
func (g *GridBoard) Layout() Layout { return GuardedLayout }

func (g *GridBoard) Bits(p Player) uint64 {
	if p != Player1 && p != Player2 {
		return 0
	}
	var m uint64
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			if g.cells[row][col] == p {
				m |= GuardedLayout.Mask(col, row)
			}
		}
	}
	return m
}

func (g *GridBoard) String() string {
	return ToDisplayText(g)
}
