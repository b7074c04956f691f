package board

import "fmt"

// BitBoard keeps one mask per player. A cell is set in at most one of them.
// Column heights are not stored; Drop and Undo scan the column.
type BitBoard struct {
	bits   [3]uint64 // indexed by Player; bits[NoPlayer] stays 0
	toMove Player
	pieces int
	layout Layout
}

// NewBitBoard returns an empty board with Player1 to move.
func NewBitBoard(l Layout) *BitBoard {
	return &BitBoard{toMove: Player1, layout: l}
}

func (b *BitBoard) occupied() uint64 {
	return b.bits[Player1] | b.bits[Player2]
}

// Drop puts a piece for the side to move on the lowest empty cell of col.
func (b *BitBoard) Drop(col int) error {
	if col < 0 || col >= Width {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	occ := b.occupied()
	mask := b.layout.Mask(col, 0)
	for row := 0; row < Height; row++ {
		if occ&mask == 0 {
			b.bits[b.toMove] |= mask
			b.toMove = b.toMove.Opponent()
			b.pieces++
			return nil
		}
		mask <<= uint(b.layout.Stride)
	}
	return fmt.Errorf("%w: %d", ErrColumnFull, col)
}

// Undo clears the highest piece in col and gives the turn back to its
// owner. It is only an inverse of Drop when calls mirror the drops in
// reverse order.
func (b *BitBoard) Undo(col int) error {
	if col < 0 || col >= Width {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	mask := b.layout.Mask(col, Height-1)
	for row := Height - 1; row >= 0; row-- {
		for _, p := range [2]Player{Player1, Player2} {
			if b.bits[p]&mask != 0 {
				b.bits[p] ^= mask
				b.toMove = p
				b.pieces--
				return nil
			}
		}
		mask >>= uint(b.layout.Stride)
	}
	return fmt.Errorf("%w: %d", ErrEmptyColumn, col)
}

// IsValidMove is true iff col is on the board and its top cell is empty.
func (b *BitBoard) IsValidMove(col int) bool {
	if col < 0 || col >= Width {
		return false
	}
	return b.occupied()&b.layout.Mask(col, Height-1) == 0
}

func (b *BitBoard) Occupant(col, row int) Player {
	if col < 0 || col >= Width || row < 0 || row >= Height {
		return NoPlayer
	}
	mask := b.layout.Mask(col, row)
	switch {
	case b.bits[Player1]&mask != 0:
		return Player1
	case b.bits[Player2]&mask != 0:
		return Player2
	}
	return NoPlayer
}

// Winner checks Player1 first, then Player2.
func (b *BitBoard) Winner() Player {
	return winner(b.bits[Player1], b.bits[Player2], b.layout)
}

func (b *BitBoard) ToMove() Player { return b.toMove }
func (b *BitBoard) NumPieces() int { return b.pieces }
func (b *BitBoard) Layout() Layout { return b.layout }
func (b *BitBoard) Bits(p Player) uint64 {
	if p != Player1 && p != Player2 {
		return 0
	}
	return b.bits[p]
}

func (b *BitBoard) String() string {
	return ToDisplayText(b)
}
