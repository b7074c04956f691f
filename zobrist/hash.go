package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/fourplay/board"
)

const bignum = 1<<63 - 2

// generate a zobrist hash for a four-in-a-row position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	player2ToMove uint64

	// posTable[col + row*Width][player-1]
	posTable [board.NumCells][2]uint64
}

// Initialize draws fresh random keys.
func (z *Zobrist) Initialize() {
	for i := range z.posTable {
		for j := range z.posTable[i] {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.player2ToMove = frand.Uint64n(bignum) + 1
}

func (z *Zobrist) cellKey(col, row int, p board.Player) uint64 {
	return z.posTable[col+row*board.Width][p-1]
}

// Hash computes the key of p from scratch.
func (z *Zobrist) Hash(p board.Position) uint64 {
	key := uint64(0)
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			if occ := p.Occupant(col, row); occ != board.NoPlayer {
				key ^= z.cellKey(col, row, occ)
			}
		}
	}
	if p.ToMove() == board.Player2 {
		key ^= z.player2ToMove
	}
	return key
}
