package board

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"
)

func layouts() []Layout {
	return []Layout{LegacyLayout, GuardedLayout}
}

func TestEmptyBoardAllColumnsValid(t *testing.T) {
	is := is.New(t)
	for _, l := range layouts() {
		b := NewBitBoard(l)
		for col := 0; col < Width; col++ {
			is.True(b.IsValidMove(col))
		}
		is.True(!b.IsValidMove(-1))
		is.True(!b.IsValidMove(Width))
		is.Equal(b.ToMove(), Player1)
		is.Equal(b.Winner(), NoPlayer)
	}
}

func TestColumnFillsAfterSixDrops(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(GuardedLayout)
	for i := 0; i < Height; i++ {
		is.True(b.IsValidMove(3))
		is.NoErr(b.Drop(3))
	}
	is.True(!b.IsValidMove(3))
	for _, col := range []int{0, 1, 2, 4, 5, 6} {
		is.True(b.IsValidMove(col))
	}
	err := b.Drop(3)
	is.True(errors.Is(err, ErrColumnFull))
	is.Equal(b.NumPieces(), Height)
}

func TestDropAlternatesPlayers(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(GuardedLayout)
	is.NoErr(b.Drop(0))
	is.NoErr(b.Drop(0))
	is.NoErr(b.Drop(1))
	is.Equal(b.Occupant(0, 0), Player1)
	is.Equal(b.Occupant(0, 1), Player2)
	is.Equal(b.Occupant(1, 0), Player1)
	is.Equal(b.Occupant(1, 1), NoPlayer)
	is.Equal(b.ToMove(), Player2)
	is.Equal(b.Bits(Player1)&b.Bits(Player2), uint64(0))
}

func TestInvalidColumn(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(LegacyLayout)
	for _, col := range []int{-1, Width, 100} {
		is.True(errors.Is(b.Drop(col), ErrInvalidColumn))
		is.True(errors.Is(b.Undo(col), ErrInvalidColumn))
	}
	is.Equal(b.NumPieces(), 0)
}

func TestUndoEmptyColumn(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(GuardedLayout)
	is.True(errors.Is(b.Undo(2), ErrEmptyColumn))
	is.NoErr(b.Drop(2))
	is.NoErr(b.Undo(2))
	is.True(errors.Is(b.Undo(2), ErrEmptyColumn))
}

func TestUndoRestoresTurnToOwner(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(GuardedLayout)
	is.NoErr(FromMoves(b, "334"))
	is.Equal(b.ToMove(), Player2)
	// the top of column 3 belongs to player 2
	is.NoErr(b.Undo(3))
	is.Equal(b.ToMove(), Player2)
	is.Equal(b.Occupant(3, 1), NoPlayer)
	is.Equal(b.Occupant(4, 0), Player1)
}

func TestDropUndoRoundTrip(t *testing.T) {
	is := is.New(t)
	for _, l := range layouts() {
		for trial := 0; trial < 200; trial++ {
			b := NewBitBoard(l)
			n := frand.Intn(30)
			for i := 0; i < n && b.Winner() == NoPlayer; i++ {
				moves := ValidMoves(b)
				is.NoErr(b.Drop(moves[frand.Intn(len(moves))]))
			}
			for _, col := range ValidMoves(b) {
				before := *b
				is.NoErr(b.Drop(col))
				is.NoErr(b.Undo(col))
				is.Equal(*b, before)
			}
		}
	}
}

func TestFromMoves(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(GuardedLayout)
	is.NoErr(FromMoves(b, "33 44"))
	is.Equal(b.NumPieces(), 4)
	err := FromMoves(b, "3x")
	is.True(errors.Is(err, ErrInvalidColumn))
	err = FromMoves(b, "8")
	is.True(errors.Is(err, ErrInvalidColumn))
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	b := NewBitBoard(GuardedLayout)
	is.NoErr(FromMoves(b, "33"))
	expected := "" +
		"| . . . . . . . |\n" +
		"| . . . . . . . |\n" +
		"| . . . . . . . |\n" +
		"| . . . . . . . |\n" +
		"| . . . O . . . |\n" +
		"| . . . X . . . |\n" +
		"+---------------+\n" +
		"  0 1 2 3 4 5 6 \n"
	is.Equal(ToDisplayText(b), expected)
}
