// Package board holds the 7x6 four-in-a-row grid: a bit-packed
// representation, an array-of-cells variant, and the four-in-a-row test.
package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Width is the number of columns.
	Width = 7
	// Height is the number of rows.
	Height = 6
	// NumCells is the number of playable cells.
	NumCells = Width * Height
	// CenterColumn is the middle column, favoured by both evaluators.
	CenterColumn = Width / 2
)

var (
	ErrInvalidColumn = errors.New("invalid column")
	ErrColumnFull    = errors.New("column is full")
	ErrEmptyColumn   = errors.New("column is empty")
)

// Player identifies the owner of a cell.
type Player uint8

const (
	NoPlayer Player = iota
	Player1
	Player2
)

// Opponent returns the other player. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return NoPlayer
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player 1"
	case Player2:
		return "player 2"
	}
	return "nobody"
}

// Symbol is the glyph used when the grid is printed.
func (p Player) Symbol() byte {
	switch p {
	case Player1:
		return 'X'
	case Player2:
		return 'O'
	}
	return '.'
}

// Position is the capability set the search needs from a board. Drop and
// Undo must be called in strict LIFO pairs by anything simulating moves.
type Position interface {
	Drop(col int) error
	Undo(col int) error
	IsValidMove(col int) bool
	Occupant(col, row int) Player
	Winner() Player
	ToMove() Player
	NumPieces() int
	// Bits returns the player's cells packed with Layout().
	Bits(p Player) uint64
	Layout() Layout
}

// Full reports whether no column can take another piece.
func Full(p Position) bool {
	return p.NumPieces() == NumCells
}

// ValidMoves lists the playable columns in index order.
func ValidMoves(p Position) []int {
	moves := make([]int, 0, Width)
	for col := 0; col < Width; col++ {
		if p.IsValidMove(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

// FromMoves replays a string of column digits, e.g. "3344", onto p.
// Whitespace is ignored.
func FromMoves(p Position, moves string) error {
	for i, r := range moves {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: %q at offset %d", ErrInvalidColumn, r, i)
		}
		if err := p.Drop(int(r - '0')); err != nil {
			return fmt.Errorf("move %d: %w", i, err)
		}
	}
	return nil
}

// ToDisplayText renders the grid top row first, followed by a ruler.
func ToDisplayText(p Position) string {
	var sb strings.Builder
	for row := Height - 1; row >= 0; row-- {
		sb.WriteString("| ")
		for col := 0; col < Width; col++ {
			sb.WriteByte(p.Occupant(col, row).Symbol())
			sb.WriteByte(' ')
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("+")
	sb.WriteString(strings.Repeat("-", 2*Width+1))
	sb.WriteString("+\n  ")
	for col := 0; col < Width; col++ {
		fmt.Fprintf(&sb, "%d ", col)
	}
	sb.WriteString("\n")
	return sb.String()
}
