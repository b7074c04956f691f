package board

// Layout describes how cells are packed into a uint64. A cell lives at bit
// col + row*Stride, row 0 at the bottom.
//
// LegacyLayout packs rows back to back (stride 7). A run can then continue
// from the last cell of one row into the first cell of the next, so the
// shift-and-mask tests report some four-in-a-rows that are not on the board.
// GuardedLayout leaves one always-empty bit after each row, which breaks
// every such run.
type Layout struct {
	Stride int
}

var (
	LegacyLayout  = Layout{Stride: Width}
	GuardedLayout = Layout{Stride: Width + 1}
)

// Index returns the bit index of a cell.
func (l Layout) Index(col, row int) int {
	return col + row*l.Stride
}

// Mask returns the single-bit mask of a cell.
func (l Layout) Mask(col, row int) uint64 {
	return 1 << uint(l.Index(col, row))
}

// Directions are the shift amounts for horizontal, vertical and the two
// diagonals.
func (l Layout) Directions() [4]uint {
	s := uint(l.Stride)
	return [4]uint{1, s, s - 1, s + 1}
}

// ColumnMask has every cell of col set.
func (l Layout) ColumnMask(col int) uint64 {
	var m uint64
	for row := 0; row < Height; row++ {
		m |= l.Mask(col, row)
	}
	return m
}

// Legacy reports whether this is the stride-7 packing.
func (l Layout) Legacy() bool {
	return l.Stride == Width
}

func (l Layout) String() string {
	if l.Legacy() {
		return "legacy"
	}
	return "guarded"
}
