package board

// HasFour reports whether mask holds four consecutive cells in any
// direction. For each shift d, m & m>>d marks the lower cell of each
// adjacent pair; repeating with 2d leaves the lowest cell of each run of
// four.
//
// With LegacyLayout this reproduces the row wrap described on Layout.
func HasFour(mask uint64, l Layout) bool {
	for _, d := range l.Directions() {
		pairs := mask & (mask >> d)
		if pairs&(pairs>>(2*d)) != 0 {
			return true
		}
	}
	return false
}

// Mirror reflects a mask left to right.
func Mirror(mask uint64, l Layout) uint64 {
	var out uint64
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			if mask&l.Mask(col, row) != 0 {
				out |= l.Mask(Width-1-col, row)
			}
		}
	}
	return out
}

func winner(p1, p2 uint64, l Layout) Player {
	if HasFour(p1, l) {
		return Player1
	}
	if HasFour(p2, l) {
		return Player2
	}
	return NoPlayer
}
