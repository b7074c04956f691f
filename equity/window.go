package equity

import "github.com/domino14/fourplay/board"

const (
	WinScore          = 1000
	CenterWeight      = 4
	LineOfTwoWeight   = 2
	LineOfThreeWeight = 5
)

// direction steps for the cell-by-cell scans: right, up, down-right, up-right
var scanSteps = [4][2]int{{1, 0}, {0, 1}, {1, -1}, {1, 1}}

// WindowEvaluator scans cells directly. A decided game scores ±WinScore.
// Otherwise it weighs the centre column difference and the differences in
// lines of two and three, where overlapping lines are each counted.
type WindowEvaluator struct{}

func (WindowEvaluator) Name() string { return "window" }

func (WindowEvaluator) Evaluate(p board.Position) int {
	switch p.Winner() {
	case board.Player2:
		return WinScore
	case board.Player1:
		return -WinScore
	}
	score := CenterWeight * centerDifference(p)
	score += LineOfTwoWeight * (countLines(p, board.Player2, 2) - countLines(p, board.Player1, 2))
	score += LineOfThreeWeight * (countLines(p, board.Player2, 3) - countLines(p, board.Player1, 3))
	return score
}

func centerDifference(p board.Position) int {
	diff := 0
	for row := 0; row < board.Height; row++ {
		switch p.Occupant(board.CenterColumn, row) {
		case board.Player2:
			diff++
		case board.Player1:
			diff--
		}
	}
	return diff
}

// countLines counts lines of length cells owned by pl, one per starting
// cell and direction, so a longer run contains several.
func countLines(p board.Position, pl board.Player, length int) int {
	n := 0
	for row := 0; row < board.Height; row++ {
		for col := 0; col < board.Width; col++ {
			if p.Occupant(col, row) != pl {
				continue
			}
			for _, step := range scanSteps {
				if lineFrom(p, pl, col, row, step, length) {
					n++
				}
			}
		}
	}
	return n
}

func lineFrom(p board.Position, pl board.Player, col, row int, step [2]int, length int) bool {
	for i := 1; i < length; i++ {
		c, r := col+i*step[0], row+i*step[1]
		if c < 0 || c >= board.Width || r < 0 || r >= board.Height {
			return false
		}
		if p.Occupant(c, r) != pl {
			return false
		}
	}
	return true
}
