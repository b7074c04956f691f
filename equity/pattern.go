package equity

import (
	"math/bits"

	"github.com/domino14/fourplay/board"
)

const (
	FourBonus   = 10000
	ThreeBonus  = 100
	TwoBonus    = 10
	CenterBonus = 10
)

// PatternEvaluator reduces each player's mask with the same shifts the
// win test uses. Every direction pays once per pattern length, however many
// runs of that length exist. Each piece in the centre column adds a bonus.
type PatternEvaluator struct{}

func (PatternEvaluator) Name() string { return "pattern" }

func (PatternEvaluator) Evaluate(p board.Position) int {
	l := p.Layout()
	return patternScore(p.Bits(board.Player2), l) - patternScore(p.Bits(board.Player1), l)
}

func patternScore(mask uint64, l board.Layout) int {
	score := 0
	for _, d := range l.Directions() {
		pairs := mask & (mask >> d)
		if pairs&(pairs>>(2*d)) != 0 {
			score += FourBonus
		}
		if pairs&(pairs>>d) != 0 {
			score += ThreeBonus
		}
		if pairs != 0 {
			score += TwoBonus
		}
	}
	score += CenterBonus * bits.OnesCount64(mask&l.ColumnMask(board.CenterColumn))
	return score
}
