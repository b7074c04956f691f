// Package equity holds the static evaluators used when the search stops
// expanding a node.
package equity

import (
	"errors"
	"fmt"

	"github.com/domino14/fourplay/board"
)

var ErrUnknownEvaluator = errors.New("unknown evaluator")

// Evaluator scores a position from player 2's point of view: larger is
// better for player 2 regardless of who is to move.
type Evaluator interface {
	Evaluate(p board.Position) int
	Name() string
}

// ByName returns "pattern" or "window".
func ByName(name string) (Evaluator, error) {
	switch name {
	case "pattern", "":
		return PatternEvaluator{}, nil
	case "window":
		return WindowEvaluator{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvaluator, name)
}
