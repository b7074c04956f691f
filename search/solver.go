// Package search picks a column with fixed-depth negamax and alpha-beta
// pruning over a single board that is changed and restored in place.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/fourplay/board"
	"github.com/domino14/fourplay/equity"
	"github.com/domino14/fourplay/zobrist"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
(* Initial call for Player A's root node *)
negamax(rootNode, depth, −∞, +∞, 1)
**/

const (
	Infinity           = math.MaxInt32
	DefaultDepth       = 14
	NoColumn           = -1
	ctxCheckMask       = 1<<12 - 1
	defaultNPSInterval = time.Second
)

var (
	// DefaultMoveOrder tries the centre first and works outwards.
	DefaultMoveOrder = []int{3, 2, 4, 1, 5, 0, 6}
	// ArrayMoveOrder is the order that goes with the grid board and the
	// window evaluator.
	ArrayMoveOrder = []int{3, 2, 4, 1, 5, 6, 0}
)

var (
	ErrInvariantViolation = errors.New("internal invariant violation")
	ErrBadMoveOrder       = errors.New("bad move order")
	ErrBadDepth           = errors.New("search depth must not be negative")
)

// RootScore is the value of one root column, from the point of view of the
// side to move at the root.
type RootScore struct {
	Column int
	Score  int
}

// Result of a search. Column is NoColumn when the root had no legal move,
// was already decided, or depth was 0.
type Result struct {
	Column     int
	Score      int
	Nodes      uint64
	Elapsed    time.Duration
	RootScores []RootScore
}

// Validate returns ErrInvariantViolation if the chosen column cannot be
// played on p.
func (r Result) Validate(p board.Position) error {
	if !p.IsValidMove(r.Column) {
		return fmt.Errorf("%w: search chose column %d", ErrInvariantViolation, r.Column)
	}
	return nil
}

type Solver struct {
	zobrist   *zobrist.Zobrist
	pos       board.Position
	evaluator equity.Evaluator
	moveOrder []int

	pruning     bool
	npsInterval time.Duration

	rootDepth  int
	bestColumn int
	rootScores []RootScore
	nodes      atomic.Uint64
}

// Init initializes the solver. The solver owns pos while a search runs;
// nobody else may touch it until Search returns.
func (s *Solver) Init(pos board.Position, e equity.Evaluator) error {
	if pos == nil || e == nil {
		return errors.New("solver needs a position and an evaluator")
	}
	s.zobrist = &zobrist.Zobrist{}
	s.zobrist.Initialize()
	s.pos = pos
	s.evaluator = e
	s.moveOrder = append([]int(nil), DefaultMoveOrder...)
	s.pruning = true
	s.npsInterval = defaultNPSInterval
	return nil
}

// SetMoveOrder sets the column priority. It must be a permutation of the
// columns.
func (s *Solver) SetMoveOrder(order []int) error {
	if len(order) != board.Width || len(lo.Uniq(order)) != board.Width {
		return fmt.Errorf("%w: %v", ErrBadMoveOrder, order)
	}
	for _, col := range order {
		if col < 0 || col >= board.Width {
			return fmt.Errorf("%w: %v", ErrBadMoveOrder, order)
		}
	}
	s.moveOrder = append([]int(nil), order...)
	return nil
}

// SetPruning turns alpha-beta cut-offs on or off. Off gives plain minimax.
func (s *Solver) SetPruning(p bool) {
	s.pruning = p
}

// SetNPSLogInterval sets how often nodes per second are logged during a
// search. Zero or less turns the log off.
func (s *Solver) SetNPSLogInterval(d time.Duration) {
	s.npsInterval = d
}

func (s *Solver) SetEvaluator(e equity.Evaluator) {
	s.evaluator = e
}

func (s *Solver) MoveOrder() []int {
	return append([]int(nil), s.moveOrder...)
}

func (s *Solver) Position() board.Position {
	return s.pos
}

func (s *Solver) Evaluator() equity.Evaluator {
	return s.evaluator
}

// Nodes is the number of nodes visited by the current or last search.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// Search runs the root call with a full window.
func (s *Solver) Search(ctx context.Context, depth int) (Result, error) {
	return s.SearchWindow(ctx, depth, -Infinity, Infinity)
}

// SearchWindow searches depth plies with the bounds alpha and beta, both
// from the point of view of the side to move. The position is restored
// before it returns, also when ctx is cancelled.
func (s *Solver) SearchWindow(ctx context.Context, depth, alpha, beta int) (Result, error) {
	if depth < 0 {
		return Result{Column: NoColumn}, fmt.Errorf("%w: %d", ErrBadDepth, depth)
	}
	log.Debug().Int("depth", depth).Bool("pruning", s.pruning).
		Str("evaluator", s.evaluator.Name()).
		Ints("move-order", s.moveOrder).
		Msg("search-config")

	s.rootDepth = depth
	s.bestColumn = NoColumn
	s.rootScores = nil
	s.nodes.Store(0)
	initialKey := s.zobrist.Hash(s.pos)
	tstart := time.Now()

	var score int
	g := &errgroup.Group{}
	done := make(chan struct{})

	if s.npsInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(s.npsInterval)
			defer ticker.Stop()
			var lastNodes uint64
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					nodes := s.Nodes()
					log.Debug().Uint64("nps", uint64(float64(nodes-lastNodes)/s.npsInterval.Seconds())).
						Msg("nodes-per-second")
					lastNodes = nodes
				}
			}
		})
	}

	g.Go(func() error {
		defer close(done)
		var err error
		score, err = s.negamax(ctx, depth, alpha, beta)
		return err
	})

	err := g.Wait()
	if key := s.zobrist.Hash(s.pos); key != initialKey {
		// the board was not restored; nothing after this can be trusted.
		return Result{Column: NoColumn}, fmt.Errorf("%w: position changed during search", ErrInvariantViolation)
	}
	res := Result{
		Column:     s.bestColumn,
		Score:      score,
		Nodes:      s.Nodes(),
		Elapsed:    time.Since(tstart),
		RootScores: s.rootScores,
	}
	if err != nil {
		res.Column = NoColumn
		return res, err
	}
	log.Info().
		Int("column", res.Column).
		Int("score", res.Score).
		Uint64("nodes", res.Nodes).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("search-returning")
	return res, nil
}

// evaluate returns the static value from the point of view of the side to
// move; evaluators score for player 2.
func (s *Solver) evaluate() int {
	v := s.evaluator.Evaluate(s.pos)
	if s.pos.ToMove() == board.Player2 {
		return v
	}
	return -v
}

func (s *Solver) negamax(ctx context.Context, depth, α, β int) (int, error) {
	nodes := s.nodes.Add(1)
	if nodes&ctxCheckMask == 0 && ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if depth == 0 || s.pos.Winner() != board.NoPlayer {
		return s.evaluate(), nil
	}

	bestValue := -Infinity
	expanded := false
	for _, col := range s.moveOrder {
		if !s.pos.IsValidMove(col) {
			continue
		}
		expanded = true
		value, err := s.tryColumn(ctx, col, depth, α, β)
		if err != nil {
			return 0, err
		}
		if depth == s.rootDepth {
			s.rootScores = append(s.rootScores, RootScore{Column: col, Score: value})
			log.Info().Int("column", col).Int("score", value).Msg("root-move")
		}
		// strictly better only, so the first of equal moves is kept.
		if value > bestValue {
			bestValue = value
			if depth == s.rootDepth {
				s.bestColumn = col
			}
		}
		if s.pruning {
			if bestValue > β {
				break
			}
			α = max(α, bestValue)
		}
	}
	if !expanded {
		// full board; nobody won.
		return s.evaluate(), nil
	}
	return bestValue, nil
}

// tryColumn plays col, searches the child and takes col back on every path
// out, including errors.
func (s *Solver) tryColumn(ctx context.Context, col, depth, α, β int) (value int, err error) {
	if err := s.pos.Drop(col); err != nil {
		return 0, fmt.Errorf("%w: drop %d: %v", ErrInvariantViolation, col, err)
	}
	defer func() {
		if uerr := s.pos.Undo(col); uerr != nil && err == nil {
			err = fmt.Errorf("%w: undo %d: %v", ErrInvariantViolation, col, uerr)
		}
	}()
	v, err := s.negamax(ctx, depth-1, -β, -α)
	if err != nil {
		return 0, err
	}
	return -v, nil
}
