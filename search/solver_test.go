package search

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/domino14/fourplay/board"
	"github.com/domino14/fourplay/equity"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type tactic struct {
	Name   string `yaml:"name"`
	Moves  string `yaml:"moves"`
	Depth  int    `yaml:"depth"`
	Column int    `yaml:"column"`
}

func loadTactics(t *testing.T) []tactic {
	bts, err := os.ReadFile("testdata/tactics.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var tactics []tactic
	if err := yaml.Unmarshal(bts, &tactics); err != nil {
		t.Fatal(err)
	}
	return tactics
}

func newSolver(t *testing.T, p board.Position, e equity.Evaluator) *Solver {
	s := &Solver{}
	if err := s.Init(p, e); err != nil {
		t.Fatal(err)
	}
	s.SetNPSLogInterval(0)
	return s
}

// randomPosition plays up to maxMoves random columns on p and returns them.
func randomPosition(p board.Position, maxMoves int) string {
	var played []byte
	for n := frand.Intn(maxMoves + 1); n > 0; n-- {
		if p.Winner() != board.NoPlayer || board.Full(p) {
			break
		}
		moves := board.ValidMoves(p)
		col := moves[frand.Intn(len(moves))]
		if err := p.Drop(col); err != nil {
			panic(err)
		}
		played = append(played, byte('0'+col))
	}
	return string(played)
}

// minimax is a plain max/min search scored for player 2, used as a
// reference for the solver.
func minimax(p board.Position, e equity.Evaluator, order []int, depth int) int {
	if depth == 0 || p.Winner() != board.NoPlayer || board.Full(p) {
		return e.Evaluate(p)
	}
	maximizing := p.ToMove() == board.Player2
	best := Infinity
	if maximizing {
		best = -Infinity
	}
	for _, col := range order {
		if !p.IsValidMove(col) {
			continue
		}
		if err := p.Drop(col); err != nil {
			panic(err)
		}
		v := minimax(p, e, order, depth-1)
		if err := p.Undo(col); err != nil {
			panic(err)
		}
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}

// forPlayer2 converts a score for the side to move into one for player 2.
func forPlayer2(p board.Position, score int) int {
	if p.ToMove() == board.Player2 {
		return score
	}
	return -score
}

func TestTactics(t *testing.T) {
	for _, tc := range loadTactics(t) {
		for _, e := range []equity.Evaluator{equity.PatternEvaluator{}, equity.WindowEvaluator{}} {
			t.Run(tc.Name+"/"+e.Name(), func(t *testing.T) {
				is := is.New(t)
				b := board.NewBitBoard(board.GuardedLayout)
				is.NoErr(board.FromMoves(b, tc.Moves))
				s := newSolver(t, b, e)
				res, err := s.Search(context.Background(), tc.Depth)
				is.NoErr(err)
				is.Equal(res.Column, tc.Column)
				is.NoErr(res.Validate(b))
			})
		}
	}
}

func TestPruningMatchesMinimax(t *testing.T) {
	is := is.New(t)
	for trial := 0; trial < 60; trial++ {
		b := board.NewBitBoard(lo.Ternary(trial%2 == 0, board.GuardedLayout, board.LegacyLayout))
		randomPosition(b, 20)
		depth := 1 + frand.Intn(5)
		for _, e := range []equity.Evaluator{equity.PatternEvaluator{}, equity.WindowEvaluator{}} {
			expected := minimax(b, e, DefaultMoveOrder, depth)

			s := newSolver(t, b, e)
			pruned, err := s.Search(context.Background(), depth)
			is.NoErr(err)

			s.SetPruning(false)
			full, err := s.Search(context.Background(), depth)
			is.NoErr(err)

			is.Equal(forPlayer2(b, pruned.Score), expected)
			is.Equal(forPlayer2(b, full.Score), expected)
			is.Equal(pruned.Column, full.Column)
			is.True(pruned.Nodes <= full.Nodes)
		}
	}
}

func TestUnprunedRootScores(t *testing.T) {
	is := is.New(t)
	b := board.NewBitBoard(board.GuardedLayout)
	is.NoErr(board.FromMoves(b, "3342"))
	e := equity.PatternEvaluator{}
	s := newSolver(t, b, e)
	s.SetPruning(false)
	res, err := s.Search(context.Background(), 3)
	is.NoErr(err)
	is.Equal(len(res.RootScores), board.Width)

	for i, rs := range res.RootScores {
		is.Equal(rs.Column, DefaultMoveOrder[i])
		is.NoErr(b.Drop(rs.Column))
		// the child is scored for player 2; the root mover is player 1.
		is.Equal(rs.Score, -minimax(b, e, DefaultMoveOrder, 2))
		is.NoErr(b.Undo(rs.Column))
	}
}

func TestEmptyBoardTriesCentreFirst(t *testing.T) {
	is := is.New(t)
	b := board.NewBitBoard(board.GuardedLayout)
	s := newSolver(t, b, equity.PatternEvaluator{})
	res, err := s.Search(context.Background(), 4)
	is.NoErr(err)
	is.True(len(res.RootScores) > 0)
	is.Equal(res.RootScores[0].Column, 3)
	is.NoErr(res.Validate(b))
	is.Equal(b.NumPieces(), 0)
}

func TestSearchIsDeterministic(t *testing.T) {
	is := is.New(t)
	for _, l := range []board.Layout{board.GuardedLayout, board.LegacyLayout} {
		b := board.NewBitBoard(l)
		is.NoErr(board.FromMoves(b, "332415"))
		s := newSolver(t, b, equity.PatternEvaluator{})
		first, err := s.Search(context.Background(), 6)
		is.NoErr(err)
		for i := 0; i < 3; i++ {
			again, err := s.Search(context.Background(), 6)
			is.NoErr(err)
			is.Equal(again.Column, first.Column)
			is.Equal(again.Score, first.Score)
			is.Equal(again.Nodes, first.Nodes)
			is.Equal(again.RootScores, first.RootScores)
		}
	}
}

func TestBoardIsRestored(t *testing.T) {
	is := is.New(t)
	for trial := 0; trial < 20; trial++ {
		b := board.NewBitBoard(board.LegacyLayout)
		randomPosition(b, 30)
		before := b.String()
		toMove := b.ToMove()
		pieces := b.NumPieces()

		s := newSolver(t, b, equity.PatternEvaluator{})
		_, err := s.Search(context.Background(), 5)
		is.NoErr(err)
		is.Equal(b.String(), before)
		is.Equal(b.ToMove(), toMove)
		is.Equal(b.NumPieces(), pieces)
	}
}

func TestDecidedRoot(t *testing.T) {
	is := is.New(t)
	b := board.NewBitBoard(board.GuardedLayout)
	// player 1 has four down column 0.
	is.NoErr(board.FromMoves(b, "0101010"))
	s := newSolver(t, b, equity.PatternEvaluator{})
	res, err := s.Search(context.Background(), 6)
	is.NoErr(err)
	is.Equal(res.Column, NoColumn)
	is.Equal(res.Nodes, uint64(1))
	// player 2 is to move and has lost.
	is.True(res.Score < 0)
	is.True(errors.Is(res.Validate(b), ErrInvariantViolation))
}

func TestDepthZero(t *testing.T) {
	is := is.New(t)
	b := board.NewBitBoard(board.GuardedLayout)
	is.NoErr(board.FromMoves(b, "3"))
	s := newSolver(t, b, equity.PatternEvaluator{})
	res, err := s.Search(context.Background(), 0)
	is.NoErr(err)
	is.Equal(res.Column, NoColumn)
	// player 2 to move, player 1 holds the centre.
	is.Equal(res.Score, -equity.CenterBonus)

	_, err = s.Search(context.Background(), -1)
	is.True(errors.Is(err, ErrBadDepth))
}

func TestFullBoardIsStatic(t *testing.T) {
	is := is.New(t)
	b := board.NewBitBoard(board.GuardedLayout)
	// columns 0, 1, 4 and 5 read XOXOXO from the bottom, columns 2, 3
	// and 6 read OXOXOX; nothing lines up four.
	moves := "0222222" + "00000" + "1333333" + "11111" + "4666666" + "44444" + "555555"
	is.NoErr(board.FromMoves(b, moves))
	is.True(board.Full(b))
	is.Equal(b.Winner(), board.NoPlayer)

	s := newSolver(t, b, equity.WindowEvaluator{})
	res, err := s.Search(context.Background(), 4)
	is.NoErr(err)
	is.Equal(res.Column, NoColumn)
	is.Equal(res.Score, forPlayer2(b, equity.WindowEvaluator{}.Evaluate(b)))
}

func TestCancelledSearchRestoresBoard(t *testing.T) {
	is := is.New(t)
	b := board.NewBitBoard(board.GuardedLayout)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newSolver(t, b, equity.PatternEvaluator{})
	res, err := s.Search(ctx, 12)
	is.True(errors.Is(err, context.Canceled))
	is.Equal(res.Column, NoColumn)
	is.Equal(b.NumPieces(), 0)
	is.Equal(b.ToMove(), board.Player1)
}

func TestRepresentationsAgree(t *testing.T) {
	is := is.New(t)
	for trial := 0; trial < 20; trial++ {
		b := board.NewBitBoard(board.GuardedLayout)
		moves := randomPosition(b, 16)
		g := board.NewGridBoard()
		is.NoErr(board.FromMoves(g, moves))

		sb := newSolver(t, b, equity.WindowEvaluator{})
		is.NoErr(sb.SetMoveOrder(ArrayMoveOrder))
		sg := newSolver(t, g, equity.WindowEvaluator{})
		is.NoErr(sg.SetMoveOrder(ArrayMoveOrder))

		rb, err := sb.Search(context.Background(), 4)
		is.NoErr(err)
		rg, err := sg.Search(context.Background(), 4)
		is.NoErr(err)
		is.Equal(rb.Column, rg.Column)
		is.Equal(rb.Score, rg.Score)
		is.Equal(rb.RootScores, rg.RootScores)
	}
}

func TestSetMoveOrder(t *testing.T) {
	is := is.New(t)
	s := newSolver(t, board.NewGridBoard(), equity.WindowEvaluator{})
	is.NoErr(s.SetMoveOrder(ArrayMoveOrder))
	is.Equal(s.MoveOrder(), ArrayMoveOrder)
	for _, bad := range [][]int{
		{3, 2, 4, 1, 5, 0},
		{3, 3, 4, 1, 5, 0, 6},
		{3, 2, 4, 1, 5, 0, 7},
		{-1, 2, 4, 1, 5, 0, 6},
	} {
		is.True(errors.Is(s.SetMoveOrder(bad), ErrBadMoveOrder))
	}
	is.Equal(s.MoveOrder(), ArrayMoveOrder)
}

// leakyBoard forgets to take pieces back.
type leakyBoard struct {
	*board.BitBoard
}

func (l leakyBoard) Undo(col int) error {
	return nil
}

func TestUnrestoredBoardIsAnInvariantViolation(t *testing.T) {
	is := is.New(t)
	b := leakyBoard{board.NewBitBoard(board.GuardedLayout)}
	s := newSolver(t, b, equity.PatternEvaluator{})
	_, err := s.Search(context.Background(), 2)
	is.True(errors.Is(err, ErrInvariantViolation))
}
