// solve prints the engine's column for a position given as the list of
// columns played from the empty board.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/domino14/fourplay/board"
	"github.com/domino14/fourplay/config"
	"github.com/domino14/fourplay/equity"
	"github.com/domino14/fourplay/internal/logging"
	"github.com/domino14/fourplay/search"
)

func main() {
	fs := pflag.NewFlagSet("solve", pflag.ExitOnError)
	moves := fs.String("moves", "", "columns played so far, e.g. 3344")

	cfg := &config.Config{}
	if err := cfg.LoadFlags(fs, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(2)
	}
	logging.Setup(os.Stderr, cfg.GetBool(config.ConfigDebug))

	var pos board.Position
	switch {
	case cfg.GetString(config.ConfigBoard) == "grid":
		pos = board.NewGridBoard()
	case cfg.GetBool(config.ConfigLegacyLayout):
		pos = board.NewBitBoard(board.LegacyLayout)
	default:
		pos = board.NewBitBoard(board.GuardedLayout)
	}
	if err := board.FromMoves(pos, *moves); err != nil {
		log.Fatal().Err(err).Str("moves", *moves).Msg("bad-position")
	}
	fmt.Print(board.ToDisplayText(pos))

	eval, err := equity.ByName(cfg.GetString(config.ConfigEvaluator))
	if err != nil {
		log.Fatal().Err(err).Msg("bad-evaluator")
	}
	order, err := cfg.MoveOrder()
	if err != nil {
		log.Fatal().Err(err).Msg("bad-move-order")
	}
	s := &search.Solver{}
	if err := s.Init(pos, eval); err != nil {
		log.Fatal().Err(err).Msg("solver-init")
	}
	if err := s.SetMoveOrder(order); err != nil {
		log.Fatal().Err(err).Msg("bad-move-order")
	}
	s.SetNPSLogInterval(cfg.GetDuration(config.ConfigNPSLogInterval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	res, err := s.Search(ctx, cfg.GetInt(config.ConfigSearchDepth))
	if err != nil {
		log.Fatal().Err(err).Msg("search-failed")
	}
	if res.Column == search.NoColumn {
		fmt.Printf("no move: %s to move, winner %s\n", pos.ToMove(), pos.Winner())
		return
	}
	fmt.Printf("%s plays column %d, score %d (%d nodes, %.3fs)\n",
		pos.ToMove(), res.Column, res.Score, res.Nodes, res.Elapsed.Seconds())
}
