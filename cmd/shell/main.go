package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/domino14/fourplay/config"
	"github.com/domino14/fourplay/internal/logging"
	"github.com/domino14/fourplay/shell"
)

var (
	GitVersion string
)

//go:embed fourplay.txt
var banner string

func main() {
	fmt.Println(banner)
	fmt.Println(GitVersion)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(2)
	}
	logging.Setup(os.Stderr, cfg.GetBool(config.ConfigDebug))
	log.Info().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		close(idleConnsClosed)
	}()

	sc, err := shell.NewShellController(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start shell")
	}
	go sc.Loop(sig)

	<-idleConnsClosed

	if err := sc.Err(); err != nil {
		pprof.StopCPUProfile()
		log.Error().Err(err).Msg("exiting after a fatal error")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}
