// Command collector stores the games autoplay batches publish over NATS
// in a sqlite database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/gamedb"
	"github.com/domino14/amazons/resultbus"
)

const GracefulShutdownTimeout = 20 * time.Second

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	dbPath := cfg.GetString(config.ConfigGameDB)
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "--game-db is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gamedb.Open(ctx, dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-open-game-db")
	}
	defer db.Close()

	nc, err := resultbus.Connect(ctx, cfg.GetString(config.ConfigNatsURL), "amazons-collector")
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-connect")
	}

	done := make(chan error, 1)
	go func() {
		done <- resultbus.NewCollector(db, coord.NewMoveTable()).
			Run(ctx, nc, cfg.GetString(config.ConfigResultSubject))
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("collector-failed")
		}
		return
	case <-ctx.Done():
	}
	log.Info().Msg("got quit signal...")
	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("drain-failed")
		}
	case <-time.After(GracefulShutdownTimeout):
		log.Warn().Msg("shutdown-timed-out")
	}
	log.Info().Msg("collector gracefully shutting down")
}
