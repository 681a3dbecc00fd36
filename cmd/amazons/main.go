// Command amazons plays one side of a game over stdin and stdout. It
// prints its own moves on stdout, one per line, and reads the
// opponent's from stdin. The board and all logging go to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/movegen"
	"github.com/domino14/amazons/turnplayer"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := zerolog.ParseLevel(cfg.GetString(config.ConfigLogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Error().Err(err).Msg("game-aborted")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) error {
	engine, err := turnplayer.NewEngineFromConfig("engine", cfg)
	if err != nil {
		return err
	}
	opponent := turnplayer.NewLinePlayer("opponent", in, nil)

	engineSide := board.SideWhite
	if cfg.GetBool(config.ConfigBlack) {
		engineSide = board.SideBlack
	}
	log.Info().Str("side", engineSide.String()).Str("engine", engine.String()).Msg("starting-game")

	b := board.NewBoard(coord.NewMoveTable())
	side := board.SideWhite
	for {
		if !movegen.HasMoves(b, side) {
			// White's loss is reported on stderr and Black's on stdout.
			if side == board.SideWhite {
				fmt.Fprintln(errOut, "Black wins")
			} else {
				fmt.Fprintln(out, "White wins")
			}
			return nil
		}
		var player turnplayer.Player = opponent
		if side == engineSide {
			player = engine
		}
		m, err := player.ChooseMove(ctx, b, side)
		if err != nil {
			return fmt.Errorf("%v to move: %w", side, err)
		}
		if m == nil {
			return fmt.Errorf("%v returned no move with moves available", player.Name())
		}
		if err := b.Apply(*m); err != nil {
			return err
		}
		if side == engineSide {
			fmt.Fprintln(out, m)
		}
		fmt.Fprintln(errOut, b.ToDisplayText())
		side = side.Other()
	}
}
