// Command lambda runs one batch of engine-vs-engine games per invocation,
// publishing each finished game on the result subject and returning the
// batch summary.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/alphabeta"
	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/equity"
	"github.com/domino14/amazons/resultbus"
	"github.com/domino14/amazons/turnplayer"
)

// HardTimeLimit caps the per-move budget an event can ask for.
const HardTimeLimit = 30 * time.Second

// BatchEvent describes the games to play. P1 and P2 are evaluator specs.
// P1 takes White in odd games and Black in even ones.
type BatchEvent struct {
	BatchID  string `json:"batch_id"`
	Games    int    `json:"games"`
	P1       string `json:"p1"`
	P2       string `json:"p2"`
	BudgetMS int64  `json:"budget_ms"`
	Opening  int    `json:"opening,omitempty"`
}

type handler struct {
	mt     *coord.MoveTable
	store  automatic.ResultStore
	tmpDir string
}

func engineFactory(name, spec string, budget time.Duration) (automatic.PlayerFactory, error) {
	// Checked once up front so a bad spec fails the invocation early.
	if _, err := equity.FromSpec(spec); err != nil {
		return nil, err
	}
	return func() (turnplayer.Player, error) {
		eval, err := equity.FromSpec(spec)
		if err != nil {
			return nil, err
		}
		return turnplayer.NewEnginePlayer(name, alphabeta.NewSolver(eval), budget), nil
	}, nil
}

func (h *handler) HandleRequest(ctx context.Context, evt BatchEvent) (string, error) {
	logger := log.With().Str("batchID", evt.BatchID).Logger()
	if evt.Games <= 0 {
		return "", errors.New("games must be positive")
	}
	budget := min(time.Duration(evt.BudgetMS)*time.Millisecond, HardTimeLimit)
	if budget <= 0 {
		return "", errors.New("budget_ms must be positive")
	}
	p1, err := engineFactory("p1:"+evt.P1, evt.P1, budget)
	if err != nil {
		return "", err
	}
	p2, err := engineFactory("p2:"+evt.P2, evt.P2, budget)
	if err != nil {
		return "", err
	}

	logfile := filepath.Join(h.tmpDir, fmt.Sprintf("autoplay-%s.txt", evt.BatchID))
	defer os.Remove(logfile)
	logger.Info().Int("games", evt.Games).Dur("budget", budget).Msg("starting-batch")

	err = automatic.CompVsComp(ctx, h.mt, p1, p2, automatic.CompVsCompOptions{
		NumGames:       evt.Games,
		Threads:        1,
		OutputFilename: logfile,
		OpeningPlies:   evt.Opening,
		Store:          h.store,
	})
	if err != nil {
		logger.Err(err).Msg("batch-failed")
		return "", err
	}
	summary, err := automatic.AnalyzeLogFile(logfile)
	if err != nil {
		return "", err
	}
	logger.Info().Msg("exiting-fn")
	return summary, nil
}

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

	pub, err := resultbus.Dial(context.Background(), cfg.GetString(config.ConfigNatsURL),
		cfg.GetString(config.ConfigResultSubject), "lambda")
	if err != nil {
		log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
	}
	h := &handler{mt: coord.NewMoveTable(), store: pub, tmpDir: os.TempDir()}
	lambda.Start(h.HandleRequest)
}
