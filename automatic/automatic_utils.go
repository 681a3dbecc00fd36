package automatic

import (
	"context"
	"errors"
	"expvar"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/turnplayer"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// PlayerFactory builds a fresh player. Each worker gets its own.
type PlayerFactory func() (turnplayer.Player, error)

// ResultStore keeps finished games somewhere besides the CSV log.
type ResultStore interface {
	SaveResult(ctx context.Context, res *GameResult) error
}

// MultiStore saves each result to every store in turn.
type MultiStore []ResultStore

func (m MultiStore) SaveResult(ctx context.Context, res *GameResult) error {
	var errs []error
	for _, s := range m {
		if err := s.SaveResult(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CompVsCompOptions configures a batch of computer-vs-computer games.
type CompVsCompOptions struct {
	NumGames       int
	Threads        int
	OutputFilename string
	// random plies at the start of each game
	OpeningPlies int
	// optional; called from a single goroutine
	Store ResultStore
}

type job struct {
	gameID int
}

// CompVsComp plays a batch of games on opts.Threads workers and writes one
// CSV line per game to opts.OutputFilename. The two players swap colors
// every game so neither keeps the first move; session players are
// restarted for each game on their new side. It blocks until every game
// is done or ctx is cancelled.
func CompVsComp(ctx context.Context, mt *coord.MoveTable, p1, p2 PlayerFactory,
	opts CompVsCompOptions) error {

	if IsPlaying.Value() > 0 {
		return ErrAlreadyPlaying
	}
	threads := max(1, opts.Threads)
	logfile, err := os.Create(opts.OutputFilename)
	if err != nil {
		return err
	}
	defer logfile.Close()
	log.Debug().Int("games", opts.NumGames).Int("threads", threads).
		Str("output", opts.OutputFilename).Msg("starting-comp-vs-comp")

	CVCCounter.Set(0)
	jobs := make(chan job, 100)
	logChan := make(chan *GameResult, 100)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			first, err := p1()
			if err != nil {
				return err
			}
			defer closePlayer(first)
			second, err := p2()
			if err != nil {
				return err
			}
			defer closePlayer(second)
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for j := range jobs {
				white, black := first, second
				if j.gameID%2 == 0 {
					white, black = second, first
				}
				r := NewGameRunner(mt, white, black)
				r.SetRandomOpeningPlies(opts.OpeningPlies)
				res, err := r.PlayGame(gctx, j.gameID)
				if err != nil {
					return err
				}
				logChan <- res
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	feeder := &errgroup.Group{}
	feeder.Go(func() error {
		defer close(jobs)
		for i := 1; i <= opts.NumGames; i++ {
			select {
			case <-gctx.Done():
				log.Info().Msg("got-stop-signal-exiting-soon")
				return nil
			case jobs <- job{gameID: i}:
			}
			if i%1000 == 0 {
				log.Info().Int("queued", i).Msg("queued-jobs")
			}
		}
		log.Debug().Msg("finished-queueing-jobs")
		return nil
	})

	writer := &errgroup.Group{}
	writer.Go(func() error {
		_, werr := logfile.WriteString(CSVHeader)
		// Keep draining after a failed write so workers never block.
		for res := range logChan {
			if werr == nil {
				_, werr = logfile.WriteString(res.CSVLine())
			}
			if werr == nil && opts.Store != nil {
				// Games that finished still get stored after a cancel.
				werr = opts.Store.SaveResult(context.WithoutCancel(ctx), res)
			}
		}
		return werr
	})

	err = g.Wait()
	feeder.Wait()
	close(logChan)
	if werr := writer.Wait(); err == nil {
		err = werr
	}
	log.Info().Int64("games", CVCCounter.Value()).AnErr("err", err).Msg("comp-vs-comp-done")
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// closePlayer shuts down players holding resources, such as subprocesses.
func closePlayer(p turnplayer.Player) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("player", p.Name()).Msg("close-player-failed")
	}
}
