// Package resultbus carries finished autoplay games over NATS, so
// batches running on many machines can feed one game database.
package resultbus

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/gamerecord"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

// QueueGroup is shared by collectors so each game is stored once.
const QueueGroup = "amazons-collectors"

// Event is one finished game as published; see Marshal for its encoding.
type Event struct {
	GameID int
	Batch  string
	White  string
	Black  string
	Winner string
	Moves  []string
}

func EventFromResult(res *automatic.GameResult) Event {
	moves := make([]string, len(res.Moves))
	for i, m := range res.Moves {
		moves[i] = m.String()
	}
	return Event{
		GameID: res.GameID,
		White:  res.White,
		Black:  res.Black,
		Winner: res.Winner.String(),
		Moves:  moves,
	}
}

// Result replays the event's moves and rebuilds the game result. The
// loser must be out of moves at the end.
func (e Event) Result(mt *coord.MoveTable) (*automatic.GameResult, error) {
	winner, err := board.ParseSide(e.Winner)
	if err != nil {
		return nil, err
	}
	rec := &gamerecord.GameRecord{Moves: e.Moves}
	b, toMove, err := rec.Replay(mt)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", e.GameID, err)
	}
	if toMove != winner.Other() {
		return nil, fmt.Errorf("game %d: %v is to move but %v is recorded as winning",
			e.GameID, toMove, e.Winner)
	}
	if movegen.HasMoves(b, toMove) {
		return nil, fmt.Errorf("game %d: %v still has moves", e.GameID, toMove)
	}
	res := &automatic.GameResult{
		GameID: e.GameID,
		White:  e.White,
		Black:  e.Black,
		Winner: winner,
		Final:  b,
	}
	for _, text := range e.Moves {
		m, err := move.Parse(text)
		if err != nil {
			return nil, err
		}
		res.Moves = append(res.Moves, m)
	}
	return res, nil
}

// Connect dials url, retrying with backoff while the server comes up.
func Connect(ctx context.Context, url, name string) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url, nats.Name(name))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("n", n).Str("url", url).Msg("nats-connect-retry")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %v: %w", url, err)
	}
	return nc, nil
}
