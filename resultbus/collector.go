package resultbus

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/coord"
)

// Collector stores the games published on a subject.
type Collector struct {
	store automatic.ResultStore
	mt    *coord.MoveTable
}

func NewCollector(store automatic.ResultStore, mt *coord.MoveTable) *Collector {
	return &Collector{store: store, mt: mt}
}

// Handle decodes, checks and stores one published game.
func (c *Collector) Handle(ctx context.Context, data []byte) error {
	evt, err := UnmarshalEvent(data)
	if err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}
	res, err := evt.Result(c.mt)
	if err != nil {
		return err
	}
	if err := c.store.SaveResult(ctx, res); err != nil {
		return err
	}
	log.Debug().Int("game", evt.GameID).Str("batch", evt.Batch).
		Str("winner", res.WinnerName()).Msg("stored-game")
	return nil
}

// Run stores games arriving on subject until ctx is done. Bad events are
// logged and dropped.
func (c *Collector) Run(ctx context.Context, nc *nats.Conn, subject string) error {
	_, err := nc.QueueSubscribe(subject, QueueGroup, func(m *nats.Msg) {
		if err := c.Handle(ctx, m.Data); err != nil {
			log.Err(err).Int("bytes", len(m.Data)).Msg("dropping-event")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("subject", subject).Str("queue", QueueGroup).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("draining")
	return nc.Drain()
}
