package resultbus

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/automatic"
)

// Conn is the part of *nats.Conn a Publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// Publisher sends each finished game on a subject.
type Publisher struct {
	conn       Conn
	subject    string
	batch      string
	retryDelay time.Duration
	owned      *nats.Conn
}

var _ automatic.ResultStore = (*Publisher)(nil)

func NewPublisher(conn Conn, subject, batch string) *Publisher {
	return &Publisher{conn: conn, subject: subject, batch: batch, retryDelay: 100 * time.Millisecond}
}

// Dial connects to url and returns a publisher that owns the
// connection.
func Dial(ctx context.Context, url, subject, batch string) (*Publisher, error) {
	nc, err := Connect(ctx, url, "amazons-publisher")
	if err != nil {
		return nil, err
	}
	p := NewPublisher(nc, subject, batch)
	p.owned = nc
	return p, nil
}

func (p *Publisher) SaveResult(ctx context.Context, res *automatic.GameResult) error {
	evt := EventFromResult(res)
	evt.Batch = p.batch
	data := evt.Marshal()
	return retry.Do(
		func() error {
			return p.conn.Publish(p.subject, data)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(p.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Err(err).Uint("n", n).Int("game", res.GameID).Msg("publish-failed-try-again")
		}),
	)
}

// Close flushes anything still buffered and drops an owned connection.
func (p *Publisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := p.conn.FlushWithContext(ctx)
	if p.owned != nil {
		p.owned.Close()
	}
	return err
}
