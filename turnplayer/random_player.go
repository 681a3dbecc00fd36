package turnplayer

import (
	"context"

	"lukechampine.com/frand"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

// RandomPlayer plays a uniformly random legal move.
type RandomPlayer struct{}

func (p *RandomPlayer) Name() string {
	return "random"
}

func (p *RandomPlayer) ChooseMove(ctx context.Context, b *board.Board, side board.Side) (*move.Move, error) {
	return RandomMove(b, side), nil
}

func (p *RandomPlayer) Observe(ctx context.Context, m move.Move) error {
	return nil
}

// RandomMove picks one of side's moves with a single reservoir-sampling
// pass, or returns nil if there are none.
func RandomMove(b *board.Board, side board.Side) *move.Move {
	var chosen move.Move
	n := 0
	for m := range movegen.Moves(b, side) {
		n++
		if frand.Intn(n) == 0 {
			chosen = m
		}
	}
	if n == 0 {
		return nil
	}
	return &chosen
}
