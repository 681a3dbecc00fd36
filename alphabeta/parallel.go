package alphabeta

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

type rootChild struct {
	m     move.Move
	b     *board.Board
	value float64
}

// searchRootParallel hands the root children to s.threads goroutines.
// Every child is searched with its own full window, so no bounds are
// shared, and the best child is then picked in enumeration order. That
// gives the same choice a sequential search would make.
func (s *Solver) searchRootParallel(ctx context.Context, b *board.Board, side board.Side,
	depth int) (*Result, float64) {

	s.nodes.Add(1)
	if ctx.Err() != nil {
		return nil, s.evaluate(b)
	}
	var children []*rootChild
	for m, child := range movegen.Generate(b, side) {
		children = append(children, &rootChild{m: m, b: child})
	}
	if len(children) == 0 {
		return nil, lossValue(side)
	}
	log.Debug().Int("children", len(children)).Int("threads", s.threads).
		Int("depth", depth).Msg("root-parallel-search")

	g := &errgroup.Group{}
	g.SetLimit(s.threads)
	for _, c := range children {
		g.Go(func() error {
			_, c.value = s.alphabeta(ctx, c.b, side.Other(), depth-1, math.Inf(-1), math.Inf(1))
			return nil
		})
	}
	g.Wait()

	best := children[0]
	for _, c := range children[1:] {
		if side == board.SideWhite && c.value > best.value ||
			side == board.SideBlack && c.value < best.value {
			best = c
		}
	}
	return &Result{Move: best.m, Board: best.b}, best.value
}
