// Package alphabeta implements a time-boxed Amazons searcher: iterative
// deepening over depth-limited minimax with alpha-beta pruning. White is
// always the maximizing side.
package alphabeta

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/equity"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

// Result is the move chosen at the root and the position it leads to.
type Result struct {
	Move  move.Move
	Board *board.Board
	// Depth is the deepest fully completed iteration that chose this move.
	Depth int
}

// Solver is not safe for concurrent Search calls; use one per goroutine.
type Solver struct {
	evaluator equity.Evaluator
	threads   int
	nodes     atomic.Uint64
	logStream io.Writer
	cache     *EvalCache

	lastDepth int
}

// NewSolver returns a single-threaded solver scoring leaves with eval.
func NewSolver(eval equity.Evaluator) *Solver {
	return &Solver{evaluator: eval, threads: 1}
}

// SetThreads sets how many goroutines share the root children. One
// means a purely sequential search.
func (s *Solver) SetThreads(threads int) {
	s.threads = max(1, threads)
}

func (s *Solver) Threads() int {
	return s.threads
}

// SetLogStream makes the solver write a per-depth trace to w.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// SetEvalCache makes the solver memoize leaf evaluations in c. Only
// share a cache between solvers that use the same evaluator.
func (s *Solver) SetEvalCache(c *EvalCache) {
	s.cache = c
}

// Nodes is the number of positions visited by the last search.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// LastDepth is the deepest iteration the last Search completed, or -1 if
// none did.
func (s *Solver) LastDepth() int {
	return s.lastDepth
}

// lossValue is what a position is worth when side is to move and has no
// legal move.
func lossValue(side board.Side) float64 {
	if side == board.SideWhite {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Search runs iterative deepening from depth 0 until budget runs out and
// returns the result of the deepest depth that finished in time. The
// depth in progress when the deadline passes is thrown away. If no depth
// finished, or side has no legal move, the returned Result is nil.
func (s *Solver) Search(ctx context.Context, b *board.Board, side board.Side,
	budget time.Duration) (*Result, float64) {

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	tstart := time.Now()
	s.nodes.Store(0)
	s.lastDepth = -1

	var best *Result
	bestValue := s.evaluate(b)

	g := &errgroup.Group{}
	done := make(chan struct{})
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	for depth := 0; ctx.Err() == nil; depth++ {
		log.Debug().Int("depth", depth).Msg("deepening-iteratively")
		r, v := s.searchRoot(ctx, b, side, depth)
		if ctx.Err() != nil {
			log.Debug().Int("depth", depth).Msg("depth-timed-out")
			break
		}
		best, bestValue = r, v
		if best != nil {
			best.Depth = depth
		}
		s.lastDepth = depth
		s.trace(depth, best, bestValue)
	}
	close(done)
	g.Wait()

	evt := log.Debug().
		Int("depth", s.lastDepth).
		Str("side", side.String()).
		Float64("value", bestValue).
		Uint64("nodes", s.nodes.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds())
	if best != nil {
		evt = evt.Str("move", best.Move.String())
	}
	evt.Msg("search-returning")
	return best, bestValue
}

// SearchDepth runs a single alpha-beta pass to the given depth. The
// context can still cut it short, in which case the result reflects
// whatever was searched.
func (s *Solver) SearchDepth(ctx context.Context, b *board.Board, side board.Side,
	depth int) (*Result, float64) {

	s.nodes.Store(0)
	r, v := s.searchRoot(ctx, b, side, depth)
	if r != nil {
		r.Depth = depth
	}
	s.lastDepth = depth
	return r, v
}

func (s *Solver) trace(depth int, r *Result, value float64) {
	if s.logStream == nil {
		return
	}
	fmt.Fprintf(s.logStream, "- depth: %d\n", depth)
	fmt.Fprintf(s.logStream, "  nodes: %d\n", s.nodes.Load())
	fmt.Fprintf(s.logStream, "  value: %v\n", value)
	if r != nil {
		fmt.Fprintf(s.logStream, "  move: %v\n", r.Move.ShortDescription())
	}
}

func (s *Solver) searchRoot(ctx context.Context, b *board.Board, side board.Side,
	depth int) (*Result, float64) {

	if s.threads > 1 && depth > 0 {
		return s.searchRootParallel(ctx, b, side, depth)
	}
	return s.alphabeta(ctx, b, side, depth, math.Inf(-1), math.Inf(1))
}

func (s *Solver) alphabeta(ctx context.Context, b *board.Board, side board.Side,
	depth int, α, β float64) (*Result, float64) {

	s.nodes.Add(1)
	if depth == 0 || ctx.Err() != nil {
		return nil, s.evaluate(b)
	}

	var best *Result
	var bestValue float64
	if side == board.SideWhite {
		for m, child := range movegen.Generate(b, side) {
			_, v := s.alphabeta(ctx, child, side.Other(), depth-1, α, β)
			if best == nil || v > bestValue {
				best = &Result{Move: m, Board: child}
				bestValue = v
			}
			α = math.Max(α, v)
			if v > β {
				break // β cut-off
			}
		}
	} else {
		for m, child := range movegen.Generate(b, side) {
			_, v := s.alphabeta(ctx, child, side.Other(), depth-1, α, β)
			if best == nil || v < bestValue {
				best = &Result{Move: m, Board: child}
				bestValue = v
			}
			β = math.Min(β, v)
			if v < α {
				break // α cut-off
			}
		}
	}
	if best == nil {
		return nil, lossValue(side)
	}
	return best, bestValue
}
