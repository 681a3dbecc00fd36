package turnplayer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/alphabeta"
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/config"
	"github.com/domino14/amazons/equity"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

// EnginePlayer searches for each move with a fixed time budget.
type EnginePlayer struct {
	name   string
	solver *alphabeta.Solver
	budget time.Duration
}

func NewEnginePlayer(name string, solver *alphabeta.Solver, budget time.Duration) *EnginePlayer {
	return &EnginePlayer{name: name, solver: solver, budget: budget}
}

// NewEngineFromConfig builds an engine from the evaluator, threads,
// eval-cache and time-per-turn settings.
func NewEngineFromConfig(name string, cfg *config.Config) (*EnginePlayer, error) {
	eval, err := equity.FromSpec(cfg.GetString(config.ConfigEvaluator))
	if err != nil {
		return nil, err
	}
	solver := alphabeta.NewSolver(eval)
	solver.SetThreads(cfg.GetInt(config.ConfigThreads))
	if frac := cfg.GetFloat64(config.ConfigEvalCache); frac > 0 {
		solver.SetEvalCache(alphabeta.NewEvalCache(frac))
	}
	return NewEnginePlayer(name, solver, cfg.GetDuration(config.ConfigTimePerTurn)), nil
}

// SetBudget changes the time allowed per move.
func (p *EnginePlayer) SetBudget(budget time.Duration) {
	p.budget = budget
}

func (p *EnginePlayer) Name() string {
	return p.name
}

func (p *EnginePlayer) Solver() *alphabeta.Solver {
	return p.solver
}

func (p *EnginePlayer) ChooseMove(ctx context.Context, b *board.Board, side board.Side) (*move.Move, error) {
	r, v := p.solver.Search(ctx, b, side, p.budget)
	if r != nil {
		log.Debug().Str("player", p.name).Str("move", r.Move.String()).
			Float64("value", v).Int("depth", r.Depth).Msg("engine-move")
		m := r.Move
		return &m, nil
	}
	// No depth finished in time. Don't forfeit a position that still has
	// moves; play the first one.
	plays := movegen.FirstN(b, side, 1)
	if len(plays) == 0 {
		return nil, nil
	}
	log.Warn().Str("player", p.name).Dur("budget", p.budget).
		Msg("search-found-nothing-playing-first-move")
	return &plays[0], nil
}

func (p *EnginePlayer) Observe(ctx context.Context, m move.Move) error {
	return nil
}

func (p *EnginePlayer) String() string {
	return fmt.Sprintf("%v (%v per move, %d threads)", p.name, p.budget, p.solver.Threads())
}
