package equity

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/amazons/board"
)

type weightedTerm struct {
	name   string
	weight float64
	eval   Evaluator
}

// Combined returns an evaluator that sums the named evaluators, each
// scaled by its weight. Terms are evaluated in name order.
func Combined(weights map[string]float64) (Evaluator, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights given", ErrUnknownEvaluator)
	}
	names := lo.Keys(weights)
	slices.Sort(names)
	terms := make([]weightedTerm, 0, len(names))
	for _, n := range names {
		e, err := Named(n)
		if err != nil {
			return nil, err
		}
		terms = append(terms, weightedTerm{name: n, weight: weights[n], eval: e})
	}
	return func(b *board.Board) float64 {
		return lo.SumBy(terms, func(t weightedTerm) float64 {
			return t.weight * t.eval(b)
		})
	}, nil
}

// FromSpec resolves an evaluator description. A plain name selects a
// registered evaluator; a comma-separated list of name:weight pairs,
// such as "reachability:1,mobility:0.01", builds a Combined evaluator.
func FromSpec(spec string) (Evaluator, error) {
	if !strings.Contains(spec, ":") {
		return Named(strings.TrimSpace(spec))
	}
	weights := map[string]float64{}
	for _, part := range strings.Split(spec, ",") {
		name, w, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("%w: bad term %q", ErrUnknownEvaluator, part)
		}
		f, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("bad weight for %v: %w", name, err)
		}
		weights[name] = f
	}
	return Combined(weights)
}
