// Package equity holds the static evaluators used at search leaves. Every
// evaluator is a pure function of the board; positive values favor White
// and negative values favor Black.
package equity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/domino14/amazons/board"
)

var ErrUnknownEvaluator = errors.New("unknown evaluator")

// Evaluator scores a position from White's point of view.
type Evaluator func(b *board.Board) float64

const (
	MobilityName     = "mobility"
	AreaName         = "area"
	FloodFillName    = "floodfill"
	ReachabilityName = "reachability"
	RaceName         = "race"
)

// DefaultEvaluatorName is the evaluator used when none is configured.
const DefaultEvaluatorName = ReachabilityName

var registry = map[string]Evaluator{
	MobilityName:     Mobility,
	AreaName:         Area,
	FloodFillName:    FloodFill,
	ReachabilityName: WeightedReachability,
	RaceName:         RaceTerritory,
}

// Named looks up an evaluator by its registered name.
func Named(name string) (Evaluator, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvaluator, name)
	}
	return e, nil
}

// Names returns the registered evaluator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
