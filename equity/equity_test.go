package equity

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/move"
)

var mt = coord.NewMoveTable()

func walledIn(t *testing.T) *board.Board {
	b, err := board.FromText(mt, board.WhiteWalledIn)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestStartingPositionIsBalanced(t *testing.T) {
	b := board.NewBoard(mt)
	for _, name := range Names() {
		e, err := Named(name)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, e(b), name)
	}
}

func TestWeightedReachabilityExactlyZero(t *testing.T) {
	is := is.New(t)
	is.Equal(WeightedReachability(board.NewBoard(mt)), 0.0)
	// Still exact after a move and its mirror image.
	b := board.NewBoard(mt)
	is.NoErr(b.Apply(move.MustParse("d1-d5/f3")))
	is.NoErr(b.Apply(move.MustParse("g10-g6/e8")))
	is.Equal(WeightedReachability(b), 0.0)
}

func TestWalledInWhite(t *testing.T) {
	b := walledIn(t)
	// 100 squares less 8 queens and 12 arrows, all of it Black's.
	assert.Equal(t, -80.0, FloodFill(b))
	assert.Equal(t, -80.0, WeightedReachability(b))
	assert.Less(t, Mobility(b), 0.0)
	assert.Less(t, RaceTerritory(b), 0.0)
	assert.Less(t, Area(b), 0.0)
}

func TestSquareScores(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard(mt)
	scores := SquareScores(b)
	// Queens and their own squares are never reached.
	for _, c := range b.Roster() {
		is.Equal(scores[c.Index()], 0.0)
	}
	// a5 is one hop from both a4 and a7 and two from every other queen.
	is.Equal(scores[coord.MustParse("a5").Index()], 0.0)
	// Mirror squares cancel exactly.
	is.Equal(scores[coord.MustParse("c3").Index()], -scores[coord.MustParse("c8").Index()])
}

func TestFormatSquareScores(t *testing.T) {
	is := is.New(t)
	b := walledIn(t)
	lines := strings.Split(strings.TrimRight(FormatSquareScores(b), "\n"), "\n")
	is.Equal(len(lines), 10)
	is.True(strings.HasPrefix(lines[0], "10  0.000 "))
	is.True(strings.Contains(lines[2], "-1.000"))
}

func TestMobilityAfterMove(t *testing.T) {
	b := board.NewBoard(mt)
	assert.NoError(t, b.Apply(move.MustParse("d1-d5/f3")))
	// One burned square and a centralized queen.
	assert.NotEqual(t, 0.0, Mobility(b))
}

func TestCorridorBalanced(t *testing.T) {
	b, err := board.FromText(mt, board.Corridor)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, FloodFill(b))
	assert.Equal(t, 0.0, WeightedReachability(b))
	assert.Equal(t, 0.0, RaceTerritory(b))
	assert.Equal(t, 0.0, Mobility(b))
}

func TestNamed(t *testing.T) {
	is := is.New(t)
	e, err := Named("reachability")
	is.NoErr(err)
	b := walledIn(t)
	is.Equal(e(b), WeightedReachability(b))

	_, err = Named("material")
	is.True(errors.Is(err, ErrUnknownEvaluator))
	is.Equal(Names(), []string{"area", "floodfill", "mobility", "race", "reachability"})
}

func TestCombinedSingleWeight(t *testing.T) {
	is := is.New(t)
	b := walledIn(t)
	for _, name := range Names() {
		c, err := Combined(map[string]float64{name: 1})
		is.NoErr(err)
		named, _ := Named(name)
		is.Equal(c(b), named(b))
	}
}

func TestCombinedWeights(t *testing.T) {
	b := walledIn(t)
	c, err := Combined(map[string]float64{"floodfill": 0.5, "reachability": 2})
	assert.NoError(t, err)
	assert.InDelta(t, -40.0-160.0, c(b), 1e-9)

	_, err = Combined(map[string]float64{"nope": 1})
	assert.ErrorIs(t, err, ErrUnknownEvaluator)
	_, err = Combined(nil)
	assert.ErrorIs(t, err, ErrUnknownEvaluator)
}

func TestFromSpec(t *testing.T) {
	b := walledIn(t)
	e, err := FromSpec("floodfill")
	assert.NoError(t, err)
	assert.Equal(t, -80.0, e(b))

	e, err = FromSpec("floodfill:1, reachability:0.25")
	assert.NoError(t, err)
	assert.InDelta(t, -100.0, e(b), 1e-9)

	_, err = FromSpec("floodfill:x")
	assert.Error(t, err)
	_, err = FromSpec("floodfill:1,race")
	assert.ErrorIs(t, err, ErrUnknownEvaluator)
}
