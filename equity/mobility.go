package equity

import (
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/movegen"
)

// Mobility is White's legal move count minus Black's.
func Mobility(b *board.Board) float64 {
	return float64(movegen.Count(b, board.SideWhite) - movegen.Count(b, board.SideBlack))
}

// Area counts the squares each side can reach in a single queen move,
// each square once per side, and returns White's count minus Black's.
func Area(b *board.Board) float64 {
	return float64(oneHopArea(b, board.SideWhite) - oneHopArea(b, board.SideBlack))
}

func oneHopArea(b *board.Board, side board.Side) int {
	var seen [coord.NumSquares]bool
	n := 0
	for _, p := range b.Pieces(side) {
		for c := range b.ReachableSquares(p) {
			if !seen[c.Index()] {
				seen[c.Index()] = true
				n++
			}
		}
	}
	return n
}
