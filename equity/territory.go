package equity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
)

// hopGrid holds queen-hop distances per square; 0 means unreached.
type hopGrid [coord.NumSquares]int

// expand runs a breadth-first walk from seeds, one queen move per edge,
// over empty squares only. Seed squares themselves are left at 0.
func expand(b *board.Board, seeds []coord.Coord, dist *hopGrid) {
	frontier := seeds
	var next []coord.Coord
	for hops := 1; len(frontier) > 0; hops++ {
		for _, s := range frontier {
			for c := range b.ReachableSquares(s) {
				if dist[c.Index()] == 0 {
					dist[c.Index()] = hops
					next = append(next, c)
				}
			}
		}
		frontier, next = next, frontier[:0]
	}
}

// FloodFill is the size of the region White's queens could ever walk to
// minus the size of Black's.
func FloodFill(b *board.Board) float64 {
	return float64(floodCount(b, board.SideWhite) - floodCount(b, board.SideBlack))
}

func floodCount(b *board.Board, side board.Side) int {
	var dist hopGrid
	expand(b, b.Pieces(side), &dist)
	n := 0
	for _, h := range dist {
		if h != 0 {
			n++
		}
	}
	return n
}

// SquareScores runs one expansion per queen and scores each square as
// (w - b) / (w + b), where w sums 1/hops^2 over the white queens that can
// reach it and b does the same for black. Squares nobody reaches score 0.
// Weights are summed smallest first so mirrored positions score exactly
// opposite.
func SquareScores(b *board.Board) [coord.NumSquares]float64 {
	var dists [board.NumPieces]hopGrid
	for slot := range board.NumPieces {
		expand(b, []coord.Coord{b.Piece(slot)}, &dists[slot])
	}
	var scores [coord.NumSquares]float64
	white := make([]float64, 0, board.PiecesPerSide)
	black := make([]float64, 0, board.PiecesPerSide)
	for sq := range coord.NumSquares {
		white, black = white[:0], black[:0]
		for slot := range board.NumPieces {
			h := dists[slot][sq]
			if h == 0 {
				continue
			}
			w := 1.0 / float64(h*h)
			if slot < board.PiecesPerSide {
				white = append(white, w)
			} else {
				black = append(black, w)
			}
		}
		ws, bs := sortedSum(white), sortedSum(black)
		if ws+bs != 0 {
			scores[sq] = (ws - bs) / (ws + bs)
		}
	}
	return scores
}

// sortedSum sorts vals in place and adds them up in ascending order.
func sortedSum(vals []float64) float64 {
	slices.Sort(vals)
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}

// WeightedReachability is the sum of SquareScores. It is the default
// evaluator. Gains and losses are totalled apart so a symmetric board
// comes out at exactly 0.
func WeightedReachability(b *board.Board) float64 {
	var gains, losses []float64
	for _, s := range SquareScores(b) {
		switch {
		case s > 0:
			gains = append(gains, s)
		case s < 0:
			losses = append(losses, -s)
		}
	}
	return sortedSum(gains) - sortedSum(losses)
}

// FormatSquareScores renders SquareScores as a grid with row 10 on top.
func FormatSquareScores(b *board.Board) string {
	scores := SquareScores(b)
	var sb strings.Builder
	for row := coord.BoardDim - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%-2d ", row+1)
		for col := range coord.BoardDim {
			fmt.Fprintf(&sb, "%6.3f ", scores[row*coord.BoardDim+col])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

type claim uint8

const (
	unclaimed claim = iota
	byWhite
	byBlack
	byBoth
)

// RaceTerritory races the two sides outward one hop at a time, White
// expanding first at each distance. A square goes to whoever reaches it
// first; a square Black reaches at the same distance White did is
// neutral. The race ends as soon as either side has no frontier left.
// The value is White's squares minus Black's.
func RaceTerritory(b *board.Board) float64 {
	var owner [coord.NumSquares]claim
	var when [coord.NumSquares]int
	whiteSeeds := b.Pieces(board.SideWhite)
	blackSeeds := b.Pieces(board.SideBlack)
	whiteCells, blackCells := 0, 0

	for hops := 1; len(whiteSeeds) > 0 && len(blackSeeds) > 0; hops++ {
		var nextWhite []coord.Coord
		for _, s := range whiteSeeds {
			if owner[s.Index()] == byBoth {
				continue
			}
			for c := range b.ReachableSquares(s) {
				if owner[c.Index()] == unclaimed {
					owner[c.Index()] = byWhite
					when[c.Index()] = hops
					nextWhite = append(nextWhite, c)
					whiteCells++
				}
			}
		}
		whiteSeeds = nextWhite

		var nextBlack []coord.Coord
		for _, s := range blackSeeds {
			for c := range b.ReachableSquares(s) {
				switch {
				case owner[c.Index()] == unclaimed:
					owner[c.Index()] = byBlack
					when[c.Index()] = hops
					nextBlack = append(nextBlack, c)
					blackCells++
				case owner[c.Index()] == byWhite && when[c.Index()] == hops:
					owner[c.Index()] = byBoth
					whiteCells--
				}
			}
		}
		blackSeeds = nextBlack
	}
	return float64(whiteCells - blackCells)
}
