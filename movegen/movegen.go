// Package movegen enumerates legal Amazons moves. A move is a queen move
// composed with an arrow shot from the destination, so enumeration is a
// three-level walk: piece, destination, arrow.
package movegen

import (
	"iter"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/move"
)

// Moves yields every legal move for side, in order: roster slot, then each
// destination in ReachableSquares order, then each arrow square reachable
// from the destination with the origin treated as empty. The sequence is
// lazy and can be ranged over more than once.
func Moves(b *board.Board, side board.Side) iter.Seq[move.Move] {
	return func(yield func(move.Move) bool) {
		for _, origin := range b.Pieces(side) {
			for dest := range b.ReachableSquares(origin) {
				for arrow := range b.ReachableSquaresVacating(dest, origin) {
					if !yield(move.New(origin, dest, arrow)) {
						return
					}
				}
			}
		}
	}
}

// Generate is Moves paired with the position after each move. Every yielded
// board is an independent clone; the input board is never modified.
func Generate(b *board.Board, side board.Side) iter.Seq2[move.Move, *board.Board] {
	return func(yield func(move.Move, *board.Board) bool) {
		for m := range Moves(b, side) {
			child := b.Clone()
			if err := child.Apply(m); err != nil {
				// Origins come from the roster, so this can't happen.
				panic(err)
			}
			if !yield(m, child) {
				return
			}
		}
	}
}

// Count returns the number of legal moves for side.
func Count(b *board.Board, side board.Side) int {
	n := 0
	for range Moves(b, side) {
		n++
	}
	return n
}

// HasMoves reports whether side has at least one legal move. A side to
// move with none has lost.
func HasMoves(b *board.Board, side board.Side) bool {
	for range Moves(b, side) {
		return true
	}
	return false
}

// FirstN collects up to n moves in enumeration order. n <= 0 collects all.
func FirstN(b *board.Board, side board.Side, n int) []move.Move {
	var plays []move.Move
	for m := range Moves(b, side) {
		plays = append(plays, m)
		if n > 0 && len(plays) == n {
			break
		}
	}
	return plays
}
