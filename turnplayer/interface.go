// Package turnplayer contains the things that can sit at the board and
// pick moves: the search engine, a random mover, a human or script typing
// notation lines, and an external engine running as a child process.
package turnplayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/movegen"
)

var ErrIllegalMove = errors.New("illegal move")

// Player picks moves for one side of a game.
type Player interface {
	Name() string
	// ChooseMove returns the move to play for side, or nil if side has no
	// legal move and has therefore lost.
	ChooseMove(ctx context.Context, b *board.Board, side board.Side) (*move.Move, error)
	// Observe tells the player what its opponent just played.
	Observe(ctx context.Context, m move.Move) error
}

// SessionPlayer is a Player that keeps its own copy of the game, such as
// an external engine. It has to be started afresh for every game, told
// which side it takes, and can't have moves made on its behalf.
type SessionPlayer interface {
	Player
	StartGame(ctx context.Context, side board.Side) error
}

// CheckLegal returns ErrIllegalMove unless m is one of side's moves on b.
func CheckLegal(b *board.Board, side board.Side, m move.Move) error {
	for legal := range movegen.Moves(b, side) {
		if legal == m {
			return nil
		}
	}
	return fmt.Errorf("%w: %v for %v", ErrIllegalMove, m, side)
}
