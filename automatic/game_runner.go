// Package automatic plays whole games between two players without a human
// in the loop, and summarizes the logs that batches of such games leave
// behind.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/turnplayer"
)

// ErrOpeningWithSession is returned when random opening plies would be
// played on behalf of a player that tracks its own game.
var ErrOpeningWithSession = errors.New("random opening plies can't be played for this player")

// CSVHeader is the first line of every autoplay log.
const CSVHeader = "gameID,white,black,winner,plies,firstMove\n"

// GameResult is the outcome of one finished game.
type GameResult struct {
	GameID int
	White  string
	Black  string
	Winner board.Side
	Moves  []move.Move
	Final  *board.Board
}

func (g *GameResult) Plies() int {
	return len(g.Moves)
}

// WinnerName is the name of the player who won.
func (g *GameResult) WinnerName() string {
	if g.Winner == board.SideWhite {
		return g.White
	}
	return g.Black
}

// CSVLine formats the result as one autoplay log record.
func (g *GameResult) CSVLine() string {
	first := ""
	if len(g.Moves) > 0 {
		first = g.Moves[0].String()
	}
	return fmt.Sprintf("%d,%v,%v,%v,%d,%v\n", g.GameID, g.White, g.Black, g.Winner, len(g.Moves), first)
}

func (g *GameResult) MoveList() string {
	parts := make([]string, len(g.Moves))
	for i, m := range g.Moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// GameRunner plays a game from the starting position between two
// players, White moving first, until the side to move has no move.
type GameRunner struct {
	mt      *coord.MoveTable
	players [2]turnplayer.Player
	// the first openingPlies plies are chosen at random instead of by
	// the players, to keep engine-vs-engine batches from repeating.
	openingPlies int
	gamechan     chan string
}

func NewGameRunner(mt *coord.MoveTable, white, black turnplayer.Player) *GameRunner {
	return &GameRunner{mt: mt, players: [2]turnplayer.Player{white, black}}
}

// SetRandomOpeningPlies makes the first n plies random. Only the opponent
// of the side that moved is told, so PlayGame refuses it when a
// turnplayer.SessionPlayer is seated.
func (r *GameRunner) SetRandomOpeningPlies(n int) {
	r.openingPlies = n
}

// SetGameChannel makes the runner send the final board of every game to
// ch.
func (r *GameRunner) SetGameChannel(ch chan string) {
	r.gamechan = ch
}

// PlayGame plays one game to the end.
func (r *GameRunner) PlayGame(ctx context.Context, gameID int) (*GameResult, error) {
	b := board.NewBoard(r.mt)
	res := &GameResult{
		GameID: gameID,
		White:  r.players[board.SideWhite].Name(),
		Black:  r.players[board.SideBlack].Name(),
	}
	for _, side := range []board.Side{board.SideWhite, board.SideBlack} {
		sp, ok := r.players[side].(turnplayer.SessionPlayer)
		if !ok {
			continue
		}
		if r.openingPlies > 0 {
			return nil, fmt.Errorf("%w: %v", ErrOpeningWithSession, sp.Name())
		}
		if err := sp.StartGame(ctx, side); err != nil {
			return nil, fmt.Errorf("starting %v as %v: %w", sp.Name(), side, err)
		}
	}
	side := board.SideWhite
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var m *move.Move
		var err error
		random := len(res.Moves) < r.openingPlies
		if random {
			m = turnplayer.RandomMove(b, side)
		} else {
			m, err = r.players[side].ChooseMove(ctx, b, side)
			if err != nil {
				return nil, fmt.Errorf("%v (%v) failed to move: %w", r.players[side].Name(), side, err)
			}
		}
		if m == nil {
			res.Winner = side.Other()
			break
		}
		if err := turnplayer.CheckLegal(b, side, *m); err != nil {
			return nil, err
		}
		if err := b.Apply(*m); err != nil {
			return nil, err
		}
		res.Moves = append(res.Moves, *m)
		log.Debug().Int("game", gameID).Int("ply", len(res.Moves)).
			Str("side", side.String()).Str("move", m.String()).Bool("random", random).
			Msg("played-move")

		if err := r.players[side.Other()].Observe(ctx, *m); err != nil {
			return nil, err
		}
		side = side.Other()
	}
	res.Final = b
	log.Debug().Int("game", gameID).Str("winner", res.WinnerName()).
		Int("plies", res.Plies()).Msg("game-over")
	if r.gamechan != nil {
		r.gamechan <- b.ToDisplayText()
	}
	return res, nil
}
