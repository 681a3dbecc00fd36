package gamedb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/move"
)

func result(id int, white, black string, winner board.Side, moves ...string) *automatic.GameResult {
	res := &automatic.GameResult{GameID: id, White: white, Black: black, Winner: winner}
	for _, m := range moves {
		res.Moves = append(res.Moves, move.MustParse(m))
	}
	return res
}

func TestSaveAndStandings(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "games.db"))
	is.NoErr(err)
	defer db.Close()

	is.NoErr(db.SaveResult(ctx, result(1, "alice", "bob", board.SideWhite, "d1-d7/g4", "j7-g7/g5")))
	is.NoErr(db.SaveResult(ctx, result(2, "bob", "alice", board.SideWhite, "a4-a5/a6")))
	is.NoErr(db.SaveResult(ctx, result(3, "alice", "bob", board.SideBlack, "a4-a5/a6")))

	n, err := db.Count(ctx)
	is.NoErr(err)
	is.Equal(n, 3)

	standings, err := db.Standings(ctx)
	is.NoErr(err)
	is.Equal(standings, []Standing{
		{Player: "alice", Games: 3, Wins: 1},
		{Player: "bob", Games: 3, Wins: 2},
	})
	table := FormatStandings(standings)
	is.Equal(table, "Player               Games   Wins   Win%\n"+
		"alice                    3      1   33.3\n"+
		"bob                      3      2   66.7\n")
}

func TestRecord(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "games.db"))
	is.NoErr(err)
	defer db.Close()
	is.NoErr(db.SaveResult(ctx, result(9, "alice", "bob", board.SideBlack, "d1-d7/g4", "j7-g7/g5")))

	rec, err := db.Record(ctx, 1)
	is.NoErr(err)
	is.Equal(rec.White, "alice")
	is.Equal(rec.Winner, "black")
	is.Equal(rec.Moves, []string{"d1-d7/g4", "j7-g7/g5"})
	_, side, err := rec.Replay(coord.NewMoveTable())
	is.NoErr(err)
	is.Equal(side, board.SideWhite)

	_, err = db.Record(ctx, 2)
	is.True(errors.Is(err, ErrGameNotFound))
}

func TestReopen(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "games.db")
	db, err := Open(ctx, path)
	is.NoErr(err)
	is.NoErr(db.SaveResult(ctx, result(1, "a", "b", board.SideWhite)))
	is.NoErr(db.Close())

	db, err = Open(ctx, path)
	is.NoErr(err)
	defer db.Close()
	n, err := db.Count(ctx)
	is.NoErr(err)
	is.Equal(n, 1)
}
