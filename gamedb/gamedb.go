// Package gamedb stores finished games in a sqlite database so long
// autoplay runs can be queried afterwards.
package gamedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/amazons/automatic"
	"github.com/domino14/amazons/gamerecord"
)

var ErrGameNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id    INTEGER NOT NULL,
	white      TEXT NOT NULL,
	black      TEXT NOT NULL,
	winner     TEXT NOT NULL,
	plies      INTEGER NOT NULL,
	moves      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS games_white ON games (white);
CREATE INDEX IF NOT EXISTS games_black ON games (black);
`

var _ automatic.ResultStore = (*DB)(nil)

type DB struct {
	db *sql.DB
}

// Standing is one player's record across every stored game.
type Standing struct {
	Player string
	Games  int
	Wins   int
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened-game-db")
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// SaveResult stores one game.
func (d *DB) SaveResult(ctx context.Context, res *automatic.GameResult) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO games (game_id, white, black, winner, plies, moves) VALUES (?, ?, ?, ?, ?, ?)`,
		res.GameID, res.White, res.Black, res.Winner.String(), res.Plies(), res.MoveList())
	return err
}

// Count is the number of stored games.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&n)
	return n, err
}

// Standings lists every player with their games and wins, by name.
func (d *DB) Standings(ctx context.Context) ([]Standing, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT player, COUNT(*), SUM(won) FROM (
			SELECT white AS player, winner = 'white' AS won FROM games
			UNION ALL
			SELECT black AS player, winner = 'black' AS won FROM games
		) GROUP BY player ORDER BY player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var standings []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.Player, &s.Games, &s.Wins); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

// Record returns the stored game with the given row id as a game record.
func (d *DB) Record(ctx context.Context, id int64) (*gamerecord.GameRecord, error) {
	rec := &gamerecord.GameRecord{}
	var moves string
	err := d.db.QueryRowContext(ctx,
		`SELECT white, black, winner, moves FROM games WHERE id = ?`, id).
		Scan(&rec.White, &rec.Black, &rec.Winner, &moves)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	rec.Moves = strings.Fields(moves)
	return rec, nil
}

// FormatStandings renders standings as a table.
func FormatStandings(standings []Standing) string {
	var sb strings.Builder
	sb.WriteString("Player               Games   Wins   Win%\n")
	for _, s := range standings {
		pct := 0.0
		if s.Games > 0 {
			pct = 100 * float64(s.Wins) / float64(s.Games)
		}
		fmt.Fprintf(&sb, "%-20s %5d %6d %6.1f\n", s.Player, s.Games, s.Wins, pct)
	}
	return sb.String()
}
