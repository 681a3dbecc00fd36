// Package gamerecord saves and loads games as YAML.
package gamerecord

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/domino14/amazons/board"
	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/move"
	"github.com/domino14/amazons/turnplayer"
)

var ErrFingerprintMismatch = errors.New("position fingerprint does not match")

// GameRecord is a game from the standard start. Fingerprints, when
// present, hold board.Fingerprint after each move and are checked on
// replay.
type GameRecord struct {
	White        string   `yaml:"white"`
	Black        string   `yaml:"black"`
	Moves        []string `yaml:"moves"`
	Winner       string   `yaml:"winner,omitempty"`
	Fingerprints []uint64 `yaml:"fingerprints,omitempty"`
}

// Append records a move and the position it produced.
func (g *GameRecord) Append(m move.Move, after *board.Board) {
	g.Moves = append(g.Moves, m.String())
	g.Fingerprints = append(g.Fingerprints, after.Fingerprint())
}

// Save writes the record as YAML.
func (g *GameRecord) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return err
	}
	return enc.Close()
}

// Load reads a YAML record. A UTF-16 or UTF-8 byte order mark, as some
// editors write, is honored.
func Load(r io.Reader) (*GameRecord, error) {
	g := &GameRecord{}
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	if err := yaml.NewDecoder(r).Decode(g); err != nil {
		return nil, fmt.Errorf("decoding game record: %w", err)
	}
	return g, nil
}

// SaveFile writes the record to path, zstd-compressed if path ends in
// .zst.
func (g *GameRecord) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return g.saveTo(f, strings.HasSuffix(path, ".zst"))
}

// saveTo writes the record to w and closes it. A failed close is
// reported like a failed write.
func (g *GameRecord) saveTo(w io.WriteCloser, compress bool) error {
	if !compress {
		return errors.Join(g.Save(w), w.Close())
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		w.Close()
		return err
	}
	err = g.Save(enc)
	return errors.Join(err, enc.Close(), w.Close())
}

// LoadFile reads a record written by SaveFile.
func LoadFile(path string) (*GameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if !strings.HasSuffix(path, ".zst") {
		return Load(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return Load(dec)
}

// Replay plays the recorded moves from the start, checking each for
// legality, and returns the final position and the side to move.
func (g *GameRecord) Replay(mt *coord.MoveTable) (*board.Board, board.Side, error) {
	b := board.NewBoard(mt)
	side, err := g.ReplayOnto(b, board.SideWhite)
	if err != nil {
		return nil, side, err
	}
	return b, side, nil
}

// ReplayOnto plays the recorded moves on b, starting with side to move.
// b is left part way through if a move fails.
func (g *GameRecord) ReplayOnto(b *board.Board, side board.Side) (board.Side, error) {
	for i, text := range g.Moves {
		m, err := move.Parse(text)
		if err != nil {
			return side, fmt.Errorf("move %d: %w", i+1, err)
		}
		if err := turnplayer.CheckLegal(b, side, m); err != nil {
			return side, fmt.Errorf("move %d: %w", i+1, err)
		}
		if err := b.Apply(m); err != nil {
			return side, err
		}
		if i < len(g.Fingerprints) && g.Fingerprints[i] != b.Fingerprint() {
			return side, fmt.Errorf("%w after move %d", ErrFingerprintMismatch, i+1)
		}
		side = side.Other()
	}
	return side, nil
}
