package move

import (
	"fmt"
	"strings"

	"github.com/domino14/amazons/coord"
)

// ErrInvalidNotation is returned for move text that cannot be parsed.
var ErrInvalidNotation = coord.ErrInvalidNotation

// Move is a queen move followed by an arrow shot: the piece on Origin
// travels to Dest, then fires an arrow that lands on Arrow.
type Move struct {
	Origin coord.Coord
	Dest   coord.Coord
	Arrow  coord.Coord
}

// New is a convenience constructor.
func New(origin, dest, arrow coord.Coord) Move {
	return Move{Origin: origin, Dest: dest, Arrow: arrow}
}

// String renders the move in wire notation, e.g. "a4-a5/a6".
func (m Move) String() string {
	return fmt.Sprintf("%v-%v/%v", m.Origin, m.Dest, m.Arrow)
}

// ShortDescription is the same as String; it exists for parity with
// the logging helpers that expect it.
func (m Move) ShortDescription() string {
	return m.String()
}

// Parse parses "<origin>-<dest>/<arrow>". Surrounding whitespace is
// ignored. It only checks syntax, never legality.
func Parse(notation string) (Move, error) {
	notation = strings.TrimSpace(notation)
	piece, rest, ok := strings.Cut(notation, "-")
	if !ok {
		return Move{}, fmt.Errorf("%w: missing '-' in %q", ErrInvalidNotation, notation)
	}
	dest, arrow, ok := strings.Cut(rest, "/")
	if !ok {
		return Move{}, fmt.Errorf("%w: missing '/' in %q", ErrInvalidNotation, notation)
	}
	var m Move
	var err error
	if m.Origin, err = coord.Parse(piece); err != nil {
		return Move{}, err
	}
	if m.Dest, err = coord.Parse(dest); err != nil {
		return Move{}, err
	}
	if m.Arrow, err = coord.Parse(arrow); err != nil {
		return Move{}, err
	}
	return m, nil
}

// MustParse panics on bad notation. Meant for tests and fixtures.
func MustParse(notation string) Move {
	m, err := Parse(notation)
	if err != nil {
		panic(err)
	}
	return m
}
