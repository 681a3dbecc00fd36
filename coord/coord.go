// Package coord models squares on the 10x10 Amazons board and the queen
// rays between them.
package coord

import (
	"errors"
	"fmt"
)

// BoardDim is the number of rows and columns on an Amazons board.
const BoardDim = 10

// NumSquares is the number of addressable squares.
const NumSquares = BoardDim * BoardDim

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidNotation   = errors.New("invalid notation")
)

// A Dim is a value along either axis of the board, 0 through 9.
type Dim uint8

// LessThan returns the values below d, nearest first.
func (d Dim) LessThan() []Dim {
	dims := make([]Dim, 0, d)
	for i := int(d) - 1; i >= 0; i-- {
		dims = append(dims, Dim(i))
	}
	return dims
}

// GreaterThan returns the values above d, nearest first.
func (d Dim) GreaterThan() []Dim {
	dims := make([]Dim, 0, BoardDim-1-int(d))
	for i := int(d) + 1; i < BoardDim; i++ {
		dims = append(dims, Dim(i))
	}
	return dims
}

// Coord is a square on the board. Col maps to the letters a-j and Row to
// the numbers 1-10.
type Coord struct {
	Col Dim
	Row Dim
}

// C builds a coordinate from zero-based column and row values. It does
// not validate; use FromIndex or Parse for untrusted input.
func C(col, row int) Coord {
	return Coord{Col: Dim(col), Row: Dim(row)}
}

// Index encodes the coordinate as row*10 + col.
func (c Coord) Index() int {
	return int(c.Row)*BoardDim + int(c.Col)
}

// Valid returns whether both dimensions lie on the board.
func (c Coord) Valid() bool {
	return c.Col < BoardDim && c.Row < BoardDim
}

// FromIndex decodes an index in 0..99.
func FromIndex(idx int) (Coord, error) {
	if idx < 0 || idx >= NumSquares {
		return Coord{}, fmt.Errorf("%w: index %d", ErrInvalidCoordinate, idx)
	}
	return Coord{Col: Dim(idx % BoardDim), Row: Dim(idx / BoardDim)}, nil
}

func mustCoord(idx int) Coord {
	c, err := FromIndex(idx)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the coordinate as it appears in move notation, e.g. "a4"
// or "j10".
func (c Coord) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(c.Col), int(c.Row)+1)
}

// Parse parses a column letter a-j followed by a row number 1-10.
func Parse(s string) (Coord, error) {
	if len(s) < 2 || len(s) > 3 {
		return Coord{}, fmt.Errorf("%w: coordinate %q", ErrInvalidNotation, s)
	}
	col := s[0]
	if col < 'a' || col > 'j' {
		return Coord{}, fmt.Errorf("%w: column in %q", ErrInvalidNotation, s)
	}
	var row int
	switch rowTok := s[1:]; {
	case rowTok == "10":
		row = 9
	case len(rowTok) == 1 && rowTok[0] >= '1' && rowTok[0] <= '9':
		row = int(rowTok[0] - '1')
	default:
		return Coord{}, fmt.Errorf("%w: row in %q", ErrInvalidNotation, s)
	}
	return Coord{Col: Dim(col - 'a'), Row: Dim(row)}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Coord {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}
