// Package board holds the Amazons position: where the eight queens stand
// and which squares have been burned by arrows.
package board

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/domino14/amazons/coord"
	"github.com/domino14/amazons/move"
)

// NumPieces is the size of the roster; each side has half of it.
const (
	NumPieces     = 8
	PiecesPerSide = NumPieces / 2
)

var (
	ErrNoPieceAtSource = errors.New("no piece at move origin")
	ErrDuplicatePiece  = errors.New("two pieces on the same square")
	ErrInconsistent    = errors.New("roster and tiles disagree")
)

// Side is the player to move. White owns roster slots 0-3 and Black owns
// slots 4-7.
type Side uint8

const (
	SideWhite Side = iota
	SideBlack
)

func (s Side) Other() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == SideWhite {
		return "white"
	}
	return "black"
}

// ParseSide reads "white" or "black", in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return SideWhite, nil
	case "black", "b":
		return SideBlack, nil
	}
	return SideWhite, fmt.Errorf("unknown side %q", s)
}

// Color is the tile state painted under this side's pieces.
func (s Side) Color() TileState {
	if s == SideWhite {
		return White
	}
	return Black
}

// Slots returns the half-open roster range owned by the side.
func (s Side) Slots() (int, int) {
	if s == SideWhite {
		return 0, PiecesPerSide
	}
	return PiecesPerSide, NumPieces
}

func slotColor(slot int) TileState {
	if slot < PiecesPerSide {
		return White
	}
	return Black
}

// StartingRoster is the standard opening layout, White first.
var StartingRoster = [NumPieces]coord.Coord{
	coord.MustParse("a4"), coord.MustParse("d1"), coord.MustParse("g1"), coord.MustParse("j4"),
	coord.MustParse("a7"), coord.MustParse("d10"), coord.MustParse("g10"), coord.MustParse("j7"),
}

// Board is a position. Boards are small fixed-size values; Clone copies
// everything except the shared move table.
type Board struct {
	mt     *coord.MoveTable
	pieces [NumPieces]coord.Coord
	tiles  [coord.NumSquares]TileState
}

// NewBoard returns the standard starting position.
func NewBoard(mt *coord.MoveTable) *Board {
	b, err := NewBoardFromRoster(mt, StartingRoster)
	if err != nil {
		panic(err)
	}
	return b
}

// NewBoardFromRoster places the given pieces on an otherwise empty board.
func NewBoardFromRoster(mt *coord.MoveTable, roster [NumPieces]coord.Coord) (*Board, error) {
	b := &Board{mt: mt, pieces: roster}
	for slot, c := range roster {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: slot %d", coord.ErrInvalidCoordinate, slot)
		}
		if b.tiles[c.Index()] != Empty {
			return nil, fmt.Errorf("%w: %v", ErrDuplicatePiece, c)
		}
		b.tiles[c.Index()] = slotColor(slot)
	}
	return b, nil
}

// MoveTable returns the geometry this board walks.
func (b *Board) MoveTable() *coord.MoveTable {
	return b.mt
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Tile returns the state of a square.
func (b *Board) Tile(c coord.Coord) TileState {
	return b.tiles[c.Index()]
}

// Piece returns the coordinate of a roster slot.
func (b *Board) Piece(slot int) coord.Coord {
	return b.pieces[slot]
}

// Pieces returns the coordinates of the side's four queens, in slot order.
func (b *Board) Pieces(s Side) []coord.Coord {
	lo, hi := s.Slots()
	out := make([]coord.Coord, 0, PiecesPerSide)
	out = append(out, b.pieces[lo:hi]...)
	return out
}

// Roster returns all eight piece coordinates.
func (b *Board) Roster() [NumPieces]coord.Coord {
	return b.pieces
}

// PlaceArrow burns a square directly. It is meant for setting up
// positions; normal play burns squares through Apply.
func (b *Board) PlaceArrow(c coord.Coord) error {
	if b.tiles[c.Index()] != Empty {
		return fmt.Errorf("cannot place arrow on %v: square is %v", c, b.tiles[c.Index()])
	}
	b.tiles[c.Index()] = Arrow
	return nil
}

// Apply plays a move. It does not check legality: the piece is lifted from
// the origin, dropped on the destination and the arrow square is burned,
// whatever was there before. The only failure is an origin with no piece.
func (b *Board) Apply(m move.Move) error {
	slot := -1
	for i, c := range b.pieces {
		if c == m.Origin {
			slot = i
			break
		}
	}
	if slot == -1 {
		return fmt.Errorf("%w: %v", ErrNoPieceAtSource, m)
	}
	b.tiles[m.Origin.Index()] = Empty
	b.pieces[slot] = m.Dest
	b.tiles[m.Dest.Index()] = slotColor(slot)
	b.tiles[m.Arrow.Index()] = Arrow
	return nil
}

// ReachableSquares yields every empty square a queen on origin could move
// to: the eight rays in direction order, nearest square first, each ray
// ending at the first occupied square. The origin is never yielded.
func (b *Board) ReachableSquares(origin coord.Coord) iter.Seq[coord.Coord] {
	return b.reachable(origin, -1)
}

// ReachableSquaresVacating is ReachableSquares with the vacated square
// treated as empty. An arrow shot after a queen move may pass through, or
// land on, the square the queen just left.
func (b *Board) ReachableSquaresVacating(origin, vacated coord.Coord) iter.Seq[coord.Coord] {
	return b.reachable(origin, vacated.Index())
}

func (b *Board) reachable(origin coord.Coord, vacated int) iter.Seq[coord.Coord] {
	return func(yield func(coord.Coord) bool) {
		for d := coord.Direction(0); d < coord.NumDirections; d++ {
			for _, c := range b.mt.Ray(origin, d) {
				idx := c.Index()
				if idx != vacated && b.tiles[idx] != Empty {
					break
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

// CountTiles returns how many squares hold the given state.
func (b *Board) CountTiles(t TileState) int {
	n := 0
	for _, s := range b.tiles {
		if s == t {
			n++
		}
	}
	return n
}

// Validate checks that the tile grid agrees with the roster.
func (b *Board) Validate() error {
	pieceTiles := 0
	seen := [coord.NumSquares]bool{}
	for slot, c := range b.pieces {
		if !c.Valid() {
			return fmt.Errorf("%w: slot %d", coord.ErrInvalidCoordinate, slot)
		}
		if seen[c.Index()] {
			return fmt.Errorf("%w: %v", ErrDuplicatePiece, c)
		}
		seen[c.Index()] = true
		if b.tiles[c.Index()] != slotColor(slot) {
			return fmt.Errorf("%w: slot %d on %v shows %v", ErrInconsistent, slot, c, b.tiles[c.Index()])
		}
	}
	for _, t := range b.tiles {
		if t == White || t == Black {
			pieceTiles++
		}
	}
	if pieceTiles != NumPieces {
		return fmt.Errorf("%w: %d piece tiles", ErrInconsistent, pieceTiles)
	}
	return nil
}

// Fingerprint hashes the tile grid. Two boards with the same pieces and
// arrows have the same fingerprint regardless of roster order; side to
// move is not included.
func (b *Board) Fingerprint() uint64 {
	var buf [coord.NumSquares]byte
	for i, t := range b.tiles {
		buf[i] = byte(t)
	}
	return xxhash.Sum64(buf[:])
}
