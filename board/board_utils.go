package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/amazons/coord"
)

// ToDisplayText renders the board with row 10 at the top:
//
//	   a b c d e f g h i j
//	10 . . . B . . B . . .
//	...
//	1  . . . W . . W . . .
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   a b c d e f g h i j\n")
	for row := coord.BoardDim - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%-2d ", row+1)
		for col := 0; col < coord.BoardDim; col++ {
			sb.WriteByte(b.tiles[row*coord.BoardDim+col].Glyph())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Board) String() string {
	return b.ToDisplayText()
}

// FromText parses a board in the ToDisplayText format. The header line is
// optional and blank lines are ignored. Pieces are assigned to roster
// slots in square index order (a1, b1, ... j10) within each color.
func FromText(mt *coord.MoveTable, text string) (*Board, error) {
	b := &Board{mt: mt}
	rowsSeen := [coord.BoardDim]bool{}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "a" {
			continue
		}
		label, err := strconv.Atoi(fields[0])
		if err != nil || label < 1 || label > coord.BoardDim {
			return nil, fmt.Errorf("bad row label in line %q", line)
		}
		if len(fields) != coord.BoardDim+1 {
			return nil, fmt.Errorf("row %d has %d squares, expected %d",
				label, len(fields)-1, coord.BoardDim)
		}
		row := label - 1
		if rowsSeen[row] {
			return nil, fmt.Errorf("row %d appears twice", label)
		}
		rowsSeen[row] = true
		for col, f := range fields[1:] {
			if len(f) != 1 {
				return nil, fmt.Errorf("bad square %q in row %d", f, label)
			}
			t, ok := tileFromGlyph(f[0])
			if !ok {
				return nil, fmt.Errorf("bad square %q in row %d", f, label)
			}
			b.tiles[row*coord.BoardDim+col] = t
		}
	}
	for row, seen := range rowsSeen {
		if !seen {
			return nil, fmt.Errorf("row %d missing", row+1)
		}
	}

	white, black := 0, PiecesPerSide
	for idx, t := range b.tiles {
		switch t {
		case White:
			if white == PiecesPerSide {
				return nil, fmt.Errorf("%w: more than %d white pieces", ErrInconsistent, PiecesPerSide)
			}
			b.pieces[white] = mustIndex(idx)
			white++
		case Black:
			if black == NumPieces {
				return nil, fmt.Errorf("%w: more than %d black pieces", ErrInconsistent, PiecesPerSide)
			}
			b.pieces[black] = mustIndex(idx)
			black++
		}
	}
	if white != PiecesPerSide || black != NumPieces {
		return nil, fmt.Errorf("%w: need %d pieces per side", ErrInconsistent, PiecesPerSide)
	}
	return b, nil
}

func mustIndex(idx int) coord.Coord {
	c, err := coord.FromIndex(idx)
	if err != nil {
		panic(err)
	}
	return c
}
