package board

// TileState is what occupies a single square.
type TileState uint8

const (
	Empty TileState = iota
	White
	Black
	// Arrow is permanent; a square never returns to Empty once burned.
	Arrow
)

func (t TileState) String() string {
	switch t {
	case Empty:
		return "empty"
	case White:
		return "white"
	case Black:
		return "black"
	case Arrow:
		return "arrow"
	}
	return "none"
}

// Glyph is the single character used for the tile in board renderings.
func (t TileState) Glyph() byte {
	switch t {
	case White:
		return 'W'
	case Black:
		return 'B'
	case Arrow:
		return 'o'
	}
	return '.'
}

func tileFromGlyph(g byte) (TileState, bool) {
	switch g {
	case '.':
		return Empty, true
	case 'W':
		return White, true
	case 'B':
		return Black, true
	case 'o':
		return Arrow, true
	}
	return Empty, false
}
