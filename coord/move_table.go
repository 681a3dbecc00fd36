package coord

// Direction is one of the eight compass directions a queen can travel.
// "Up" is toward higher rows.
type Direction uint8

const (
	Left Direction = iota
	UpLeft
	Up
	UpRight
	Right
	DownRight
	Down
	DownLeft

	NumDirections = 8
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case UpLeft:
		return "up-left"
	case Up:
		return "up"
	case UpRight:
		return "up-right"
	case Right:
		return "right"
	case DownRight:
		return "down-right"
	case Down:
		return "down"
	case DownLeft:
		return "down-left"
	}
	return "none"
}

// A MoveTable holds, for every square and direction, the squares a queen
// passes walking from that square to the edge of the board, nearest first.
// It is pure geometry and never changes after NewMoveTable returns, so it
// can be shared freely between boards and goroutines.
type MoveTable struct {
	rays [NumSquares][NumDirections][]Coord
}

// NewMoveTable computes the rays for all 100 squares.
func NewMoveTable() *MoveTable {
	mt := &MoveTable{}
	for idx := 0; idx < NumSquares; idx++ {
		c := mustCoord(idx)
		left := c.Col.LessThan()
		right := c.Col.GreaterThan()
		down := c.Row.LessThan()
		up := c.Row.GreaterThan()

		mt.rays[idx][Left] = axisRay(left, func(col Dim) Coord { return Coord{col, c.Row} })
		mt.rays[idx][UpLeft] = diagonalRay(left, up)
		mt.rays[idx][Up] = axisRay(up, func(row Dim) Coord { return Coord{c.Col, row} })
		mt.rays[idx][UpRight] = diagonalRay(right, up)
		mt.rays[idx][Right] = axisRay(right, func(col Dim) Coord { return Coord{col, c.Row} })
		mt.rays[idx][DownRight] = diagonalRay(right, down)
		mt.rays[idx][Down] = axisRay(down, func(row Dim) Coord { return Coord{c.Col, row} })
		mt.rays[idx][DownLeft] = diagonalRay(left, down)
	}
	return mt
}

func axisRay(dims []Dim, mk func(Dim) Coord) []Coord {
	ray := make([]Coord, len(dims))
	for i, d := range dims {
		ray[i] = mk(d)
	}
	return ray
}

// diagonalRay pairs the column and row sequences index by index, so the ray
// stops at whichever edge is closer.
func diagonalRay(cols, rows []Dim) []Coord {
	n := min(len(cols), len(rows))
	ray := make([]Coord, n)
	for i := 0; i < n; i++ {
		ray[i] = Coord{Col: cols[i], Row: rows[i]}
	}
	return ray
}

// Ray returns the squares from c toward the edge in direction d. The
// returned slice is owned by the table and must not be modified.
func (mt *MoveTable) Ray(c Coord, d Direction) []Coord {
	return mt.rays[c.Index()][d]
}
