package board

// Positions in ToDisplayText format used by tests across packages.
const (
	// WhiteWalledIn has every white queen boxed into a corner by arrows.
	// Black, in the middle, is free to move.
	WhiteWalledIn = `
   a b c d e f g h i j
10 W o . . . . . . o W
9  o o . . . . . . o o
8  . . . . . . . . . .
7  . . . . . . . . . .
6  . . . . B B . . . .
5  . . . . B B . . . .
4  . . . . . . . . . .
3  . . . . . . . . . .
2  o o . . . . . . o o
1  W o . . . . . . o W
`

	// BlackNearlyTrapped leaves Black exactly one move, a10-b10/a10, after
	// which all four black queens are sealed in.
	BlackNearlyTrapped = `
   a b c d e f g h i j
10 B . o o o o o o o B
9  o o o o o o o o o o
8  . . . . . . . . . .
7  . . . . W W . . . .
6  . . . . W W . . . .
5  . . . . . . . . . .
4  . . . . . . . . . .
3  o o o o o o o o o o
2  B o o o o o o o o B
1  o o o o o o o o o o
`

	// Corridor shuts each pair of queens into its own row. Every queen
	// has six destinations.
	Corridor = `
   a b c d e f g h i j
10 o o o o o o o o o o
9  o B . . . . . . B o
8  o o o o o o o o o o
7  o W . . . . . . W o
6  o o o o o o o o o o
5  o B . . . . . . B o
4  o o o o o o o o o o
3  o W . . . . . . W o
2  o o o o o o o o o o
1  o o o o o o o o o o
`
)
