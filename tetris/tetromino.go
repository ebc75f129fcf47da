package tetris

// Shape identifies one of the seven tetromino kinds.
type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	J Shape = "J"
	L Shape = "L"
	S Shape = "S"
	Z Shape = "Z"
)

// Tetromino is the falling piece.
// X and Y are the stack position of the top-left corner of the Grid.
type Tetromino struct {
	Grid  [][]bool
	X     int
	Y     int
	Shape Shape
}

type catalogEntry struct {
	shape Shape
	grid  [][]bool
}

// catalog is the ordered set of kinds in their spawn orientation.
// It is never handed out directly; spawnTetromino copies the grid.
var catalog = [...]catalogEntry{
	/*
		.	Shape
		.	0 1 2 3
		0	O O O O
	*/
	{shape: I, grid: [][]bool{
		{true, true, true, true},
	}},
	/*
		.	Shape
		.	0 1
		0	O O
		1	O O
	*/
	{shape: O, grid: [][]bool{
		{true, true},
		{true, true},
	}},
	/*
		.	Shape
		.	0 1 2
		0	X O X
		1	O O O
	*/
	{shape: T, grid: [][]bool{
		{false, true, false},
		{true, true, true},
	}},
	/*
		.	Shape
		.	0 1 2
		0	O X X
		1	O O O
	*/
	{shape: J, grid: [][]bool{
		{true, false, false},
		{true, true, true},
	}},
	/*
		.	Shape
		.	0 1 2
		0	X X O
		1	O O O
	*/
	{shape: L, grid: [][]bool{
		{false, false, true},
		{true, true, true},
	}},
	/*
		.	Shape
		.	0 1 2
		0	X O O
		1	O O X
	*/
	{shape: S, grid: [][]bool{
		{false, true, true},
		{true, true, false},
	}},
	/*
		.	Shape
		.	0 1 2
		0	O O X
		1	X O O
	*/
	{shape: Z, grid: [][]bool{
		{true, true, false},
		{false, true, true},
	}},
}

// Shapes returns the kinds in catalog order.
func Shapes() []Shape {
	s := make([]Shape, len(catalog))
	for i, e := range catalog {
		s[i] = e.shape
	}
	return s
}

func catalogIndex(s Shape) int {
	for i, e := range catalog {
		if e.shape == s {
			return i
		}
	}
	return -1
}

// spawnTetromino returns an independent copy of the catalog entry at index
// placed at the spawn location: horizontally centered on the top row.
func spawnTetromino(index int) *Tetromino {
	e := catalog[index]
	return &Tetromino{
		Grid:  copyGrid(e.grid),
		X:     Cols/2 - len(e.grid[0])/2,
		Y:     0,
		Shape: e.shape,
	}
}

// rotated returns the grid turned 90 degrees clockwise: it's transposed
// and every resulting row reversed. The receiver is left untouched.
func (t *Tetromino) rotated() [][]bool {
	rows, cols := len(t.Grid), len(t.Grid[0])
	grid := make([][]bool, cols)
	for c := range cols {
		grid[c] = make([]bool, rows)
		for r := range rows {
			grid[c][rows-1-r] = t.Grid[r][c]
		}
	}
	return grid
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	return &Tetromino{
		Grid:  copyGrid(t.Grid),
		X:     t.X,
		Y:     t.Y,
		Shape: t.Shape,
	}
}

func copyGrid(g [][]bool) [][]bool {
	c := make([][]bool, len(g))
	for i := range g {
		c[i] = make([]bool, len(g[i]))
		copy(c[i], g[i])
	}
	return c
}
