package tetris

const (
	Rows = 20
	Cols = 10
)

// Stack is the playfield. 20 rows x 10 columns.
// Columns are 0 > 9 left to right and represent the X axis.
// Rows are 0 > 19 top to bottom and represent the Y axis.
// An empty Shape is an empty cell, otherwise it holds the kind that was locked there.
type Stack [Rows][Cols]Shape

// IsInside reports whether row and col address a cell of the stack.
func (s *Stack) IsInside(row, col int) bool {
	return row >= 0 && row < Rows && col >= 0 && col < Cols
}

// IsOccupied reports whether the cell holds a locked block.
// The caller is expected to pass coordinates inside the stack.
func (s *Stack) IsOccupied(row, col int) bool {
	return s[row][col] != ""
}

// lock writes every true cell of grid into the stack with x, y being
// the stack position of the grid's top-left corner.
// cells above the stack are dropped.
func (s *Stack) lock(grid [][]bool, x, y int, shape Shape) {
	for ir, r := range grid {
		for ic, c := range r {
			if !c {
				continue
			}
			row, col := y+ir, x+ic
			if s.IsInside(row, col) {
				s[row][col] = shape
			}
		}
	}
}

func (s *Stack) isFull(row int) bool {
	for _, c := range s[row] {
		if c == "" {
			return false
		}
	}
	return true
}

// clearFullRows removes every complete row and returns how many were removed.
//
// Rows are scanned bottom to top. When a row is cleared everything above it
// shifts down one row and the same index is checked again, since the row that
// fell into place might be complete too.
func (s *Stack) clearFullRows() int {
	var cleared int
	for r := Rows - 1; r >= 0; {
		if !s.isFull(r) {
			r--
			continue
		}
		cleared++
		for k := r; k > 0; k-- {
			s[k] = s[k-1]
		}
		s[0] = [Cols]Shape{}
	}
	return cleared
}
