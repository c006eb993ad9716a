package engine

// Board is the playfield grid, row-major, Rows x Cols. Transitions never
// mutate a board in place; they return a new one so callers can hold
// references across ticks safely.
type Board [][]Cell

// NewBoard creates an empty Rows x Cols board.
func NewBoard() Board {
	b := make(Board, Rows)
	for i := range b {
		b[i] = make([]Cell, Cols)
	}
	return b
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = make([]Cell, len(row))
		copy(out[i], row)
	}
	return out
}

// Valid reports whether the board has the exact Rows x Cols dimensions.
// Used at the deserialization boundary to reject malformed payloads.
func (b Board) Valid() bool {
	if len(b) != Rows {
		return false
	}
	for _, row := range b {
		if len(row) != Cols {
			return false
		}
	}
	return true
}

// Collision reports whether placing shape with its top-left corner at
// (row, col) would put any occupied cell out of bounds or on top of a
// non-empty board cell. Pure; no side effects.
func Collision(b Board, shape Shape, row, col int) bool {
	for r, shapeRow := range shape {
		for c, occupied := range shapeRow {
			if !occupied {
				continue
			}
			br := row + r
			bc := col + c
			if br < 0 || br >= Rows || bc < 0 || bc >= Cols {
				return true
			}
			if b[br][bc] != CellEmpty {
				return true
			}
		}
	}
	return false
}

// Lock stamps the shape's occupied cells onto a copy of the board using the
// given cell tag. Cells that fall outside the bounds are silently ignored;
// collision-checked callers never hit that path.
func Lock(b Board, shape Shape, row, col int, cell Cell) Board {
	out := b.Clone()
	for r, shapeRow := range shape {
		for c, occupied := range shapeRow {
			if !occupied {
				continue
			}
			br := row + r
			bc := col + c
			if br < 0 || br >= Rows || bc < 0 || bc >= Cols {
				continue
			}
			out[br][bc] = cell
		}
	}
	return out
}

// ClearLines removes every fully-occupied row and prepends the same number
// of empty rows at the top, keeping the board Rows tall and the relative
// order of surviving rows intact.
func ClearLines(b Board) (Board, int) {
	kept := make(Board, 0, Rows)
	cleared := 0
	for _, row := range b {
		full := true
		for _, cell := range row {
			if cell == CellEmpty {
				full = false
				break
			}
		}
		if full {
			cleared++
			continue
		}
		keptRow := make([]Cell, Cols)
		copy(keptRow, row)
		kept = append(kept, keptRow)
	}
	if cleared == 0 {
		return b, 0
	}
	out := make(Board, 0, Rows)
	for i := 0; i < cleared; i++ {
		out = append(out, make([]Cell, Cols))
	}
	out = append(out, kept...)
	return out, cleared
}

// ColumnHeights returns, per column, the distance from the topmost filled
// cell to the floor (0 for an empty column). Shared by the AI heuristics.
func ColumnHeights(b Board) [Cols]int {
	var heights [Cols]int
	for c := 0; c < Cols; c++ {
		for r := 0; r < Rows; r++ {
			if b[r][c] != CellEmpty {
				heights[c] = Rows - r
				break
			}
		}
	}
	return heights
}
