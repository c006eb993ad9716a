package engine

// Board dimensions. The playfield is always ROWS tall and COLS wide.
const (
	Rows = 20
	Cols = 10
)

// Cell is a single board cell. Zero means empty; non-zero values carry the
// identity of the piece that locked there so renderers can pick a color.
type Cell int

const (
	CellEmpty Cell = iota
	CellI
	CellO
	CellT
	CellS
	CellZ
	CellJ
	CellL
	CellGarbage
)

// PieceType identifies one of the 7 canonical tetromino shapes.
type PieceType int

const (
	PieceI PieceType = iota
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
)

// NumPieceTypes is the size of one generator bag.
const NumPieceTypes = 7

// String returns the conventional single-letter name for the piece.
func (p PieceType) String() string {
	switch p {
	case PieceI:
		return "I"
	case PieceO:
		return "O"
	case PieceT:
		return "T"
	case PieceS:
		return "S"
	case PieceZ:
		return "Z"
	case PieceJ:
		return "J"
	case PieceL:
		return "L"
	default:
		return "?"
	}
}

// Cell returns the board cell tag for a locked piece of this type.
func (p PieceType) Cell() Cell {
	return Cell(int(p) + 1)
}

// Shape is a piece's occupancy matrix. Shapes are rectangular but not
// necessarily square; Rotate returns a new matrix and never mutates.
type Shape [][]bool

var shapes = map[PieceType]Shape{
	PieceI: {
		{true, true, true, true},
	},
	PieceO: {
		{true, true},
		{true, true},
	},
	PieceT: {
		{true, true, true},
		{false, true, false},
	},
	PieceS: {
		{false, true, true},
		{true, true, false},
	},
	PieceZ: {
		{true, true, false},
		{false, true, true},
	},
	PieceJ: {
		{true, false, false},
		{true, true, true},
	},
	PieceL: {
		{false, false, true},
		{true, true, true},
	},
}

// ShapeOf returns a fresh copy of the canonical shape for a piece type.
func ShapeOf(p PieceType) Shape {
	canonical := shapes[p]
	out := make(Shape, len(canonical))
	for i, row := range canonical {
		out[i] = make([]bool, len(row))
		copy(out[i], row)
	}
	return out
}

// Rotate returns the shape rotated 90 degrees clockwise via
// transpose-and-reverse. There is no kick system; callers reject rotations
// that collide and keep the original shape.
func Rotate(s Shape) Shape {
	if len(s) == 0 {
		return Shape{}
	}
	rows := len(s)
	cols := len(s[0])
	out := make(Shape, cols)
	for r := 0; r < cols; r++ {
		out[r] = make([]bool, rows)
		for c := 0; c < rows; c++ {
			out[r][c] = s[rows-1-c][r]
		}
	}
	return out
}

// Width returns the number of columns the shape spans.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the number of rows the shape spans.
func (s Shape) Height() int {
	return len(s)
}

// Signature is a compact textual form of the occupancy matrix, used to
// deduplicate rotations that produce an identical footprint (O has 1 unique
// rotation, I/S/Z have 2, the rest 4).
func (s Shape) Signature() string {
	buf := make([]byte, 0, len(s)*(s.Width()+1))
	for _, row := range s {
		for _, occupied := range row {
			if occupied {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '/')
	}
	return string(buf)
}
