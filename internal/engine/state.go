package engine

// Position is the active piece's top-left offset on the board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// State is the full game state of one player. All transitions are value to
// value: they take a State and return a new State, never mutating the input.
// Rejected inputs (a move or rotation that would collide) return the input
// unchanged rather than an error, and once GameOver is set every transition
// is an identity no-op.
type State struct {
	Board          Board     `json:"board"`
	Current        PieceType `json:"current"`
	CurrentShape   Shape     `json:"currentShape"`
	Pos            Position  `json:"pos"`
	Next           PieceType `json:"next"`
	Score          int       `json:"score"`
	TotalLines     int       `json:"totalLines"`
	GameOver       bool      `json:"gameOver"`
	PendingGarbage int       `json:"pendingGarbage"`
}

// StepResult reports what a gravity tick did.
type StepResult struct {
	Locked       bool
	ClearedLines int
	SentGarbage  int
}

// Points awarded per cleared line.
const pointsPerLine = 100

// minGarbageClear is the smallest clear that sends garbage to the opponent.
// Clearing a single line scores but does not attack.
const minGarbageClear = 2

// NewState builds the initial state for a player: empty board, first two
// pieces drawn from the generator, active piece spawned at the top center.
func NewState(gen *Generator) State {
	st := State{
		Board:   NewBoard(),
		Current: gen.Next(),
		Next:    gen.Next(),
	}
	st.CurrentShape = ShapeOf(st.Current)
	st.Pos = spawnPosition(st.CurrentShape)
	return st
}

func spawnPosition(shape Shape) Position {
	return Position{Row: 0, Col: (Cols - shape.Width()) / 2}
}

// MoveHorizontal shifts the active piece one column left (-1) or right (+1)
// if the destination is free; otherwise the state is returned unchanged.
func (s State) MoveHorizontal(dir int) State {
	if s.GameOver {
		return s
	}
	if Collision(s.Board, s.CurrentShape, s.Pos.Row, s.Pos.Col+dir) {
		return s
	}
	s.Pos.Col += dir
	return s
}

// RotateCurrent rotates the active piece clockwise if the rotated footprint
// does not collide; otherwise the state is returned unchanged.
func (s State) RotateCurrent() State {
	if s.GameOver {
		return s
	}
	rotated := Rotate(s.CurrentShape)
	if Collision(s.Board, rotated, s.Pos.Row, s.Pos.Col) {
		return s
	}
	s.CurrentShape = rotated
	return s
}

// StepDown is the single authoritative gravity tick. If the active piece can
// fall one row it does; otherwise the piece locks into the board, full lines
// clear (100 points each), the next piece spawns, and the result reports how
// many garbage lines the clear sends to the opponent (equal to the clear
// count for clears of 2 or more lines, zero otherwise).
func (s State) StepDown(gen *Generator) (State, StepResult) {
	if s.GameOver {
		return s, StepResult{}
	}

	if !Collision(s.Board, s.CurrentShape, s.Pos.Row+1, s.Pos.Col) {
		s.Pos.Row++
		return s, StepResult{}
	}

	locked := Lock(s.Board, s.CurrentShape, s.Pos.Row, s.Pos.Col, s.Current.Cell())
	cleared, clearedCount := ClearLines(locked)

	s.Board = cleared
	s.Score += clearedCount * pointsPerLine
	s.TotalLines += clearedCount

	s.Current = s.Next
	s.CurrentShape = ShapeOf(s.Current)
	s.Next = gen.Next()
	s.Pos = spawnPosition(s.CurrentShape)
	if Collision(s.Board, s.CurrentShape, s.Pos.Row, s.Pos.Col) {
		s.GameOver = true
	}

	sent := 0
	if clearedCount >= minGarbageClear {
		sent = clearedCount
	}
	return s, StepResult{Locked: true, ClearedLines: clearedCount, SentGarbage: sent}
}

// AddGarbage queues incoming garbage lines. Applied lazily by
// ApplyPendingGarbage at the receiver's next gravity tick.
func (s State) AddGarbage(count int) State {
	if count <= 0 {
		return s
	}
	s.PendingGarbage += count
	return s
}
