package ai

import "github.com/blockduel/blockduel-go/internal/engine"

// Heuristic weights. Penalties dominate unless a placement clears lines;
// the max-height weight depends on LineChance so cautious tiers tolerate
// tall stacks less.
const (
	holeWeight      = 18.0
	heightWeight    = 0.55
	bumpinessWeight = 3.4

	lineRewardBase  = 180.0
	lineRewardBias  = 240.0
	multiClearBonus = 70.0

	deadEndPenalty = 1200.0
)

// attackBonus rewards placements by the garbage their clear sends.
var attackBonus = map[int]float64{2: 95, 3: 150, 4: 220}

// Evaluate scores a board that resulted from locking a piece and clearing
// clearedLines rows. Higher is better.
func Evaluate(board engine.Board, clearedLines int, diff Difficulty) float64 {
	heights := engine.ColumnHeights(board)

	aggregate := 0
	maxHeight := 0
	for _, h := range heights {
		aggregate += h
		if h > maxHeight {
			maxHeight = h
		}
	}

	bumpiness := 0
	for c := 0; c < engine.Cols-1; c++ {
		d := heights[c] - heights[c+1]
		if d < 0 {
			d = -d
		}
		bumpiness += d
	}

	score := -holeWeight*float64(countHoles(board)) -
		heightWeight*float64(aggregate) -
		(2.4-diff.LineChance)*float64(maxHeight) -
		bumpinessWeight*float64(bumpiness)

	if clearedLines > 0 {
		score += float64(clearedLines) * (lineRewardBase + diff.MultiLineBias*lineRewardBias)
		if clearedLines >= 2 {
			score += multiClearBonus
		}
	}
	return score
}

// countHoles counts empty cells with at least one filled cell above them.
func countHoles(board engine.Board) int {
	holes := 0
	for c := 0; c < engine.Cols; c++ {
		covered := false
		for r := 0; r < engine.Rows; r++ {
			if board[r][c] != engine.CellEmpty {
				covered = true
			} else if covered {
				holes++
			}
		}
	}
	return holes
}
