package ai

import (
	"math/rand/v2"
	"sort"

	"github.com/blockduel/blockduel-go/internal/engine"
)

// Blend weights for the two plies: the board after the next piece's best
// placement matters more than the immediate one.
const (
	firstPlyWeight  = 0.4
	secondPlyWeight = 0.6
)

// Plan is a target placement for the current piece: the footprint to rotate
// into and the column to reach. Execution happens one action per think tick.
type Plan struct {
	TargetSig string
	TargetCol int
}

// placement is one legal straight-drop of a shape.
type placement struct {
	shape engine.Shape
	col   int
	row   int
}

// Planner chooses placements for one AI opponent. The rng drives only the
// selection-under-uncertainty draws, not the piece sequence.
type Planner struct {
	diff Difficulty
	rng  *rand.Rand
}

// NewPlanner creates a planner for the given difficulty tier.
func NewPlanner(diff Difficulty, rng *rand.Rand) *Planner {
	return &Planner{diff: diff, rng: rng}
}

// Difficulty returns the planner's tier parameters.
func (p *Planner) Difficulty() Difficulty {
	return p.diff
}

// Plan searches all placements of the current piece, looking one known piece
// ahead, and picks a target under the tier's uncertainty model. It returns
// false when the current piece has no legal placement at all; the caller
// accepts the forced lock and eventual game over.
func (p *Planner) Plan(board engine.Board, current, next engine.PieceType) (Plan, bool) {
	candidates := p.scoreCandidates(board, current, next)
	if len(candidates) == 0 {
		return Plan{}, false
	}

	chosen := p.pick(candidates)
	return Plan{TargetSig: chosen.place.shape.Signature(), TargetCol: chosen.place.col}, true
}

type candidate struct {
	place placement
	score float64
}

func (p *Planner) scoreCandidates(board engine.Board, current, next engine.PieceType) []candidate {
	placements := enumeratePlacements(board, current)
	candidates := make([]candidate, 0, len(placements))
	aggression := p.diff.aggression()

	for _, pl := range placements {
		locked := engine.Lock(board, pl.shape, pl.row, pl.col, current.Cell())
		afterClear, cleared := engine.ClearLines(locked)

		first := Evaluate(afterClear, cleared, p.diff) + attackBonus[cleared]*aggression

		// Second ply: best placement of the known next piece on the
		// resulting board; no placement at all is a dead end.
		second := -deadEndPenalty * aggression
		if best, ok := p.bestSecondPly(afterClear, next); ok {
			second = best
		}

		candidates = append(candidates, candidate{
			place: pl,
			score: firstPlyWeight*first + secondPlyWeight*second,
		})
	}
	return candidates
}

func (p *Planner) bestSecondPly(board engine.Board, piece engine.PieceType) (float64, bool) {
	placements := enumeratePlacements(board, piece)
	if len(placements) == 0 {
		return 0, false
	}
	aggression := p.diff.aggression()
	best := false
	bestScore := 0.0
	for _, pl := range placements {
		locked := engine.Lock(board, pl.shape, pl.row, pl.col, piece.Cell())
		afterClear, cleared := engine.ClearLines(locked)
		score := Evaluate(afterClear, cleared, p.diff) + attackBonus[cleared]*aggression
		if !best || score > bestScore {
			best = true
			bestScore = score
		}
	}
	return bestScore, true
}

// pick applies the three-draw selection model: blunder with MistakeChance,
// otherwise take the best with LineChance, otherwise pick uniformly from the
// top pool.
func (p *Planner) pick(candidates []candidate) candidate {
	if p.rng.Float64() < p.diff.MistakeChance {
		return candidates[p.rng.IntN(len(candidates))]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if p.rng.Float64() < p.diff.LineChance {
		return candidates[0]
	}

	pool := p.diff.PoolSize
	if pool < 1 {
		pool = 1
	}
	if pool > len(candidates) {
		pool = len(candidates)
	}
	return candidates[p.rng.IntN(pool)]
}

// enumeratePlacements lists every legal straight-drop of a piece: each
// unique rotation (deduplicated by footprint signature) at each column where
// the shape can enter at the spawn row and fall to rest.
func enumeratePlacements(board engine.Board, piece engine.PieceType) []placement {
	var placements []placement
	seen := make(map[string]bool, 4)

	shape := engine.ShapeOf(piece)
	for r := 0; r < 4; r++ {
		sig := shape.Signature()
		if !seen[sig] {
			seen[sig] = true
			for col := 0; col <= engine.Cols-shape.Width(); col++ {
				if row, ok := dropRow(board, shape, col); ok {
					placements = append(placements, placement{shape: shape, col: col, row: row})
				}
			}
		}
		shape = engine.Rotate(shape)
	}
	return placements
}

// dropRow simulates a straight drop in the given column via repeated
// collision probing, returning the resting row.
func dropRow(board engine.Board, shape engine.Shape, col int) (int, bool) {
	if engine.Collision(board, shape, 0, col) {
		return 0, false
	}
	row := 0
	for !engine.Collision(board, shape, row+1, col) {
		row++
	}
	return row, true
}
