package engine

import "math/rand/v2"

const (
	// garbageSeedStride mixes the pending count into the per-call seed so
	// consecutive applications with the same base seed differ.
	garbageSeedStride = 17

	minGarbageHoles = 2
	maxGarbageHoles = 3
)

// ApplyPendingGarbage shifts PendingGarbage rows off the top of the board
// (anything in them is lost) and appends that many garbage rows at the
// bottom, then resets PendingGarbage to zero. Each garbage row is fully
// filled except for 2-3 holes at columns drawn from a PRNG seeded with
// randomSeed + PendingGarbage*17, so the same call on both peers produces
// the same rows without touching the piece generator's stream.
func (s State) ApplyPendingGarbage(randomSeed int64) State {
	if s.GameOver || s.PendingGarbage <= 0 {
		return s
	}

	count := s.PendingGarbage
	if count > Rows {
		count = Rows
	}
	rng := rand.New(rand.NewPCG(uint64(randomSeed+int64(s.PendingGarbage)*garbageSeedStride), pcgStreamSel))

	out := make(Board, 0, Rows)
	for _, row := range s.Board[count:] {
		kept := make([]Cell, Cols)
		copy(kept, row)
		out = append(out, kept)
	}
	for i := 0; i < count; i++ {
		out = append(out, garbageRow(rng))
	}

	s.Board = out
	s.PendingGarbage = 0
	return s
}

func garbageRow(rng *rand.Rand) []Cell {
	row := make([]Cell, Cols)
	for c := range row {
		row[c] = CellGarbage
	}
	holes := minGarbageHoles + rng.IntN(maxGarbageHoles-minGarbageHoles+1)
	cols := rng.Perm(Cols)
	for _, c := range cols[:holes] {
		row[c] = CellEmpty
	}
	return row
}
