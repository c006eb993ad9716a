package engine

import "math/rand/v2"

// pcgStreamSel fixes the PCG stream so a generator's sequence is a function
// of the 32-bit seed alone.
const pcgStreamSel = 0x9e3779b97f4a7c15

// Generator produces the deterministic piece sequence for one player. It
// draws from a 7-bag: each bag is a shuffled permutation of all 7 piece
// types, and a fresh bag is shuffled from the same PRNG stream when the
// current one runs out. Two generators built with the same seed yield
// identical infinite sequences, which is what lets both peers of a match
// simulate the same piece order without ever transmitting pieces.
type Generator struct {
	rng *rand.Rand
	bag [NumPieceTypes]PieceType
	idx int
}

// NewGenerator creates a generator for the given 32-bit seed.
func NewGenerator(seed int32) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewPCG(uint64(uint32(seed)), pcgStreamSel)),
	}
	g.refill()
	return g
}

func (g *Generator) refill() {
	for i := range g.bag {
		g.bag[i] = PieceType(i)
	}
	g.rng.Shuffle(NumPieceTypes, func(i, j int) {
		g.bag[i], g.bag[j] = g.bag[j], g.bag[i]
	})
	g.idx = 0
}

// Next returns the next piece in the sequence, reshuffling a new bag at
// bag boundaries. The PRNG stream is never reseeded.
func (g *Generator) Next() PieceType {
	if g.idx == NumPieceTypes {
		g.refill()
	}
	p := g.bag[g.idx]
	g.idx++
	return p
}
