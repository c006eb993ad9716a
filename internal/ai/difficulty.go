// Package ai implements the computer opponent: a two-ply placement search
// over the deterministic engine, throttled and degraded per difficulty tier
// so it imitates human cadence instead of teleporting pieces.
package ai

import "time"

// NumTiers is the number of discrete difficulty tiers, one per opponent rank.
const NumTiers = 8

// Difficulty holds the tunables for one tier. Tiers interpolate between a
// slow, blunder-prone opponent and a fast one that almost always takes the
// best placement.
type Difficulty struct {
	Tier int

	// GravityInterval is the opponent's gravity tick period.
	GravityInterval time.Duration
	// ThinkInterval is how often the opponent takes one planned action.
	ThinkInterval time.Duration

	// LineChance is the probability of taking the top-scoring placement
	// when not blundering.
	LineChance float64
	// MultiLineBias scales the reward for multi-line clears in the
	// evaluation, pushing higher tiers toward setting up big clears.
	MultiLineBias float64
	// MistakeChance is the probability of picking a uniformly random
	// placement, simulating a blunder. Zero at the top tier.
	MistakeChance float64
	// PoolSize is how many top candidates the fallback pick draws from,
	// narrowing as difficulty increases.
	PoolSize int
}

// Tier returns the difficulty for a rank in [1, NumTiers]; out-of-range
// values clamp.
func Tier(n int) Difficulty {
	if n < 1 {
		n = 1
	}
	if n > NumTiers {
		n = NumTiers
	}
	t := float64(n-1) / float64(NumTiers-1)

	return Difficulty{
		Tier:            n,
		GravityInterval: lerpDuration(900*time.Millisecond, 360*time.Millisecond, t),
		ThinkInterval:   lerpDuration(450*time.Millisecond, 180*time.Millisecond, t),
		LineChance:      lerp(0.35, 0.92, t),
		MultiLineBias:   lerp(0.1, 1.0, t),
		MistakeChance:   lerp(0.28, 0, t),
		PoolSize:        4 - int(t*2+0.5),
	}
}

// aggression scales attack bonuses and the dead-end penalty with tier.
func (d Difficulty) aggression() float64 {
	t := float64(d.Tier-1) / float64(NumTiers-1)
	return lerp(0.4, 1.0, t)
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

func lerpDuration(from, to time.Duration, t float64) time.Duration {
	return from + time.Duration(float64(to-from)*t)
}
