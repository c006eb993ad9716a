package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierClamps(t *testing.T) {
	assert.Equal(t, Tier(1), Tier(0))
	assert.Equal(t, Tier(1), Tier(-3))
	assert.Equal(t, Tier(NumTiers), Tier(NumTiers+5))
}

func TestTiersGetHarderMonotonically(t *testing.T) {
	for n := 2; n <= NumTiers; n++ {
		lower, higher := Tier(n-1), Tier(n)
		assert.Greater(t, lower.GravityInterval, higher.GravityInterval, "tier %d", n)
		assert.Greater(t, lower.ThinkInterval, higher.ThinkInterval, "tier %d", n)
		assert.Less(t, lower.LineChance, higher.LineChance, "tier %d", n)
		assert.Less(t, lower.MultiLineBias, higher.MultiLineBias, "tier %d", n)
		assert.Greater(t, lower.MistakeChance, higher.MistakeChance, "tier %d", n)
		assert.GreaterOrEqual(t, lower.PoolSize, higher.PoolSize, "tier %d", n)
	}
}

func TestTopTierNeverBlunders(t *testing.T) {
	top := Tier(NumTiers)
	assert.Zero(t, top.MistakeChance)
	assert.GreaterOrEqual(t, top.PoolSize, 1)
}
