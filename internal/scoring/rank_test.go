// Gente Networking | 2026
// rank_test.go

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResolveRank(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		points int
		want   string
	}{
		{0, "iniciante"},
		{1, "iniciante"},
		{49, "iniciante"},
		{50, "bronze"},
		{199, "bronze"},
		{200, "prata"},
		{499, "prata"},
		{500, "ouro"},
		{999, "ouro"},
		{1000, "diamante"},
		{5000, "diamante"},
		{-10, "iniciante"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rules.ResolveRank(tt.points),
			"points=%d", tt.points)
	}
}

// Every non-negative total resolves to the tier whose range contains it.
func TestResolveRankTotal(t *testing.T) {
	rules := DefaultRules()

	rapid.Check(t, func(t *rapid.T) {
		points := rapid.IntRange(0, 100_000).Draw(t, "points")
		rank := rules.ResolveRank(points)

		var tier Tier
		found := false
		for _, candidate := range rules.Tiers {
			if candidate.Name == rank {
				tier = candidate
				found = true
				break
			}
		}
		require.True(t, found, "rank %q not in tier table", rank)

		assert.GreaterOrEqual(t, points, tier.MinPoints)
		if next, ok := rules.NextTier(points); ok {
			assert.Less(t, points, next.MinPoints)
		}
	})
}

// A higher score never resolves to a lower tier.
func TestResolveRankMonotonic(t *testing.T) {
	rules := DefaultRules()

	tierIndex := func(name string) int {
		for i, tier := range rules.Tiers {
			if tier.Name == name {
				return i
			}
		}
		t.Fatalf("unknown tier %q", name)
		return -1
	}

	rapid.Check(t, func(t *rapid.T) {
		points := rapid.IntRange(0, 10_000).Draw(t, "points")
		bump := rapid.IntRange(0, 10_000).Draw(t, "bump")

		lower := tierIndex(rules.ResolveRank(points))
		higher := tierIndex(rules.ResolveRank(points + bump))
		assert.GreaterOrEqual(t, higher, lower)
	})
}

func TestNextTier(t *testing.T) {
	rules := DefaultRules()

	next, ok := rules.NextTier(0)
	require.True(t, ok)
	assert.Equal(t, "bronze", next.Name)

	next, ok = rules.NextTier(999)
	require.True(t, ok)
	assert.Equal(t, "diamante", next.Name)

	_, ok = rules.NextTier(1000)
	assert.False(t, ok, "highest tier has no next")
}

func TestProgress(t *testing.T) {
	rules := DefaultRules()

	assert.InDelta(t, 0.0, rules.Progress(0), 1e-9)
	assert.InDelta(t, 0.5, rules.Progress(25), 1e-9)
	assert.InDelta(t, 0.0, rules.Progress(50), 1e-9)
	assert.InDelta(t, 1.0, rules.Progress(1000), 1e-9)
	assert.InDelta(t, 1.0, rules.Progress(2000), 1e-9)

	rapid.Check(t, func(t *rapid.T) {
		points := rapid.IntRange(0, 100_000).Draw(t, "points")
		p := rules.Progress(points)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	})
}
