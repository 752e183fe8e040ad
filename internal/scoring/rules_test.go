// Gente Networking | 2026
// rules_test.go

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gente-networking/backend/internal/config"
	"github.com/gente-networking/backend/internal/core"
)

func TestNewRules(t *testing.T) {
	cfg := config.ScoringConfig{
		RulesVersion: "test.1",
		Weights: map[string]int{
			"meeting":       10,
			"gente_em_acao": 10,
			"testimonial":   15,
			"referral":      20,
			"attendance":    25,
			"invitation":    30,
		},
		DealValueUnitCents: 10000,
		Tiers: []config.TierConfig{
			{Name: "iniciante", MinPoints: 0},
			{Name: "bronze", MinPoints: 50},
		},
	}

	rules, err := NewRules(cfg)
	require.NoError(t, err)

	assert.Equal(t, "test.1", rules.Version)
	assert.Equal(t, 25, rules.Weights.Attendance)
	assert.Equal(t, "iniciante", rules.LowestTier().Name)
}

func TestRulesValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rules)
	}{
		{
			name: "negative weight",
			mutate: func(r *Rules) {
				r.Weights.Referral = -1
			},
		},
		{
			name: "zero deal unit",
			mutate: func(r *Rules) {
				r.DealValueUnitCents = 0
			},
		},
		{
			name: "no tiers",
			mutate: func(r *Rules) {
				r.Tiers = nil
			},
		},
		{
			name: "unsorted tiers",
			mutate: func(r *Rules) {
				r.Tiers[1], r.Tiers[2] = r.Tiers[2], r.Tiers[1]
			},
		},
		{
			name: "lowest tier above zero",
			mutate: func(r *Rules) {
				r.Tiers[0].MinPoints = 10
			},
		},
		{
			name: "duplicate tier minimum",
			mutate: func(r *Rules) {
				r.Tiers[2].MinPoints = r.Tiers[1].MinPoints
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)

			err := rules.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestDefaultRulesValid(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}
