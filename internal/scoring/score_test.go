// Gente Networking | 2026
// score_test.go

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestScore(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name   string
		counts ActivityCounts
		want   int
	}{
		{
			name:   "no activity",
			counts: ActivityCounts{},
			want:   0,
		},
		{
			name:   "single meeting",
			counts: ActivityCounts{Meetings: 1},
			want:   10,
		},
		{
			name: "one of each category",
			counts: ActivityCounts{
				Meetings:            1,
				GenteEmAcao:         1,
				Testimonials:        1,
				Referrals:           1,
				Attendances:         1,
				AcceptedInvitations: 1,
			},
			want: 110,
		},
		{
			name: "deal value contributes one point per hundred reais",
			counts: ActivityCounts{
				Deals:          1,
				DealValueCents: 50000,
			},
			want: 5,
		},
		{
			name: "deal value fraction truncates",
			counts: ActivityCounts{
				Deals:          1,
				DealValueCents: 25000,
			},
			want: 2,
		},
		{
			name: "deal value below one unit scores nothing",
			counts: ActivityCounts{
				Deals:          1,
				DealValueCents: 9999,
			},
			want: 0,
		},
		{
			name: "mixed activity",
			counts: ActivityCounts{
				Meetings:       3,
				Testimonials:   2,
				Attendances:    1,
				Deals:          1,
				DealValueCents: 150000,
			},
			want: 30 + 30 + 25 + 15,
		},
		{
			name: "negative counts treated as zero",
			counts: ActivityCounts{
				Meetings:     -5,
				Testimonials: 1,
			},
			want: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Score(tt.counts))
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	rules := DefaultRules()

	rapid.Check(t, func(t *rapid.T) {
		counts := genCounts(t)
		assert.Equal(t, rules.Score(counts), rules.Score(counts))
	})
}

func TestScoreNonNegative(t *testing.T) {
	rules := DefaultRules()

	rapid.Check(t, func(t *rapid.T) {
		counts := genCounts(t)
		assert.GreaterOrEqual(t, rules.Score(counts), 0)
	})
}

func TestScoreMonotonicInCounts(t *testing.T) {
	rules := DefaultRules()

	rapid.Check(t, func(t *rapid.T) {
		counts := genCounts(t)
		base := rules.Score(counts)

		more := counts
		more.Meetings++
		assert.GreaterOrEqual(t, rules.Score(more), base)

		more = counts
		more.AcceptedInvitations++
		assert.GreaterOrEqual(t, rules.Score(more), base)

		more = counts
		more.DealValueCents += rules.DealValueUnitCents
		assert.GreaterOrEqual(t, rules.Score(more), base)
	})
}

func genCounts(t *rapid.T) ActivityCounts {
	return ActivityCounts{
		Meetings:            rapid.IntRange(0, 1000).Draw(t, "meetings"),
		GenteEmAcao:         rapid.IntRange(0, 1000).Draw(t, "gente_em_acao"),
		Testimonials:        rapid.IntRange(0, 1000).Draw(t, "testimonials"),
		Referrals:           rapid.IntRange(0, 1000).Draw(t, "referrals"),
		Attendances:         rapid.IntRange(0, 1000).Draw(t, "attendances"),
		AcceptedInvitations: rapid.IntRange(0, 1000).Draw(t, "invitations"),
		Deals:               rapid.IntRange(0, 1000).Draw(t, "deals"),
		DealValueCents: rapid.Int64Range(0, 1_000_000_000).
			Draw(t, "deal_value_cents"),
	}
}
