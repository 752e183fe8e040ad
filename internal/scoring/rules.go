// Gente Networking | 2026
// rules.go

package scoring

import (
	"fmt"
	"sort"

	"github.com/gente-networking/backend/internal/config"
	"github.com/gente-networking/backend/internal/core"
)

// Rules is the versioned point rule table plus the rank tier table. It is
// built once from configuration and passed in explicitly; the calculator
// and rank resolver never read ambient state.
type Rules struct {
	Version            string
	Weights            Weights
	DealValueUnitCents int64
	Tiers              []Tier
}

// Weights maps each activity category to its point value.
type Weights struct {
	Meeting     int
	GenteEmAcao int
	Testimonial int
	Referral    int
	Attendance  int
	Invitation  int
}

// Tier is a named rank with an inclusive lower point bound. The upper bound
// is the next tier's minimum, exclusive.
type Tier struct {
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
}

const (
	CategoryMeeting     = "meeting"
	CategoryGenteEmAcao = "gente_em_acao"
	CategoryTestimonial = "testimonial"
	CategoryReferral    = "referral"
	CategoryAttendance  = "attendance"
	CategoryInvitation  = "invitation"
)

// NewRules builds and validates a rule table from configuration.
func NewRules(cfg config.ScoringConfig) (Rules, error) {
	weights := Weights{
		Meeting:     cfg.Weights[CategoryMeeting],
		GenteEmAcao: cfg.Weights[CategoryGenteEmAcao],
		Testimonial: cfg.Weights[CategoryTestimonial],
		Referral:    cfg.Weights[CategoryReferral],
		Attendance:  cfg.Weights[CategoryAttendance],
		Invitation:  cfg.Weights[CategoryInvitation],
	}

	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, t := range cfg.Tiers {
		tiers = append(tiers, Tier{Name: t.Name, MinPoints: t.MinPoints})
	}

	rules := Rules{
		Version:            cfg.RulesVersion,
		Weights:            weights,
		DealValueUnitCents: cfg.DealValueUnitCents,
		Tiers:              tiers,
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}

	return rules, nil
}

// DefaultRules returns the rule table observed in production: the 2026
// weights and the iniciante through diamante tiers.
func DefaultRules() Rules {
	return Rules{
		Version: "2026.1",
		Weights: Weights{
			Meeting:     10,
			GenteEmAcao: 10,
			Testimonial: 15,
			Referral:    20,
			Attendance:  25,
			Invitation:  30,
		},
		DealValueUnitCents: 10000,
		Tiers: []Tier{
			{Name: "iniciante", MinPoints: 0},
			{Name: "bronze", MinPoints: 50},
			{Name: "prata", MinPoints: 200},
			{Name: "ouro", MinPoints: 500},
			{Name: "diamante", MinPoints: 1000},
		},
	}
}

func (r Rules) Validate() error {
	for name, w := range map[string]int{
		CategoryMeeting:     r.Weights.Meeting,
		CategoryGenteEmAcao: r.Weights.GenteEmAcao,
		CategoryTestimonial: r.Weights.Testimonial,
		CategoryReferral:    r.Weights.Referral,
		CategoryAttendance:  r.Weights.Attendance,
		CategoryInvitation:  r.Weights.Invitation,
	} {
		if w < 0 {
			return fmt.Errorf(
				"rules: weight for %s must not be negative: %w",
				name,
				core.ErrInvalidInput,
			)
		}
	}

	if r.DealValueUnitCents <= 0 {
		return fmt.Errorf(
			"rules: deal value unit must be positive: %w",
			core.ErrInvalidInput,
		)
	}

	if len(r.Tiers) == 0 {
		return fmt.Errorf("rules: no tiers defined: %w", core.ErrInvalidInput)
	}

	if !sort.SliceIsSorted(r.Tiers, func(i, j int) bool {
		return r.Tiers[i].MinPoints < r.Tiers[j].MinPoints
	}) {
		return fmt.Errorf(
			"rules: tiers must be ordered by ascending minimum: %w",
			core.ErrInvalidInput,
		)
	}

	// The lowest tier must start at zero so every non-negative total
	// resolves to exactly one tier.
	if r.Tiers[0].MinPoints != 0 {
		return fmt.Errorf(
			"rules: lowest tier must start at 0 points, got %d: %w",
			r.Tiers[0].MinPoints,
			core.ErrInvalidInput,
		)
	}

	for i := 1; i < len(r.Tiers); i++ {
		if r.Tiers[i].MinPoints == r.Tiers[i-1].MinPoints {
			return fmt.Errorf(
				"rules: tiers %s and %s share minimum %d: %w",
				r.Tiers[i-1].Name,
				r.Tiers[i].Name,
				r.Tiers[i].MinPoints,
				core.ErrInvalidInput,
			)
		}
	}

	return nil
}

// LowestTier is the rank assigned at signup, before any activity.
func (r Rules) LowestTier() Tier {
	return r.Tiers[0]
}
