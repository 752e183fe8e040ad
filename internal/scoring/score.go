// Gente Networking | 2026
// score.go

package scoring

// ActivityCounts holds a member's current qualifying activity totals, as
// counted by the data store at recalculation time. The calculator never
// looks at history, so retracted activities lower the score on the next
// recalculation automatically.
type ActivityCounts struct {
	Meetings            int   `db:"meetings"`
	GenteEmAcao         int   `db:"gente_em_acao"`
	Testimonials        int   `db:"testimonials"`
	Referrals           int   `db:"referrals"`
	Attendances         int   `db:"attendances"`
	AcceptedInvitations int   `db:"accepted_invitations"`
	Deals               int   `db:"deals"`
	DealValueCents      int64 `db:"deal_value_cents"`
}

// Score converts activity counts into a point total. Pure and
// deterministic: the same counts always produce the same total.
//
// Deal value contributes one point per DealValueUnitCents of closed
// business, fractions truncated.
func (r Rules) Score(c ActivityCounts) int {
	total := clamp(c.Meetings)*r.Weights.Meeting +
		clamp(c.GenteEmAcao)*r.Weights.GenteEmAcao +
		clamp(c.Testimonials)*r.Weights.Testimonial +
		clamp(c.Referrals)*r.Weights.Referral +
		clamp(c.Attendances)*r.Weights.Attendance +
		clamp(c.AcceptedInvitations)*r.Weights.Invitation

	if c.DealValueCents > 0 {
		total += int(c.DealValueCents / r.DealValueUnitCents)
	}

	return total
}

// Counts come from COUNT(*) queries and are never negative; treat anything
// else as zero rather than letting it subtract points.
func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
