// Gente Networking | 2026
// rank.go

package scoring

// ResolveRank returns the name of the tier with the highest minimum not
// exceeding points. Total over all non-negative inputs because the lowest
// tier starts at 0; negative inputs resolve to the lowest tier.
func (r Rules) ResolveRank(points int) string {
	current := r.Tiers[0]
	for _, tier := range r.Tiers[1:] {
		if points < tier.MinPoints {
			break
		}
		current = tier
	}
	return current.Name
}

// NextTier returns the tier above the given point total, or false when the
// member already holds the highest rank.
func (r Rules) NextTier(points int) (Tier, bool) {
	for _, tier := range r.Tiers {
		if points < tier.MinPoints {
			return tier, true
		}
	}
	return Tier{}, false
}

// Progress reports how far along the member is toward the next tier, as a
// fraction in [0, 1]. Members at the highest tier report 1.
func (r Rules) Progress(points int) float64 {
	next, ok := r.NextTier(points)
	if !ok {
		return 1
	}

	var floor int
	for _, tier := range r.Tiers {
		if points >= tier.MinPoints {
			floor = tier.MinPoints
		}
	}

	span := next.MinPoints - floor
	if span <= 0 {
		return 0
	}

	return float64(points-floor) / float64(span)
}
