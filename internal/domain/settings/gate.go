package settings

import "time"

// ResultsVisible decides whether the public results page may show year.
// Gated years are visible once published or once voting has ended.
// Legacy years are always visible unless GateLegacyYears is set.
// PRE: published is the year's admin publication flag
// POST: returns true when results may be exposed publicly
func (s Settings) ResultsVisible(year int, published bool, now time.Time) bool {
	if year != s.CurrentYear && !s.GateLegacyYears {
		return true
	}
	if published {
		return true
	}
	return s.VotingEnd != nil && !now.Before(*s.VotingEnd)
}

// VotingOpen reports whether casts are still accepted for the current year.
// Legacy years are closed.
func (s Settings) VotingOpen(year int, now time.Time) bool {
	if year != s.CurrentYear {
		return false
	}
	return s.VotingEnd == nil || now.Before(*s.VotingEnd)
}
