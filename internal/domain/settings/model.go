package settings

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"photocontest/internal/domain/duel"
)

// Domain errors.
var (
	ErrInvalidCurrentYear = errors.New("current year must be positive")
	ErrInvalidLegacyYear  = errors.New("legacy years must be positive and differ from the current year")
	ErrWaitingTextTooLong = errors.New("waiting text cannot exceed 4000 characters")
	ErrInvalidDuelSpins   = errors.New("duel spins must be between 1 and 1000")
)

// MaxWaitingTextLength bounds the per-year waiting page text.
const MaxWaitingTextLength = 4000

// Settings is the runtime configuration admins edit while the contest runs.
type Settings struct {
	CurrentYear     int               `json:"current_year"`
	LegacyYears     []int             `json:"legacy_years"`
	VotingEnd       *time.Time        `json:"voting_end,omitempty"`
	WaitingText     map[string]string `json:"waiting_text,omitempty"`
	GateLegacyYears bool              `json:"gate_legacy_years"`
	DuelSpins       int               `json:"duel_spins"`
}

// Default returns settings for a fresh install.
func Default(currentYear int) Settings {
	return Settings{
		CurrentYear: currentYear,
		WaitingText: map[string]string{},
		DuelSpins:   duel.DefaultSpinsPerYear,
	}
}

// Validate checks the settings' invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Settings) Validate() error {
	if s.CurrentYear <= 0 {
		return ErrInvalidCurrentYear
	}
	for _, y := range s.LegacyYears {
		if y <= 0 || y == s.CurrentYear {
			return ErrInvalidLegacyYear
		}
	}
	for _, text := range s.WaitingText {
		if len(text) > MaxWaitingTextLength {
			return ErrWaitingTextTooLong
		}
	}
	if s.DuelSpins < 1 || s.DuelSpins > 1000 {
		return ErrInvalidDuelSpins
	}
	return nil
}

// Years returns the current year and legacy years, newest first, without duplicates.
func (s Settings) Years() []int {
	seen := map[int]bool{s.CurrentYear: true}
	years := []int{s.CurrentYear}
	for _, y := range s.LegacyYears {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// IsKnownYear reports whether year is the current or a legacy year.
func (s Settings) IsKnownYear(year int) bool {
	for _, y := range s.Years() {
		if y == year {
			return true
		}
	}
	return false
}

// WaitingTextFor returns the waiting page text configured for year.
func (s Settings) WaitingTextFor(year int) string {
	return s.WaitingText[strconv.Itoa(year)]
}

// SetWaitingText stores text for year; empty text clears it.
func (s *Settings) SetWaitingText(year int, text string) {
	if s.WaitingText == nil {
		s.WaitingText = map[string]string{}
	}
	key := strconv.Itoa(year)
	if text == "" {
		delete(s.WaitingText, key)
		return
	}
	s.WaitingText[key] = text
}

// SpinsPerYear returns the configured duel cap, falling back to the default.
func (s Settings) SpinsPerYear() int {
	if s.DuelSpins <= 0 {
		return duel.DefaultSpinsPerYear
	}
	return s.DuelSpins
}
