package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"photocontest/internal/domain/settings"
)

// SettingsStoreForAdmin defines the runtime settings store interface.
type SettingsStoreForAdmin interface {
	Load(ctx context.Context) (settings.Settings, error)
	Save(ctx context.Context, s settings.Settings) error
}

// RuntimeSettingsEdit carries the admin settings form.
// A nil WaitingText leaves the stored texts untouched.
type RuntimeSettingsEdit struct {
	CurrentYear     int
	LegacyYears     []int
	VotingEnd       *time.Time
	GateLegacyYears bool
	DuelSpins       int
	WaitingText     map[int]string
}

// RuntimeSettingsDeps holds dependencies for SaveRuntimeSettings.
type RuntimeSettingsDeps struct {
	SettingsStore SettingsStoreForAdmin
}

// ExecuteSaveRuntimeSettings replaces the editable runtime settings.
// PRE: caller is an admin
// POST: validated settings persisted; nothing written on error
func ExecuteSaveRuntimeSettings(ctx context.Context, edit RuntimeSettingsEdit, deps RuntimeSettingsDeps) (settings.Settings, error) {
	s, err := deps.SettingsStore.Load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}

	s.CurrentYear = edit.CurrentYear
	s.LegacyYears = dedupeYears(edit.LegacyYears)
	s.VotingEnd = edit.VotingEnd
	s.GateLegacyYears = edit.GateLegacyYears
	if edit.DuelSpins != 0 {
		s.DuelSpins = edit.DuelSpins
	}
	for year, text := range edit.WaitingText {
		s.SetWaitingText(year, strings.TrimSpace(text))
	}

	if err := s.Validate(); err != nil {
		return settings.Settings{}, err
	}
	if err := deps.SettingsStore.Save(ctx, s); err != nil {
		return settings.Settings{}, err
	}
	slog.Info("config_event", "event", "runtime_settings_saved",
		"current_year", s.CurrentYear, "legacy_years", s.LegacyYears,
		"voting_end_set", s.VotingEnd != nil, "gate_legacy", s.GateLegacyYears, "duel_spins", s.DuelSpins)
	return s, nil
}

func dedupeYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	return out
}
