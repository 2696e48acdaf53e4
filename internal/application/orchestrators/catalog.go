package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"photocontest/internal/domain/ballot"
)

// CatalogStoreForAdmin defines the catalog interface needed by the catalog admin orchestrators.
type CatalogStoreForAdmin interface {
	SaveOption(ctx context.Context, o ballot.VoteOption) error
	GetOption(ctx context.Context, year int, key string) (ballot.VoteOption, error)
	GetYearSettings(ctx context.Context, year int) (ballot.YearSettings, error)
	SaveYearSettings(ctx context.Context, s ballot.YearSettings) error
}

// CatalogDeps holds dependencies for the catalog admin orchestrators.
type CatalogDeps struct {
	CatalogStore CatalogStoreForAdmin
}

// ExecuteSaveVoteOption creates or updates a vote option.
// PRE: caller is an admin
// POST: option stored; ballots already cast keep their snapshot
func ExecuteSaveVoteOption(ctx context.Context, o ballot.VoteOption, deps CatalogDeps) (ballot.VoteOption, error) {
	o.Key = strings.ToLower(strings.TrimSpace(o.Key))
	o.Label = strings.TrimSpace(o.Label)
	o.Icon = strings.TrimSpace(o.Icon)
	o.ExclusiveGroup = strings.TrimSpace(o.ExclusiveGroup)
	if err := o.Validate(); err != nil {
		return ballot.VoteOption{}, err
	}
	if err := deps.CatalogStore.SaveOption(ctx, o); err != nil {
		return ballot.VoteOption{}, err
	}
	slog.Info("admin_event", "event", "vote_option_saved", "year", o.ContestYear, "key", o.Key, "value", o.Value, "active", o.Active)
	return o, nil
}

// ExecuteSetOptionActive switches an option on or off without touching other fields.
// PRE: caller is an admin
// POST: option's Active flag stored, or ballot.ErrInvalidOption for an unknown key
func ExecuteSetOptionActive(ctx context.Context, year int, key string, active bool, deps CatalogDeps) error {
	o, err := deps.CatalogStore.GetOption(ctx, year, key)
	if err != nil {
		return err
	}
	o.Active = active
	if err := deps.CatalogStore.SaveOption(ctx, o); err != nil {
		return err
	}
	slog.Info("admin_event", "event", "vote_option_toggled", "year", year, "key", key, "active", active)
	return nil
}

// YearSettingsEdit carries the admin-editable ballot policy fields.
type YearSettingsEdit struct {
	Year       int
	VoteMode   string
	MaxActions int
	UnitName   string
	UnitIcon   string
	ThemeID    string
}

// ExecuteSaveYearSettings updates a year's ballot policy.
// PRE: caller is an admin
// POST: policy stored; the publication flag is preserved
func ExecuteSaveYearSettings(ctx context.Context, edit YearSettingsEdit, deps CatalogDeps) (ballot.YearSettings, error) {
	current, err := deps.CatalogStore.GetYearSettings(ctx, edit.Year)
	if err != nil {
		return ballot.YearSettings{}, err
	}
	s := ballot.YearSettings{
		ContestYear:      edit.Year,
		VoteMode:         edit.VoteMode,
		MaxActions:       edit.MaxActions,
		UnitName:         orDefault(strings.TrimSpace(edit.UnitName), ballot.DefaultUnitName),
		UnitIcon:         orDefault(strings.TrimSpace(edit.UnitIcon), ballot.DefaultUnitIcon),
		ThemeID:          orDefault(strings.TrimSpace(edit.ThemeID), ballot.DefaultThemeID),
		ResultsPublished: current.ResultsPublished,
	}
	if err := s.Validate(); err != nil {
		return ballot.YearSettings{}, err
	}
	if err := deps.CatalogStore.SaveYearSettings(ctx, s); err != nil {
		return ballot.YearSettings{}, err
	}
	slog.Info("admin_event", "event", "year_settings_saved", "year", s.ContestYear, "mode", s.VoteMode, "max_actions", s.MaxActions)
	return s, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
