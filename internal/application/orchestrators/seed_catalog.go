package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"photocontest/internal/domain/ballot"
)

// CatalogStoreForSeed defines the store interface needed by SeedCatalog.
type CatalogStoreForSeed interface {
	GetOption(ctx context.Context, year int, key string) (ballot.VoteOption, error)
	SaveOption(ctx context.Context, o ballot.VoteOption) error
	ListYearSettings(ctx context.Context) ([]ballot.YearSettings, error)
	SaveYearSettings(ctx context.Context, s ballot.YearSettings) error
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	CatalogStore CatalogStoreForSeed
}

// seedYears is the shipped ballot policy: a classic heart vote for 2025 and
// casino chips for 2026.
var seedYears = []ballot.YearSettings{
	{ContestYear: 2025, VoteMode: ballot.ModeToggle, MaxActions: 3, UnitName: "Stimme", UnitIcon: "❤️", ThemeID: "default"},
	{ContestYear: 2026, VoteMode: ballot.ModeUniqueOptions, MaxActions: 4, UnitName: "Chip", UnitIcon: "🪙", ThemeID: "casino"},
}

var seedOptions = []ballot.VoteOption{
	{ContestYear: 2025, Key: "heart", Label: "Vote", Icon: "❤️", Value: 1, Active: true, SortOrder: 10},
	{ContestYear: 2026, Key: "chip_5", Label: "5", Icon: "🪙", Value: 5, UniquePerUser: true, Active: true, SortOrder: 10},
	{ContestYear: 2026, Key: "chip_25", Label: "25", Icon: "🪙", Value: 25, UniquePerUser: true, Active: true, SortOrder: 20},
	{ContestYear: 2026, Key: "chip_50", Label: "50", Icon: "🪙", Value: 50, UniquePerUser: true, Active: true, SortOrder: 30},
	{ContestYear: 2026, Key: "chip_100", Label: "100", Icon: "🪙", Value: 100, UniquePerUser: true, Active: true, SortOrder: 40},
	{ContestYear: 2026, Key: ballot.AllInKey, Label: "All-in", Icon: "🎰", Value: 180, UniquePerUser: true, ExclusiveGroup: ballot.AllInGroup, IsSpecial: true, Active: true, SortOrder: 99},
}

// ExecuteSeedCatalog creates the default year settings and vote options that do not exist yet.
// POST: rows already present, including admin edits, are left untouched
func ExecuteSeedCatalog(ctx context.Context, deps SeedCatalogDeps) error {
	stored, err := deps.CatalogStore.ListYearSettings(ctx)
	if err != nil {
		return err
	}
	have := make(map[int]bool, len(stored))
	for _, ys := range stored {
		have[ys.ContestYear] = true
	}

	years := 0
	for _, ys := range seedYears {
		if have[ys.ContestYear] {
			continue
		}
		if err := deps.CatalogStore.SaveYearSettings(ctx, ys); err != nil {
			return err
		}
		years++
	}

	options := 0
	for _, o := range seedOptions {
		_, err := deps.CatalogStore.GetOption(ctx, o.ContestYear, o.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ballot.ErrInvalidOption) {
			return err
		}
		if err := deps.CatalogStore.SaveOption(ctx, o); err != nil {
			return err
		}
		options++
	}

	if years > 0 || options > 0 {
		slog.Info("seed_event", "event", "catalog_seeded", "years", years, "options", options)
	}
	return nil
}
