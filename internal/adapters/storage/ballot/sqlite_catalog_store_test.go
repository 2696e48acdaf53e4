package ballot_test

import (
	"context"
	"errors"
	"testing"

	ballotStore "photocontest/internal/adapters/storage/ballot"
	"photocontest/internal/adapters/storage/storagetest"
	"photocontest/internal/domain/ballot"
)

// TestCatalogStore_SeededCatalog verifies the seeded 2026 chip catalog and ordering.
func TestCatalogStore_SeededCatalog(t *testing.T) {
	store := ballotStore.NewSQLiteCatalogStore(storagetest.OpenDB(t))
	opts, err := store.ListOptions(context.Background(), 2026, true)
	if err != nil {
		t.Fatalf("ListOptions: %v", err)
	}
	want := []string{"chip_5", "chip_25", "chip_50", "chip_100", "all_in"}
	if len(opts) != len(want) {
		t.Fatalf("got %d options, want %d", len(opts), len(want))
	}
	for i, key := range want {
		if opts[i].Key != key {
			t.Errorf("opts[%d] = %s, want %s", i, opts[i].Key, key)
		}
	}
	if !opts[4].IsAllIn() || opts[4].Value != 180 {
		t.Errorf("all_in = %+v", opts[4])
	}
}

// TestCatalogStore_SaveAndDeactivate verifies upsert and the activeOnly filter.
func TestCatalogStore_SaveAndDeactivate(t *testing.T) {
	store := ballotStore.NewSQLiteCatalogStore(storagetest.OpenDB(t))
	ctx := context.Background()

	opt := ballot.VoteOption{ContestYear: 2027, Key: "star", Label: "Star", Icon: "⭐", Value: 2, Active: true, SortOrder: 1}
	if err := store.SaveOption(ctx, opt); err != nil {
		t.Fatalf("SaveOption: %v", err)
	}
	opt.Active = false
	opt.Label = "Gold star"
	if err := store.SaveOption(ctx, opt); err != nil {
		t.Fatalf("SaveOption update: %v", err)
	}

	active, _ := store.ListOptions(ctx, 2027, true)
	if len(active) != 0 {
		t.Errorf("inactive option listed: %+v", active)
	}
	got, err := store.GetOption(ctx, 2027, "star")
	if err != nil {
		t.Fatalf("GetOption: %v", err)
	}
	if got.Label != "Gold star" || got.Active {
		t.Errorf("got %+v", got)
	}
	if _, err := store.GetOption(ctx, 2027, "moon"); !errors.Is(err, ballot.ErrInvalidOption) {
		t.Errorf("err = %v, want ErrInvalidOption", err)
	}
}

// TestCatalogStore_YearSettings covers defaults, save and the publish flag.
func TestCatalogStore_YearSettings(t *testing.T) {
	store := ballotStore.NewSQLiteCatalogStore(storagetest.OpenDB(t))
	ctx := context.Background()

	ys, err := store.GetYearSettings(ctx, 2030)
	if err != nil {
		t.Fatalf("GetYearSettings: %v", err)
	}
	if ys != ballot.DefaultYearSettings(2030) {
		t.Errorf("missing year = %+v, want defaults", ys)
	}

	if err := store.SetResultsPublished(ctx, 2030, true); err != nil {
		t.Fatalf("SetResultsPublished: %v", err)
	}
	ys, _ = store.GetYearSettings(ctx, 2030)
	if !ys.ResultsPublished || ys.VoteMode != ballot.ModeToggle {
		t.Errorf("after publish = %+v", ys)
	}

	ys.MaxActions = 7
	ys.VoteMode = ballot.ModeUniqueOptions
	if err := store.SaveYearSettings(ctx, ys); err != nil {
		t.Fatalf("SaveYearSettings: %v", err)
	}
	ys, _ = store.GetYearSettings(ctx, 2030)
	if ys.MaxActions != 7 || !ys.ResultsPublished {
		t.Errorf("after save = %+v", ys)
	}

	seeded, _ := store.GetYearSettings(ctx, 2026)
	if seeded.VoteMode != ballot.ModeUniqueOptions || seeded.MaxActions != 4 {
		t.Errorf("seeded 2026 = %+v", seeded)
	}

	all, err := store.ListYearSettings(ctx)
	if err != nil {
		t.Fatalf("ListYearSettings: %v", err)
	}
	if len(all) != 3 || all[0].ContestYear != 2030 {
		t.Errorf("all = %+v", all)
	}
}
