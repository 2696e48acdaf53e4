package ballot_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	ballotStore "photocontest/internal/adapters/storage/ballot"
	"photocontest/internal/adapters/storage/storagetest"
	"photocontest/internal/domain/ballot"
)

var castAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedImages(t *testing.T, db *sql.DB, year int, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := db.Exec(`INSERT INTO images (id, filename, uploaded_at, contest_year) VALUES (?, ?, 'x', ?)`, id, id+".jpg", year); err != nil {
			t.Fatalf("seed image %s: %v", id, err)
		}
	}
}

func newBallot(id, imageID, voter string, year int, key string, value int) ballot.Ballot {
	return ballot.Ballot{
		ID:     id, ImageID: imageID, VoterID: voter, ContestYear: year,
		Choice: ballot.OptionSnapshot{Key: key, Label: key, Value: value},
		CastAt: castAt,
	}
}

// TestSQLiteStore_InsertAndList verifies a ballot round-trips with its snapshot.
func TestSQLiteStore_InsertAndList(t *testing.T) {
	db := storagetest.OpenDB(t)
	seedImages(t, db, 2026, "img1")
	store := ballotStore.NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Insert(ctx, newBallot("b1", "img1", "v1", 2026, "chip_25", 25)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := store.ListByVoter(ctx, "v1", 2026)
	if err != nil {
		t.Fatalf("ListByVoter: %v", err)
	}
	if len(got) != 1 || got[0].Choice.Value != 25 || got[0].Choice.Key != "chip_25" || !got[0].CastAt.Equal(castAt) {
		t.Errorf("got %+v", got)
	}
	if other, _ := store.ListByVoter(ctx, "v1", 2025); len(other) != 0 {
		t.Errorf("ballots leaked across years: %+v", other)
	}
}

// TestSQLiteStore_InsertDuplicate maps the uniqueness constraint to ErrDuplicateBallot.
func TestSQLiteStore_InsertDuplicate(t *testing.T) {
	db := storagetest.OpenDB(t)
	seedImages(t, db, 2026, "img1")
	store := ballotStore.NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Insert(ctx, newBallot("b1", "img1", "v1", 2026, "chip_5", 5)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := store.Insert(ctx, newBallot("b2", "img1", "v1", 2026, "chip_50", 50))
	if !errors.Is(err, ballot.ErrDuplicateBallot) {
		t.Fatalf("err = %v, want ErrDuplicateBallot", err)
	}
}

// TestSQLiteStore_TallyByYear sums snapshotted values per image.
func TestSQLiteStore_TallyByYear(t *testing.T) {
	db := storagetest.OpenDB(t)
	seedImages(t, db, 2026, "img1", "img2")
	store := ballotStore.NewSQLiteStore(db)
	ctx := context.Background()

	for _, b := range []ballot.Ballot{
		newBallot("b1", "img1", "v1", 2026, "chip_25", 25),
		newBallot("b2", "img1", "v2", 2026, "chip_100", 100),
		newBallot("b3", "img2", "v1", 2026, "chip_5", 5),
	} {
		if err := store.Insert(ctx, b); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	tally, err := store.TallyByYear(ctx, 2026)
	if err != nil {
		t.Fatalf("TallyByYear: %v", err)
	}
	if tally["img1"].Count != 2 || tally["img1"].Points != 125 {
		t.Errorf("img1 = %+v", tally["img1"])
	}
	if tally["img2"].Points != 5 {
		t.Errorf("img2 = %+v", tally["img2"])
	}
	voters, _ := store.CountVoters(ctx, 2026)
	if voters != 2 {
		t.Errorf("voters = %d, want 2", voters)
	}
	ballots, _ := store.CountBallots(ctx, 2026)
	if ballots != 3 {
		t.Errorf("ballots = %d, want 3", ballots)
	}
	if none, _ := store.CountBallots(ctx, 2025); none != 0 {
		t.Errorf("2025 ballots = %d, want 0", none)
	}
}

// TestSQLiteStore_DeleteScopes verifies voter and year deletes stay in scope.
func TestSQLiteStore_DeleteScopes(t *testing.T) {
	db := storagetest.OpenDB(t)
	seedImages(t, db, 2026, "img1", "img2")
	seedImages(t, db, 2025, "old")
	store := ballotStore.NewSQLiteStore(db)
	ctx := context.Background()

	for _, b := range []ballot.Ballot{
		newBallot("b1", "img1", "v1", 2026, "heart", 1),
		newBallot("b2", "img2", "v1", 2026, "heart", 1),
		newBallot("b3", "img1", "v2", 2026, "heart", 1),
		newBallot("b4", "old", "v1", 2025, "heart", 1),
	} {
		if err := store.Insert(ctx, b); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	n, err := store.DeleteByVoter(ctx, "v1", 2026)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByVoter = %d, %v; want 2", n, err)
	}
	if left, _ := store.ListByVoter(ctx, "v1", 2025); len(left) != 1 {
		t.Errorf("other year touched: %+v", left)
	}
	n, err = store.DeleteByYear(ctx, 2026)
	if err != nil || n != 1 {
		t.Fatalf("DeleteByYear = %d, %v; want 1", n, err)
	}
	if err := store.Delete(ctx, "b4"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if left, _ := store.ListByVoter(ctx, "v1", 2025); len(left) != 0 {
		t.Errorf("ballot not deleted: %+v", left)
	}
}
