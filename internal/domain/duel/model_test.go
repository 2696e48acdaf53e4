package duel_test

import (
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"photocontest/internal/domain/duel"
	"photocontest/internal/domain/image"
)

func candidates(n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = image.Image{ID: string(rune('a' + i)), Filename: "x.jpg", ContestYear: 2026, Visible: true}
	}
	return out
}

// TestDraw_DistinctPicks verifies a triplet draw returns three distinct images.
func TestDraw_DistinctPicks(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	got, err := duel.Draw(candidates(6), duel.SizeTriplet, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := map[string]bool{}
	for _, img := range got {
		if seen[img.ID] {
			t.Errorf("duplicate pick %s", img.ID)
		}
		seen[img.ID] = true
	}
}

// TestDraw_NotEnoughCandidates verifies a short pool fails.
func TestDraw_NotEnoughCandidates(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	_, err := duel.Draw(candidates(2), duel.SizeTriplet, rng)
	if !errors.Is(err, duel.ErrNotEnoughCandidates) {
		t.Fatalf("err = %v, want ErrNotEnoughCandidates", err)
	}
}

// TestDraw_InvalidSize rejects sizes other than pair and triplet.
func TestDraw_InvalidSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	if _, err := duel.Draw(candidates(5), 4, rng); !errors.Is(err, duel.ErrInvalidSize) {
		t.Fatalf("err = %v, want ErrInvalidSize", err)
	}
}

// TestDraw_DoesNotReorderInput verifies the caller's slice is untouched.
func TestDraw_DoesNotReorderInput(t *testing.T) {
	pool := candidates(5)
	rng := rand.New(rand.NewPCG(3, 4))
	if _, err := duel.Draw(pool, duel.SizePair, rng); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, img := range pool {
		if img.ID != string(rune('a'+i)) {
			t.Fatalf("input reordered at %d: %s", i, img.ID)
		}
	}
}

// TestSpinsLeft clamps at zero and applies the default cap.
func TestSpinsLeft(t *testing.T) {
	if got := duel.SpinsLeft(3, 10); got != 7 {
		t.Errorf("SpinsLeft(3,10) = %d", got)
	}
	if got := duel.SpinsLeft(12, 10); got != 0 {
		t.Errorf("SpinsLeft(12,10) = %d", got)
	}
	if got := duel.SpinsLeft(0, 0); got != duel.DefaultSpinsPerYear {
		t.Errorf("SpinsLeft(0,0) = %d", got)
	}
}

// TestGlobalShuffler_ConcurrentDraws shares one shuffler across goroutines the
// way the server does. Run with -race.
func TestGlobalShuffler_ConcurrentDraws(t *testing.T) {
	var rng duel.Shuffler = duel.GlobalShuffler{}
	pool := candidates(8)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				got, err := duel.Draw(pool, duel.SizePair, rng)
				if err != nil {
					errs <- err
					return
				}
				if got[0].ID == got[1].ID {
					errs <- errors.New("pair drew the same image twice")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if pool[0].ID != "a" || pool[7].ID != "h" {
		t.Errorf("candidates reordered: first %s last %s", pool[0].ID, pool[7].ID)
	}
}
