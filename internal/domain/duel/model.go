package duel

import (
	"errors"
	"math/rand/v2"
	"time"

	"photocontest/internal/domain/image"
)

// Draw sizes.
const (
	SizePair    = 2
	SizeTriplet = 3
)

// DefaultSpinsPerYear caps duel picks per voter and contest year.
const DefaultSpinsPerYear = 10

// Domain errors.
var (
	ErrNotEnoughCandidates = errors.New("not enough visible images for a duel")
	ErrNoSpinsLeft         = errors.New("no duel spins left for this contest year")
	ErrInvalidSize         = errors.New("duel size must be 2 or 3")
	ErrMissingVoter        = errors.New("voter identifier is required")
	ErrMissingImage        = errors.New("image identifier is required")
)

// Vote is one duel pick. The log is append-only.
type Vote struct {
	ID          string
	ImageID     string
	VoterID     string
	ContestYear int
	CreatedAt   time.Time
}

// Validate checks the vote's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (v *Vote) Validate() error {
	if v.VoterID == "" {
		return ErrMissingVoter
	}
	if v.ImageID == "" {
		return ErrMissingImage
	}
	return nil
}

// Shuffler permutes n elements.
// A *rand.Rand satisfies it but must not be shared between requests.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// GlobalShuffler draws from the math/rand/v2 top-level source, which is safe
// for concurrent use. Servers share it across duel draws.
type GlobalShuffler struct{}

// Shuffle implements Shuffler.
func (GlobalShuffler) Shuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}

// Draw picks size distinct candidates in random order.
// PRE: size is SizePair or SizeTriplet
// POST: returns exactly size images, or ErrNotEnoughCandidates; candidates is not modified
func Draw(candidates []image.Image, size int, rng Shuffler) ([]image.Image, error) {
	if size != SizePair && size != SizeTriplet {
		return nil, ErrInvalidSize
	}
	if len(candidates) < size {
		return nil, ErrNotEnoughCandidates
	}
	pool := make([]image.Image, len(candidates))
	copy(pool, candidates)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:size], nil
}

// SpinsLeft returns the remaining picks given used picks and the cap.
func SpinsLeft(used, limit int) int {
	if limit <= 0 {
		limit = DefaultSpinsPerYear
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// Tally is the pick count for one image.
type Tally struct {
	ImageID string
	Picks   int
}
