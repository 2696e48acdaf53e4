package reaction

import (
	"errors"
	"time"
)

// Reaction kinds. The set is closed.
const (
	KindHype       = "hype"
	KindCreative   = "creative"
	KindFunny      = "funny"
	KindUnderrated = "underrated"
)

// Kinds lists the reaction kinds in display order.
var Kinds = []string{KindHype, KindCreative, KindFunny, KindUnderrated}

// Icons maps each kind to its gallery button.
var Icons = map[string]string{
	KindHype:       "🔥",
	KindCreative:   "🎨",
	KindFunny:      "😂",
	KindUnderrated: "💎",
}

// Weights maps each kind to its contribution to the weighted score.
var Weights = map[string]int{
	KindHype:       2,
	KindCreative:   2,
	KindFunny:      1,
	KindUnderrated: 1,
}

// Domain errors.
var (
	ErrInvalidReaction = errors.New("unknown reaction kind")
	ErrMissingVoter    = errors.New("voter identifier is required")
	ErrMissingImage    = errors.New("image identifier is required")
)

// ErrDuplicateReaction is returned by stores when the voter already holds
// the same reaction on the image.
var ErrDuplicateReaction = errors.New("reaction already exists")

// ValidKind reports whether kind is one of the fixed reaction kinds.
func ValidKind(kind string) bool {
	_, ok := Weights[kind]
	return ok
}

// Reaction tags an image with one kind for one voter and year.
// INVARIANT: unique per (ImageID, VoterID, Kind, ContestYear).
type Reaction struct {
	ID          string
	ImageID     string
	VoterID     string
	Kind        string
	ContestYear int
	CreatedAt   time.Time
}

// Validate checks the reaction's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (r *Reaction) Validate() error {
	if r.VoterID == "" {
		return ErrMissingVoter
	}
	if !ValidKind(r.Kind) {
		return ErrInvalidReaction
	}
	if r.ImageID == "" {
		return ErrMissingImage
	}
	return nil
}

// Counts holds per-kind reaction totals for one image.
type Counts struct {
	Hype       int
	Creative   int
	Funny      int
	Underrated int
}

// Add increments the count for kind by n. Unknown kinds are ignored.
func (c *Counts) Add(kind string, n int) {
	switch kind {
	case KindHype:
		c.Hype += n
	case KindCreative:
		c.Creative += n
	case KindFunny:
		c.Funny += n
	case KindUnderrated:
		c.Underrated += n
	}
}

// Get returns the count for kind.
func (c Counts) Get(kind string) int {
	switch kind {
	case KindHype:
		return c.Hype
	case KindCreative:
		return c.Creative
	case KindFunny:
		return c.Funny
	case KindUnderrated:
		return c.Underrated
	}
	return 0
}

// Total returns the number of reactions across all kinds.
func (c Counts) Total() int {
	return c.Hype + c.Creative + c.Funny + c.Underrated
}

// Weighted returns the reaction contribution to the weighted score.
func (c Counts) Weighted() int {
	return Weights[KindHype]*c.Hype +
		Weights[KindCreative]*c.Creative +
		Weights[KindFunny]*c.Funny +
		Weights[KindUnderrated]*c.Underrated
}
