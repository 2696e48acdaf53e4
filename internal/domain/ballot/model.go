package ballot

import (
	"errors"
	"strings"
	"time"
)

// Vote modes.
const (
	ModeToggle        = "toggle"
	ModeUniqueOptions = "unique_options"
)

// All-in identifiers. An option is all-in when its key is AllInKey or it
// belongs to AllInGroup.
const (
	AllInKey   = "all_in"
	AllInGroup = "allin"
)

// Defaults applied to a year with no stored settings.
const (
	DefaultMaxActions = 3
	DefaultUnitName   = "Stimme"
	DefaultUnitIcon   = "❤️"
	DefaultThemeID    = "default"
	DefaultOptionKey  = "heart"
)

// Max length constants for catalog fields.
const (
	MaxKeyLength   = 40
	MaxLabelLength = 60
	MaxIconLength  = 16
)

// Cast failure kinds. Each is surfaced to the voter unchanged.
var (
	ErrInvalidOption     = errors.New("vote option is unknown or inactive")
	ErrOptionAlreadyUsed = errors.New("this option can only be used once per contest year")
	ErrExclusiveConflict = errors.New("all-in cannot be combined with other votes")
	ErrLimitReached      = errors.New("no votes left for this contest year")
	ErrMissingVoter      = errors.New("voter identifier is required")
)

// Catalog and settings errors.
var (
	ErrEmptyKey         = errors.New("option key cannot be empty")
	ErrKeyTooLong       = errors.New("option key cannot exceed 40 characters")
	ErrInvalidKey       = errors.New("option key may only contain a-z, 0-9 and underscore")
	ErrEmptyLabel       = errors.New("option label cannot be empty")
	ErrLabelTooLong     = errors.New("option label cannot exceed 60 characters")
	ErrIconTooLong      = errors.New("option icon cannot exceed 16 bytes")
	ErrNegativeValue    = errors.New("option value cannot be negative")
	ErrInvalidYear      = errors.New("contest year must be positive")
	ErrInvalidMode      = errors.New("vote mode must be toggle or unique_options")
	ErrInvalidMaxAction = errors.New("max actions must be between 1 and 100")
)

// ErrDuplicateBallot is returned by stores when the (image, voter, year)
// uniqueness constraint rejects an insert.
var ErrDuplicateBallot = errors.New("ballot already exists for this image")

// VoteOption is one legal voting action for a contest year.
// INVARIANT: (ContestYear, Key) is unique.
type VoteOption struct {
	ContestYear    int
	Key            string
	Label          string
	Icon           string
	Value          int
	UniquePerUser  bool
	ExclusiveGroup string
	IsSpecial      bool
	Active         bool
	SortOrder      int
}

// IsAllIn reports whether casting this option excludes every other ballot.
func (o VoteOption) IsAllIn() bool {
	return o.Key == AllInKey || o.ExclusiveGroup == AllInGroup
}

// Snapshot captures the option's display and point values at cast time.
func (o VoteOption) Snapshot() OptionSnapshot {
	return OptionSnapshot{Key: o.Key, Label: o.Label, Value: o.Value}
}

// Validate checks the option's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (o *VoteOption) Validate() error {
	if o.ContestYear <= 0 {
		return ErrInvalidYear
	}
	if o.Key == "" {
		return ErrEmptyKey
	}
	if len(o.Key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	for _, r := range o.Key {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_' {
			return ErrInvalidKey
		}
	}
	if strings.TrimSpace(o.Label) == "" {
		return ErrEmptyLabel
	}
	if len(o.Label) > MaxLabelLength {
		return ErrLabelTooLong
	}
	if len(o.Icon) > MaxIconLength {
		return ErrIconTooLong
	}
	if o.Value < 0 {
		return ErrNegativeValue
	}
	return nil
}

// YearSettings governs ballot policy for one contest year.
type YearSettings struct {
	ContestYear      int
	VoteMode         string
	MaxActions       int
	UnitName         string
	UnitIcon         string
	ThemeID          string
	ResultsPublished bool
}

// DefaultYearSettings returns the settings used when a year has no stored row.
func DefaultYearSettings(year int) YearSettings {
	return YearSettings{
		ContestYear: year,
		VoteMode:    ModeToggle,
		MaxActions:  DefaultMaxActions,
		UnitName:    DefaultUnitName,
		UnitIcon:    DefaultUnitIcon,
		ThemeID:     DefaultThemeID,
	}
}

// Validate checks the settings' invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (s *YearSettings) Validate() error {
	if s.ContestYear <= 0 {
		return ErrInvalidYear
	}
	if s.VoteMode != ModeToggle && s.VoteMode != ModeUniqueOptions {
		return ErrInvalidMode
	}
	if s.MaxActions < 1 || s.MaxActions > 100 {
		return ErrInvalidMaxAction
	}
	return nil
}

// OptionSnapshot is the copy of a VoteOption stored on a ballot.
// Later catalog edits never rewrite it.
type OptionSnapshot struct {
	Key   string
	Label string
	Value int
}

// Ballot is one voter's action on one image in one contest year.
// INVARIANT: at most one Ballot per (ImageID, VoterID, ContestYear).
type Ballot struct {
	ID          string
	ImageID     string
	VoterID     string
	ContestYear int
	Choice      OptionSnapshot
	CastAt      time.Time
}
