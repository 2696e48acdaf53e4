package sticker

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"photocontest/internal/domain/image"
)

// Domain errors.
var (
	ErrEmptyFilename   = errors.New("sticker filename cannot be empty")
	ErrUnsupportedType = errors.New("sticker type must be png, jpg, jpeg or gif")
	ErrInvalidYear     = errors.New("contest year must be positive")
	ErrDuplicate       = errors.New("sticker already exists for this contest year")
)

// Sticker is a decorative image shown around the gallery of one contest year.
// INVARIANT: (ContestYear, Filename) is unique.
type Sticker struct {
	ID          string
	ContestYear int
	Filename    string
	SortOrder   int
	Active      bool
	CreatedAt   time.Time
}

// Validate checks the sticker's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Sticker) Validate() error {
	if s.Filename == "" {
		return ErrEmptyFilename
	}
	if !image.AllowedFile(s.Filename) {
		return ErrUnsupportedType
	}
	if s.ContestYear <= 0 {
		return ErrInvalidYear
	}
	return nil
}

// Dir is the sticker directory for a contest year, relative to the upload root.
func Dir(year int) string {
	return filepath.ToSlash(filepath.Join(image.YearDir(year), "stickers"))
}

// Path returns the sticker file path relative to the upload root.
func (s Sticker) Path() string {
	return fmt.Sprintf("%s/%s", Dir(s.ContestYear), s.Filename)
}
