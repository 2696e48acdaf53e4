package image

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Max length constants for admin-editable fields.
const (
	MaxDescriptionLength = 1000
	MaxUploaderLength    = 100
	MaxFilenameLength    = 255
)

// Domain errors.
var (
	ErrEmptyFilename         = errors.New("image filename cannot be empty")
	ErrFilenameTooLong       = errors.New("image filename cannot exceed 255 characters")
	ErrUnsupportedType       = errors.New("image type must be png, jpg, jpeg or gif")
	ErrInvalidYear           = errors.New("contest year must be positive")
	ErrDescriptionTooLong    = errors.New("description cannot exceed 1000 characters")
	ErrUploaderTooLong       = errors.New("uploader cannot exceed 100 characters")
	ErrImageNotFound         = errors.New("image not found")
	ErrImageNotInContestYear = errors.New("image does not belong to this contest year")
)

// allowedExtensions lists the upload types accepted for contest entries.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// AllowedFile reports whether the filename has an accepted image extension.
func AllowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Image is a single contest entry.
// INVARIANT: ContestYear > 0 and Filename has an allowed extension.
type Image struct {
	ID          string
	Filename    string
	Description string
	Uploader    string
	UploadedAt  time.Time
	Visible     bool
	ContestYear int
}

// Validate checks the image's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (i *Image) Validate() error {
	if i.Filename == "" {
		return ErrEmptyFilename
	}
	if len(i.Filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if !AllowedFile(i.Filename) {
		return ErrUnsupportedType
	}
	if i.ContestYear <= 0 {
		return ErrInvalidYear
	}
	if len(i.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if len(i.Uploader) > MaxUploaderLength {
		return ErrUploaderTooLong
	}
	return nil
}

// ApplyEdit updates the admin-editable fields.
// PRE: none
// POST: fields replaced when valid; image unchanged on error
func (i *Image) ApplyEdit(uploader, description string, visible bool) error {
	uploader = strings.TrimSpace(uploader)
	description = strings.TrimSpace(description)
	if len(uploader) > MaxUploaderLength {
		return ErrUploaderTooLong
	}
	if len(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	i.Uploader = uploader
	i.Description = description
	i.Visible = visible
	return nil
}

// YearDir is the upload directory for a contest year, relative to the upload root.
func YearDir(year int) string {
	return fmt.Sprintf("uploads_%d", year)
}

// Path returns the image file path relative to the upload root.
func (i Image) Path() string {
	return filepath.ToSlash(filepath.Join(YearDir(i.ContestYear), i.Filename))
}

// ThumbPath returns the thumbnail path relative to the upload root.
// Thumbnails are always JPEG.
func (i Image) ThumbPath() string {
	base := strings.TrimSuffix(i.Filename, filepath.Ext(i.Filename))
	return filepath.ToSlash(filepath.Join(YearDir(i.ContestYear), "thumbs", base+".jpg"))
}
