package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"photocontest/internal/adapters/uploads"
	"photocontest/internal/domain/image"
)

// ImageStoreForAdmin defines the image store interface needed by the image admin orchestrators.
type ImageStoreForAdmin interface {
	Save(ctx context.Context, img image.Image) error
	GetByID(ctx context.Context, id string) (image.Image, error)
	Delete(ctx context.Context, id string) error
}

// FileStore writes and removes files under the upload root. *uploads.Dir satisfies it.
type FileStore interface {
	Save(rel string, src io.Reader) error
	Thumbnail(srcRel, dstRel string) error
	Remove(rels ...string) error
	Exists(rel string) bool
}

// ImageAdminDeps holds dependencies for the image admin orchestrators.
type ImageAdminDeps struct {
	ImageStore ImageStoreForAdmin
	Files      FileStore
	GenerateID func() string
	Now        func() time.Time
}

// UploadImageInput carries one uploaded file.
type UploadImageInput struct {
	Year        int
	Filename    string
	Body        io.Reader
	Uploader    string
	Description string
}

// ExecuteUploadImage stores the file, renders its thumbnail and records the image.
// PRE: caller is an admin
// POST: visible image persisted with file and thumbnail on disk; nothing left behind on error
func ExecuteUploadImage(ctx context.Context, input UploadImageInput, deps ImageAdminDeps) (image.Image, error) {
	name, err := uploads.SanitizeFilename(input.Filename)
	if err != nil {
		return image.Image{}, image.ErrEmptyFilename
	}
	img := image.Image{
		ID:          deps.GenerateID(),
		Filename:    name,
		Uploader:    input.Uploader,
		Description: input.Description,
		UploadedAt:  deps.Now(),
		Visible:     true,
		ContestYear: input.Year,
	}
	if err := img.ApplyEdit(input.Uploader, input.Description, true); err != nil {
		return image.Image{}, err
	}
	if err := img.Validate(); err != nil {
		return image.Image{}, err
	}
	if deps.Files.Exists(img.Path()) || deps.Files.Exists(img.ThumbPath()) {
		img.Filename = shortID(img.ID) + "_" + name
	}

	if err := deps.Files.Save(img.Path(), input.Body); err != nil {
		return image.Image{}, fmt.Errorf("store upload: %w", err)
	}
	if err := deps.Files.Thumbnail(img.Path(), img.ThumbPath()); err != nil {
		deps.Files.Remove(img.Path())
		slog.Warn("image_event", "event", "thumbnail_failed", "filename", img.Filename, "error", err)
		return image.Image{}, image.ErrUnsupportedType
	}
	if err := deps.ImageStore.Save(ctx, img); err != nil {
		deps.Files.Remove(img.Path(), img.ThumbPath())
		return image.Image{}, err
	}

	slog.Info("image_event", "event", "image_uploaded", "image_id", img.ID, "year", img.ContestYear, "filename", img.Filename)
	return img, nil
}

// ImageEdit is one row of a bulk image edit.
type ImageEdit struct {
	ID          string
	Uploader    string
	Description string
	Visible     bool
}

// ExecuteUpdateImages applies admin edits to images of one year.
// PRE: caller is an admin
// POST: all edits applied, or none when any edit is invalid
func ExecuteUpdateImages(ctx context.Context, year int, edits []ImageEdit, deps ImageAdminDeps) (int, error) {
	updated := make([]image.Image, 0, len(edits))
	for _, e := range edits {
		img, err := deps.ImageStore.GetByID(ctx, e.ID)
		if err != nil {
			return 0, err
		}
		if img.ContestYear != year {
			return 0, image.ErrImageNotInContestYear
		}
		if err := img.ApplyEdit(e.Uploader, e.Description, e.Visible); err != nil {
			return 0, fmt.Errorf("image %s: %w", e.ID, err)
		}
		updated = append(updated, img)
	}
	for _, img := range updated {
		if err := deps.ImageStore.Save(ctx, img); err != nil {
			return 0, err
		}
	}
	slog.Info("image_event", "event", "images_updated", "year", year, "count", len(updated))
	return len(updated), nil
}

// ExecuteDeleteImage removes an image with its ballots, reactions, duel picks and files.
// PRE: caller is an admin
// POST: image rows gone; file removal failures are logged only
func ExecuteDeleteImage(ctx context.Context, id string, deps ImageAdminDeps) error {
	img, err := deps.ImageStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := deps.ImageStore.Delete(ctx, id); err != nil {
		return err
	}
	if err := deps.Files.Remove(img.Path(), img.ThumbPath()); err != nil {
		slog.Warn("image_event", "event", "file_cleanup_failed", "image_id", id, "error", err)
	}
	slog.Info("image_event", "event", "image_deleted", "image_id", id, "year", img.ContestYear)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
