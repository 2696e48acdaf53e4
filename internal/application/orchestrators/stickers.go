package orchestrators

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"photocontest/internal/adapters/uploads"
	"photocontest/internal/domain/sticker"
)

// StickerStoreForAdmin defines the sticker store interface needed by the sticker orchestrators.
type StickerStoreForAdmin interface {
	Save(ctx context.Context, s sticker.Sticker) error
	GetByID(ctx context.Context, id string) (sticker.Sticker, error)
	ListByYear(ctx context.Context, year int, activeOnly bool) ([]sticker.Sticker, error)
	Delete(ctx context.Context, id string) error
}

// StickerDeps holds dependencies for the sticker orchestrators.
type StickerDeps struct {
	StickerStore StickerStoreForAdmin
	Files        FileStore
	GenerateID   func() string
	Now          func() time.Time
}

// UploadStickerInput carries one uploaded sticker file.
type UploadStickerInput struct {
	Year     int
	Filename string
	Body     io.Reader
}

// ExecuteUploadSticker stores a sticker file and appends it to the year's set.
// PRE: caller is an admin
// POST: active sticker persisted after the existing ones; file removed on store failure
func ExecuteUploadSticker(ctx context.Context, input UploadStickerInput, deps StickerDeps) (sticker.Sticker, error) {
	name, err := uploads.SanitizeFilename(input.Filename)
	if err != nil {
		return sticker.Sticker{}, sticker.ErrEmptyFilename
	}
	s := sticker.Sticker{
		ID:          deps.GenerateID(),
		ContestYear: input.Year,
		Filename:    name,
		Active:      true,
		CreatedAt:   deps.Now(),
	}
	if err := s.Validate(); err != nil {
		return sticker.Sticker{}, err
	}
	if deps.Files.Exists(s.Path()) {
		return sticker.Sticker{}, sticker.ErrDuplicate
	}

	existing, err := deps.StickerStore.ListByYear(ctx, input.Year, false)
	if err != nil {
		return sticker.Sticker{}, err
	}
	for _, e := range existing {
		if e.SortOrder >= s.SortOrder {
			s.SortOrder = e.SortOrder + 10
		}
	}

	if err := deps.Files.Save(s.Path(), input.Body); err != nil {
		return sticker.Sticker{}, fmt.Errorf("store sticker: %w", err)
	}
	if err := deps.StickerStore.Save(ctx, s); err != nil {
		deps.Files.Remove(s.Path())
		return sticker.Sticker{}, err
	}
	slog.Info("admin_event", "event", "sticker_uploaded", "sticker_id", s.ID, "year", s.ContestYear, "filename", s.Filename)
	return s, nil
}

// ExecuteSetStickerActive shows or hides a sticker.
// PRE: caller is an admin
// POST: Active flag stored
func ExecuteSetStickerActive(ctx context.Context, id string, active bool, deps StickerDeps) error {
	s, err := deps.StickerStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.Active = active
	if err := deps.StickerStore.Save(ctx, s); err != nil {
		return err
	}
	slog.Info("admin_event", "event", "sticker_toggled", "sticker_id", id, "active", active)
	return nil
}

// ExecuteDeleteSticker removes a sticker row and its file.
// PRE: caller is an admin
// POST: row gone; a missing file is not an error
func ExecuteDeleteSticker(ctx context.Context, id string, deps StickerDeps) error {
	s, err := deps.StickerStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := deps.StickerStore.Delete(ctx, id); err != nil {
		return err
	}
	if err := deps.Files.Remove(s.Path()); err != nil {
		slog.Warn("admin_event", "event", "sticker_file_cleanup_failed", "sticker_id", id, "error", err)
	}
	slog.Info("admin_event", "event", "sticker_deleted", "sticker_id", id, "year", s.ContestYear)
	return nil
}
