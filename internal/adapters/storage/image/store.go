package image

import (
	"context"

	domain "photocontest/internal/domain/image"
)

// Store persists contest images.
type Store interface {
	Save(ctx context.Context, img domain.Image) error
	GetByID(ctx context.Context, id string) (domain.Image, error)
	ListByYear(ctx context.Context, year int, visibleOnly bool) ([]domain.Image, error)
	Delete(ctx context.Context, id string) error
}
