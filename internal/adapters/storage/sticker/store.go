package sticker

import (
	"context"

	domain "photocontest/internal/domain/sticker"
)

// Store persists gallery stickers.
type Store interface {
	Save(ctx context.Context, s domain.Sticker) error
	GetByID(ctx context.Context, id string) (domain.Sticker, error)
	ListByYear(ctx context.Context, year int, activeOnly bool) ([]domain.Sticker, error)
	Delete(ctx context.Context, id string) error
}
