package reaction

import (
	"context"

	domain "photocontest/internal/domain/reaction"
)

// Store persists reactions.
type Store interface {
	Insert(ctx context.Context, r domain.Reaction) error
	Delete(ctx context.Context, imageID, voterID, kind string, year int) (bool, error)
	CountsForImage(ctx context.Context, imageID string, year int) (domain.Counts, error)
	CountsByYear(ctx context.Context, year int) (map[string]domain.Counts, error)
	ListByVoter(ctx context.Context, voterID string, year int) ([]domain.Reaction, error)
	DeleteByYear(ctx context.Context, year int) (int, error)
}
