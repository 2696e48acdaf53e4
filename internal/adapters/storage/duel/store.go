package duel

import (
	"context"

	domain "photocontest/internal/domain/duel"
)

// Store persists duel picks. The log is append-only apart from year resets.
type Store interface {
	Insert(ctx context.Context, v domain.Vote) error
	CountByVoter(ctx context.Context, voterID string, year int) (int, error)
	TallyByYear(ctx context.Context, year int) ([]domain.Tally, error)
	DeleteByYear(ctx context.Context, year int) (int, error)
}
