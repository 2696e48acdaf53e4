package ballot

import (
	"context"

	domain "photocontest/internal/domain/ballot"
	"photocontest/internal/domain/ranking"
)

// Store persists ballots.
type Store interface {
	Insert(ctx context.Context, b domain.Ballot) error
	Delete(ctx context.Context, id string) error
	ListByVoter(ctx context.Context, voterID string, year int) ([]domain.Ballot, error)
	TallyByYear(ctx context.Context, year int) (map[string]ranking.VoteTally, error)
	CountVoters(ctx context.Context, year int) (int, error)
	CountBallots(ctx context.Context, year int) (int, error)
	DeleteByVoter(ctx context.Context, voterID string, year int) (int, error)
	DeleteByYear(ctx context.Context, year int) (int, error)
}

// CatalogStore persists vote options and per-year ballot policy.
type CatalogStore interface {
	SaveOption(ctx context.Context, o domain.VoteOption) error
	GetOption(ctx context.Context, year int, key string) (domain.VoteOption, error)
	ListOptions(ctx context.Context, year int, activeOnly bool) ([]domain.VoteOption, error)
	GetYearSettings(ctx context.Context, year int) (domain.YearSettings, error)
	SaveYearSettings(ctx context.Context, s domain.YearSettings) error
	SetResultsPublished(ctx context.Context, year int, published bool) error
	ListYearSettings(ctx context.Context) ([]domain.YearSettings, error)
}
