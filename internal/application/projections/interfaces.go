package projections

import (
	"context"

	domainBallot "photocontest/internal/domain/ballot"
	domainDuel "photocontest/internal/domain/duel"
	domainImage "photocontest/internal/domain/image"
	"photocontest/internal/domain/ranking"
	domainReaction "photocontest/internal/domain/reaction"
	domainSticker "photocontest/internal/domain/sticker"
)

// ImageStore interface for image queries.
type ImageStore interface {
	ListByYear(ctx context.Context, year int, visibleOnly bool) ([]domainImage.Image, error)
}

// TallyStore interface for ballot aggregates.
type TallyStore interface {
	TallyByYear(ctx context.Context, year int) (map[string]ranking.VoteTally, error)
	CountVoters(ctx context.Context, year int) (int, error)
	CountBallots(ctx context.Context, year int) (int, error)
}

// VoterBallotStore interface for one voter's ballots.
type VoterBallotStore interface {
	ListByVoter(ctx context.Context, voterID string, year int) ([]domainBallot.Ballot, error)
}

// CatalogStore interface for vote options and year settings.
type CatalogStore interface {
	GetYearSettings(ctx context.Context, year int) (domainBallot.YearSettings, error)
	ListOptions(ctx context.Context, year int, activeOnly bool) ([]domainBallot.VoteOption, error)
}

// ReactionCountStore interface for reaction aggregates.
type ReactionCountStore interface {
	CountsByYear(ctx context.Context, year int) (map[string]domainReaction.Counts, error)
}

// VoterReactionStore interface for one voter's reactions.
type VoterReactionStore interface {
	ListByVoter(ctx context.Context, voterID string, year int) ([]domainReaction.Reaction, error)
}

// DuelTallyStore interface for duel aggregates.
type DuelTallyStore interface {
	TallyByYear(ctx context.Context, year int) ([]domainDuel.Tally, error)
}

// StickerStore interface for sticker queries.
type StickerStore interface {
	ListByYear(ctx context.Context, year int, activeOnly bool) ([]domainSticker.Sticker, error)
}
