package projections

import (
	"context"
	"fmt"

	"photocontest/internal/domain/ranking"
)

// RankImagesQuery carries input for the ranking projection.
type RankImagesQuery struct {
	Year        int
	VisibleOnly bool
	IncludeIdle bool // keep images with neither ballots nor reactions
}

// RankImagesDeps holds dependencies for the ranking projection.
type RankImagesDeps struct {
	ImageStore    ImageStore
	TallyStore    TallyStore
	ReactionStore ReactionCountStore
}

// QueryRankImages folds a year's ballots and reactions into an ordered ranking.
// PRE: query.Year > 0
// POST: entries sorted by weighted score, vote count, then image ID
func QueryRankImages(ctx context.Context, query RankImagesQuery, deps RankImagesDeps) ([]ranking.Entry, error) {
	images, err := deps.ImageStore.ListByYear(ctx, query.Year, query.VisibleOnly)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	votes, err := deps.TallyStore.TallyByYear(ctx, query.Year)
	if err != nil {
		return nil, fmt.Errorf("tally ballots: %w", err)
	}
	reactions, err := deps.ReactionStore.CountsByYear(ctx, query.Year)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	return ranking.Rank(images, votes, reactions, query.IncludeIdle), nil
}
