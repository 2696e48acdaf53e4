package projections

import (
	"context"

	"photocontest/internal/domain/reaction"
)

// ReactionState holds per-image counts and the kinds one voter has set.
type ReactionState struct {
	Counts map[string]reaction.Counts
	Mine   map[string]map[string]bool // image ID -> kind -> set
}

// ReactionStateDeps holds dependencies for the reaction state projection.
type ReactionStateDeps struct {
	ReactionStore interface {
		ReactionCountStore
		VoterReactionStore
	}
}

// Active reports whether the voter has set kind on imageID.
func (s ReactionState) Active(imageID, kind string) bool {
	return s.Mine[imageID][kind]
}

// QueryReactionState loads reaction counts for a year and the voter's own reactions.
// POST: Mine is empty for an empty voter ID
func QueryReactionState(ctx context.Context, voterID string, year int, deps ReactionStateDeps) (ReactionState, error) {
	counts, err := deps.ReactionStore.CountsByYear(ctx, year)
	if err != nil {
		return ReactionState{}, err
	}
	state := ReactionState{Counts: counts, Mine: make(map[string]map[string]bool)}
	if voterID == "" {
		return state, nil
	}
	mine, err := deps.ReactionStore.ListByVoter(ctx, voterID, year)
	if err != nil {
		return ReactionState{}, err
	}
	for _, r := range mine {
		if state.Mine[r.ImageID] == nil {
			state.Mine[r.ImageID] = make(map[string]bool)
		}
		state.Mine[r.ImageID][r.Kind] = true
	}
	return state, nil
}
