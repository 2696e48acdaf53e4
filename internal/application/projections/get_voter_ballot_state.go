package projections

import (
	"context"

	"photocontest/internal/domain/ballot"
)

// VoterBallotStateQuery carries input for the voter ballot state projection.
type VoterBallotStateQuery struct {
	VoterID string
	Year    int
}

// VoterBallotState is everything the gallery needs to render a voter's allotment.
type VoterBallotState struct {
	VotedImageIDs []string
	PerImage      map[string]ballot.OptionSnapshot
	TotalCount    int
	VotesLeft     int
	UsedKeys      map[string]bool
	HoldsAllIn    bool
	Settings      ballot.YearSettings
	Options       []ballot.VoteOption // active only, in display order
}

// VoterBallotStateDeps holds dependencies for the voter ballot state projection.
type VoterBallotStateDeps struct {
	BallotStore  VoterBallotStore
	CatalogStore CatalogStore
}

// QueryVoterBallotState summarizes one voter's ballots for a year.
// An empty voter ID yields a fresh allotment.
// POST: VotesLeft follows the year's vote mode; PerImage holds cast-time snapshots
func QueryVoterBallotState(ctx context.Context, query VoterBallotStateQuery, deps VoterBallotStateDeps) (VoterBallotState, error) {
	settings, err := deps.CatalogStore.GetYearSettings(ctx, query.Year)
	if err != nil {
		return VoterBallotState{}, err
	}
	all, err := deps.CatalogStore.ListOptions(ctx, query.Year, false)
	if err != nil {
		return VoterBallotState{}, err
	}

	var held []ballot.Ballot
	if query.VoterID != "" {
		held, err = deps.BallotStore.ListByVoter(ctx, query.VoterID, query.Year)
		if err != nil {
			return VoterBallotState{}, err
		}
	}

	state := VoterBallotState{
		VotedImageIDs: make([]string, 0, len(held)),
		PerImage:      make(map[string]ballot.OptionSnapshot, len(held)),
		UsedKeys:      make(map[string]bool),
		TotalCount:    len(held),
		VotesLeft:     ballot.VotesLeft(settings, all, held),
		HoldsAllIn:    ballot.HoldsAllIn(all, held),
		Settings:      settings,
	}
	for _, b := range held {
		state.VotedImageIDs = append(state.VotedImageIDs, b.ImageID)
		state.PerImage[b.ImageID] = b.Choice
		state.UsedKeys[b.Choice.Key] = true
	}
	for _, o := range all {
		if o.Active {
			state.Options = append(state.Options, o)
		}
	}
	return state, nil
}
