package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"photocontest/internal/adapters/live"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/image"
)

// BallotStoreForCast defines the ballot store interface needed by CastVote.
type BallotStoreForCast interface {
	Insert(ctx context.Context, b ballot.Ballot) error
	Delete(ctx context.Context, id string) error
	ListByVoter(ctx context.Context, voterID string, year int) ([]ballot.Ballot, error)
}

// CatalogStoreForCast defines the catalog interface needed by CastVote.
type CatalogStoreForCast interface {
	ListOptions(ctx context.Context, year int, activeOnly bool) ([]ballot.VoteOption, error)
	GetYearSettings(ctx context.Context, year int) (ballot.YearSettings, error)
}

// ImageStoreForVoting defines the image lookup needed by voting orchestrators.
type ImageStoreForVoting interface {
	GetByID(ctx context.Context, id string) (image.Image, error)
}

// Publisher receives live events. *live.Hub satisfies it.
type Publisher interface {
	Publish(msg live.Message)
}

// CastVoteInput carries input for the cast vote orchestrator.
type CastVoteInput struct {
	ImageID   string
	VoterID   string
	Year      int
	OptionKey string
}

// CastVoteResult reports what a cast did and the voter's remaining allotment.
type CastVoteResult struct {
	Action     ballot.Action
	OptionKey  string
	TotalCount int
	VotesLeft  int
}

// CastVoteDeps holds dependencies for CastVote.
type CastVoteDeps struct {
	BallotStore  BallotStoreForCast
	CatalogStore CatalogStoreForCast
	ImageStore   ImageStoreForVoting
	Live         Publisher // optional
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCastVote applies one voter action to one image.
// PRE: input.Year is the year the caller allows voting in
// POST: at most one ballot exists for (image, voter, year); failures leave no partial change
// INVARIANT: a cast that loses an insert race is re-planned once as a toggle
func ExecuteCastVote(ctx context.Context, input CastVoteInput, deps CastVoteDeps) (CastVoteResult, error) {
	if input.VoterID == "" {
		return CastVoteResult{}, ballot.ErrMissingVoter
	}
	img, err := deps.ImageStore.GetByID(ctx, input.ImageID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if img.ContestYear != input.Year || !img.Visible {
		return CastVoteResult{}, image.ErrImageNotInContestYear
	}

	settings, err := deps.CatalogStore.GetYearSettings(ctx, input.Year)
	if err != nil {
		return CastVoteResult{}, err
	}
	options, err := deps.CatalogStore.ListOptions(ctx, input.Year, false)
	if err != nil {
		return CastVoteResult{}, err
	}

	req := ballot.CastRequest{ImageID: input.ImageID, VoterID: input.VoterID, Year: input.Year, OptionKey: input.OptionKey}
	plan, err := planAndApply(ctx, settings, options, req, deps)
	if errors.Is(err, ballot.ErrDuplicateBallot) {
		slog.Info("ballot_event", "event", "cast_race_retry", "image_id", input.ImageID, "voter_id", input.VoterID, "year", input.Year)
		plan, err = planAndApply(ctx, settings, options, req, deps)
	}
	if err != nil {
		if isCastRejection(err) {
			slog.Info("ballot_event", "event", "cast_rejected", "image_id", input.ImageID, "voter_id", input.VoterID, "year", input.Year, "option", input.OptionKey, "reason", err.Error())
		}
		return CastVoteResult{}, err
	}

	held, err := deps.BallotStore.ListByVoter(ctx, input.VoterID, input.Year)
	if err != nil {
		return CastVoteResult{}, err
	}

	slog.Info("ballot_event", "event", "ballot_"+plan.Action.String(), "image_id", input.ImageID, "voter_id", input.VoterID, "year", input.Year, "option", plan.Option.Key)
	if deps.Live != nil {
		deps.Live.Publish(live.Message{Type: live.TypeTallyUpdate, Year: input.Year, ImageID: input.ImageID})
	}

	return CastVoteResult{
		Action:     plan.Action,
		OptionKey:  plan.Option.Key,
		TotalCount: len(held),
		VotesLeft:  ballot.VotesLeft(settings, options, held),
	}, nil
}

// planAndApply reads the voter's ballots, plans the cast and writes it.
func planAndApply(ctx context.Context, settings ballot.YearSettings, options []ballot.VoteOption, req ballot.CastRequest, deps CastVoteDeps) (ballot.Plan, error) {
	held, err := deps.BallotStore.ListByVoter(ctx, req.VoterID, req.Year)
	if err != nil {
		return ballot.Plan{}, err
	}
	plan, err := ballot.PlanCast(settings, options, held, req)
	if err != nil {
		return ballot.Plan{}, err
	}

	switch plan.Action {
	case ballot.ActionToggleOff, ballot.ActionRemoveOnly:
		if err := deps.BallotStore.Delete(ctx, plan.Existing.ID); err != nil {
			return ballot.Plan{}, fmt.Errorf("remove ballot: %w", err)
		}
	case ballot.ActionInsert:
		b := ballot.Ballot{
			ID:          deps.GenerateID(),
			ImageID:     req.ImageID,
			VoterID:     req.VoterID,
			ContestYear: req.Year,
			Choice:      plan.Option.Snapshot(),
			CastAt:      deps.Now(),
		}
		if err := deps.BallotStore.Insert(ctx, b); err != nil {
			return ballot.Plan{}, err
		}
	}
	return plan, nil
}

func isCastRejection(err error) bool {
	for _, target := range []error{
		ballot.ErrInvalidOption, ballot.ErrOptionAlreadyUsed,
		ballot.ErrExclusiveConflict, ballot.ErrLimitReached,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
