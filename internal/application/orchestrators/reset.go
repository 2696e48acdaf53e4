package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"photocontest/internal/adapters/live"
	"photocontest/internal/domain/ballot"
)

// ErrInvalidYear is returned when an operation names a non-positive contest year.
var ErrInvalidYear = errors.New("contest year must be positive")

// BallotStoreForReset defines the ballot store interface needed by the reset orchestrators.
type BallotStoreForReset interface {
	DeleteByVoter(ctx context.Context, voterID string, year int) (int, error)
	DeleteByYear(ctx context.Context, year int) (int, error)
}

// ReactionStoreForReset defines the reaction store interface needed by ResetAllReactions.
type ReactionStoreForReset interface {
	DeleteByYear(ctx context.Context, year int) (int, error)
}

// ResetDeps holds dependencies for the reset orchestrators.
type ResetDeps struct {
	BallotStore   BallotStoreForReset
	ReactionStore ReactionStoreForReset
	Live          Publisher // optional
}

// ExecuteResetBallots clears one voter's ballots for a year.
// PRE: voterID non-empty, year > 0
// POST: the voter holds no ballots in year; returns how many were removed
func ExecuteResetBallots(ctx context.Context, voterID string, year int, deps ResetDeps) (int, error) {
	if voterID == "" {
		return 0, ballot.ErrMissingVoter
	}
	if year <= 0 {
		return 0, ErrInvalidYear
	}
	n, err := deps.BallotStore.DeleteByVoter(ctx, voterID, year)
	if err != nil {
		return 0, err
	}
	slog.Info("ballot_event", "event", "voter_ballots_reset", "voter_id", voterID, "year", year, "removed", n)
	publishReset(deps.Live, year)
	return n, nil
}

// ExecuteResetAllBallots clears every ballot of a year.
// PRE: year > 0; caller is an admin
// POST: year has no ballots; other years untouched
func ExecuteResetAllBallots(ctx context.Context, year int, deps ResetDeps) (int, error) {
	if year <= 0 {
		return 0, ErrInvalidYear
	}
	n, err := deps.BallotStore.DeleteByYear(ctx, year)
	if err != nil {
		return 0, err
	}
	slog.Info("admin_event", "event", "all_ballots_reset", "year", year, "removed", n)
	publishReset(deps.Live, year)
	return n, nil
}

// ExecuteResetAllReactions clears every reaction of a year.
// PRE: year > 0; caller is an admin
func ExecuteResetAllReactions(ctx context.Context, year int, deps ResetDeps) (int, error) {
	if year <= 0 {
		return 0, ErrInvalidYear
	}
	n, err := deps.ReactionStore.DeleteByYear(ctx, year)
	if err != nil {
		return 0, err
	}
	slog.Info("admin_event", "event", "all_reactions_reset", "year", year, "removed", n)
	publishReset(deps.Live, year)
	return n, nil
}

func publishReset(p Publisher, year int) {
	if p != nil {
		p.Publish(live.Message{Type: live.TypeBallotsReset, Year: year})
	}
}
