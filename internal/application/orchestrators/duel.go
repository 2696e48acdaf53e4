package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"photocontest/internal/domain/duel"
	"photocontest/internal/domain/image"
)

// ImageStoreForDuel defines the image store interface needed by the duel orchestrators.
type ImageStoreForDuel interface {
	GetByID(ctx context.Context, id string) (image.Image, error)
	ListByYear(ctx context.Context, year int, visibleOnly bool) ([]image.Image, error)
}

// DuelStoreForOrchestrator defines the duel store interface needed by the duel orchestrators.
type DuelStoreForOrchestrator interface {
	Insert(ctx context.Context, v duel.Vote) error
	CountByVoter(ctx context.Context, voterID string, year int) (int, error)
}

// DuelInput identifies the voter and year of a duel action.
type DuelInput struct {
	VoterID string
	Year    int
	Size    int    // draw only
	ImageID string // pick only
}

// DrawDuelResult is a fresh set of candidates and the voter's remaining spins.
type DrawDuelResult struct {
	Candidates []image.Image
	SpinsLeft  int
}

// PickDuelResult reports the voter's remaining spins after a pick.
type PickDuelResult struct {
	SpinsLeft int
}

// DuelDeps holds dependencies for the duel orchestrators.
type DuelDeps struct {
	ImageStore   ImageStoreForDuel
	DuelStore    DuelStoreForOrchestrator
	Shuffler     duel.Shuffler
	SpinsPerYear int
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteDrawDuel draws distinct visible images for the voter to choose from.
// PRE: input.Size is 2 or 3
// POST: returns input.Size images, ErrNotEnoughCandidates, or ErrNoSpinsLeft
func ExecuteDrawDuel(ctx context.Context, input DuelInput, deps DuelDeps) (DrawDuelResult, error) {
	if input.VoterID == "" {
		return DrawDuelResult{}, duel.ErrMissingVoter
	}
	used, err := deps.DuelStore.CountByVoter(ctx, input.VoterID, input.Year)
	if err != nil {
		return DrawDuelResult{}, err
	}
	left := duel.SpinsLeft(used, deps.SpinsPerYear)
	if left == 0 {
		return DrawDuelResult{}, duel.ErrNoSpinsLeft
	}

	visible, err := deps.ImageStore.ListByYear(ctx, input.Year, true)
	if err != nil {
		return DrawDuelResult{}, err
	}
	picked, err := duel.Draw(visible, input.Size, deps.Shuffler)
	if err != nil {
		return DrawDuelResult{}, err
	}
	return DrawDuelResult{Candidates: picked, SpinsLeft: left}, nil
}

// ExecutePickDuel records the voter's favourite from a drawn set.
// PRE: input.ImageID names a visible image of input.Year
// POST: one duel vote appended and a spin consumed, or ErrNoSpinsLeft
func ExecutePickDuel(ctx context.Context, input DuelInput, deps DuelDeps) (PickDuelResult, error) {
	v := duel.Vote{ImageID: input.ImageID, VoterID: input.VoterID, ContestYear: input.Year}
	if err := v.Validate(); err != nil {
		return PickDuelResult{}, err
	}
	img, err := deps.ImageStore.GetByID(ctx, input.ImageID)
	if err != nil {
		return PickDuelResult{}, err
	}
	if img.ContestYear != input.Year || !img.Visible {
		return PickDuelResult{}, image.ErrImageNotInContestYear
	}

	used, err := deps.DuelStore.CountByVoter(ctx, input.VoterID, input.Year)
	if err != nil {
		return PickDuelResult{}, err
	}
	left := duel.SpinsLeft(used, deps.SpinsPerYear)
	if left == 0 {
		return PickDuelResult{}, duel.ErrNoSpinsLeft
	}

	v.ID = deps.GenerateID()
	v.CreatedAt = deps.Now()
	if err := deps.DuelStore.Insert(ctx, v); err != nil {
		return PickDuelResult{}, err
	}
	slog.Info("duel_event", "event", "duel_pick", "image_id", input.ImageID, "voter_id", input.VoterID, "year", input.Year, "spins_left", left-1)
	return PickDuelResult{SpinsLeft: left - 1}, nil
}
