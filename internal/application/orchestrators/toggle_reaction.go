package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"photocontest/internal/adapters/live"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/reaction"
)

// ReactionStoreForToggle defines the reaction store interface needed by ToggleReaction.
type ReactionStoreForToggle interface {
	Insert(ctx context.Context, r reaction.Reaction) error
	Delete(ctx context.Context, imageID, voterID, kind string, year int) (bool, error)
	CountsForImage(ctx context.Context, imageID string, year int) (reaction.Counts, error)
}

// ToggleReactionInput carries input for the toggle reaction orchestrator.
type ToggleReactionInput struct {
	ImageID string
	VoterID string
	Year    int
	Kind    string
}

// ToggleReactionResult reports the voter's new state and the image's count for the kind.
type ToggleReactionResult struct {
	Active bool
	Count  int
	Counts reaction.Counts
}

// ToggleReactionDeps holds dependencies for ToggleReaction.
type ToggleReactionDeps struct {
	ReactionStore ReactionStoreForToggle
	ImageStore    ImageStoreForVoting
	Live          Publisher // optional
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteToggleReaction flips one reaction kind for a voter on an image.
// PRE: none
// POST: reaction present iff Active; Count is the image's count for the kind
// INVARIANT: delete-first, so concurrent toggles never create a second row
func ExecuteToggleReaction(ctx context.Context, input ToggleReactionInput, deps ToggleReactionDeps) (ToggleReactionResult, error) {
	r := reaction.Reaction{
		ImageID:     input.ImageID,
		VoterID:     input.VoterID,
		Kind:        input.Kind,
		ContestYear: input.Year,
	}
	if err := r.Validate(); err != nil {
		return ToggleReactionResult{}, err
	}
	img, err := deps.ImageStore.GetByID(ctx, input.ImageID)
	if err != nil {
		return ToggleReactionResult{}, err
	}
	if img.ContestYear != input.Year || !img.Visible {
		return ToggleReactionResult{}, image.ErrImageNotInContestYear
	}

	removed, err := deps.ReactionStore.Delete(ctx, input.ImageID, input.VoterID, input.Kind, input.Year)
	if err != nil {
		return ToggleReactionResult{}, err
	}
	active := !removed
	if active {
		r.ID = deps.GenerateID()
		r.CreatedAt = deps.Now()
		if err := deps.ReactionStore.Insert(ctx, r); err != nil && !errors.Is(err, reaction.ErrDuplicateReaction) {
			return ToggleReactionResult{}, err
		}
	}

	counts, err := deps.ReactionStore.CountsForImage(ctx, input.ImageID, input.Year)
	if err != nil {
		return ToggleReactionResult{}, err
	}

	slog.Info("reaction_event", "event", "reaction_toggled", "image_id", input.ImageID, "voter_id", input.VoterID, "year", input.Year, "kind", input.Kind, "active", active)
	if deps.Live != nil {
		deps.Live.Publish(live.Message{Type: live.TypeReactionUpdate, Year: input.Year, ImageID: input.ImageID})
	}

	return ToggleReactionResult{Active: active, Count: counts.Get(input.Kind), Counts: counts}, nil
}
