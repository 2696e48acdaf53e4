package projections

import (
	"context"

	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/reaction"
	"photocontest/internal/domain/sticker"
)

// GalleryQuery carries input for the gallery projection.
type GalleryQuery struct {
	VoterID string
	Year    int
}

// GalleryImage is one visible image with the voter's state on it.
type GalleryImage struct {
	Image     image.Image
	Voted     bool
	Choice    ballot.OptionSnapshot
	Reactions reaction.Counts
	Mine      map[string]bool
}

// Gallery is the voting page for one year.
type Gallery struct {
	Year      int
	Images    []GalleryImage
	Stickers  []sticker.Sticker
	Ballot    VoterBallotState
	Reactions ReactionState
}

// GalleryDeps holds dependencies for the gallery projection.
type GalleryDeps struct {
	ImageStore   ImageStore
	StickerStore StickerStore
	Ballot       VoterBallotStateDeps
	Reactions    ReactionStateDeps
}

// QueryGallery assembles visible images, active stickers and the voter's ballot and reaction state.
// POST: images are the year's visible images in store order (newest first)
func QueryGallery(ctx context.Context, query GalleryQuery, deps GalleryDeps) (Gallery, error) {
	images, err := deps.ImageStore.ListByYear(ctx, query.Year, true)
	if err != nil {
		return Gallery{}, err
	}
	stickers, err := deps.StickerStore.ListByYear(ctx, query.Year, true)
	if err != nil {
		return Gallery{}, err
	}
	ballots, err := QueryVoterBallotState(ctx, VoterBallotStateQuery{VoterID: query.VoterID, Year: query.Year}, deps.Ballot)
	if err != nil {
		return Gallery{}, err
	}
	reactions, err := QueryReactionState(ctx, query.VoterID, query.Year, deps.Reactions)
	if err != nil {
		return Gallery{}, err
	}

	g := Gallery{
		Year:      query.Year,
		Images:    make([]GalleryImage, 0, len(images)),
		Stickers:  stickers,
		Ballot:    ballots,
		Reactions: reactions,
	}
	for _, img := range images {
		choice, voted := ballots.PerImage[img.ID]
		g.Images = append(g.Images, GalleryImage{
			Image:     img,
			Voted:     voted,
			Choice:    choice,
			Reactions: reactions.Counts[img.ID],
			Mine:      reactions.Mine[img.ID],
		})
	}
	return g, nil
}
