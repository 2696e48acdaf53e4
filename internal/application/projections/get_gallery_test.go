package projections

import (
	"context"
	"testing"

	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/reaction"
	"photocontest/internal/domain/sticker"
)

// TestQueryGallery_VoterState marks voted images and the voter's reactions.
func TestQueryGallery_VoterState(t *testing.T) {
	reactions := &mockReactionStore{reactions: []reaction.Reaction{
		react("imgA", "v1", reaction.KindHype, 2025),
		react("imgA", "v2", reaction.KindHype, 2025),
		react("imgB", "v2", reaction.KindFunny, 2025),
	}}
	deps := GalleryDeps{
		ImageStore: &mockImageStore{images: []image.Image{img("imgA", 2025, true), img("imgB", 2025, true), img("imgH", 2025, false)}},
		StickerStore: &mockStickerStore{stickers: []sticker.Sticker{
			{ID: "s1", ContestYear: 2025, Filename: "star.png", Active: true},
			{ID: "s2", ContestYear: 2025, Filename: "moon.png", Active: false},
		}},
		Ballot: VoterBallotStateDeps{
			BallotStore:  &mockBallotStore{ballots: []ballot.Ballot{cast("b1", "imgB", "v1", 2025, "heart", 1)}},
			CatalogStore: &mockCatalogStore{},
		},
		Reactions: ReactionStateDeps{ReactionStore: reactions},
	}

	g, err := QueryGallery(context.Background(), GalleryQuery{VoterID: "v1", Year: 2025}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Images) != 2 || len(g.Stickers) != 1 {
		t.Fatalf("images = %d stickers = %d, want 2 and 1", len(g.Images), len(g.Stickers))
	}
	a, b := g.Images[0], g.Images[1]
	if a.Voted || !b.Voted || b.Choice.Key != "heart" {
		t.Errorf("voted flags: a=%v b=%v choice=%+v", a.Voted, b.Voted, b.Choice)
	}
	if !a.Mine[reaction.KindHype] || a.Reactions.Get(reaction.KindHype) != 2 {
		t.Errorf("imgA reactions = %+v mine = %v", a.Reactions, a.Mine)
	}
	if b.Mine[reaction.KindFunny] || !g.Reactions.Active("imgA", reaction.KindHype) {
		t.Error("reaction ownership mismatch")
	}
	if g.Ballot.VotesLeft != ballot.DefaultMaxActions-1 {
		t.Errorf("votes left = %d", g.Ballot.VotesLeft)
	}
}
