package orchestrators

import (
	"context"
	"errors"
	"testing"

	"photocontest/internal/adapters/live"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/reaction"
)

func seedBallots(store *mockBallotStore, rows ...ballot.Ballot) {
	for _, b := range rows {
		store.ballots[b.ID] = b
	}
}

// TestExecuteResetBallots_OnlyVoterAndYear leaves other voters and years alone.
func TestExecuteResetBallots_OnlyVoterAndYear(t *testing.T) {
	store := newMockBallotStore()
	seedBallots(store,
		ballot.Ballot{ID: "b1", ImageID: "img1", VoterID: "v1", ContestYear: 2025},
		ballot.Ballot{ID: "b2", ImageID: "img2", VoterID: "v1", ContestYear: 2025},
		ballot.Ballot{ID: "b3", ImageID: "img1", VoterID: "v2", ContestYear: 2025},
		ballot.Ballot{ID: "b4", ImageID: "img5", VoterID: "v1", ContestYear: 2024},
	)
	pub := &mockPublisher{}

	n, err := ExecuteResetBallots(context.Background(), "v1", 2025, ResetDeps{BallotStore: store, Live: pub})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if _, ok := store.ballots["b3"]; !ok {
		t.Error("other voter's ballot was removed")
	}
	if _, ok := store.ballots["b4"]; !ok {
		t.Error("other year's ballot was removed")
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Type != live.TypeBallotsReset {
		t.Errorf("live messages = %+v", pub.msgs)
	}
}

// TestExecuteResetBallots_MissingVoter rejects an empty voter id.
func TestExecuteResetBallots_MissingVoter(t *testing.T) {
	_, err := ExecuteResetBallots(context.Background(), "", 2025, ResetDeps{BallotStore: newMockBallotStore()})
	if !errors.Is(err, ballot.ErrMissingVoter) {
		t.Fatalf("err = %v, want ErrMissingVoter", err)
	}
}

// TestExecuteResetAllBallots_ScopedToYear clears one year only.
func TestExecuteResetAllBallots_ScopedToYear(t *testing.T) {
	store := newMockBallotStore()
	seedBallots(store,
		ballot.Ballot{ID: "b1", ImageID: "img1", VoterID: "v1", ContestYear: 2025},
		ballot.Ballot{ID: "b2", ImageID: "img1", VoterID: "v2", ContestYear: 2025},
		ballot.Ballot{ID: "b3", ImageID: "img7", VoterID: "v1", ContestYear: 2026},
	)

	n, err := ExecuteResetAllBallots(context.Background(), 2025, ResetDeps{BallotStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(store.ballots) != 1 {
		t.Errorf("removed = %d, left = %d, want 2 and 1", n, len(store.ballots))
	}
	if _, err := ExecuteResetAllBallots(context.Background(), 0, ResetDeps{BallotStore: store}); !errors.Is(err, ErrInvalidYear) {
		t.Errorf("year 0: err = %v, want ErrInvalidYear", err)
	}
}

// TestExecuteResetAllReactions_ScopedToYear clears reactions for one year.
func TestExecuteResetAllReactions_ScopedToYear(t *testing.T) {
	store := newMockReactionStore()
	store.Insert(context.Background(), reaction.Reaction{ImageID: "img1", VoterID: "v1", Kind: reaction.KindHype, ContestYear: 2025})
	store.Insert(context.Background(), reaction.Reaction{ImageID: "img1", VoterID: "v1", Kind: reaction.KindHype, ContestYear: 2026})

	n, err := ExecuteResetAllReactions(context.Background(), 2025, ResetDeps{ReactionStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || len(store.rows) != 1 {
		t.Errorf("removed = %d, left = %d, want 1 and 1", n, len(store.rows))
	}
}
