package projections

import (
	"context"
	"sort"
	"time"

	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/duel"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/ranking"
	"photocontest/internal/domain/reaction"
	"photocontest/internal/domain/sticker"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// mockImageStore returns seeded images.
type mockImageStore struct {
	images []image.Image
}

// ListByYear implements ImageStore.
// POST: images of year in seeded order, optionally visible only
func (m *mockImageStore) ListByYear(_ context.Context, year int, visibleOnly bool) ([]image.Image, error) {
	var out []image.Image
	for _, img := range m.images {
		if img.ContestYear == year && (img.Visible || !visibleOnly) {
			out = append(out, img)
		}
	}
	return out, nil
}

// mockBallotStore aggregates seeded ballots.
type mockBallotStore struct {
	ballots []ballot.Ballot
}

// TallyByYear implements TallyStore.
func (m *mockBallotStore) TallyByYear(_ context.Context, year int) (map[string]ranking.VoteTally, error) {
	out := make(map[string]ranking.VoteTally)
	for _, b := range m.ballots {
		if b.ContestYear != year {
			continue
		}
		t := out[b.ImageID]
		t.Count++
		t.Points += b.Choice.Value
		out[b.ImageID] = t
	}
	return out, nil
}

// CountVoters implements TallyStore.
func (m *mockBallotStore) CountVoters(_ context.Context, year int) (int, error) {
	voters := map[string]bool{}
	for _, b := range m.ballots {
		if b.ContestYear == year {
			voters[b.VoterID] = true
		}
	}
	return len(voters), nil
}

// CountBallots implements TallyStore.
func (m *mockBallotStore) CountBallots(_ context.Context, year int) (int, error) {
	n := 0
	for _, b := range m.ballots {
		if b.ContestYear == year {
			n++
		}
	}
	return n, nil
}

// ListByVoter implements VoterBallotStore.
func (m *mockBallotStore) ListByVoter(_ context.Context, voterID string, year int) ([]ballot.Ballot, error) {
	var out []ballot.Ballot
	for _, b := range m.ballots {
		if b.VoterID == voterID && b.ContestYear == year {
			out = append(out, b)
		}
	}
	return out, nil
}

// mockCatalogStore returns seeded settings and options.
type mockCatalogStore struct {
	settings map[int]ballot.YearSettings
	options  []ballot.VoteOption
}

// GetYearSettings implements CatalogStore.
func (m *mockCatalogStore) GetYearSettings(_ context.Context, year int) (ballot.YearSettings, error) {
	if s, ok := m.settings[year]; ok {
		return s, nil
	}
	return ballot.DefaultYearSettings(year), nil
}

// ListOptions implements CatalogStore.
func (m *mockCatalogStore) ListOptions(_ context.Context, year int, activeOnly bool) ([]ballot.VoteOption, error) {
	var out []ballot.VoteOption
	for _, o := range m.options {
		if o.ContestYear == year && (o.Active || !activeOnly) {
			out = append(out, o)
		}
	}
	return out, nil
}

// mockReactionStore aggregates seeded reactions.
type mockReactionStore struct {
	reactions []reaction.Reaction
}

// CountsByYear implements ReactionCountStore.
func (m *mockReactionStore) CountsByYear(_ context.Context, year int) (map[string]reaction.Counts, error) {
	out := make(map[string]reaction.Counts)
	for _, r := range m.reactions {
		if r.ContestYear != year {
			continue
		}
		c := out[r.ImageID]
		c.Add(r.Kind, 1)
		out[r.ImageID] = c
	}
	return out, nil
}

// ListByVoter implements VoterReactionStore.
func (m *mockReactionStore) ListByVoter(_ context.Context, voterID string, year int) ([]reaction.Reaction, error) {
	var out []reaction.Reaction
	for _, r := range m.reactions {
		if r.VoterID == voterID && r.ContestYear == year {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockDuelStore aggregates seeded duel picks.
type mockDuelStore struct {
	votes []duel.Vote
}

// TallyByYear implements DuelTallyStore.
// POST: ordered by picks desc, then image ID
func (m *mockDuelStore) TallyByYear(_ context.Context, year int) ([]duel.Tally, error) {
	counts := map[string]int{}
	for _, v := range m.votes {
		if v.ContestYear == year {
			counts[v.ImageID]++
		}
	}
	out := make([]duel.Tally, 0, len(counts))
	for id, n := range counts {
		out = append(out, duel.Tally{ImageID: id, Picks: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Picks != out[j].Picks {
			return out[i].Picks > out[j].Picks
		}
		return out[i].ImageID < out[j].ImageID
	})
	return out, nil
}

// mockStickerStore returns seeded stickers.
type mockStickerStore struct {
	stickers []sticker.Sticker
}

// ListByYear implements StickerStore.
func (m *mockStickerStore) ListByYear(_ context.Context, year int, activeOnly bool) ([]sticker.Sticker, error) {
	var out []sticker.Sticker
	for _, s := range m.stickers {
		if s.ContestYear == year && (s.Active || !activeOnly) {
			out = append(out, s)
		}
	}
	return out, nil
}

func img(id string, year int, visible bool) image.Image {
	return image.Image{ID: id, Filename: id + ".jpg", ContestYear: year, Visible: visible, UploadedAt: fixedTime}
}

func cast(id, imageID, voterID string, year int, key string, value int) ballot.Ballot {
	return ballot.Ballot{ID: id, ImageID: imageID, VoterID: voterID, ContestYear: year,
		Choice: ballot.OptionSnapshot{Key: key, Label: key, Value: value}, CastAt: fixedTime}
}

func react(imageID, voterID, kind string, year int) reaction.Reaction {
	return reaction.Reaction{ID: imageID + voterID + kind, ImageID: imageID, VoterID: voterID, Kind: kind, ContestYear: year}
}
