package ranking

import (
	"sort"

	"photocontest/internal/domain/image"
	"photocontest/internal/domain/reaction"
)

// Public result slice sizes.
const (
	PodiumSize  = 5
	TopListSize = 10
)

// VoteTally is the ballot aggregate for one image.
type VoteTally struct {
	Count  int
	Points int
}

// Entry is one ranked image.
type Entry struct {
	Image         image.Image
	VoteCount     int
	VotePoints    int
	Reactions     reaction.Counts
	WeightedScore int
	Position      int
}

// HasActivity reports whether the image received any ballot or reaction.
func (e Entry) HasActivity() bool {
	return e.VoteCount > 0 || e.Reactions.Total() > 0
}

// WeightedScore combines ballot points with weighted reaction counts.
func WeightedScore(points int, reactions reaction.Counts) int {
	return points + reactions.Weighted()
}

// Rank folds tallies into an ordered ranking.
// Images without tallies score zero. When includeIdle is false, images with
// neither ballots nor reactions are dropped.
// POST: sorted by WeightedScore desc, VoteCount desc, image ID asc;
// Position is 1-based
func Rank(images []image.Image, votes map[string]VoteTally, reactions map[string]reaction.Counts, includeIdle bool) []Entry {
	entries := make([]Entry, 0, len(images))
	for _, img := range images {
		v := votes[img.ID]
		rc := reactions[img.ID]
		e := Entry{
			Image:         img,
			VoteCount:     v.Count,
			VotePoints:    v.Points,
			Reactions:     rc,
			WeightedScore: WeightedScore(v.Points, rc),
		}
		if !includeIdle && !e.HasActivity() {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.WeightedScore != b.WeightedScore {
			return a.WeightedScore > b.WeightedScore
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.Image.ID < b.Image.ID
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// Top returns at most n leading entries.
func Top(entries []Entry, n int) []Entry {
	if n < 0 {
		n = 0
	}
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
