package web

import (
	"sort"

	"photocontest/internal/application/projections"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/ranking"
	"photocontest/internal/domain/reaction"
)

// JSON views returned by the API. Domain types stay free of JSON tags.

type imageView struct {
	ID          string `json:"id"`
	Year        int    `json:"year"`
	URL         string `json:"url"`
	ThumbURL    string `json:"thumbUrl"`
	Uploader    string `json:"uploader"`
	Description string `json:"description"`
	Visible     bool   `json:"visible"`
}

func toImageView(img image.Image) imageView {
	return imageView{
		ID:          img.ID,
		Year:        img.ContestYear,
		URL:         "/media/" + img.Path(),
		ThumbURL:    "/media/" + img.ThumbPath(),
		Uploader:    img.Uploader,
		Description: img.Description,
		Visible:     img.Visible,
	}
}

func countsView(c reaction.Counts) map[string]int {
	out := make(map[string]int, len(reaction.Kinds))
	for _, k := range reaction.Kinds {
		out[k] = c.Get(k)
	}
	return out
}

type choiceView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

type ballotStateView struct {
	Year          int                   `json:"year"`
	VoteMode      string                `json:"voteMode"`
	MaxActions    int                   `json:"maxActions"`
	VotedImageIDs []string              `json:"votedImageIds"`
	PerImage      map[string]choiceView `json:"perImage"`
	TotalCount    int                   `json:"totalCount"`
	VotesLeft     int                   `json:"votesLeft"`
	UsedKeys      []string              `json:"usedKeys"`
	HoldsAllIn    bool                  `json:"holdsAllIn"`
	Options       []optionView          `json:"options"`
}

type optionView struct {
	Key            string `json:"key"`
	Label          string `json:"label"`
	Icon           string `json:"icon"`
	Value          int    `json:"value"`
	UniquePerUser  bool   `json:"uniquePerUser"`
	ExclusiveGroup string `json:"exclusiveGroup,omitempty"`
	Active         bool   `json:"active"`
	SortOrder      int    `json:"sortOrder"`
}

func toOptionView(o ballot.VoteOption) optionView {
	return optionView{
		Key:           o.Key, Label: o.Label, Icon: o.Icon, Value: o.Value,
		UniquePerUser: o.UniquePerUser, ExclusiveGroup: o.ExclusiveGroup,
		Active:        o.Active, SortOrder: o.SortOrder,
	}
}

func toBallotStateView(year int, s projections.VoterBallotState) ballotStateView {
	v := ballotStateView{
		Year:          year,
		VoteMode:      s.Settings.VoteMode,
		MaxActions:    s.Settings.MaxActions,
		VotedImageIDs: s.VotedImageIDs,
		PerImage:      make(map[string]choiceView, len(s.PerImage)),
		TotalCount:    s.TotalCount,
		VotesLeft:     s.VotesLeft,
		UsedKeys:      make([]string, 0, len(s.UsedKeys)),
		HoldsAllIn:    s.HoldsAllIn,
		Options:       make([]optionView, 0, len(s.Options)),
	}
	for id, c := range s.PerImage {
		v.PerImage[id] = choiceView{Key: c.Key, Label: c.Label, Value: c.Value}
	}
	for _, o := range s.Options {
		v.Options = append(v.Options, toOptionView(o))
	}
	for k := range s.UsedKeys {
		v.UsedKeys = append(v.UsedKeys, k)
	}
	sort.Strings(v.UsedKeys)
	return v
}

type entryView struct {
	Position      int            `json:"position"`
	Image         imageView      `json:"image"`
	VoteCount     int            `json:"voteCount"`
	VotePoints    int            `json:"votePoints"`
	Reactions     map[string]int `json:"reactions"`
	WeightedScore int            `json:"weightedScore"`
}

func toEntryViews(entries []ranking.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			Position:      e.Position,
			Image:         toImageView(e.Image),
			VoteCount:     e.VoteCount,
			VotePoints:    e.VotePoints,
			Reactions:     countsView(e.Reactions),
			WeightedScore: e.WeightedScore,
		})
	}
	return out
}

func reactionKindsInOrder(set map[string]bool) []string {
	var out []string
	for _, k := range reaction.Kinds {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}
