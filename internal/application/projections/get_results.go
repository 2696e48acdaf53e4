package projections

import (
	"context"
	"time"

	"photocontest/internal/domain/duel"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/ranking"
	"photocontest/internal/domain/settings"
)

// PublicResultsQuery carries input for the public results projection.
type PublicResultsQuery struct {
	Year     int
	Settings settings.Settings
	Now      time.Time
}

// PublicResults is the public results page. When Visible is false only
// WaitingText is set.
type PublicResults struct {
	Year        int
	Visible     bool
	WaitingText string
	VotingEnd   *time.Time
	Podium      []ranking.Entry
	TopTen      []ranking.Entry
	VoterCount  int
	BallotCount int
}

// ResultsDeps holds dependencies for the results projections.
type ResultsDeps struct {
	CatalogStore  CatalogStore
	ImageStore    ImageStore
	TallyStore    TallyStore
	ReactionStore ReactionCountStore
	DuelStore     DuelTallyStore // admin only
}

func (d ResultsDeps) rankDeps() RankImagesDeps {
	return RankImagesDeps{ImageStore: d.ImageStore, TallyStore: d.TallyStore, ReactionStore: d.ReactionStore}
}

// QueryPublicResults applies the publication gate and returns the public top lists.
// PRE: query.Settings is the current runtime settings snapshot
// POST: rankings are only loaded when the gate is open
func QueryPublicResults(ctx context.Context, query PublicResultsQuery, deps ResultsDeps) (PublicResults, error) {
	ys, err := deps.CatalogStore.GetYearSettings(ctx, query.Year)
	if err != nil {
		return PublicResults{}, err
	}
	out := PublicResults{Year: query.Year}
	if !query.Settings.ResultsVisible(query.Year, ys.ResultsPublished, query.Now) {
		out.WaitingText = query.Settings.WaitingTextFor(query.Year)
		if query.Year == query.Settings.CurrentYear {
			out.VotingEnd = query.Settings.VotingEnd
		}
		return out, nil
	}

	entries, err := QueryRankImages(ctx, RankImagesQuery{Year: query.Year, VisibleOnly: true, IncludeIdle: true}, deps.rankDeps())
	if err != nil {
		return PublicResults{}, err
	}
	voters, ballots, err := yearTotals(ctx, deps.TallyStore, query.Year)
	if err != nil {
		return PublicResults{}, err
	}

	out.Visible = true
	out.Podium = ranking.Top(entries, ranking.PodiumSize)
	out.TopTen = ranking.Top(entries, ranking.TopListSize)
	out.VoterCount = voters
	out.BallotCount = ballots
	return out, nil
}

// DuelRow is one image's duel pick count.
type DuelRow struct {
	Image image.Image
	Picks int
}

// AdminResults is the admin results page.
type AdminResults struct {
	Year        int
	Published   bool
	Entries     []ranking.Entry
	VoterCount  int
	BallotCount int
	Duel        []DuelRow
}

// QueryAdminResults returns the full ranking of images with activity, totals and duel picks.
// PRE: caller is an admin
// POST: Entries excludes images without ballots or reactions; Duel is ordered by picks desc
func QueryAdminResults(ctx context.Context, year int, deps ResultsDeps) (AdminResults, error) {
	ys, err := deps.CatalogStore.GetYearSettings(ctx, year)
	if err != nil {
		return AdminResults{}, err
	}
	entries, err := QueryRankImages(ctx, RankImagesQuery{Year: year, IncludeIdle: false}, deps.rankDeps())
	if err != nil {
		return AdminResults{}, err
	}
	voters, ballots, err := yearTotals(ctx, deps.TallyStore, year)
	if err != nil {
		return AdminResults{}, err
	}

	out := AdminResults{
		Year:        year,
		Published:   ys.ResultsPublished,
		Entries:     entries,
		VoterCount:  voters,
		BallotCount: ballots,
	}
	if deps.DuelStore == nil {
		return out, nil
	}

	tallies, err := deps.DuelStore.TallyByYear(ctx, year)
	if err != nil {
		return AdminResults{}, err
	}
	images, err := deps.ImageStore.ListByYear(ctx, year, false)
	if err != nil {
		return AdminResults{}, err
	}
	byID := make(map[string]image.Image, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}
	out.Duel = duelRows(tallies, byID)
	return out, nil
}

func duelRows(tallies []duel.Tally, images map[string]image.Image) []DuelRow {
	rows := make([]DuelRow, 0, len(tallies))
	for _, t := range tallies {
		img, ok := images[t.ImageID]
		if !ok {
			continue
		}
		rows = append(rows, DuelRow{Image: img, Picks: t.Picks})
	}
	return rows
}

// yearTotals counts voters and ballots over the whole year so both totals
// share one scope, hidden images included.
func yearTotals(ctx context.Context, store TallyStore, year int) (voters, ballots int, err error) {
	if voters, err = store.CountVoters(ctx, year); err != nil {
		return 0, 0, err
	}
	if ballots, err = store.CountBallots(ctx, year); err != nil {
		return 0, 0, err
	}
	return voters, ballots, nil
}
