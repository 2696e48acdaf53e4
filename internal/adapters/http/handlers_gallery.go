package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"photocontest/internal/application/projections"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/settings"
	"photocontest/internal/domain/sticker"
)

func galleryDeps() projections.GalleryDeps {
	return projections.GalleryDeps{
		ImageStore:   stores.ImageStore,
		StickerStore: stores.StickerStore,
		Ballot: projections.VoterBallotStateDeps{
			BallotStore:  stores.BallotStore,
			CatalogStore: stores.CatalogStore,
		},
		Reactions: projections.ReactionStateDeps{ReactionStore: stores.ReactionStore},
	}
}

func resultsDeps() projections.ResultsDeps {
	return projections.ResultsDeps{
		CatalogStore:  stores.CatalogStore,
		ImageStore:    stores.ImageStore,
		TallyStore:    stores.BallotStore,
		ReactionStore: stores.ReactionStore,
		DuelStore:     stores.DuelStore,
	}
}

// galleryPage is the template data for the voting gallery.
type galleryPage struct {
	Year        int
	Years       []int
	VotingOpen  bool
	VotingEnd   *time.Time
	Gallery     projections.Gallery
	Options     []ballot.VoteOption
	StickerURLs []string
}

// handleGallery handles GET /.
// POST: renders the visible images of the requested year with the voter's choices
func handleGallery(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s, err := loadSettings(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	year, err := requestYear(r, s)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	g, err := projections.QueryGallery(r.Context(), projections.GalleryQuery{
		VoterID: voterID(r),
		Year:    year,
	}, galleryDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "gallery.html", galleryPage{
		Year:        year,
		Years:       s.Years(),
		VotingOpen:  s.VotingOpen(year, timeNow()),
		VotingEnd:   s.VotingEnd,
		Gallery:     g,
		Options:     g.Ballot.Options,
		StickerURLs: stickerURLs(g.Stickers),
	})
}

func stickerURLs(list []sticker.Sticker) []string {
	out := make([]string, 0, len(list))
	for _, st := range list {
		out = append(out, "/media/"+st.Path())
	}
	return out
}

// resultsPage is the template data for the public results and waiting pages.
type resultsPage struct {
	Years   []int
	Results projections.PublicResults
}

// handleResults handles GET /results.
// Shows the podium and top ten once the year is published, otherwise the waiting page.
func handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	results, s, err := publicResults(r)
	if err != nil {
		if errors.Is(err, errUnknownYear) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}
	page := resultsPage{Years: s.Years(), Results: results}
	if !results.Visible {
		renderTemplate(w, r, "waiting.html", page)
		return
	}
	renderTemplate(w, r, "results.html", page)
}

// handleResultsAPI handles GET /api/results?year=.
func handleResultsAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	results, _, err := publicResults(r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	body := map[string]any{
		"year":    results.Year,
		"visible": results.Visible,
	}
	if results.Visible {
		body["podium"] = toEntryViews(results.Podium)
		body["topTen"] = toEntryViews(results.TopTen)
		body["voterCount"] = results.VoterCount
		body["ballotCount"] = results.BallotCount
	} else {
		body["waitingText"] = results.WaitingText
		body["votingEnd"] = results.VotingEnd
	}
	writeJSON(w, http.StatusOK, body)
}

func publicResults(r *http.Request) (projections.PublicResults, settings.Settings, error) {
	s, err := loadSettings(r.Context())
	if err != nil {
		return projections.PublicResults{}, settings.Settings{}, err
	}
	year, err := requestYear(r, s)
	if err != nil {
		return projections.PublicResults{}, s, err
	}
	results, err := projections.QueryPublicResults(r.Context(), projections.PublicResultsQuery{
		Year:     year,
		Settings: s,
		Now:      timeNow(),
	}, resultsDeps())
	return results, s, err
}

// handleHealthz handles GET /healthz.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if app.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.DB.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
