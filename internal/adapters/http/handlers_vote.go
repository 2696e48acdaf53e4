package web

import (
	"net/http"
	"strconv"

	"photocontest/internal/application/orchestrators"
	"photocontest/internal/application/projections"
	"photocontest/internal/domain/settings"
)

// livePublisher returns the hub as a Publisher, or nil when live updates are off.
func livePublisher() orchestrators.Publisher {
	if app.Hub == nil {
		return nil
	}
	return app.Hub
}

// votingYear resolves the year a voter action targets and checks it is open.
func votingYear(r *http.Request, requested int) (int, settings.Settings, error) {
	s, err := loadSettings(r.Context())
	if err != nil {
		return 0, settings.Settings{}, err
	}
	year := requested
	if year == 0 {
		year = s.CurrentYear
	}
	if !s.VotingOpen(year, timeNow()) {
		return 0, settings.Settings{}, errVotingClosed
	}
	return year, s, nil
}

type voteRequest struct {
	ImageID   string `json:"imageId"`
	Year      int    `json:"year"`
	OptionKey string `json:"optionKey"`
}

// handleVote handles POST /api/vote.
// PRE: JSON body names an image; voter cookie set by middleware.Voter
// POST: ballot cast, toggled off or removed; JSON carries the voter's new totals
func handleVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req voteRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	year, _, err := votingYear(r, req.Year)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	result, err := orchestrators.ExecuteCastVote(r.Context(), orchestrators.CastVoteInput{
		ImageID:   req.ImageID,
		VoterID:   voterID(r),
		Year:      year,
		OptionKey: req.OptionKey,
	}, orchestrators.CastVoteDeps{
		BallotStore:  stores.BallotStore,
		CatalogStore: stores.CatalogStore,
		ImageStore:   stores.ImageStore,
		Live:         livePublisher(),
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"action":       result.Action.String(),
		"optionKey":    result.OptionKey,
		"updatedCount": result.TotalCount,
		"votesLeft":    result.VotesLeft,
	})
}

// handleBallotState handles GET /api/ballot?year=.
func handleBallotState(w http.ResponseWriter, r *http.Request) {
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
		writeAPIError(w, err)
		return
	}

	state, err := projections.QueryVoterBallotState(r.Context(), projections.VoterBallotStateQuery{
		VoterID: voterID(r),
		Year:    year,
	}, projections.VoterBallotStateDeps{
		BallotStore:  stores.BallotStore,
		CatalogStore: stores.CatalogStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBallotStateView(year, state))
}

type resetBallotsRequest struct {
	Year int `json:"year"`
}

// handleResetMyBallots handles POST /api/ballot/reset.
// POST: the calling voter holds no ballots in the year
func handleResetMyBallots(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req resetBallotsRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	year, _, err := votingYear(r, req.Year)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	n, err := orchestrators.ExecuteResetBallots(r.Context(), voterID(r), year, orchestrators.ResetDeps{
		BallotStore: stores.BallotStore,
		Live:        livePublisher(),
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": n})
}

type reactionRequest struct {
	ImageID string `json:"imageId"`
	Year    int    `json:"year"`
	Kind    string `json:"kind"`
}

// handleReactions handles GET (voter state) and POST (toggle) for /api/reactions.
func handleReactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		handleReactionState(w, r)
	case "POST":
		handleToggleReaction(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func handleToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	year, _, err := votingYear(r, req.Year)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	result, err := orchestrators.ExecuteToggleReaction(r.Context(), orchestrators.ToggleReactionInput{
		ImageID: req.ImageID,
		VoterID: voterID(r),
		Year:    year,
		Kind:    req.Kind,
	}, orchestrators.ToggleReactionDeps{
		ReactionStore: stores.ReactionStore,
		ImageStore:    stores.ImageStore,
		Live:          livePublisher(),
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"active":  result.Active,
		"count":   result.Count,
		"counts":  countsView(result.Counts),
	})
}

func handleReactionState(w http.ResponseWriter, r *http.Request) {
	s, err := loadSettings(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	year, err := requestYear(r, s)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	state, err := projections.QueryReactionState(r.Context(), voterID(r), year, projections.ReactionStateDeps{
		ReactionStore: stores.ReactionStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	counts := make(map[string]map[string]int, len(state.Counts))
	for id, c := range state.Counts {
		counts[id] = countsView(c)
	}
	mine := make(map[string][]string, len(state.Mine))
	for id, kinds := range state.Mine {
		mine[id] = reactionKindsInOrder(kinds)
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "counts": counts, "mine": mine})
}

// handleDuel handles GET (draw) and POST (pick) for /api/duel.
func handleDuel(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		handleDrawDuel(w, r)
	case "POST":
		handlePickDuel(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func duelDeps(s settings.Settings) orchestrators.DuelDeps {
	return orchestrators.DuelDeps{
		ImageStore:   stores.ImageStore,
		DuelStore:    stores.DuelStore,
		Shuffler:     app.Shuffler,
		SpinsPerYear: s.SpinsPerYear(),
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

func handleDrawDuel(w http.ResponseWriter, r *http.Request) {
	requested, _ := strconv.Atoi(r.URL.Query().Get("year"))
	year, s, err := votingYear(r, requested)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	size := 2
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_size", "size must be 2 or 3")
			return
		}
	}

	result, err := orchestrators.ExecuteDrawDuel(r.Context(), orchestrators.DuelInput{
		VoterID: voterID(r),
		Year:    year,
		Size:    size,
	}, duelDeps(s))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	candidates := make([]imageView, 0, len(result.Candidates))
	for _, img := range result.Candidates {
		candidates = append(candidates, toImageView(img))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "candidates": candidates, "spinsLeft": result.SpinsLeft})
}

type duelPickRequest struct {
	ImageID string `json:"imageId"`
	Year    int    `json:"year"`
}

func handlePickDuel(w http.ResponseWriter, r *http.Request) {
	var req duelPickRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	year, s, err := votingYear(r, req.Year)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	result, err := orchestrators.ExecutePickDuel(r.Context(), orchestrators.DuelInput{
		VoterID: voterID(r),
		Year:    year,
		ImageID: req.ImageID,
	}, duelDeps(s))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "spinsLeft": result.SpinsLeft})
}
