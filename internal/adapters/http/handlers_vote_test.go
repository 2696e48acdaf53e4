package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/reaction"
)

func TestHandleVote_CastThenToggleOff(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)

	rec := vote(t, testVoter, "img-a", 2026, "chip_25")
	if rec.Code != http.StatusOK {
		t.Fatalf("cast: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	if body["action"] != "added" || body["optionKey"] != "chip_25" {
		t.Errorf("cast body = %v", body)
	}
	if body["votesLeft"] != float64(3) {
		t.Errorf("votesLeft = %v, want 3", body["votesLeft"])
	}

	rec = vote(t, testVoter, "img-a", 2026, "chip_25")
	body = decodeJSON(t, rec)
	if body["action"] != "removed" || body["votesLeft"] != float64(4) {
		t.Errorf("toggle body = %v", body)
	}
}

func TestHandleVote_UniqueChipConflict(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	addImage(t, "img-b", 2026)

	vote(t, testVoter, "img-a", 2026, "chip_100")
	rec := vote(t, testVoter, "img-b", 2026, "chip_100")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "option_already_used" || body["success"] != false {
		t.Errorf("body = %v", body)
	}
}

// A second concurrent cast that still collides after the retry is a conflict, not a 500.
func TestWriteAPIError_DuplicateBallotIsConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	writeAPIError(rec, fmt.Errorf("insert ballot: %w", ballot.ErrDuplicateBallot))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "ballot_conflict" || body["success"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestHandleVote_AllInExclusive(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	addImage(t, "img-b", 2026)

	vote(t, testVoter, "img-a", 2026, "chip_5")
	rec := vote(t, testVoter, "img-b", 2026, "all_in")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "exclusive_conflict" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleVote_DefaultsToCurrentYear(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)

	rec := vote(t, testVoter, "img-a", 0, "chip_5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleVote_LegacyYearClosed(t *testing.T) {
	setupHandlers(t)
	addImage(t, "old", 2025)

	rec := vote(t, testVoter, "old", 2025, "heart")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "voting_closed" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleVote_AfterVotingEnd(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	s, _ := loadSettings(t.Context())
	end := testNow.Add(-time.Minute)
	s.VotingEnd = &end
	if err := stores.SettingsStore.Save(t.Context(), s); err != nil {
		t.Fatal(err)
	}

	if rec := vote(t, testVoter, "img-a", 2026, "chip_5"); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandleVote_ImageFromOtherYear(t *testing.T) {
	setupHandlers(t)
	addImage(t, "old", 2025)

	rec := vote(t, testVoter, "old", 2026, "chip_5")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "image_not_in_year" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleVote_RejectsUnknownFields(t *testing.T) {
	setupHandlers(t)
	rec := httptest.NewRecorder()
	handleVote(rec, voterRequest("POST", "/api/vote", strings.NewReader(`{"imageId":"x","points":999}`), testVoter))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleVote_MethodNotAllowed(t *testing.T) {
	setupHandlers(t)
	rec := httptest.NewRecorder()
	handleVote(rec, voterRequest("GET", "/api/vote", nil, testVoter))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleBallotState_ReflectsCasts(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	addImage(t, "img-b", 2026)
	vote(t, testVoter, "img-a", 2026, "chip_50")
	vote(t, testVoter, "img-b", 2026, "chip_5")

	rec := httptest.NewRecorder()
	handleBallotState(rec, voterRequest("GET", "/api/ballot?year=2026", nil, testVoter))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := decodeJSON(t, rec)
	if body["totalCount"] != float64(2) || body["votesLeft"] != float64(2) {
		t.Errorf("counts = %v/%v", body["totalCount"], body["votesLeft"])
	}
	used, _ := body["usedKeys"].([]any)
	if len(used) != 2 || used[0] != "chip_5" || used[1] != "chip_50" {
		t.Errorf("usedKeys = %v", used)
	}
	perImage, _ := body["perImage"].(map[string]any)
	if choice, _ := perImage["img-a"].(map[string]any); choice["value"] != float64(50) {
		t.Errorf("perImage[img-a] = %v", perImage["img-a"])
	}
}

func TestHandleBallotState_UnknownYear(t *testing.T) {
	setupHandlers(t)
	rec := httptest.NewRecorder()
	handleBallotState(rec, voterRequest("GET", "/api/ballot?year=1999", nil, testVoter))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleResetMyBallots_OnlyCaller(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	other := "0b7e1f4c-9d22-4a61-8f3e-5c6d7e8f9a01"
	vote(t, testVoter, "img-a", 2026, "chip_5")
	vote(t, other, "img-a", 2026, "chip_5")

	rec := httptest.NewRecorder()
	handleResetMyBallots(rec, voterRequest("POST", "/api/ballot/reset", jsonBody(t, map[string]int{"year": 2026}), testVoter))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if body := decodeJSON(t, rec); body["removed"] != float64(1) {
		t.Errorf("removed = %v", body["removed"])
	}
	held, _ := stores.BallotStore.ListByVoter(t.Context(), other, 2026)
	if len(held) != 1 {
		t.Errorf("other voter holds %d ballots, want 1", len(held))
	}
}

func TestHandleReactions_ToggleAndState(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	post := func() map[string]any {
		rec := httptest.NewRecorder()
		handleReactions(rec, voterRequest("POST", "/api/reactions", jsonBody(t, map[string]any{
			"imageId": "img-a", "year": 2026, "kind": reaction.KindHype,
		}), testVoter))
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
		}
		return decodeJSON(t, rec)
	}

	if body := post(); body["active"] != true || body["count"] != float64(1) {
		t.Errorf("first toggle = %v", body)
	}

	rec := httptest.NewRecorder()
	handleReactions(rec, voterRequest("GET", "/api/reactions?year=2026", nil, testVoter))
	body := decodeJSON(t, rec)
	mine, _ := body["mine"].(map[string]any)
	if kinds, _ := mine["img-a"].([]any); len(kinds) != 1 || kinds[0] != reaction.KindHype {
		t.Errorf("mine = %v", mine)
	}

	if body := post(); body["active"] != false || body["count"] != float64(0) {
		t.Errorf("second toggle = %v", body)
	}
}

func TestHandleReactions_InvalidKind(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	rec := httptest.NewRecorder()
	handleReactions(rec, voterRequest("POST", "/api/reactions", jsonBody(t, map[string]any{
		"imageId": "img-a", "year": 2026, "kind": "meh",
	}), testVoter))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "invalid_reaction" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleDuel_DrawAndPick(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	addImage(t, "img-b", 2026)

	rec := httptest.NewRecorder()
	handleDuel(rec, voterRequest("GET", "/api/duel?year=2026&size=2", nil, testVoter))
	if rec.Code != http.StatusOK {
		t.Fatalf("draw: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeJSON(t, rec)
	if c, _ := body["candidates"].([]any); len(c) != 2 {
		t.Errorf("candidates = %v", body["candidates"])
	}

	rec = httptest.NewRecorder()
	handleDuel(rec, voterRequest("POST", "/api/duel", jsonBody(t, map[string]any{"imageId": "img-b", "year": 2026}), testVoter))
	if rec.Code != http.StatusOK {
		t.Fatalf("pick: status %d body %s", rec.Code, rec.Body.String())
	}
	if body := decodeJSON(t, rec); body["spinsLeft"] != float64(9) {
		t.Errorf("spinsLeft = %v, want 9", body["spinsLeft"])
	}
}

func TestHandleDuel_NotEnoughCandidates(t *testing.T) {
	setupHandlers(t)
	addImage(t, "img-a", 2026)
	addImage(t, "img-b", 2026)

	rec := httptest.NewRecorder()
	handleDuel(rec, voterRequest("GET", "/api/duel?size=3", nil, testVoter))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body := decodeJSON(t, rec); body["error"] != "not_enough_candidates" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleDuel_BadSize(t *testing.T) {
	setupHandlers(t)
	rec := httptest.NewRecorder()
	handleDuel(rec, voterRequest("GET", "/api/duel?size=two", nil, testVoter))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
