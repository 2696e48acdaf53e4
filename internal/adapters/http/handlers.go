package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"photocontest/internal/adapters/http/middleware"
	stickerStore "photocontest/internal/adapters/storage/sticker"
	"photocontest/internal/adapters/uploads"
	"photocontest/internal/application/orchestrators"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/duel"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/reaction"
	"photocontest/internal/domain/settings"
	"photocontest/internal/domain/sticker"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON shape of every API failure.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Success: false, Error: kind, Message: message})
}

// Request-level failures that have no domain sentinel.
var (
	errVotingClosed = errors.New("voting is closed for this contest year")
	errUnknownYear  = errors.New("unknown contest year")
)

// apiErrors maps domain sentinels to a status and a stable error kind.
var apiErrors = []struct {
	err    error
	status int
	kind   string
}{
	{ballot.ErrInvalidOption, http.StatusBadRequest, "invalid_option"},
	{ballot.ErrOptionAlreadyUsed, http.StatusConflict, "option_already_used"},
	{ballot.ErrExclusiveConflict, http.StatusConflict, "exclusive_conflict"},
	{ballot.ErrLimitReached, http.StatusConflict, "limit_reached"},
	{ballot.ErrMissingVoter, http.StatusBadRequest, "missing_voter"},
	{ballot.ErrDuplicateBallot, http.StatusConflict, "ballot_conflict"},
	{reaction.ErrInvalidReaction, http.StatusBadRequest, "invalid_reaction"},
	{reaction.ErrMissingVoter, http.StatusBadRequest, "missing_voter"},
	{reaction.ErrMissingImage, http.StatusBadRequest, "missing_image"},
	{duel.ErrNotEnoughCandidates, http.StatusConflict, "not_enough_candidates"},
	{duel.ErrNoSpinsLeft, http.StatusConflict, "no_spins_left"},
	{duel.ErrInvalidSize, http.StatusBadRequest, "invalid_size"},
	{duel.ErrMissingVoter, http.StatusBadRequest, "missing_voter"},
	{duel.ErrMissingImage, http.StatusBadRequest, "missing_image"},
	{image.ErrImageNotFound, http.StatusNotFound, "image_not_found"},
	{image.ErrImageNotInContestYear, http.StatusForbidden, "image_not_in_year"},
	{image.ErrEmptyFilename, http.StatusBadRequest, "invalid_image"},
	{image.ErrFilenameTooLong, http.StatusBadRequest, "invalid_image"},
	{image.ErrUnsupportedType, http.StatusBadRequest, "invalid_image"},
	{image.ErrDescriptionTooLong, http.StatusBadRequest, "invalid_image"},
	{image.ErrUploaderTooLong, http.StatusBadRequest, "invalid_image"},
	{image.ErrInvalidYear, http.StatusBadRequest, "invalid_year"},
	{uploads.ErrTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
	{sticker.ErrEmptyFilename, http.StatusBadRequest, "invalid_sticker"},
	{sticker.ErrUnsupportedType, http.StatusBadRequest, "invalid_sticker"},
	{sticker.ErrDuplicate, http.StatusConflict, "duplicate_sticker"},
	{stickerStore.ErrNotFound, http.StatusNotFound, "sticker_not_found"},
	{orchestrators.ErrInvalidYear, http.StatusBadRequest, "invalid_year"},
	{orchestrators.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{errVotingClosed, http.StatusForbidden, "voting_closed"},
	{errUnknownYear, http.StatusNotFound, "unknown_year"},
}

// validationErrors are catalog and settings errors reported as bad requests.
var validationErrors = []error{
	ballot.ErrEmptyKey, ballot.ErrKeyTooLong, ballot.ErrInvalidKey,
	ballot.ErrEmptyLabel, ballot.ErrLabelTooLong, ballot.ErrIconTooLong,
	ballot.ErrNegativeValue, ballot.ErrInvalidYear, ballot.ErrInvalidMode,
	ballot.ErrInvalidMaxAction,
	settings.ErrInvalidCurrentYear, settings.ErrInvalidLegacyYear,
	settings.ErrWaitingTextTooLong, settings.ErrInvalidDuelSpins,
}

// writeAPIError reports err as a JSON failure. Unknown errors become a generic 500.
func writeAPIError(w http.ResponseWriter, err error) {
	for _, e := range apiErrors {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.kind, e.err.Error())
			return
		}
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			writeError(w, http.StatusBadRequest, "invalid_input", v.Error())
			return
		}
	}
	internalError(w, err)
}

// loadSettings returns the runtime settings snapshot for this request.
func loadSettings(ctx context.Context) (settings.Settings, error) {
	return stores.SettingsStore.Load(ctx)
}

// requestYear resolves the ?year= parameter against the configured years.
// An absent parameter selects the current year.
func requestYear(r *http.Request, s settings.Settings) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return s.CurrentYear, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !s.IsKnownYear(year) {
		return 0, errUnknownYear
	}
	return year, nil
}

// voterID returns the anonymous voter identifier set by middleware.Voter.
func voterID(r *http.Request) string {
	id, _ := middleware.VoterFromContext(r.Context())
	return id
}

// requireAdmin checks the session for the admin role.
// Returns false if the request should not proceed.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !middleware.IsAdmin(r.Context()) {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no admin session")
		writeError(w, http.StatusUnauthorized, "not_authenticated", "admin login required")
		return false
	}
	return true
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	funcMap := template.FuncMap{
		"csrfToken":      func() string { return csrf.Token(r) },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"isAdmin":        func() bool { return middleware.IsAdmin(r.Context()) },
		"renderMarkdown": renderMarkdown,
		"media":          func(rel string) string { return "/media/" + rel },
		"reactionKinds":  func() []string { return reaction.Kinds },
		"reactionIcon":   func(kind string) string { return reaction.Icons[kind] },
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFiles, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}
