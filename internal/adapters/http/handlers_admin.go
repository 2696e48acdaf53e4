package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"photocontest/internal/adapters/http/middleware"
	"photocontest/internal/application/listutil"
	"photocontest/internal/application/orchestrators"
	"photocontest/internal/application/projections"
	"photocontest/internal/domain/ballot"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/ranking"
	"photocontest/internal/domain/settings"
	"photocontest/internal/domain/sticker"
)

// maxUploadBytes bounds one multipart upload request.
const maxUploadBytes = 32 << 20

type loginPage struct {
	Error string
}

// handleLogin handles GET/POST /admin/login.
// PRE: POST carries the admin password form field
// POST: on success an admin session cookie is set and the browser is sent to /admin
func handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		if middleware.IsAdmin(r.Context()) {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login.html", loginPage{})
	case "POST":
		err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Password: r.FormValue("password"),
			ClientIP: middleware.ClientIP(r),
		}, orchestrators.LoginDeps{PasswordHash: app.PasswordHash})
		if err != nil {
			renderTemplate(w, r, "login.html", loginPage{Error: "Wrong password."})
			return
		}
		token, err := sessions.Create(middleware.RoleAdmin)
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, token)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLogout handles POST /admin/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	slog.Info("auth_event", "event", "logout")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminPage is the template data for the admin dashboard.
type adminPage struct {
	Year         int
	Settings     settings.Settings
	YearSettings ballot.YearSettings
	Options      []ballot.VoteOption
	Images       []image.Image
	Stickers     []sticker.Sticker
	Results      projections.AdminResults
	LiveClients  int
}

// handleAdmin handles GET /admin.
func handleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !middleware.IsAdmin(r.Context()) {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	ctx := r.Context()
	s, err := loadSettings(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	year, err := requestYear(r, s)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	page := adminPage{Year: year, Settings: s}
	if page.YearSettings, err = stores.CatalogStore.GetYearSettings(ctx, year); err != nil {
		internalError(w, err)
		return
	}
	if page.Options, err = stores.CatalogStore.ListOptions(ctx, year, false); err != nil {
		internalError(w, err)
		return
	}
	if page.Images, err = stores.ImageStore.ListByYear(ctx, year, false); err != nil {
		internalError(w, err)
		return
	}
	if page.Stickers, err = stores.StickerStore.ListByYear(ctx, year, false); err != nil {
		internalError(w, err)
		return
	}
	if page.Results, err = projections.QueryAdminResults(ctx, year, resultsDeps()); err != nil {
		internalError(w, err)
		return
	}
	if app.Hub != nil {
		page.LiveClients = app.Hub.ClientCount(year)
	}
	renderTemplate(w, r, "admin.html", page)
}

func imageAdminDeps() orchestrators.ImageAdminDeps {
	return orchestrators.ImageAdminDeps{
		ImageStore: stores.ImageStore,
		Files:      app.Files,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

// handleAdminImages handles /api/admin/images.
// POST uploads (multipart), PUT bulk-edits, DELETE ?id= removes.
func handleAdminImages(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case "GET":
		listImages(w, r)
	case "POST":
		uploadImages(w, r)
	case "PUT":
		updateImages(w, r)
	case "DELETE":
		if err := orchestrators.ExecuteDeleteImage(r.Context(), r.URL.Query().Get("id"), imageAdminDeps()); err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// listImages returns one page of a year's images, hidden ones included.
// Query: year, page, per_page, sort (uploaded|uploader|filename), dir, q.
func listImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := loadSettings(ctx)
	if err != nil {
		internalError(w, err)
		return
	}
	year, err := requestYear(r, s)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	res, err := projections.QueryImageList(ctx, projections.ImageListQuery{
		Year:   year,
		Params: listutil.Parse(r.URL.Query(), projections.ImageListSortColumns),
	}, projections.ImageListDeps{ImageStore: stores.ImageStore})
	if err != nil {
		internalError(w, err)
		return
	}
	views := make([]imageView, 0, len(res.Images))
	for _, img := range res.Images {
		views = append(views, toImageView(img))
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "images": views, "page": res.Page})
}

// uploadImages stores every file in the "images" field. One bad file does not stop the rest.
func uploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request too large or malformed")
		return
	}
	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil || year <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_year", image.ErrInvalidYear.Error())
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_image", "no files uploaded")
		return
	}

	uploaded := make([]imageView, 0, len(files))
	var failed []map[string]string
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			failed = append(failed, map[string]string{"filename": fh.Filename, "error": "unreadable upload"})
			continue
		}
		img, err := orchestrators.ExecuteUploadImage(r.Context(), orchestrators.UploadImageInput{
			Year:        year,
			Filename:    fh.Filename,
			Body:        f,
			Uploader:    r.FormValue("uploader"),
			Description: r.FormValue("description"),
		}, imageAdminDeps())
		f.Close()
		if err != nil {
			slog.Warn("image_event", "event", "upload_rejected", "filename", fh.Filename, "error", err)
			failed = append(failed, map[string]string{"filename": fh.Filename, "error": err.Error()})
			continue
		}
		uploaded = append(uploaded, toImageView(img))
	}

	status := http.StatusCreated
	if len(uploaded) == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]any{"success": len(uploaded) > 0, "uploaded": uploaded, "failed": failed})
}

type imageEditRequest struct {
	Year   int        `json:"year"`
	Images []struct {
		ID          string `json:"id"`
		Uploader    string `json:"uploader"`
		Description string `json:"description"`
		Visible     bool   `json:"visible"`
	} `json:"images"`
}

func updateImages(w http.ResponseWriter, r *http.Request) {
	var req imageEditRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	edits := make([]orchestrators.ImageEdit, 0, len(req.Images))
	for _, e := range req.Images {
		edits = append(edits, orchestrators.ImageEdit{ID: e.ID, Uploader: e.Uploader, Description: e.Description, Visible: e.Visible})
	}
	n, err := orchestrators.ExecuteUpdateImages(r.Context(), req.Year, edits, imageAdminDeps())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": n})
}

type optionRequest struct {
	Year           int    `json:"year"`
	Key            string `json:"key"`
	Label          string `json:"label"`
	Icon           string `json:"icon"`
	Value          int    `json:"value"`
	UniquePerUser  bool   `json:"uniquePerUser"`
	ExclusiveGroup string `json:"exclusiveGroup"`
	IsSpecial      bool   `json:"isSpecial"`
	Active         bool   `json:"active"`
	SortOrder      int    `json:"sortOrder"`
}

// handleAdminOptions handles GET ?year= (list) and POST (upsert) for /api/admin/options.
func handleAdminOptions(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case "GET":
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_year", ballot.ErrInvalidYear.Error())
			return
		}
		opts, err := stores.CatalogStore.ListOptions(r.Context(), year, false)
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]optionView, 0, len(opts))
		for _, o := range opts {
			views = append(views, toOptionView(o))
		}
		writeJSON(w, http.StatusOK, map[string]any{"year": year, "options": views})
	case "POST":
		var req optionRequest
		if err := strictDecode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
		saved, err := orchestrators.ExecuteSaveVoteOption(r.Context(), ballot.VoteOption{
			ContestYear:    req.Year,
			Key:            req.Key,
			Label:          req.Label,
			Icon:           req.Icon,
			Value:          req.Value,
			UniquePerUser:  req.UniquePerUser,
			ExclusiveGroup: req.ExclusiveGroup,
			IsSpecial:      req.IsSpecial,
			Active:         req.Active,
			SortOrder:      req.SortOrder,
		}, orchestrators.CatalogDeps{CatalogStore: stores.CatalogStore})
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "option": toOptionView(saved)})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type optionActiveRequest struct {
	Year   int    `json:"year"`
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

// handleAdminOptionActive handles POST /api/admin/options/active.
func handleAdminOptionActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	var req optionActiveRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	err := orchestrators.ExecuteSetOptionActive(r.Context(), req.Year, req.Key, req.Active,
		orchestrators.CatalogDeps{CatalogStore: stores.CatalogStore})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type yearSettingsRequest struct {
	Year       int    `json:"year"`
	VoteMode   string `json:"voteMode"`
	MaxActions int    `json:"maxActions"`
	UnitName   string `json:"unitName"`
	UnitIcon   string `json:"unitIcon"`
	ThemeID    string `json:"themeId"`
}

// handleAdminYearSettings handles POST /api/admin/year-settings.
func handleAdminYearSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	var req yearSettingsRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	saved, err := orchestrators.ExecuteSaveYearSettings(r.Context(), orchestrators.YearSettingsEdit{
		Year:       req.Year,
		VoteMode:   req.VoteMode,
		MaxActions: req.MaxActions,
		UnitName:   req.UnitName,
		UnitIcon:   req.UnitIcon,
		ThemeID:    req.ThemeID,
	}, orchestrators.CatalogDeps{CatalogStore: stores.CatalogStore})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"voteMode":         saved.VoteMode,
		"maxActions":       saved.MaxActions,
		"resultsPublished": saved.ResultsPublished,
	})
}

type runtimeSettingsRequest struct {
	CurrentYear     int               `json:"currentYear"`
	LegacyYears     []int             `json:"legacyYears"`
	VotingEnd       string            `json:"votingEnd"`
	GateLegacyYears bool              `json:"gateLegacyYears"`
	DuelSpins       int               `json:"duelSpins"`
	WaitingText     map[string]string `json:"waitingText"`
}

// handleAdminSettings handles GET and POST /api/admin/settings.
// VotingEnd is RFC 3339; an empty string clears the deadline.
func handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case "GET":
		s, err := loadSettings(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	case "POST":
		var req runtimeSettingsRequest
		if err := strictDecode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
			return
		}
		edit := orchestrators.RuntimeSettingsEdit{
			CurrentYear:     req.CurrentYear,
			LegacyYears:     req.LegacyYears,
			GateLegacyYears: req.GateLegacyYears,
			DuelSpins:       req.DuelSpins,
			WaitingText:     make(map[int]string, len(req.WaitingText)),
		}
		if v := strings.TrimSpace(req.VotingEnd); v != "" {
			end, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", "votingEnd must be an RFC 3339 timestamp")
				return
			}
			edit.VotingEnd = &end
		}
		for k, text := range req.WaitingText {
			year, err := strconv.Atoi(k)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_year", "waitingText keys must be years")
				return
			}
			edit.WaitingText[year] = text
		}
		saved, err := orchestrators.ExecuteSaveRuntimeSettings(r.Context(), edit,
			orchestrators.RuntimeSettingsDeps{SettingsStore: stores.SettingsStore})
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func stickerDeps() orchestrators.StickerDeps {
	return orchestrators.StickerDeps{
		StickerStore: stores.StickerStore,
		Files:        app.Files,
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

// handleAdminStickers handles POST (multipart upload) and DELETE ?id= for /api/admin/stickers.
func handleAdminStickers(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case "POST":
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "request too large or malformed")
			return
		}
		year, _ := strconv.Atoi(r.FormValue("year"))
		f, fh, err := r.FormFile("sticker")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_sticker", "sticker file is required")
			return
		}
		defer f.Close()
		st, err := orchestrators.ExecuteUploadSticker(r.Context(), orchestrators.UploadStickerInput{
			Year:     year,
			Filename: fh.Filename,
			Body:     f,
		}, stickerDeps())
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": st.ID, "url": "/media/" + st.Path()})
	case "DELETE":
		if err := orchestrators.ExecuteDeleteSticker(r.Context(), r.URL.Query().Get("id"), stickerDeps()); err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type stickerActiveRequest struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// handleAdminStickerActive handles POST /api/admin/stickers/active.
func handleAdminStickerActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	var req stickerActiveRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if err := orchestrators.ExecuteSetStickerActive(r.Context(), req.ID, req.Active, stickerDeps()); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Reset scopes accepted by /api/admin/reset.
const (
	resetBallots   = "ballots"
	resetReactions = "reactions"
	resetAll       = "all"
)

type resetRequest struct {
	Year  int    `json:"year"`
	Scope string `json:"scope"`
}

// handleAdminReset handles POST /api/admin/reset.
// POST: the chosen scope of a year's voting data is deleted; images stay
func handleAdminReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	var req resetRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Scope == "" {
		req.Scope = resetBallots
	}
	deps := orchestrators.ResetDeps{
		BallotStore:   stores.BallotStore,
		ReactionStore: stores.ReactionStore,
		Live:          livePublisher(),
	}

	body := map[string]any{"success": true, "scope": req.Scope}
	ctx := r.Context()
	if req.Scope == resetBallots || req.Scope == resetAll {
		n, err := orchestrators.ExecuteResetAllBallots(ctx, req.Year, deps)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		body["ballotsRemoved"] = n
	}
	if req.Scope == resetReactions || req.Scope == resetAll {
		n, err := orchestrators.ExecuteResetAllReactions(ctx, req.Year, deps)
		if err != nil {
			writeAPIError(w, err)
			return
		}
		body["reactionsRemoved"] = n
	}
	if len(body) == 2 {
		writeError(w, http.StatusBadRequest, "invalid_input", "scope must be ballots, reactions or all")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

type publishRequest struct {
	Year      int  `json:"year"`
	Published bool `json:"published"`
}

// handleAdminPublish handles POST /api/admin/publish.
// POST: publication flag stored; first publication mails the announcement list
func handleAdminPublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	var req publishRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	result, err := orchestrators.ExecuteSetResultsPublished(r.Context(), orchestrators.SetResultsPublishedInput{
		Year:       req.Year,
		Published:  req.Published,
		ResultsURL: resultsURL(req.Year),
	}, orchestrators.SetResultsPublishedDeps{
		CatalogStore: stores.CatalogStore,
		Mailer:       app.Mailer,
		Recipients:   app.AnnounceTo,
		LoadPodium:   loadPodium,
		Live:         livePublisher(),
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "published": result.Published, "announced": result.Announced})
}

func resultsURL(year int) string {
	return strings.TrimRight(app.PublicURL, "/") + "/results?year=" + strconv.Itoa(year)
}

// loadPodium ranks the publicly visible images, matching what /results shows.
func loadPodium(ctx context.Context, year int) ([]ranking.Entry, error) {
	d := resultsDeps()
	return projections.QueryRankImages(ctx, projections.RankImagesQuery{
		Year:        year,
		VisibleOnly: true,
		IncludeIdle: true,
	}, projections.RankImagesDeps{
		ImageStore:    d.ImageStore,
		TallyStore:    d.TallyStore,
		ReactionStore: d.ReactionStore,
	})
}

// handleAdminResults handles GET /api/admin/results?year=.
// Admins see the full ranking regardless of the publication gate.
func handleAdminResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
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
	res, err := projections.QueryAdminResults(r.Context(), year, resultsDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	duelRows := make([]map[string]any, 0, len(res.Duel))
	for _, d := range res.Duel {
		duelRows = append(duelRows, map[string]any{"image": toImageView(d.Image), "picks": d.Picks})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":        res.Year,
		"published":   res.Published,
		"entries":     toEntryViews(res.Entries),
		"voterCount":  res.VoterCount,
		"ballotCount": res.BallotCount,
		"duel":        duelRows,
	})
}

// handleAdminPerf handles GET /admin/perf?minutes=.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !requireAdmin(w, r) {
		return
	}
	if app.Collector == nil {
		writeError(w, http.StatusNotFound, "not_enabled", "performance collection is off")
		return
	}
	minutes, err := strconv.Atoi(r.URL.Query().Get("minutes"))
	if err != nil || minutes <= 0 {
		minutes = 60
	}
	writeJSON(w, http.StatusOK, app.Collector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), 10))
}

// handleAdminLive handles GET /admin/live?year=, upgrading to a websocket.
func handleAdminLive(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if app.Hub == nil {
		writeError(w, http.StatusNotFound, "not_enabled", "live updates are off")
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
	if err := app.Hub.Serve(w, r, year); err != nil {
		slog.Warn("live_upgrade_failed", "error", err)
	}
}
