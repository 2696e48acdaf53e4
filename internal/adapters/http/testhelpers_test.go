package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"photocontest/internal/adapters/email"
	"photocontest/internal/adapters/http/middleware"
	ballotStore "photocontest/internal/adapters/storage/ballot"
	duelStore "photocontest/internal/adapters/storage/duel"
	imageStore "photocontest/internal/adapters/storage/image"
	reactionStore "photocontest/internal/adapters/storage/reaction"
	settingsStore "photocontest/internal/adapters/storage/settings"
	"photocontest/internal/adapters/storage/storagetest"
	stickerStore "photocontest/internal/adapters/storage/sticker"
	"photocontest/internal/adapters/uploads"
	"photocontest/internal/application/orchestrators"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/settings"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

const testVoter = "6f1c2a7e-5d1b-4c7e-9a53-2b8f4e0d9c11"

// inOrder leaves duel candidates in store order.
type inOrder struct{}

func (inOrder) Shuffle(int, func(i, j int)) {}

// setupHandlers points the package globals at a fresh in-memory database,
// a temp upload root and a settings file with 2026 current and 2025 legacy.
// The catalog is seeded so 2025 votes with hearts and 2026 with chips.
func setupHandlers(t *testing.T) *email.NoopSender {
	t.Helper()
	db := storagetest.OpenDB(t)
	stores = &Stores{
		ImageStore:    imageStore.NewSQLiteStore(db),
		BallotStore:   ballotStore.NewSQLiteStore(db),
		CatalogStore:  ballotStore.NewSQLiteCatalogStore(db),
		ReactionStore: reactionStore.NewSQLiteStore(db),
		DuelStore:     duelStore.NewSQLiteStore(db),
		StickerStore:  stickerStore.NewSQLiteStore(db),
		SettingsStore: settingsStore.NewFileStore(filepath.Join(t.TempDir(), "settings.json"), 2026),
	}
	mailer := email.NewNoopSender()
	sessions = middleware.NewSessionStore()
	app = Options{
		Files:      uploads.NewDir(t.TempDir()),
		Mailer:     mailer,
		AnnounceTo: []string{"club@example.com"},
		PublicURL:  "https://contest.example.com/",
		Shuffler:   inOrder{},
		DB:         db,
	}
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = time.Now })

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{CatalogStore: stores.CatalogStore}); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	s := settings.Default(2026)
	s.LegacyYears = []int{2025}
	if err := stores.SettingsStore.Save(ctx, s); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	return mailer
}

// addImage stores a visible image for year.
func addImage(t *testing.T, id string, year int) image.Image {
	t.Helper()
	img := image.Image{ID: id, Filename: id + ".jpg", Uploader: "uploader " + id, ContestYear: year, Visible: true, UploadedAt: testNow}
	if err := stores.ImageStore.Save(context.Background(), img); err != nil {
		t.Fatalf("save image: %v", err)
	}
	return img
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(b)
}

// voterRequest builds a request as an anonymous voter would send it after middleware.Voter.
func voterRequest(method, url string, body io.Reader, voter string) *http.Request {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.ContextWithVoter(req.Context(), voter))
}

// adminRequest builds a request carrying an admin session.
func adminRequest(method, url string, body io.Reader) *http.Request {
	req := voterRequest(method, url, body, testVoter)
	sess := middleware.Session{Role: middleware.RoleAdmin, CreatedAt: testNow}
	return req.WithContext(middleware.ContextWithSession(req.Context(), sess))
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func vote(t *testing.T, voter, imageID string, year int, key string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handleVote(rec, voterRequest("POST", "/api/vote", jsonBody(t, map[string]any{
		"imageId": imageID, "year": year, "optionKey": key,
	}), voter))
	return rec
}
