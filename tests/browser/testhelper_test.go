package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	"photocontest/internal/adapters/email"
	web "photocontest/internal/adapters/http"
	"photocontest/internal/adapters/storage"
	ballotStore "photocontest/internal/adapters/storage/ballot"
	duelStore "photocontest/internal/adapters/storage/duel"
	imageStore "photocontest/internal/adapters/storage/image"
	reactionStore "photocontest/internal/adapters/storage/reaction"
	settingsStore "photocontest/internal/adapters/storage/settings"
	stickerStore "photocontest/internal/adapters/storage/sticker"
	"photocontest/internal/adapters/uploads"
	"photocontest/internal/application/orchestrators"
	"photocontest/internal/domain/image"
	"photocontest/internal/domain/settings"
)

const adminPassword = "TestPass123!"

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	Year    int
}

// newTestApp creates a fully wired contest with a temp SQLite DB and starts an HTTP server.
// 2026 is the current year and stays open for voting for another week.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	year := 2026
	catalog := ballotStore.NewSQLiteCatalogStore(db)
	stores := &web.Stores{
		ImageStore:    imageStore.NewSQLiteStore(db),
		BallotStore:   ballotStore.NewSQLiteStore(db),
		CatalogStore:  catalog,
		ReactionStore: reactionStore.NewSQLiteStore(db),
		DuelStore:     duelStore.NewSQLiteStore(db),
		StickerStore:  stickerStore.NewSQLiteStore(db),
		SettingsStore: settingsStore.NewFileStore(filepath.Join(tmpDir, "settings.json"), year),
	}

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{CatalogStore: catalog}); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	end := time.Now().Add(7 * 24 * time.Hour).UTC()
	s := settings.Default(year)
	s.VotingEnd = &end
	if err := stores.SettingsStore.Save(ctx, s); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	for _, id := range []string{"sunset", "harbour"} {
		img := image.Image{ID: id, Filename: id + ".jpg", Uploader: "member " + id, ContestYear: year, Visible: true, UploadedAt: time.Now().UTC()}
		if err := stores.ImageStore.Save(ctx, img); err != nil {
			t.Fatalf("failed to seed image %s: %v", id, err)
		}
	}

	hash, err := orchestrators.HashAdminPassword(adminPassword)
	if err != nil {
		t.Fatalf("failed to hash admin password: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	web.RateLimitPerSecond = 1000
	handler, _ := web.NewMux(stores, web.Options{
		Files:        uploads.NewDir(filepath.Join(tmpDir, "media")),
		Mailer:       email.NewNoopSender(),
		PublicURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		PasswordHash: hash,
		CSRFKey:      []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
		DB: db,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		Year:    year,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage opens a page in a fresh browser context so each page is a separate voter.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

// login signs in on the admin login page.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/admin/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(adminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/admin", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to admin: %v", err)
	}
}
