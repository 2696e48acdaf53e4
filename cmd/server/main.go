package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "photocontest/internal/adapters/email"
	web "photocontest/internal/adapters/http"
	"photocontest/internal/adapters/http/perf"
	"photocontest/internal/adapters/live"
	"photocontest/internal/adapters/storage"
	ballotStore "photocontest/internal/adapters/storage/ballot"
	duelStore "photocontest/internal/adapters/storage/duel"
	imageStore "photocontest/internal/adapters/storage/image"
	reactionStore "photocontest/internal/adapters/storage/reaction"
	settingsStore "photocontest/internal/adapters/storage/settings"
	stickerStore "photocontest/internal/adapters/storage/sticker"
	"photocontest/internal/adapters/uploads"
	"photocontest/internal/application/orchestrators"
	"photocontest/internal/config"
	"photocontest/internal/domain/duel"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	log.Printf("Configuration: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// WAL mode, foreign keys and a busy timeout so concurrent casts queue instead of failing
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	catalog := ballotStore.NewSQLiteCatalogStore(timedDB)
	stores := &web.Stores{
		ImageStore:    imageStore.NewSQLiteStore(timedDB),
		BallotStore:   ballotStore.NewSQLiteStore(timedDB),
		CatalogStore:  catalog,
		ReactionStore: reactionStore.NewSQLiteStore(timedDB),
		DuelStore:     duelStore.NewSQLiteStore(timedDB),
		StickerStore:  stickerStore.NewSQLiteStore(timedDB),
		SettingsStore: settingsStore.NewFileStore(cfg.SettingsPath, cfg.DefaultYear),
	}

	if err := orchestrators.ExecuteSeedCatalog(ctx, orchestrators.SeedCatalogDeps{CatalogStore: catalog}); err != nil {
		log.Fatalf("failed to seed vote catalog: %v", err)
	}

	passwordHash, err := orchestrators.HashAdminPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	csrfKey := cfg.CSRFKey
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			log.Fatalf("failed to generate CSRF key: %v", err)
		}
		log.Println("CSRF key generated for this process (set CONTEST_CSRF_KEY to keep forms valid across restarts)")
	}

	var mailer emailPkg.Sender
	if cfg.ResendKey != "" {
		mailer = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		mailer = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: CONTEST_RESEND_KEY is not set, result announcements are only logged")
		}
	}

	hub := live.NewHub()
	go hub.Run(ctx)

	handler, limiter := web.NewMux(stores, web.Options{
		Files:        uploads.NewDir(cfg.UploadDir),
		Collector:    collector,
		Hub:          hub,
		Mailer:       mailer,
		AnnounceTo:   cfg.AnnounceTo,
		PublicURL:    cfg.PublicURL,
		PasswordHash: passwordHash,
		CSRFKey:      csrfKey,
		Shuffler:     duel.GlobalShuffler{},
		DB:           db,
		Production:   cfg.IsProduction(),
		SlowRequest:  cfg.SlowRequest,
	})

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep(10 * time.Minute)
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Photo contest %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
