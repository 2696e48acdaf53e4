package web

import (
	"context"
	"net/http"
	"time"

	"photocontest/internal/adapters/email"
	"photocontest/internal/adapters/http/middleware"
	"photocontest/internal/adapters/http/perf"
	"photocontest/internal/adapters/live"
	ballotStore "photocontest/internal/adapters/storage/ballot"
	duelStore "photocontest/internal/adapters/storage/duel"
	imageStore "photocontest/internal/adapters/storage/image"
	reactionStore "photocontest/internal/adapters/storage/reaction"
	settingsStore "photocontest/internal/adapters/storage/settings"
	stickerStore "photocontest/internal/adapters/storage/sticker"
	"photocontest/internal/adapters/uploads"
	"photocontest/internal/domain/duel"
)

// Stores holds all storage dependencies.
type Stores struct {
	ImageStore    imageStore.Store
	BallotStore   ballotStore.Store
	CatalogStore  ballotStore.CatalogStore
	ReactionStore reactionStore.Store
	DuelStore     duelStore.Store
	StickerStore  stickerStore.Store
	SettingsStore settingsStore.Store
}

// Pinger reports database health. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options carries everything NewMux wires besides the stores.
type Options struct {
	Files          *uploads.Dir
	Collector      *perf.Collector
	Hub            *live.Hub
	Mailer         email.Sender
	AnnounceTo     []string
	PublicURL      string
	PasswordHash   []byte
	CSRFKey        []byte
	TrustedOrigins []string
	Shuffler       duel.Shuffler
	DB             Pinger
	Production     bool
	SlowRequest    time.Duration // zero selects middleware.DefaultSlowRequest
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global options (set by NewMux)
var app Options

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the app.
// The returned limiter is swept by the caller.
func NewMux(s *Stores, opts Options) (http.Handler, *middleware.RateLimiter) {
	if opts.Shuffler == nil {
		opts.Shuffler = duel.GlobalShuffler{}
	}
	stores = s
	app = opts
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.Files.Root()))))
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Voter -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.Voter,
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	), limiter
}
