package web

import "net/http"

// registerRoutes wires every page and API endpoint onto mux.
func registerRoutes(mux *http.ServeMux) {
	// Public pages
	mux.HandleFunc("/", handleGallery)
	mux.HandleFunc("/results", handleResults)
	mux.HandleFunc("/healthz", handleHealthz)

	// Voter API
	mux.HandleFunc("/api/vote", handleVote)
	mux.HandleFunc("/api/ballot", handleBallotState)
	mux.HandleFunc("/api/ballot/reset", handleResetMyBallots)
	mux.HandleFunc("/api/reactions", handleReactions)
	mux.HandleFunc("/api/duel", handleDuel)
	mux.HandleFunc("/api/results", handleResultsAPI)

	// Admin pages
	mux.HandleFunc("/admin", handleAdmin)
	mux.HandleFunc("/admin/login", handleLogin)
	mux.HandleFunc("/admin/logout", handleLogout)
	mux.HandleFunc("/admin/perf", handleAdminPerf)
	mux.HandleFunc("/admin/live", handleAdminLive)

	// Admin API
	mux.HandleFunc("/api/admin/images", handleAdminImages)
	mux.HandleFunc("/api/admin/options", handleAdminOptions)
	mux.HandleFunc("/api/admin/options/active", handleAdminOptionActive)
	mux.HandleFunc("/api/admin/year-settings", handleAdminYearSettings)
	mux.HandleFunc("/api/admin/settings", handleAdminSettings)
	mux.HandleFunc("/api/admin/stickers", handleAdminStickers)
	mux.HandleFunc("/api/admin/stickers/active", handleAdminStickerActive)
	mux.HandleFunc("/api/admin/reset", handleAdminReset)
	mux.HandleFunc("/api/admin/publish", handleAdminPublish)
	mux.HandleFunc("/api/admin/results", handleAdminResults)
}
