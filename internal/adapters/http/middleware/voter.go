package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const voterCookieName = "contest_voter"

// voterCookieMaxAge keeps the voter identity across a whole contest season.
const voterCookieMaxAge = 400 * 24 * 60 * 60

// Voter gives every visitor an opaque voter identifier in a long-lived
// cookie and puts it into the request context.
// POST: VoterFromContext returns a UUID string for every request
func Voter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if cookie, err := r.Cookie(voterCookieName); err == nil {
			if parsed, err := uuid.Parse(cookie.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     voterCookieName,
				Value:    id,
				HttpOnly: true,
				Secure:   SecureCookies,
				SameSite: http.SameSiteLaxMode,
				Path:     "/",
				MaxAge:   voterCookieMaxAge,
			})
		}
		next.ServeHTTP(w, r.WithContext(ContextWithVoter(r.Context(), id)))
	})
}

// VoterFromContext returns the voter identifier set by Voter.
func VoterFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(voterContextKey).(string)
	return id, ok && id != ""
}

// ContextWithVoter returns a context carrying voterID.
func ContextWithVoter(ctx context.Context, voterID string) context.Context {
	return context.WithValue(ctx, voterContextKey, voterID)
}
