package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	voterContextKey   contextKey = "voter"
)

// RoleAdmin is the only authenticated role. Voters stay anonymous.
const RoleAdmin = "admin"

// SessionTTL bounds an admin session's lifetime.
const SessionTTL = 24 * time.Hour

// SecureCookies marks cookies Secure. Set in production.
var SecureCookies bool

// Session is an authenticated admin session.
type Session struct {
	Role      string
	CreatedAt time.Time
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SessionStore keeps admin sessions in memory. Restarting the server logs everyone out.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session), now: time.Now}
}

// Create stores a new session and returns its token.
// POST: session stored under a fresh 32-byte random token
func (ss *SessionStore) Create(role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{Role: role, CreatedAt: ss.now()}
	return token, nil
}

// Get returns the session for token if it exists and has not expired.
// Expired sessions are removed.
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.now().Sub(session.CreatedAt) > SessionTTL {
		ss.Delete(token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session. Unknown tokens are ignored.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

const sessionCookieName = "contest_admin"

// SessionToken returns the admin session token carried by r, if any.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Auth puts the admin session, if any, into the request context.
// It never blocks; handlers decide what needs an admin.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := SessionToken(r); token != "" {
				if session, ok := sessions.Get(token); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// IsAdmin reports whether ctx carries an admin session.
func IsAdmin(ctx context.Context) bool {
	session, ok := GetSessionFromContext(ctx)
	return ok && session.IsAdmin()
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the admin session cookie.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearSessionCookie removes the admin session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
