package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// LoginInput carries input for the admin login orchestrator.
type LoginInput struct {
	Password string
	ClientIP string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	// PasswordHash is the bcrypt hash of the configured admin password.
	PasswordHash []byte
}

var ErrInvalidCredentials = errors.New("invalid password")

// HashAdminPassword derives the bcrypt hash compared against at login.
// PRE: password is non-empty
// POST: returns a hash usable as LoginDeps.PasswordHash
func HashAdminPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// ExecuteLogin checks the shared admin password.
// PRE: deps.PasswordHash was produced by HashAdminPassword
// POST: nil on a match, ErrInvalidCredentials otherwise
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) error {
	if input.Password == "" || len(deps.PasswordHash) == 0 {
		slog.Info("auth_event", "event", "login_failed", "ip", input.ClientIP, "reason", "empty")
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(deps.PasswordHash, []byte(input.Password)); err != nil {
		slog.Info("auth_event", "event", "login_failed", "ip", input.ClientIP, "reason", "wrong_password")
		return ErrInvalidCredentials
	}
	slog.Info("auth_event", "event", "login_success", "ip", input.ClientIP)
	return nil
}
