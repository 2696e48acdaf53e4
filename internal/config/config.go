// Package config reads server configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for unset keys.
const (
	DefaultAddr          = ":8080"
	DefaultDBPath        = "contest.db"
	DefaultUploadDir     = "static"
	DefaultSettingsPath  = "settings.json"
	DefaultYear          = 2025
	DefaultAdminPassword = "contest-admin"
	DefaultResendFrom    = "Photo Contest <noreply@example.com>"
	DefaultPublicURL     = "http://localhost:8080"
	DefaultSlowRequestMs = 200
)

// Errors returned by Validate.
var (
	ErrMissingAdminPassword = errors.New("CONTEST_ADMIN_PASSWORD is required in production")
	ErrMissingCSRFKey       = errors.New("CONTEST_CSRF_KEY is required in production")
	ErrInvalidCSRFKey       = errors.New("CONTEST_CSRF_KEY must be 64 hex characters")
	ErrInvalidYear          = errors.New("CONTEST_DEFAULT_YEAR must be a positive integer")
)

// Config is the process configuration.
type Config struct {
	Addr          string
	Env           string
	DBPath        string
	UploadDir     string
	SettingsPath  string
	AdminPassword string
	CSRFKey       []byte // nil outside production means a random per-process key
	DefaultYear   int
	ResendKey     string
	ResendFrom    string
	AnnounceTo    []string
	PublicURL     string // base for links in announcement mail
	SlowRequest   time.Duration
}

// IsProduction reports whether the server runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadDotEnv loads a .env file if present. Existing variables win.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		slog.Debug("config_event", "event", "dotenv_missing", "error", err)
	}
}

// Load reads the configuration from the environment.
// POST: returns a validated Config or the first violation
func Load() (Config, error) {
	year, err := strconv.Atoi(Get("CONTEST_DEFAULT_YEAR", strconv.Itoa(DefaultYear)))
	if err != nil || year <= 0 {
		return Config{}, ErrInvalidYear
	}

	cfg := Config{
		Addr:          Get("CONTEST_ADDR", DefaultAddr),
		Env:           Get("CONTEST_ENV", "development"),
		DBPath:        Get("CONTEST_DB_PATH", DefaultDBPath),
		UploadDir:     Get("CONTEST_UPLOAD_DIR", DefaultUploadDir),
		SettingsPath:  Get("CONTEST_SETTINGS_PATH", DefaultSettingsPath),
		AdminPassword: os.Getenv("CONTEST_ADMIN_PASSWORD"),
		DefaultYear:   year,
		ResendKey:     os.Getenv("CONTEST_RESEND_KEY"),
		ResendFrom:    Get("CONTEST_RESEND_FROM", DefaultResendFrom),
		AnnounceTo:    splitList(os.Getenv("CONTEST_ANNOUNCE_TO")),
		PublicURL:     Get("CONTEST_PUBLIC_URL", DefaultPublicURL),
		SlowRequest:   time.Duration(GetInt("CONTEST_SLOW_REQUEST_MS", DefaultSlowRequestMs)) * time.Millisecond,
	}
	if cfg.SlowRequest <= 0 {
		cfg.SlowRequest = DefaultSlowRequestMs * time.Millisecond
	}

	if raw := os.Getenv("CONTEST_CSRF_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			return Config{}, ErrInvalidCSRFKey
		}
		cfg.CSRFKey = key
	}

	if cfg.IsProduction() {
		if cfg.AdminPassword == "" {
			return Config{}, ErrMissingAdminPassword
		}
		if cfg.CSRFKey == nil {
			return Config{}, ErrMissingCSRFKey
		}
	} else if cfg.AdminPassword == "" {
		cfg.AdminPassword = DefaultAdminPassword
	}
	return cfg, nil
}

// Get returns the value of key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt returns key parsed as an int, or fallback when unset or malformed.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config_event", "event", "invalid_int", "key", key, "value", v)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String summarises the config for startup logs without secrets.
func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s db=%s uploads=%s settings=%s year=%d mail=%t",
		c.Env, c.Addr, c.DBPath, c.UploadDir, c.SettingsPath, c.DefaultYear, c.ResendKey != "")
}
