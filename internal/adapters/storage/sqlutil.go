package storage

import (
	"errors"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeFormat is the on-disk timestamp layout.
const TimeFormat = time.RFC3339

// FormatTime renders t for storage; the zero time is stored as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// ParseTime reverses FormatTime. Unparseable values yield the zero time.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(TimeFormat, s)
	return t
}

// BoolToInt maps a bool to SQLite's 0/1.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure raised by SQLite.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
