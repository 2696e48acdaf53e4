// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"photocontest/internal/adapters/storage"
)

// OpenDB returns a fully migrated in-memory database closed at test cleanup.
// The pool is pinned to one connection so every statement sees the same database.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
