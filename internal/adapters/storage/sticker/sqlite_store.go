package sticker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"photocontest/internal/adapters/storage"
	domain "photocontest/internal/domain/sticker"
)

// ErrNotFound is returned when a sticker ID does not exist.
var ErrNotFound = errors.New("sticker not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const stickerColumns = `id, contest_year, filename, sort_order, active, created_at`

// Save inserts or updates a sticker.
// PRE: st has been validated
// POST: sticker persisted, or domain.ErrDuplicate if the filename is taken for the year
func (s *SQLiteStore) Save(ctx context.Context, st domain.Sticker) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stickers (`+stickerColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET sort_order=excluded.sort_order, active=excluded.active`,
		st.ID, st.ContestYear, st.Filename, st.SortOrder, storage.BoolToInt(st.Active), storage.FormatTime(st.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save sticker: %w", err)
	}
	return nil
}

// GetByID retrieves a sticker.
// POST: returns the sticker or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Sticker, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+stickerColumns+` FROM stickers WHERE id = ?`, id)
	st, err := scanSticker(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sticker{}, ErrNotFound
	}
	return st, err
}

// ListByYear returns a year's stickers in display order.
func (s *SQLiteStore) ListByYear(ctx context.Context, year int, activeOnly bool) ([]domain.Sticker, error) {
	query := `SELECT ` + stickerColumns + ` FROM stickers WHERE contest_year = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY sort_order ASC, filename ASC`

	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("list stickers: %w", err)
	}
	defer rows.Close()

	var result []domain.Sticker
	for rows.Next() {
		st, err := scanSticker(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// Delete removes a sticker row. The file is the caller's concern.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stickers WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete sticker: %w", err)
	}
	return nil
}

func scanSticker(scan func(dest ...any) error) (domain.Sticker, error) {
	var st domain.Sticker
	var active int
	var createdAt string
	if err := scan(&st.ID, &st.ContestYear, &st.Filename, &st.SortOrder, &active, &createdAt); err != nil {
		return domain.Sticker{}, err
	}
	st.Active = active == 1
	st.CreatedAt = storage.ParseTime(createdAt)
	return st, nil
}
