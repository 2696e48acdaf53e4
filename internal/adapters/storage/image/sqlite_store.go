package image

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"photocontest/internal/adapters/storage"
	domain "photocontest/internal/domain/image"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const imageColumns = `id, filename, description, uploader, uploaded_at, visible, contest_year`

// Save inserts or updates an image.
// PRE: img has been validated
// POST: image is persisted
func (s *SQLiteStore) Save(ctx context.Context, img domain.Image) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (`+imageColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   filename=excluded.filename, description=excluded.description, uploader=excluded.uploader,
		   visible=excluded.visible, contest_year=excluded.contest_year`,
		img.ID, img.Filename, img.Description, img.Uploader,
		storage.FormatTime(img.UploadedAt), storage.BoolToInt(img.Visible), img.ContestYear)
	if err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}

// GetByID retrieves an image by ID.
// PRE: id is non-empty
// POST: returns the image or domain.ErrImageNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Image, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+imageColumns+` FROM images WHERE id = ?`, id)
	img, err := scanImage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Image{}, domain.ErrImageNotFound
	}
	return img, err
}

// ListByYear returns a year's images, newest first.
// PRE: year > 0
// POST: returns images or empty slice
func (s *SQLiteStore) ListByYear(ctx context.Context, year int, visibleOnly bool) ([]domain.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE contest_year = ?`
	if visibleOnly {
		query += ` AND visible = 1`
	}
	query += ` ORDER BY uploaded_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var result []domain.Image
	for rows.Next() {
		img, err := scanImage(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, img)
	}
	return result, rows.Err()
}

// Delete removes an image together with its ballots, reactions and duel picks.
// PRE: id is non-empty
// POST: image and dependent rows are gone; deleting a missing image is not an error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete image: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM votes WHERE image_id = ?`,
		`DELETE FROM reactions WHERE image_id = ?`,
		`DELETE FROM duel_votes WHERE image_id = ?`,
		`DELETE FROM images WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
	}
	return tx.Commit()
}

func scanImage(scan func(dest ...any) error) (domain.Image, error) {
	var img domain.Image
	var uploadedAt string
	var visible int
	if err := scan(&img.ID, &img.Filename, &img.Description, &img.Uploader, &uploadedAt, &visible, &img.ContestYear); err != nil {
		return domain.Image{}, err
	}
	img.UploadedAt = storage.ParseTime(uploadedAt)
	img.Visible = visible == 1
	return img, nil
}
