package reaction

import (
	"context"
	"database/sql"
	"fmt"

	"photocontest/internal/adapters/storage"
	domain "photocontest/internal/domain/reaction"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert records a reaction.
// PRE: r has been validated
// POST: reaction persisted, or domain.ErrDuplicateReaction if the voter already holds it
func (s *SQLiteStore) Insert(ctx context.Context, r domain.Reaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reactions (id, image_id, voter_session_id, reaction_type, contest_year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ImageID, r.VoterID, r.Kind, r.ContestYear, storage.FormatTime(r.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateReaction
	}
	if err != nil {
		return fmt.Errorf("insert reaction: %w", err)
	}
	return nil
}

// Delete removes one reaction and reports whether a row existed.
func (s *SQLiteStore) Delete(ctx context.Context, imageID, voterID, kind string, year int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reactions
		 WHERE image_id = ? AND voter_session_id = ? AND reaction_type = ? AND contest_year = ?`,
		imageID, voterID, kind, year)
	if err != nil {
		return false, fmt.Errorf("delete reaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete reaction: rows affected: %w", err)
	}
	return n > 0, nil
}

// CountsForImage returns per-kind totals for one image.
func (s *SQLiteStore) CountsForImage(ctx context.Context, imageID string, year int) (domain.Counts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, reaction_type, COUNT(*) FROM reactions
		 WHERE image_id = ? AND contest_year = ? GROUP BY image_id, reaction_type`, imageID, year)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("count reactions: %w", err)
	}
	counts, err := collectCounts(rows)
	if err != nil {
		return domain.Counts{}, err
	}
	return counts[imageID], nil
}

// CountsByYear returns per-kind totals keyed by image ID.
// POST: images without reactions are absent from the map
func (s *SQLiteStore) CountsByYear(ctx context.Context, year int) (map[string]domain.Counts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, reaction_type, COUNT(*) FROM reactions
		 WHERE contest_year = ? GROUP BY image_id, reaction_type`, year)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	return collectCounts(rows)
}

// ListByVoter returns the reactions a voter holds in a year.
func (s *SQLiteStore) ListByVoter(ctx context.Context, voterID string, year int) ([]domain.Reaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_id, voter_session_id, reaction_type, contest_year, created_at
		 FROM reactions WHERE voter_session_id = ? AND contest_year = ?
		 ORDER BY created_at ASC, id ASC`, voterID, year)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	var result []domain.Reaction
	for rows.Next() {
		var r domain.Reaction
		var createdAt string
		if err := rows.Scan(&r.ID, &r.ImageID, &r.VoterID, &r.Kind, &r.ContestYear, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = storage.ParseTime(createdAt)
		result = append(result, r)
	}
	return result, rows.Err()
}

// DeleteByYear removes every reaction of a year and returns how many went.
func (s *SQLiteStore) DeleteByYear(ctx context.Context, year int) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reactions WHERE contest_year = ?`, year)
	if err != nil {
		return 0, fmt.Errorf("delete reactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete reactions: rows affected: %w", err)
	}
	return int(n), nil
}

func collectCounts(rows *sql.Rows) (map[string]domain.Counts, error) {
	defer rows.Close()
	counts := make(map[string]domain.Counts)
	for rows.Next() {
		var imageID, kind string
		var n int
		if err := rows.Scan(&imageID, &kind, &n); err != nil {
			return nil, err
		}
		c := counts[imageID]
		c.Add(kind, n)
		counts[imageID] = c
	}
	return counts, rows.Err()
}
