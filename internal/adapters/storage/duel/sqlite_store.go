package duel

import (
	"context"
	"fmt"

	"photocontest/internal/adapters/storage"
	domain "photocontest/internal/domain/duel"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert appends a duel pick.
// PRE: v has been validated
func (s *SQLiteStore) Insert(ctx context.Context, v domain.Vote) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO duel_votes (id, image_id, voter_session_id, contest_year, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.ImageID, v.VoterID, v.ContestYear, storage.FormatTime(v.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert duel vote: %w", err)
	}
	return nil
}

// CountByVoter returns how many spins a voter has used in a year.
func (s *SQLiteStore) CountByVoter(ctx context.Context, voterID string, year int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM duel_votes WHERE voter_session_id = ? AND contest_year = ?`,
		voterID, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count duel votes: %w", err)
	}
	return n, nil
}

// TallyByYear returns picks per image, most picked first, ties by image ID.
func (s *SQLiteStore) TallyByYear(ctx context.Context, year int) ([]domain.Tally, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, COUNT(*) AS picks FROM duel_votes
		 WHERE contest_year = ? GROUP BY image_id ORDER BY picks DESC, image_id ASC`, year)
	if err != nil {
		return nil, fmt.Errorf("tally duel votes: %w", err)
	}
	defer rows.Close()

	var result []domain.Tally
	for rows.Next() {
		var t domain.Tally
		if err := rows.Scan(&t.ImageID, &t.Picks); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// DeleteByYear removes every duel pick of a year and returns how many went.
func (s *SQLiteStore) DeleteByYear(ctx context.Context, year int) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM duel_votes WHERE contest_year = ?`, year)
	if err != nil {
		return 0, fmt.Errorf("delete duel votes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete duel votes: rows affected: %w", err)
	}
	return int(n), nil
}
