package ballot

import (
	"context"
	"fmt"

	"photocontest/internal/adapters/storage"
	domain "photocontest/internal/domain/ballot"
	"photocontest/internal/domain/ranking"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const ballotColumns = `id, image_id, voter_session_id, contest_year, vote_option_key, vote_label, vote_value, cast_at`

// Insert records a ballot.
// PRE: b carries an option snapshot
// POST: ballot persisted, or domain.ErrDuplicateBallot if the voter already holds one on the image
func (s *SQLiteStore) Insert(ctx context.Context, b domain.Ballot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO votes (`+ballotColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ImageID, b.VoterID, b.ContestYear,
		b.Choice.Key, b.Choice.Label, b.Choice.Value, storage.FormatTime(b.CastAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicateBallot
	}
	if err != nil {
		return fmt.Errorf("insert ballot: %w", err)
	}
	return nil
}

// Delete removes a ballot by ID. Deleting a missing ballot is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete ballot: %w", err)
	}
	return nil
}

// ListByVoter returns a voter's ballots for a year in cast order.
// PRE: voterID is non-empty
// POST: returns ballots or empty slice
func (s *SQLiteStore) ListByVoter(ctx context.Context, voterID string, year int) ([]domain.Ballot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ballotColumns+` FROM votes
		 WHERE voter_session_id = ? AND contest_year = ?
		 ORDER BY cast_at ASC, id ASC`, voterID, year)
	if err != nil {
		return nil, fmt.Errorf("list ballots: %w", err)
	}
	defer rows.Close()

	var result []domain.Ballot
	for rows.Next() {
		var b domain.Ballot
		var castAt string
		if err := rows.Scan(&b.ID, &b.ImageID, &b.VoterID, &b.ContestYear,
			&b.Choice.Key, &b.Choice.Label, &b.Choice.Value, &castAt); err != nil {
			return nil, err
		}
		b.CastAt = storage.ParseTime(castAt)
		result = append(result, b)
	}
	return result, rows.Err()
}

// TallyByYear sums ballots per image using the snapshotted point values.
// POST: images without ballots are absent from the map
func (s *SQLiteStore) TallyByYear(ctx context.Context, year int) (map[string]ranking.VoteTally, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, COUNT(*), COALESCE(SUM(vote_value), 0)
		 FROM votes WHERE contest_year = ? GROUP BY image_id`, year)
	if err != nil {
		return nil, fmt.Errorf("tally ballots: %w", err)
	}
	defer rows.Close()

	tally := make(map[string]ranking.VoteTally)
	for rows.Next() {
		var imageID string
		var t ranking.VoteTally
		if err := rows.Scan(&imageID, &t.Count, &t.Points); err != nil {
			return nil, err
		}
		tally[imageID] = t
	}
	return tally, rows.Err()
}

// CountVoters returns the number of distinct voters holding ballots in a year.
func (s *SQLiteStore) CountVoters(ctx context.Context, year int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT voter_session_id) FROM votes WHERE contest_year = ?`, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count voters: %w", err)
	}
	return n, nil
}

// CountBallots returns the number of ballots cast in a year, hidden images included.
func (s *SQLiteStore) CountBallots(ctx context.Context, year int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE contest_year = ?`, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ballots: %w", err)
	}
	return n, nil
}

// DeleteByVoter removes one voter's ballots for a year and returns how many went.
func (s *SQLiteStore) DeleteByVoter(ctx context.Context, voterID string, year int) (int, error) {
	return s.deleteWhere(ctx, `voter_session_id = ? AND contest_year = ?`, voterID, year)
}

// DeleteByYear removes every ballot of a year and returns how many went.
func (s *SQLiteStore) DeleteByYear(ctx context.Context, year int) (int, error) {
	return s.deleteWhere(ctx, `contest_year = ?`, year)
}

func (s *SQLiteStore) deleteWhere(ctx context.Context, where string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete ballots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete ballots: rows affected: %w", err)
	}
	return int(n), nil
}
