package ballot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"photocontest/internal/adapters/storage"
	domain "photocontest/internal/domain/ballot"
)

// SQLiteCatalogStore implements CatalogStore using SQLite.
type SQLiteCatalogStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteCatalogStore creates a new SQLiteCatalogStore.
func NewSQLiteCatalogStore(db storage.SQLDB) *SQLiteCatalogStore {
	return &SQLiteCatalogStore{db: db, now: time.Now}
}

const optionColumns = `contest_year, opt_key, label, icon, value, unique_per_user, exclusive_group, is_special, active, sort_order`

// SaveOption inserts or updates a vote option.
// PRE: o has been validated
// POST: option persisted; existing ballots keep their snapshots
func (s *SQLiteCatalogStore) SaveOption(ctx context.Context, o domain.VoteOption) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vote_options (`+optionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(contest_year, opt_key) DO UPDATE SET
		   label=excluded.label, icon=excluded.icon, value=excluded.value,
		   unique_per_user=excluded.unique_per_user, exclusive_group=excluded.exclusive_group,
		   is_special=excluded.is_special, active=excluded.active, sort_order=excluded.sort_order`,
		o.ContestYear, o.Key, o.Label, o.Icon, o.Value,
		storage.BoolToInt(o.UniquePerUser), o.ExclusiveGroup, storage.BoolToInt(o.IsSpecial),
		storage.BoolToInt(o.Active), o.SortOrder)
	if err != nil {
		return fmt.Errorf("save vote option: %w", err)
	}
	return nil
}

// GetOption retrieves one option, active or not.
// POST: returns the option or domain.ErrInvalidOption
func (s *SQLiteCatalogStore) GetOption(ctx context.Context, year int, key string) (domain.VoteOption, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+optionColumns+` FROM vote_options WHERE contest_year = ? AND opt_key = ?`, year, key)
	o, err := scanOption(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VoteOption{}, domain.ErrInvalidOption
	}
	return o, err
}

// ListOptions returns a year's catalog ordered by sort order then key.
// POST: returns options or empty slice
func (s *SQLiteCatalogStore) ListOptions(ctx context.Context, year int, activeOnly bool) ([]domain.VoteOption, error) {
	query := `SELECT ` + optionColumns + ` FROM vote_options WHERE contest_year = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY sort_order ASC, opt_key ASC`

	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("list vote options: %w", err)
	}
	defer rows.Close()

	var result []domain.VoteOption
	for rows.Next() {
		o, err := scanOption(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

const yearColumns = `contest_year, vote_mode, max_actions, unit_name, unit_icon, theme_id, results_published`

// GetYearSettings returns the stored policy for a year.
// POST: a year without a row yields domain.DefaultYearSettings
func (s *SQLiteCatalogStore) GetYearSettings(ctx context.Context, year int) (domain.YearSettings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+yearColumns+` FROM contest_year_settings WHERE contest_year = ?`, year)
	ys, err := scanYearSettings(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultYearSettings(year), nil
	}
	if err != nil {
		return domain.YearSettings{}, fmt.Errorf("get year settings: %w", err)
	}
	return ys, nil
}

// SaveYearSettings inserts or updates a year's policy, publication flag included.
// PRE: ys has been validated
func (s *SQLiteCatalogStore) SaveYearSettings(ctx context.Context, ys domain.YearSettings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contest_year_settings (`+yearColumns+`, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(contest_year) DO UPDATE SET
		   vote_mode=excluded.vote_mode, max_actions=excluded.max_actions,
		   unit_name=excluded.unit_name, unit_icon=excluded.unit_icon,
		   theme_id=excluded.theme_id, results_published=excluded.results_published`,
		ys.ContestYear, ys.VoteMode, ys.MaxActions, ys.UnitName, ys.UnitIcon, ys.ThemeID,
		storage.BoolToInt(ys.ResultsPublished), storage.FormatTime(s.now()))
	if err != nil {
		return fmt.Errorf("save year settings: %w", err)
	}
	return nil
}

// SetResultsPublished flips only the publication flag, creating a default row if needed.
func (s *SQLiteCatalogStore) SetResultsPublished(ctx context.Context, year int, published bool) error {
	ys := domain.DefaultYearSettings(year)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contest_year_settings (`+yearColumns+`, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(contest_year) DO UPDATE SET results_published=excluded.results_published`,
		year, ys.VoteMode, ys.MaxActions, ys.UnitName, ys.UnitIcon, ys.ThemeID,
		storage.BoolToInt(published), storage.FormatTime(s.now()))
	if err != nil {
		return fmt.Errorf("set results published: %w", err)
	}
	return nil
}

// ListYearSettings returns every stored year, newest first.
func (s *SQLiteCatalogStore) ListYearSettings(ctx context.Context) ([]domain.YearSettings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+yearColumns+` FROM contest_year_settings ORDER BY contest_year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list year settings: %w", err)
	}
	defer rows.Close()

	var result []domain.YearSettings
	for rows.Next() {
		ys, err := scanYearSettings(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, ys)
	}
	return result, rows.Err()
}

func scanOption(scan func(dest ...any) error) (domain.VoteOption, error) {
	var o domain.VoteOption
	var unique, special, active int
	if err := scan(&o.ContestYear, &o.Key, &o.Label, &o.Icon, &o.Value,
		&unique, &o.ExclusiveGroup, &special, &active, &o.SortOrder); err != nil {
		return domain.VoteOption{}, err
	}
	o.UniquePerUser = unique == 1
	o.IsSpecial = special == 1
	o.Active = active == 1
	return o, nil
}

func scanYearSettings(scan func(dest ...any) error) (domain.YearSettings, error) {
	var ys domain.YearSettings
	var published int
	if err := scan(&ys.ContestYear, &ys.VoteMode, &ys.MaxActions, &ys.UnitName,
		&ys.UnitIcon, &ys.ThemeID, &published); err != nil {
		return domain.YearSettings{}, err
	}
	ys.ResultsPublished = published == 1
	return ys, nil
}
