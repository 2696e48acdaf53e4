package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// DefaultLegacyYear is assigned to rows imported from a database that
// predates contest years.
const DefaultLegacyYear = 2025

// migration is one schema step. Steps run in order inside their own transaction.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

// legacyTables are the tables a pre-versioning database may contain.
var legacyTables = []string{
	"images", "votes", "reactions", "duel_votes",
	"stickers", "contest_year_settings", "vote_options",
}

var migrations = []migration{
	{1, "set aside unversioned tables", setAsideLegacyTables},
	{2, "baseline schema", createBaseline},
	{3, "import unversioned rows", importLegacyRows},
	{4, "seed 2025 and 2026 contest years", seedContestYears},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh database.
// PRE: db is a valid database connection
// POST: returns the applied version
func SchemaVersion(db *sql.DB) (int, error) {
	exists, err := tableExists(db, "schema_version")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies all pending migrations.
// A file-backed database with pending migrations is copied to
// <dbPath>.pre-v<latest>.bak first.
// PRE: db is a valid database connection; dbPath is the file behind db or ":memory:"
// POST: schema is at LatestSchemaVersion; re-running is a no-op
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if err := backupBeforeMigrate(db, dbPath); err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		start := time.Now()
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description,
			"duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}

// backupBeforeMigrate snapshots a file database that already holds data.
func backupBeforeMigrate(db *sql.DB, dbPath string) error {
	if dbPath == "" || strings.HasPrefix(dbPath, ":memory:") {
		return nil
	}
	info, err := os.Stat(dbPath)
	if err != nil || info.Size() == 0 {
		return nil
	}
	hasData, err := tableExists(db, "images")
	if err != nil || !hasData {
		return err
	}
	backup := fmt.Sprintf("%s.pre-v%d.bak", dbPath, LatestSchemaVersion())
	if _, err := os.Stat(backup); err == nil {
		return nil
	}
	if _, err := db.Exec(`VACUUM INTO ?`, backup); err != nil {
		return fmt.Errorf("backup before migrate: %w", err)
	}
	slog.Info("schema_backup_written", "path", backup)
	return nil
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func tableExists(q queryer, name string) (bool, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return n > 0, nil
}

func tableColumns(q queryer, table string) (map[string]bool, error) {
	rows, err := q.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()
	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// setAsideLegacyTables renames tables created before schema versioning so the
// baseline can be created cleanly. Rows are copied back by importLegacyRows.
func setAsideLegacyTables(tx *sql.Tx) error {
	for _, t := range legacyTables {
		exists, err := tableExists(tx, t)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s RENAME TO legacy_%s`, t, t)); err != nil {
			return fmt.Errorf("rename %s: %w", t, err)
		}
	}
	return nil
}

func createBaseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE images (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		uploader TEXT NOT NULL DEFAULT '',
		uploaded_at TEXT NOT NULL,
		visible INTEGER NOT NULL DEFAULT 1,
		contest_year INTEGER NOT NULL
	);
	CREATE INDEX idx_images_year ON images(contest_year, visible);

	CREATE TABLE votes (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL,
		voter_session_id TEXT NOT NULL,
		contest_year INTEGER NOT NULL,
		vote_option_key TEXT NOT NULL,
		vote_value INTEGER NOT NULL DEFAULT 1,
		vote_label TEXT NOT NULL DEFAULT '',
		cast_at TEXT NOT NULL,
		UNIQUE(image_id, voter_session_id, contest_year),
		FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_votes_voter ON votes(voter_session_id, contest_year);
	CREATE INDEX idx_votes_year ON votes(contest_year);

	CREATE TABLE reactions (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL,
		voter_session_id TEXT NOT NULL,
		reaction_type TEXT NOT NULL,
		contest_year INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(image_id, voter_session_id, reaction_type, contest_year),
		FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_reactions_year ON reactions(contest_year);

	CREATE TABLE duel_votes (
		id TEXT PRIMARY KEY,
		image_id TEXT NOT NULL,
		voter_session_id TEXT NOT NULL,
		contest_year INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE
	);
	CREATE INDEX idx_duel_votes_voter ON duel_votes(voter_session_id, contest_year);

	CREATE TABLE stickers (
		id TEXT PRIMARY KEY,
		contest_year INTEGER NOT NULL,
		filename TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		UNIQUE(contest_year, filename)
	);

	CREATE TABLE contest_year_settings (
		contest_year INTEGER PRIMARY KEY,
		vote_mode TEXT NOT NULL DEFAULT 'toggle',
		max_actions INTEGER NOT NULL DEFAULT 3,
		unit_name TEXT NOT NULL DEFAULT 'Stimme',
		unit_icon TEXT NOT NULL DEFAULT '❤️',
		theme_id TEXT NOT NULL DEFAULT 'default',
		results_published INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE vote_options (
		contest_year INTEGER NOT NULL,
		opt_key TEXT NOT NULL,
		label TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		value INTEGER NOT NULL DEFAULT 1,
		unique_per_user INTEGER NOT NULL DEFAULT 0,
		exclusive_group TEXT NOT NULL DEFAULT '',
		is_special INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		sort_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (contest_year, opt_key)
	);
	`
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("create baseline: %w", err)
	}
	return nil
}

// pick returns col when the legacy table has it, otherwise fallback.
func pick(cols map[string]bool, col, fallback string) string {
	if cols[col] {
		return col
	}
	return fallback
}

// importLegacyRows copies rows out of legacy_* tables into the baseline and
// drops the legacy tables. Missing columns fall back to defaults: contest
// year DefaultLegacyYear, option keys derived from chip labels.
func importLegacyRows(tx *sql.Tx) error {
	now := time.Now().UTC().Format(time.RFC3339)
	year := fmt.Sprint(DefaultLegacyYear)
	yearExpr := func(cols map[string]bool) string {
		if cols["contest_year"] {
			return "COALESCE(contest_year, " + year + ")"
		}
		return year
	}

	steps := []struct {
		table string
		build func(cols map[string]bool) string
	}{
		{"images", func(c map[string]bool) string {
			return `INSERT OR IGNORE INTO images (id, filename, description, uploader, uploaded_at, visible, contest_year)
				SELECT CAST(id AS TEXT), filename, COALESCE(` + pick(c, "description", "''") + `, ''),
				       COALESCE(` + pick(c, "uploader", "''") + `, ''),
				       COALESCE(` + pick(c, "uploaded_at", "NULL") + `, '` + now + `'),
				       COALESCE(` + pick(c, "visible", "1") + `, 0), ` + yearExpr(c) + `
				FROM legacy_images WHERE filename IS NOT NULL`
		}},
		{"votes", func(c map[string]bool) string {
			chip := pick(c, "chip_label", "NULL")
			optKey := pick(c, "vote_option_key", "NULL")
			return `INSERT OR IGNORE INTO votes (id, image_id, voter_session_id, contest_year, vote_option_key, vote_value, vote_label, cast_at)
				SELECT lower(hex(randomblob(16))), image_id, voter, year, opt_key,
				       CASE WHEN COALESCE(vote_value, 0) > 0 THEN vote_value
				            WHEN COALESCE(chip_value, 0) > 0 THEN chip_value
				            ELSE 1 END,
				       CASE WHEN TRIM(COALESCE(vote_label, '')) != '' THEN vote_label
				            WHEN TRIM(COALESCE(chip, '')) != '' THEN chip
				            WHEN opt_key = 'all_in' THEN 'All-in'
				            WHEN opt_key = 'heart' THEN 'Vote'
				            ELSE opt_key END,
				       '` + now + `'
				FROM (
					SELECT CAST(image_id AS TEXT) AS image_id,
					       ` + pick(c, "voter_session_id", pick(c, "voter_ip", "NULL")) + ` AS voter,
					       ` + yearExpr(c) + ` AS year,
					       CASE
					         WHEN TRIM(COALESCE(` + optKey + `, '')) != '' THEN ` + optKey + `
					         WHEN LOWER(COALESCE(` + chip + `, '')) IN ('all-in','allin','all_in') THEN 'all_in'
					         WHEN TRIM(COALESCE(` + chip + `, '')) IN ('5','25','50','100') THEN 'chip_' || TRIM(` + chip + `)
					         ELSE 'heart'
					       END AS opt_key,
					       ` + chip + ` AS chip,
					       ` + pick(c, "vote_value", "NULL") + ` AS vote_value,
					       ` + pick(c, "chip_value", "NULL") + ` AS chip_value,
					       ` + pick(c, "vote_label", "NULL") + ` AS vote_label
					FROM legacy_votes
				) AS src
				WHERE voter IS NOT NULL AND image_id IN (SELECT id FROM images)`
		}},
		{"reactions", func(c map[string]bool) string {
			return `INSERT OR IGNORE INTO reactions (id, image_id, voter_session_id, reaction_type, contest_year, created_at)
				SELECT lower(hex(randomblob(16))), CAST(image_id AS TEXT), voter_session_id, reaction_type, ` + yearExpr(c) + `,
				       COALESCE(` + pick(c, "created_at", "NULL") + `, '` + now + `')
				FROM legacy_reactions
				WHERE voter_session_id IS NOT NULL AND reaction_type IN ('hype','creative','funny','underrated')
				  AND CAST(image_id AS TEXT) IN (SELECT id FROM images)`
		}},
		{"duel_votes", func(c map[string]bool) string {
			return `INSERT INTO duel_votes (id, image_id, voter_session_id, contest_year, created_at)
				SELECT lower(hex(randomblob(16))), CAST(image_id AS TEXT), voter_session_id, ` + yearExpr(c) + `,
				       COALESCE(` + pick(c, "created_at", "NULL") + `, '` + now + `')
				FROM legacy_duel_votes
				WHERE voter_session_id IS NOT NULL AND CAST(image_id AS TEXT) IN (SELECT id FROM images)`
		}},
		{"stickers", func(c map[string]bool) string {
			return `INSERT OR IGNORE INTO stickers (id, contest_year, filename, sort_order, active, created_at)
				SELECT lower(hex(randomblob(16))), ` + yearExpr(c) + `, filename,
				       COALESCE(` + pick(c, "sort_order", "0") + `, 0), COALESCE(` + pick(c, "active", "1") + `, 1),
				       COALESCE(` + pick(c, "created_at", "NULL") + `, '` + now + `')
				FROM legacy_stickers WHERE filename IS NOT NULL`
		}},
		{"contest_year_settings", func(c map[string]bool) string {
			return `INSERT OR IGNORE INTO contest_year_settings (contest_year, vote_mode, max_actions, unit_name, unit_icon, theme_id, results_published, created_at)
				SELECT contest_year, COALESCE(` + pick(c, "vote_mode", "NULL") + `, 'toggle'),
				       COALESCE(` + pick(c, "max_actions", "NULL") + `, 3),
				       COALESCE(` + pick(c, "unit_name", "NULL") + `, 'Stimme'),
				       COALESCE(` + pick(c, "unit_icon", "NULL") + `, '❤️'),
				       COALESCE(` + pick(c, "theme_id", "NULL") + `, 'default'),
				       COALESCE(` + pick(c, "results_published", "0") + `, 0), '` + now + `'
				FROM legacy_contest_year_settings WHERE contest_year IS NOT NULL`
		}},
		{"vote_options", func(c map[string]bool) string {
			return `INSERT OR IGNORE INTO vote_options (contest_year, opt_key, label, icon, value, unique_per_user, exclusive_group, is_special, active, sort_order)
				SELECT contest_year, opt_key, COALESCE(label, opt_key), COALESCE(` + pick(c, "icon", "''") + `, ''),
				       COALESCE(` + pick(c, "value", "1") + `, 1), COALESCE(` + pick(c, "unique_per_user", "0") + `, 0),
				       COALESCE(` + pick(c, "exclusive_group", "''") + `, ''), COALESCE(` + pick(c, "is_special", "0") + `, 0),
				       COALESCE(` + pick(c, "active", "1") + `, 1), COALESCE(` + pick(c, "sort_order", "0") + `, 0)
				FROM legacy_vote_options WHERE contest_year IS NOT NULL AND opt_key IS NOT NULL`
		}},
	}

	for _, step := range steps {
		legacy := "legacy_" + step.table
		exists, err := tableExists(tx, legacy)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		cols, err := tableColumns(tx, legacy)
		if err != nil {
			return err
		}
		res, err := tx.Exec(step.build(cols))
		if err != nil {
			return fmt.Errorf("import %s: %w", step.table, err)
		}
		n, _ := res.RowsAffected()
		slog.Info("legacy_rows_imported", "table", step.table, "rows", n)
	}

	// Drop children before parents so foreign keys never dangle mid-drop.
	for i := len(legacyTables) - 1; i >= 0; i-- {
		if _, err := tx.Exec(`DROP TABLE IF EXISTS legacy_` + legacyTables[i]); err != nil {
			return fmt.Errorf("drop legacy_%s: %w", legacyTables[i], err)
		}
	}
	return nil
}

func seedContestYears(tx *sql.Tx) error {
	now := time.Now().UTC().Format(time.RFC3339)
	seeds := []struct {
		query string
		args  []any
	}{
		{`INSERT OR IGNORE INTO contest_year_settings (contest_year, vote_mode, max_actions, unit_name, unit_icon, theme_id, created_at)
		  VALUES (2025, 'toggle', 3, 'Stimme', '❤️', 'default', ?)`, []any{now}},
		{`INSERT OR IGNORE INTO contest_year_settings (contest_year, vote_mode, max_actions, unit_name, unit_icon, theme_id, created_at)
		  VALUES (2026, 'unique_options', 4, 'Chip', '🪙', 'casino', ?)`, []any{now}},
		{`INSERT OR IGNORE INTO vote_options (contest_year, opt_key, label, icon, value, unique_per_user, exclusive_group, is_special, active, sort_order)
		  VALUES (2025, 'heart', 'Vote', '❤️', 1, 0, '', 0, 1, 10)`, nil},
		{`INSERT OR IGNORE INTO vote_options (contest_year, opt_key, label, icon, value, unique_per_user, exclusive_group, is_special, active, sort_order)
		  VALUES (2026, 'chip_5', '5', '🪙', 5, 1, '', 0, 1, 10),
		         (2026, 'chip_25', '25', '🪙', 25, 1, '', 0, 1, 20),
		         (2026, 'chip_50', '50', '🪙', 50, 1, '', 0, 1, 30),
		         (2026, 'chip_100', '100', '🪙', 100, 1, '', 0, 1, 40),
		         (2026, 'all_in', 'All-in', '🎰', 180, 1, 'allin', 1, 1, 99)`, nil},
	}
	for _, s := range seeds {
		if _, err := tx.Exec(s.query, s.args...); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}
