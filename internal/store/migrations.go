package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// SchemaVersion reports the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	return v, err
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at    TEXT NOT NULL,
			command     TEXT NOT NULL,
			version     TEXT NOT NULL,
			source      TEXT NOT NULL DEFAULT '',
			time_zone   TEXT NOT NULL DEFAULT 'UTC'
		)`,

		`CREATE TABLE IF NOT EXISTS aggregate_metrics (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id  INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			metric_name  TEXT NOT NULL,
			metric_value REAL NOT NULL,
			detail       TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS focus_scores (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id            INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			session_id             TEXT NOT NULL,
			started_at             TEXT NOT NULL,
			ended_at               TEXT NOT NULL,
			score                  INTEGER NOT NULL,
			distraction_count      INTEGER NOT NULL,
			context_switch_penalty INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS anomalies (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id       INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			date              TEXT NOT NULL,
			total_seconds     REAL NOT NULL,
			anomaly_score     REAL NOT NULL,
			deviation_percent REAL NOT NULL,
			z_score           REAL NOT NULL,
			explanation       TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS category_trends (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id   INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			category      TEXT NOT NULL,
			trend         TEXT NOT NULL,
			slope_per_day REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS archives (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			path        TEXT NOT NULL,
			bytes       INTEGER NOT NULL,
			events      INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_aggregate_snapshot ON aggregate_metrics(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_focus_scores_snapshot ON focus_scores(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_snapshot ON anomalies(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_date ON anomalies(date)`,
		`CREATE INDEX IF NOT EXISTS idx_category_trends_snapshot ON category_trends(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_archives_snapshot ON archives(snapshot_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
