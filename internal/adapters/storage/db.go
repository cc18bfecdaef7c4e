package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// migration upgrades the schema by one version inside a transaction.
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

// migrations is the ordered chain. Never edit an applied migration; append a new one.
var migrations = []migration{
	{1, "baseline", migrateBaseline},
	{2, "features", migrateFeatures},
}

// LatestSchemaVersion returns the version MigrateDB upgrades to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an untracked database.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration in order.
// A file-backed database is copied to "<dbPath>.bak" before the first pending migration runs.
// PRE: db is a valid database connection
// POST: schema is at LatestSchemaVersion
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 {
		if err := backupDB(db, dbPath); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(tx); err != nil {
		return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}
	return tx.Commit()
}

func backupDB(db *sql.DB, dbPath string) error {
	if dbPath == "" || dbPath == ":memory:" {
		return nil
	}
	backup := dbPath + ".bak"
	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old backup: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, backup); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	return nil
}

// migrateBaseline creates the accounts, profiles, leads and calendar tables.
func migrateBaseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		password_change_required INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS profile (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		picture_path TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS lead (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		preview_image_path TEXT NOT NULL DEFAULT '',
		associations TEXT NOT NULL DEFAULT '[]',
		stage TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS calendar_event (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calendar_event_start ON calendar_event(start_date);
	`)
	return err
}

// migrateFeatures adds projects and their major/minor features.
func migrateFeatures(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS project (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS project_person (
		project_id TEXT NOT NULL,
		profile_id TEXT NOT NULL,
		PRIMARY KEY (project_id, profile_id),
		FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);

	CREATE TABLE IF NOT EXISTS major_feature (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		objective TEXT NOT NULL DEFAULT '',
		people_involved TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS minor_feature (
		id TEXT PRIMARY KEY,
		major_feature_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		staff_involved TEXT NOT NULL DEFAULT '[]',
		FOREIGN KEY (major_feature_id) REFERENCES major_feature(id) ON DELETE CASCADE
	);
	`)
	return err
}
