package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, name)
	}
	return names
}

// TestMigrateDB_Fresh verifies an empty database reaches the latest version with every table.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t, ":memory:")

	if v, err := SchemaVersion(db); err != nil || v != 0 {
		t.Fatalf("untracked version = %d, %v; want 0", v, err)
	}
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	if v, _ := SchemaVersion(db); v != LatestSchemaVersion() {
		t.Fatalf("version = %d, want %d", v, LatestSchemaVersion())
	}

	want := []string{
		"account", "calendar_event", "lead", "major_feature", "minor_feature",
		"profile", "project", "project_person", "schema_version",
	}
	if got := tableNames(t, db); !slices.Equal(got, want) {
		t.Fatalf("tables = %v\nwant %v", got, want)
	}

	// A second run is a no-op.
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB: %v", err)
	}
	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&applied); err != nil || applied != len(migrations) {
		t.Fatalf("schema_version rows = %d, %v; want %d", applied, err, len(migrations))
	}
}

// TestMigrateDB_KeepsRows verifies rows written before an upgrade are still readable after it.
func TestMigrateDB_KeepsRows(t *testing.T) {
	db := openTestDB(t, ":memory:")

	// A database created before schema_version existed.
	if _, err := db.Exec(`CREATE TABLE account (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL DEFAULT '', role TEXT NOT NULL, created_at TEXT NOT NULL, failed_logins INTEGER NOT NULL DEFAULT 0, locked_until TEXT, password_change_required INTEGER NOT NULL DEFAULT 0)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO account (id, email, role, created_at) VALUES ('a1', 'admin@opsboard.test', 'admin', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatal(err)
	}
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}

	var email string
	if err := db.QueryRow(`SELECT email FROM account WHERE id = 'a1'`).Scan(&email); err != nil || email != "admin@opsboard.test" {
		t.Fatalf("account row = %q, %v", email, err)
	}
	if _, err := db.Exec(`INSERT INTO lead (id, name, stage, created_at) VALUES ('l1', 'Harbour Freight', 'possible', '2026-01-01T10:00:00Z')`); err != nil {
		t.Fatalf("lead table unusable: %v", err)
	}
}

// TestMigrateDB_FromBaseline verifies a database stopped at version 1 picks up later
// migrations and is backed up first.
func TestMigrateDB_FromBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsboard.db")
	db := openTestDB(t, path)
	if _, err := db.Exec(`CREATE TABLE schema_version (version INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TEXT NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	if err := applyMigration(db, migrations[0]); err != nil {
		t.Fatalf("baseline: %v", err)
	}

	if err := MigrateDB(db, path); err != nil {
		t.Fatalf("MigrateDB: %v", err)
	}
	if v, _ := SchemaVersion(db); v != LatestSchemaVersion() {
		t.Fatalf("version = %d, want %d", v, LatestSchemaVersion())
	}
	if _, err := db.Exec(`INSERT INTO project (id, name, created_at) VALUES ('p1', 'Portal', '2026-01-01')`); err != nil {
		t.Fatalf("project table missing after upgrade: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected a backup before upgrading: %v", err)
	}
}
