package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to cache_metadata when the schema is created.
const SchemaVersion = "1.0"

// CreateSchema creates the extraction tables and their indexes if they do not
// exist yet. Uses a transaction so that schema creation succeeds or fails as a
// whole; calling it on an existing database is a no-op.
//
// Schema includes:
//   - classes, slots and slot_types: the extraction output
//   - parse_runs: one row per parse run
//   - cache_metadata: schema version and last run bookkeeping
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"classes", createClassesTable},
		{"slots", createSlotsTable},
		{"slot_types", createSlotTypesTable},
		{"parse_runs", createParseRunsTable},
		{"cache_metadata", createCacheMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT OR IGNORE INTO cache_metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('last_parsed', '', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap cache_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from cache_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cache_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check cache_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM cache_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in cache_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

// class_name is not UNIQUE; lookups return the lowest id for a name.
const createClassesTable = `
CREATE TABLE IF NOT EXISTS classes (
    id INTEGER PRIMARY KEY,                      -- Sequential from 0 within a run
    class_name TEXT NOT NULL,                    -- Fully qualified, e.g. Eaagles::Basic::Number
    form_name TEXT,                              -- From IMPLEMENT_* macros, NULL if none
    file_name TEXT NOT NULL,                     -- Header the class was declared in
    base_class INTEGER,                          -- classes.id of the base, NULL if unresolved
    FOREIGN KEY (base_class) REFERENCES classes(id)
)
`

const createSlotsTable = `
CREATE TABLE IF NOT EXISTS slots (
    slot_id INTEGER PRIMARY KEY,                 -- Sequential from 0 across all sources
    slot_name TEXT NOT NULL,
    parent_id INTEGER NOT NULL,                  -- Owning class
    FOREIGN KEY (parent_id) REFERENCES classes(id)
)
`

const createSlotTypesTable = `
CREATE TABLE IF NOT EXISTS slot_types (
    slot_id INTEGER NOT NULL,
    class_id INTEGER NOT NULL,                   -- Accepted class type
    FOREIGN KEY (slot_id) REFERENCES slots(slot_id),
    FOREIGN KEY (class_id) REFERENCES classes(id)
)
`

const createParseRunsTable = `
CREATE TABLE IF NOT EXISTS parse_runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    root TEXT NOT NULL,                          -- Directory that was parsed
    started_at TEXT NOT NULL,                    -- ISO 8601
    duration_ms INTEGER NOT NULL DEFAULT 0,
    header_files INTEGER NOT NULL DEFAULT 0,
    source_files INTEGER NOT NULL DEFAULT 0,
    class_count INTEGER NOT NULL DEFAULT 0,
    slot_count INTEGER NOT NULL DEFAULT 0,
    slot_type_count INTEGER NOT NULL DEFAULT 0,
    unresolved_count INTEGER NOT NULL DEFAULT 0,
    failed_count INTEGER NOT NULL DEFAULT 0,
    cancelled INTEGER NOT NULL DEFAULT 0         -- Boolean
)
`

const createCacheMetadataTable = `
CREATE TABLE IF NOT EXISTS cache_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(class_name)",
		"CREATE INDEX IF NOT EXISTS idx_classes_base ON classes(base_class)",
		"CREATE INDEX IF NOT EXISTS idx_slots_parent ON slots(parent_id)",
		"CREATE INDEX IF NOT EXISTS idx_slot_types_slot ON slot_types(slot_id)",
		"CREATE INDEX IF NOT EXISTS idx_parse_runs_started ON parse_runs(started_at)",
	}
}
