// Package store provides a SQLite mirror of generated datasets.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the results store.
const schemaV1 = `
-- One row per generation run
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    seed INTEGER NOT NULL,
    generated_at TEXT NOT NULL,
    total_datasets INTEGER NOT NULL,
    total_records INTEGER NOT NULL
);

-- Manifest block per dataset
CREATE TABLE IF NOT EXISTS datasets (
    run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT,
    declared_records INTEGER NOT NULL,
    columns TEXT NOT NULL,  -- JSON array, header order
    PRIMARY KEY (run_id, name)
);

-- Records as JSON objects keyed by column name
CREATE TABLE IF NOT EXISTS records (
    run_id TEXT NOT NULL,
    dataset TEXT NOT NULL,
    seq INTEGER NOT NULL,  -- 0-based position in the dataset
    fields TEXT NOT NULL,
    PRIMARY KEY (run_id, dataset, seq),
    FOREIGN KEY (run_id, dataset) REFERENCES datasets(run_id, name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema prepares db for writing runs. An empty database gets the v1
// tables; an existing one must pass CheckSchema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := schemaVersion(ctx, db); err != nil {
		if err := createSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		return nil
	}
	return CheckSchema(ctx, db)
}

// CheckSchema verifies that db is a results store this build can read:
// it has a schema_version row no newer than SchemaVersion and passes
// ValidateIntegrity. It does not write.
func CheckSchema(ctx context.Context, db *sql.DB) error {
	version, err := schemaVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("%w: missing schema_version (%v)", ErrNoStore, err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("results store schema v%d is newer than supported v%d", version, SchemaVersion)
	}
	if err := ValidateIntegrity(ctx, db); err != nil {
		return fmt.Errorf("results store integrity check failed: %w", err)
	}
	return nil
}

// schemaVersion returns the highest applied schema version. It fails when
// the schema_version table does not exist, which marks a fresh database.
func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, fmt.Errorf("schema_version is empty")
	}
	return int(version.Int64), nil
}

// createSchema creates the runs, datasets and records tables and stamps
// schema_version in one transaction.
func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create results tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to stamp schema version: %w", err)
	}
	return tx.Commit()
}

// ValidateIntegrity checks the database file and the record-to-dataset and
// dataset-to-run references. Every dangling reference is listed in the error.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	var result string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check`).Scan(&result); err != nil {
		return fmt.Errorf("failed to run quick_check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("quick_check: %s", result)
	}

	rows, err := db.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return fmt.Errorf("failed to run foreign_key_check: %w", err)
	}
	defer rows.Close()

	var dangling []string
	for rows.Next() {
		var table, parent string
		var rowid, fkid sql.NullInt64
		if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("failed to scan foreign_key_check row: %w", err)
		}
		dangling = append(dangling, fmt.Sprintf("%s row %d -> %s", table, rowid.Int64, parent))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(dangling) > 0 {
		return fmt.Errorf("dangling references: %s", strings.Join(dangling, "; "))
	}
	return nil
}
