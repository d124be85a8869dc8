package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/manifest"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNoStore is returned by OpenExisting when there is no database at the path.
var ErrNoStore = errors.New("no results store")

// SQLiteStore keeps every generation run, its manifest blocks, and its records.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// RunInfo summarizes one stored run.
type RunInfo struct {
	RunID         string `json:"run_id"`
	Seed          uint64 `json:"seed"`
	GeneratedAt   string `json:"generated_at"`
	TotalDatasets int    `json:"total_datasets"`
	TotalRecords  int    `json:"total_records"`
}

// Open opens or creates the database at dbPath.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", pathutil.RedactPath(dbPath), err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// OpenExisting opens an existing store for reading. It never creates a database:
// a missing path returns ErrNoStore, and the connection rejects writes.
func OpenExisting(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoStore, pathutil.RedactPath(dbPath))
		}
		return nil, fmt.Errorf("failed to stat database %s: %w", pathutil.RedactPath(dbPath), err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a file", ErrNoStore, pathutil.RedactPath(dbPath))
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", pathutil.RedactPath(dbPath), err)
	}
	db.SetMaxOpenConns(1)

	if err := CheckSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores the manifest and all records of one run in a single transaction.
// Datasets with no manifest entry are rejected.
func (s *SQLiteStore) SaveRun(ctx context.Context, m *manifest.Manifest, datasets []dataset.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID := m.Info.RunID
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, seed, generated_at, total_datasets, total_records) VALUES (?, ?, ?, ?, ?)`,
		runID, int64(m.Info.RandomSeed), m.Info.GenerationDate, m.Info.TotalDatasets, m.TotalRecords()); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insertRecord, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, dataset, seq, fields) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer insertRecord.Close()

	for _, ds := range datasets {
		entry, ok := m.Entry(ds.Name)
		if !ok {
			return fmt.Errorf("dataset %s has no manifest entry", ds.Name)
		}

		cols, err := json.Marshal(ds.Columns())
		if err != nil {
			return fmt.Errorf("failed to marshal columns: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO datasets (run_id, name, description, declared_records, columns) VALUES (?, ?, ?, ?, ?)`,
			runID, ds.Name, entry.Description, entry.Records, string(cols)); err != nil {
			return fmt.Errorf("failed to insert dataset %s: %w", ds.Name, err)
		}

		for seq, r := range ds.Records {
			fields, err := marshalRecord(r)
			if err != nil {
				return fmt.Errorf("%s record %d: %w", ds.Name, seq, err)
			}
			if _, err := insertRecord.ExecContext(ctx, runID, ds.Name, seq, fields); err != nil {
				return fmt.Errorf("failed to insert %s record %d: %w", ds.Name, seq, err)
			}
		}
	}

	return tx.Commit()
}

// marshalRecord encodes a record as a JSON object in field order.
func marshalRecord(r dataset.Record) (string, error) {
	buf := []byte{'{'}
	for i, f := range r {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return "", err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return "", err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	buf = append(buf, '}')
	return string(buf), nil
}

// CountRecords returns the number of stored records for one dataset of a run.
func (s *SQLiteStore) CountRecords(ctx context.Context, runID, name string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE run_id = ? AND dataset = ?`, runID, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Columns returns the stored header of one dataset of a run.
func (s *SQLiteStore) Columns(ctx context.Context, runID, name string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT columns FROM datasets WHERE run_id = ? AND name = ?`, runID, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dataset %s not found in run %s", name, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	var cols []string
	if err := json.Unmarshal([]byte(raw), &cols); err != nil {
		return nil, fmt.Errorf("failed to parse columns: %w", err)
	}
	return cols, nil
}

// Record returns the stored fields of record seq as a map.
func (s *SQLiteStore) Record(ctx context.Context, runID, name string, seq int) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM records WHERE run_id = ? AND dataset = ? AND seq = ?`, runID, name, seq).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s record %d not found in run %s", name, seq, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return fields, nil
}

// Runs lists stored runs, most recent first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seed, generated_at, total_datasets, total_records FROM runs ORDER BY generated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var seed int64
		if err := rows.Scan(&r.RunID, &seed, &r.GeneratedAt, &r.TotalDatasets, &r.TotalRecords); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Seed = uint64(seed)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
