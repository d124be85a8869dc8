package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/export"
	"github.com/nvandessel/defense-datagen/internal/manifest"
	"github.com/nvandessel/defense-datagen/internal/store"
)

// DatasetCheck is the verification result for one table.
type DatasetCheck struct {
	Name     string `json:"name"`
	Declared int    `json:"declared"`
	Rows     int    `json:"rows"`
	OK       bool   `json:"ok"`
}

// Report is the result of verifying a finished run.
type Report struct {
	RunID         string         `json:"run_id"`
	TotalDatasets int            `json:"total_datasets"`
	TotalRecords  int            `json:"total_records"`
	Datasets      []DatasetCheck `json:"datasets"`

	// StoredRuns is the number of runs in the SQLite store, when one was checked.
	StoredRuns int `json:"stored_runs,omitempty"`
}

// VerifyOptions selects what Verify checks beyond the CSV tables.
type VerifyOptions struct {
	Dir        string
	SQLitePath string
}

// Verify re-reads a finished run and checks it against its manifest:
// every table exists, its header matches the dataset's columns, its row
// count equals the declared count, and bounded fields are in range. Arrow
// files, the workbook, and the SQLite store are checked when present.
// Verify never writes; a missing store is reported, not created.
// All problems are joined into the returned error; the report is returned either way.
func Verify(ctx context.Context, opts VerifyOptions) (*Report, error) {
	m, err := manifest.Read(filepath.Join(opts.Dir, constants.ManifestFile))
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: m.Info.RunID, TotalDatasets: m.Info.TotalDatasets}
	var problems []error

	if m.Info.TotalDatasets != len(m.Datasets) {
		problems = append(problems, fmt.Errorf("manifest declares %d datasets but lists %d", m.Info.TotalDatasets, len(m.Datasets)))
	}

	workbook := loadWorkbookCounts(opts.Dir, &problems)
	tables := make(map[string]*export.Table, len(m.Datasets))

	for _, e := range m.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		check := DatasetCheck{Name: e.Name, Declared: e.Records}
		table, errs := verifyTable(opts.Dir, e)
		if table != nil {
			check.Rows = len(table.Rows)
			tables[e.Name] = table
		}

		arrowPath := filepath.Join(opts.Dir, e.Name+constants.ArrowExt)
		if _, err := os.Stat(arrowPath); err == nil {
			_, rows, err := export.ReadArrowTable(arrowPath)
			switch {
			case err != nil:
				errs = append(errs, err)
			case rows != e.Records:
				errs = append(errs, fmt.Errorf("%s: arrow file has %d rows, manifest declares %d", e.Name, rows, e.Records))
			}
		}

		if workbook != nil && e.Records > 0 && workbook[e.Name] != e.Records {
			errs = append(errs, fmt.Errorf("%s: workbook sheet has %d rows, manifest declares %d", e.Name, workbook[e.Name], e.Records))
		}

		check.OK = len(errs) == 0
		problems = append(problems, errs...)
		report.Datasets = append(report.Datasets, check)
		report.TotalRecords += check.Rows
	}

	if opts.SQLitePath != "" {
		runs, errs := verifyStore(ctx, opts.SQLitePath, m, tables)
		report.StoredRuns = runs
		problems = append(problems, errs...)
	}

	return report, errors.Join(problems...)
}

// verifyTable reads one table and checks it. The table is returned whenever it could be read.
func verifyTable(dir string, e manifest.Entry) (*export.Table, []error) {
	path := filepath.Join(dir, e.Name+constants.CSVExt)
	if e.Records == 0 {
		if _, err := os.Stat(path); err == nil {
			return nil, []error{fmt.Errorf("%s: table exists but manifest declares no records", e.Name)}
		}
		return nil, nil
	}

	table, err := export.ReadCSV(path)
	if err != nil {
		return nil, []error{err}
	}

	var errs []error
	if want, ok := dataset.Columns[e.Name]; ok && !slices.Equal(table.Header, want) {
		errs = append(errs, fmt.Errorf("%s: header %v, want %v", e.Name, table.Header, want))
	}
	if len(table.Rows) != e.Records {
		errs = append(errs, fmt.Errorf("%s: table has %d rows, manifest declares %d", e.Name, len(table.Rows), e.Records))
	}

	ds, err := boundedDataset(e.Name, table)
	if err != nil {
		errs = append(errs, err)
	} else if err := dataset.CheckBounds(ds); err != nil {
		errs = append(errs, err)
	}
	return table, errs
}

// boundedDataset rebuilds the bounded columns of a table as numeric records
// so they can be checked with dataset.CheckBounds.
func boundedDataset(name string, table *export.Table) (dataset.Dataset, error) {
	bounds := dataset.Bounds[name]
	cols := make([]int, len(bounds))
	for i, b := range bounds {
		if cols[i] = table.Column(b.Field); cols[i] < 0 {
			return dataset.Dataset{}, fmt.Errorf("%s: missing bounded column %s", name, b.Field)
		}
	}

	ds := dataset.Dataset{Name: name, Records: make([]dataset.Record, len(table.Rows))}
	for i, row := range table.Rows {
		r := make(dataset.Record, len(bounds))
		for j, b := range bounds {
			v, err := strconv.ParseFloat(row[cols[j]], 64)
			if err != nil {
				return dataset.Dataset{}, fmt.Errorf("%s row %d: %s is not numeric: %q", name, i+1, b.Field, row[cols[j]])
			}
			r[j] = dataset.Field{Name: b.Field, Value: v}
		}
		ds.Records[i] = r
	}
	return ds, nil
}

func loadWorkbookCounts(dir string, problems *[]error) map[string]int {
	path := filepath.Join(dir, constants.WorkbookFile)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	counts, err := export.ReadWorkbookRowCounts(path)
	if err != nil {
		*problems = append(*problems, err)
		return nil
	}
	return counts
}

// verifyStore checks the run in the SQLite store at path: the run is present,
// each dataset has the expected columns and record count, and the first stored
// record matches the first table row. It returns the number of stored runs.
func verifyStore(ctx context.Context, path string, m *manifest.Manifest, tables map[string]*export.Table) (int, []error) {
	s, err := store.OpenExisting(ctx, path)
	if err != nil {
		return 0, []error{fmt.Errorf("opening results store: %w", err)}
	}
	defer s.Close()

	runs, err := s.Runs(ctx)
	if err != nil {
		return 0, []error{err}
	}
	if !slices.ContainsFunc(runs, func(r store.RunInfo) bool { return r.RunID == m.Info.RunID }) {
		return len(runs), []error{fmt.Errorf("run %s not found in store", m.Info.RunID)}
	}

	var errs []error
	for _, e := range m.Datasets {
		n, err := s.CountRecords(ctx, m.Info.RunID, e.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n != e.Records {
			errs = append(errs, fmt.Errorf("%s: store has %d records for run %s, manifest declares %d", e.Name, n, m.Info.RunID, e.Records))
		}
		if n == 0 {
			continue
		}

		cols, err := s.Columns(ctx, m.Info.RunID, e.Name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if want, ok := dataset.Columns[e.Name]; ok && !slices.Equal(cols, want) {
			errs = append(errs, fmt.Errorf("%s: stored columns %v, want %v", e.Name, cols, want))
		}

		table := tables[e.Name]
		if table == nil || len(table.Rows) == 0 {
			continue
		}
		first, err := s.Record(ctx, m.Info.RunID, e.Name, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for i, col := range table.Header {
			if got := export.FormatValue(first[col]); got != table.Rows[0][i] {
				errs = append(errs, fmt.Errorf("%s: stored record 0 %s = %s, table has %s", e.Name, col, got, table.Rows[0][i]))
				break
			}
		}
	}
	return len(runs), errs
}
