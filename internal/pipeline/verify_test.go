package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/store"
)

func TestVerify_CleanRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "results.db")
	s := runDefaults(t, Options{
		Dir:        dir,
		Formats:    []constants.Format{constants.FormatArrow, constants.FormatXLSX},
		SQLitePath: dbPath,
	})

	report, err := Verify(context.Background(), VerifyOptions{Dir: dir, SQLitePath: dbPath})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if report.RunID != s.RunID {
		t.Errorf("RunID = %q, want %q", report.RunID, s.RunID)
	}
	if report.TotalRecords != 3120 {
		t.Errorf("TotalRecords = %d, want 3120", report.TotalRecords)
	}
	if len(report.Datasets) != constants.TotalDatasets {
		t.Fatalf("checked %d datasets, want %d", len(report.Datasets), constants.TotalDatasets)
	}
	for _, c := range report.Datasets {
		if !c.OK {
			t.Errorf("%s not OK: %+v", c.Name, c)
		}
	}
	if report.StoredRuns != 1 {
		t.Errorf("StoredRuns = %d, want 1", report.StoredRuns)
	}
}

func TestVerify_MissingStoreNotCreated(t *testing.T) {
	dir := t.TempDir()
	runDefaults(t, Options{Dir: dir})

	dbPath := filepath.Join(dir, "nope", "results.db")
	_, err := Verify(context.Background(), VerifyOptions{Dir: dir, SQLitePath: dbPath})
	if !errors.Is(err, store.ErrNoStore) {
		t.Fatalf("Verify error = %v, want ErrNoStore", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nope")); !os.IsNotExist(err) {
		t.Errorf("Verify created %s: %v", filepath.Join(dir, "nope"), err)
	}
}

func TestVerify_StoreMismatch(t *testing.T) {
	tests := []struct {
		name   string
		update string
		want   string
	}{
		{"columns", `UPDATE datasets SET columns = '["Method"]' WHERE name = 'scalability_data'`, "stored columns"},
		{"first record", `UPDATE records SET fields = json_set(fields, '$.Trial', 99) WHERE dataset = 'compliance_data' AND seq = 0`, "stored record 0 Trial"},
		{"other run", `UPDATE runs SET run_id = 'elsewhere'`, "not found in store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dbPath := filepath.Join(t.TempDir(), "results.db")
			runDefaults(t, Options{Dir: dir, SQLitePath: dbPath})

			db, err := sql.Open("sqlite", dbPath)
			if err != nil {
				t.Fatal(err)
			}
			if tt.name == "other run" {
				// Move the whole run so references stay consistent.
				for _, q := range []string{
					`UPDATE records SET run_id = 'elsewhere'`,
					`UPDATE datasets SET run_id = 'elsewhere'`,
				} {
					if _, err := db.Exec(q); err != nil {
						t.Fatal(err)
					}
				}
			}
			if _, err := db.Exec(tt.update); err != nil {
				t.Fatal(err)
			}
			db.Close()

			_, err = Verify(context.Background(), VerifyOptions{Dir: dir, SQLitePath: dbPath})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestVerify_MissingManifest(t *testing.T) {
	if _, err := Verify(context.Background(), VerifyOptions{Dir: t.TempDir()}); err == nil {
		t.Fatal("Verify succeeded without a manifest")
	}
}

func TestVerify_Tampered(t *testing.T) {
	tests := []struct {
		name    string
		dataset string
		tamper  func(lines []string) []string
		want    string
	}{
		{
			name:    "dropped row",
			dataset: constants.CoordinationMetrics,
			tamper:  func(lines []string) []string { return lines[:len(lines)-2] },
			want:    "table has 119 rows",
		},
		{
			name:    "renamed column",
			dataset: constants.PerformanceComparison,
			tamper: func(lines []string) []string {
				lines[0] = strings.Replace(lines[0], "TDR_Percent", "TDR", 1)
				return lines
			},
			want: "header",
		},
		{
			name:    "value out of range",
			dataset: constants.AdversarialRobustness,
			tamper: func(lines []string) []string {
				fields := strings.Split(lines[1], ",")
				fields[len(fields)-1] = "0.95"
				lines[1] = strings.Join(fields, ",")
				return lines
			},
			want: "Attack_Success_Rate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			runDefaults(t, Options{Dir: dir})

			path := filepath.Join(dir, tt.dataset+constants.CSVExt)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			lines := strings.Split(string(data), "\r\n")
			if err := os.WriteFile(path, []byte(strings.Join(tt.tamper(lines), "\r\n")), 0o644); err != nil {
				t.Fatal(err)
			}

			report, err := Verify(context.Background(), VerifyOptions{Dir: dir})
			if err == nil {
				t.Fatal("Verify accepted a tampered table")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			for _, c := range report.Datasets {
				if c.OK == (c.Name == tt.dataset) {
					t.Errorf("%s OK = %v", c.Name, c.OK)
				}
			}
		})
	}
}

func TestVerify_BoundError(t *testing.T) {
	dir := t.TempDir()
	runDefaults(t, Options{Dir: dir})

	path := filepath.Join(dir, constants.ScalabilityData+constants.CSVExt)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(data), "\r\n")
	col := -1
	for i, h := range strings.Split(lines[0], ",") {
		if h == "CPU_Usage_Percent" {
			col = i
		}
	}
	if col < 0 {
		t.Fatalf("no CPU column in %q", lines[0])
	}
	fields := strings.Split(lines[3], ",")
	fields[col] = "95"
	lines[3] = strings.Join(fields, ",")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\r\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Verify(context.Background(), VerifyOptions{Dir: dir})
	var be *dataset.BoundError
	if !errors.As(err, &be) {
		t.Fatalf("Verify error = %v, want BoundError", err)
	}
	if be.Record != 2 || be.Value != 95 {
		t.Errorf("BoundError = %+v, want record 2 value 95", be)
	}
}
