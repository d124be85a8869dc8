package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
)

// WriteCSV writes ds to path with a header row taken from the first record.
// An empty dataset creates no file and returns false with a nil error.
func WriteCSV(path string, ds dataset.Dataset) (bool, error) {
	if ds.Len() == 0 {
		return false, nil
	}
	if err := ds.CheckShape(); err != nil {
		return false, err
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", pathutil.RedactPath(path), err)
	}
	defer f.Close()

	// RFC 4180 line endings
	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(ds.Columns()); err != nil {
		return false, fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(ds.Columns()))
	for _, r := range ds.Records {
		for i, field := range r {
			row[i] = FormatValue(field.Value)
		}
		if err := w.Write(row); err != nil {
			return false, fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return false, fmt.Errorf("flushing %s: %w", pathutil.RedactPath(path), err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("closing %s: %w", pathutil.RedactPath(path), err)
	}
	return true, nil
}

// Table is a CSV file read back into memory.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ReadCSV loads a table written by WriteCSV.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pathutil.RedactPath(path), err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pathutil.RedactPath(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", pathutil.RedactPath(path))
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}
