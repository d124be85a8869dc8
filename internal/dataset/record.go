package dataset

import (
	"errors"
	"fmt"
	"slices"
)

// ErrShapeMismatch is returned when a record's field names differ from the dataset header.
var ErrShapeMismatch = errors.New("record fields do not match dataset columns")

// Field is a single named value in a record.
// Value is an int, float64, or string.
type Field struct {
	Name  string
	Value any
}

// Record is one simulated trial. Field order is the column order on export.
type Record []Field

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Float returns the named value as a float64. Ints are widened.
func (r Record) Float(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Dataset is the ordered sequence of records produced by one builder.
type Dataset struct {
	Name    string
	Records []Record
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// Columns returns the field names of the first record, or nil for an empty dataset.
func (d Dataset) Columns() []string {
	if len(d.Records) == 0 {
		return nil
	}
	return d.Records[0].Names()
}

// CheckShape verifies that every record carries exactly the first record's fields, in order.
func (d Dataset) CheckShape() error {
	cols := d.Columns()
	for i, r := range d.Records {
		if !slices.Equal(r.Names(), cols) {
			return fmt.Errorf("%s record %d: %w", d.Name, i, ErrShapeMismatch)
		}
	}
	return nil
}
