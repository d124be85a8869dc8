package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
)

// ArrowSchema infers a schema from a record's value types:
// int as Int64, float64 as Float64, string as Utf8.
func ArrowSchema(r dataset.Record) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(r))
	for i, f := range r {
		var dt arrow.DataType
		switch f.Value.(type) {
		case int:
			dt = arrow.PrimitiveTypes.Int64
		case float64:
			dt = arrow.PrimitiveTypes.Float64
		case string:
			dt = arrow.BinaryTypes.String
		default:
			return nil, fmt.Errorf("field %s: unsupported value type %T", f.Name, f.Value)
		}
		fields[i] = arrow.Field{Name: f.Name, Type: dt}
	}
	return arrow.NewSchema(fields, nil), nil
}

// WriteArrow writes ds as a single-batch Arrow IPC file.
// An empty dataset creates no file and returns false with a nil error.
func WriteArrow(path string, ds dataset.Dataset) (bool, error) {
	if ds.Len() == 0 {
		return false, nil
	}
	if err := ds.CheckShape(); err != nil {
		return false, err
	}

	schema, err := ArrowSchema(ds.Records[0])
	if err != nil {
		return false, fmt.Errorf("%s: %w", ds.Name, err)
	}

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, r := range ds.Records {
		for j, field := range r {
			if err := appendValue(b.Field(j), field.Value); err != nil {
				return false, fmt.Errorf("%s record %d field %s: %w", ds.Name, i, field.Name, err)
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", pathutil.RedactPath(path), err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return false, fmt.Errorf("opening arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return false, fmt.Errorf("writing arrow batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return false, fmt.Errorf("closing arrow writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("closing %s: %w", pathutil.RedactPath(path), err)
	}
	return true, nil
}

func appendValue(b array.Builder, v any) error {
	switch fb := b.(type) {
	case *array.Int64Builder:
		n, ok := v.(int)
		if !ok {
			return fmt.Errorf("want int, got %T", v)
		}
		fb.Append(int64(n))
	case *array.Float64Builder:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("want float64, got %T", v)
		}
		fb.Append(n)
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		fb.Append(s)
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}

// ReadArrowTable returns the column names and total row count of an Arrow IPC file.
func ReadArrowTable(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", pathutil.RedactPath(path), err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, 0, fmt.Errorf("reading arrow file %s: %w", pathutil.RedactPath(path), err)
	}
	defer r.Close()

	var rows int64
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, 0, fmt.Errorf("reading batch %d: %w", i, err)
		}
		rows += rec.NumRows()
	}

	fields := r.Schema().Fields()
	names := make([]string, len(fields))
	for i, fld := range fields {
		names[i] = fld.Name
	}
	return names, int(rows), nil
}
