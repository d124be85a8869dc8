// Package manifest builds, writes, and reads the JSON summary of a generation run.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/defense-datagen/internal/constants"
	"github.com/nvandessel/defense-datagen/internal/dataset"
	"github.com/nvandessel/defense-datagen/internal/pathutil"
)

// Manifest is the document written to data_summary.json.
type Manifest struct {
	Info     GenerationInfo `json:"data_generation_info"`
	Datasets Entries        `json:"datasets"`
}

// GenerationInfo describes the run that produced the datasets.
type GenerationInfo struct {
	GenerationDate string `json:"generation_date"`
	TotalDatasets  int    `json:"total_datasets"`
	RandomSeed     uint64 `json:"random_seed"`
	PaperReference string `json:"paper_reference"`
	RunID          string `json:"run_id,omitempty"`
}

// Entry is the per-dataset block. ListKey names the categorical list
// ("metrics", "scenarios", ...) and List holds its values.
type Entry struct {
	Name        string
	Description string
	Records     int
	ListKey     string
	List        any
}

// New assembles a manifest from the builders' declared counts and metadata.
// TotalDatasets is always constants.TotalDatasets.
func New(builders []dataset.Builder, seed uint64, generated time.Time) *Manifest {
	m := &Manifest{
		Info: GenerationInfo{
			GenerationDate: dataset.FormatTimestamp(generated),
			TotalDatasets:  constants.TotalDatasets,
			RandomSeed:     seed,
			PaperReference: constants.PaperReference,
			RunID:          uuid.New().String(),
		},
	}
	for _, b := range builders {
		d := b.Describe()
		m.Datasets = append(m.Datasets, Entry{
			Name:        b.Name(),
			Description: d.Description,
			Records:     b.Expected(),
			ListKey:     d.ListKey,
			List:        d.List,
		})
	}
	return m
}

// Entry returns the block for name.
func (m *Manifest) Entry(name string) (Entry, bool) {
	for _, e := range m.Datasets {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// TotalRecords sums the declared record counts.
func (m *Manifest) TotalRecords() int {
	total := 0
	for _, e := range m.Datasets {
		total += e.Records
	}
	return total
}

// Write writes the manifest as indented JSON.
func Write(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", pathutil.RedactPath(path), err)
	}
	return nil
}

// Read parses a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", pathutil.RedactPath(path), err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", pathutil.RedactPath(path), err)
	}
	return &m, nil
}

// Entries preserves dataset order in the JSON object.
type Entries []Entry

// MarshalJSON encodes entries as an object keyed by dataset name, in slice order.
func (es Entries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range es {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, e.Name, entryBody(e)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// entryBody is an Entry encoded without its name, with the list under ListKey.
type entryBody Entry

func (b entryBody) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, "description", b.Description); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, "records", b.Records); err != nil {
		return nil, err
	}
	if b.ListKey != "" {
		buf.WriteByte(',')
		if err := writeMember(&buf, b.ListKey, b.List); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// UnmarshalJSON decodes the datasets object, keeping key order.
func (es *Entries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return fmt.Errorf("datasets: expected object")
	}

	var out Entries
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("datasets: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("datasets: expected key, got %v", tok)
		}

		var fields map[string]json.RawMessage
		if err := dec.Decode(&fields); err != nil {
			return fmt.Errorf("datasets.%s: %w", name, err)
		}
		e, err := decodeEntry(name, fields)
		if err != nil {
			return err
		}
		out = append(out, e)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("datasets: %w", err)
	}

	*es = out
	return nil
}

func decodeEntry(name string, fields map[string]json.RawMessage) (Entry, error) {
	e := Entry{Name: name}
	for key, raw := range fields {
		var err error
		switch key {
		case "description":
			err = json.Unmarshal(raw, &e.Description)
		case "records":
			err = json.Unmarshal(raw, &e.Records)
		default:
			e.ListKey = key
			e.List, err = decodeList(raw)
		}
		if err != nil {
			return Entry{}, fmt.Errorf("datasets.%s.%s: %w", name, key, err)
		}
	}
	return e, nil
}

// decodeList returns []int when every element is an integer, otherwise []string.
func decodeList(raw json.RawMessage) (any, error) {
	var ints []int
	if err := json.Unmarshal(raw, &ints); err == nil {
		return ints, nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, err
	}
	return strs, nil
}
