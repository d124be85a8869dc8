// Package logging provides leveled logging and run event tracing for datagen.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (diagnostics; progress lines go to stdout separately)
//   - An EventLog for structured JSONL run events (<output dir>/events.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/defense-datagen/internal/constants"
)

// LevelTrace is a custom slog level below Debug.
// At this level every dataset's column list and draw counts are logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Event is one line of the run event log.
type Event struct {
	Time    string `json:"time"`
	Kind    string `json:"kind"`
	Dataset string `json:"dataset,omitempty"`
	Path    string `json:"path,omitempty"`
	Records int    `json:"records,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Event kinds.
const (
	EventRunStarted   = "run_started"
	EventTableWritten = "table_written"
	EventTableSkipped = "table_skipped"
	EventManifest     = "manifest_written"
	EventRunFinished  = "run_finished"
)

// EventLog writes run events to a JSONL file, one run per file.
// A nil EventLog is safe to use; all methods are no-ops on nil receiver.
// It is not safe for concurrent use; the pipeline is single-threaded.
type EventLog struct {
	file *os.File
	enc  *json.Encoder
	now  func() time.Time
}

// NewEventLog creates an event log at dir/events.jsonl, truncating any previous run.
// At "info" level (the default), returns nil and no file is created.
// Returns nil if the file cannot be opened.
func NewEventLog(dir string, level string) *EventLog {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}

	path := filepath.Join(dir, constants.EventsFile)
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &EventLog{file: f, enc: json.NewEncoder(f), now: time.Now}
}

// Log appends e, stamping Time when it is empty. Safe to call on nil receiver.
func (l *EventLog) Log(e Event) {
	if l == nil || l.file == nil {
		return
	}
	if e.Time == "" {
		e.Time = l.now().UTC().Format(time.RFC3339Nano)
	}
	_ = l.enc.Encode(e)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (l *EventLog) Close() {
	if l == nil || l.file == nil {
		return
	}
	l.file.Close()
	l.file = nil
}
