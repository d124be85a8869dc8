package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
	}{
		{"info filters debug", "info", false},
		{"debug passes debug", "debug", true},
		{"trace passes debug", "trace", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", got, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			if !strings.Contains(buf.String(), "info message") {
				t.Errorf("info message missing (buf: %q)", buf.String())
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "columns")

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected level=TRACE, got %q", buf.String())
	}
}

func TestNewEventLog_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLog(dir, "info")
	if l != nil {
		t.Error("expected nil EventLog at info level")
	}

	// Nil log is still safe to use
	l.Log(Event{Kind: EventRunStarted})
	l.Close()

	if _, err := os.Stat(filepath.Join(dir, "events.jsonl")); err == nil {
		t.Error("events.jsonl should not exist at info level")
	}
}

func TestEventLog_Writes(t *testing.T) {
	dir := t.TempDir()
	l := NewEventLog(dir, "debug")
	if l == nil {
		t.Fatal("expected non-nil EventLog at debug level")
	}

	l.Log(Event{Kind: EventTableWritten, Dataset: "scalability_data", Records: 360})
	l.Log(Event{Kind: EventRunFinished, Time: "fixed"})
	l.Close()

	f, err := os.Open(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("failed to open events.jsonl: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("failed to parse line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Dataset != "scalability_data" || events[0].Records != 360 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[0].Time == "" {
		t.Error("expected Time to be stamped")
	}
	if events[1].Time != "fixed" {
		t.Errorf("caller-supplied Time overwritten: %q", events[1].Time)
	}
}

func TestEventLog_TruncatesPreviousRun(t *testing.T) {
	dir := t.TempDir()

	first := NewEventLog(dir, "debug")
	first.Log(Event{Kind: "old"})
	first.Close()

	second := NewEventLog(dir, "trace")
	second.Log(Event{Kind: "new"})
	second.Close()

	data, err := os.ReadFile(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("failed to read events.jsonl: %v", err)
	}
	if strings.Contains(string(data), `"old"`) {
		t.Errorf("previous run's events survived: %q", data)
	}
}

func TestEventLog_LogAfterClose(t *testing.T) {
	l := NewEventLog(t.TempDir(), "debug")
	l.Close()
	l.Log(Event{Kind: "after_close"})
	l.Close()
}

func TestEventLog_CreatesDir(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "sub", "dir")
	l := NewEventLog(nested, "debug")
	if l == nil {
		t.Fatal("expected non-nil EventLog when dir needs creation")
	}
	defer l.Close()

	if _, err := os.Stat(filepath.Join(nested, "events.jsonl")); err != nil {
		t.Fatalf("events.jsonl should exist after dir creation: %v", err)
	}
}
