package logging

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadLogs(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	run := logger.WithComponent("loader").WithRun("0b7e6a52-93f1-4c55-a4fb-5bd1d6b1a3a1")
	run.Info("load started")
	run.WithIdentifier("#ident:com.example.mail/.Inbox").Debug("card published", "position", 1)
	run.Warn("icon failed", "error", "boom")
	logger.WithComponent("cache").Info("trimmed", "level", "moderate")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := ReadLogs(dir, 3)
	if err != nil {
		t.Fatalf("ReadLogs() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}

	card := entries[1]
	if card.Component != "loader" || card.Identifier != "#ident:com.example.mail/.Inbox" {
		t.Errorf("entry = %+v", card)
	}
	if card.Attrs["position"] != float64(1) {
		t.Errorf("position attr = %v", card.Attrs["position"])
	}
	if card.Time.IsZero() {
		t.Error("time was not parsed")
	}

	tests := []struct {
		name   string
		filter LogFilter
		want   int
	}{
		{"no filter", LogFilter{}, 4},
		{"min level", LogFilter{MinLevel: "warn"}, 1},
		{"component", LogFilter{Component: "cache"}, 1},
		{"run", LogFilter{RunID: "0b7e6a52-93f1-4c55-a4fb-5bd1d6b1a3a1"}, 3},
		{"identifier", LogFilter{Identifier: "#ident:com.example.mail/.Inbox"}, 1},
		{"message", LogFilter{Contains: "load"}, 1},
		{"since", LogFilter{Since: time.Now().Add(time.Hour)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterLogs(entries, tt.filter); len(got) != tt.want {
				t.Errorf("FilterLogs() = %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReadLogs_IncludesBackups(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLoggerWithRotation(dir, LevelInfo, RotationConfig{MaxBackups: 2, Compress: true})
	if err != nil {
		t.Fatalf("NewLoggerWithRotation() error = %v", err)
	}
	logger.out.limit = 1
	logger.Info("one")
	logger.Info("two")
	logger.Info("three")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := ReadLogs(dir, 2)
	if err != nil {
		t.Fatalf("ReadLogs() error = %v", err)
	}
	var msgs []string
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	if got := strings.Join(msgs, ","); got != "one,two,three" {
		t.Errorf("messages = %s, want one,two,three", got)
	}
}

func TestReadLogs_Missing(t *testing.T) {
	if _, err := ReadLogs(filepath.Join(t.TempDir(), "none"), 3); err == nil {
		t.Error("ReadLogs() on a missing directory should fail")
	}
}

func TestParseLogEntry_Invalid(t *testing.T) {
	if _, err := ParseLogEntry("not json"); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestParseLogEntry_AttributeNamedLevel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`{"time":"2026-03-01T10:30:00Z","level":"INFO","msg":"caches trimmed","level":"moderate"}`, LevelInfo},
		{`{"level":"WARN","msg":"icon failed"}`, LevelWarn},
		{`{"msg":"no level","level":"moderate"}`, ""},
	}
	for _, tt := range tests {
		entry, err := ParseLogEntry(tt.line)
		if err != nil {
			t.Fatalf("ParseLogEntry(%s) error = %v", tt.line, err)
		}
		if entry.Level != tt.want {
			t.Errorf("ParseLogEntry(%s).Level = %q, want %q", tt.line, entry.Level, tt.want)
		}
	}

	unknown := []LogEntry{{Level: "", Message: "no level"}, {Level: LevelError, Message: "failed"}}
	if got := FilterLogs(unknown, LogFilter{MinLevel: "warn"}); len(got) != 1 || got[0].Message != "failed" {
		t.Errorf("FilterLogs() = %+v, want only the ERROR entry", got)
	}
}

func TestWriteLogs(t *testing.T) {
	entries := []LogEntry{
		{
			Time:      time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
			Level:     LevelInfo,
			Message:   "load finished",
			Component: "loader",
			RunID:     "0b7e6a52-93f1",
			Attrs:     map[string]any{"cards": 7, "completed": true},
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLogs(&buf, entries, FormatText); err != nil {
			t.Fatalf("WriteLogs() error = %v", err)
		}
		want := "10:30:00.000 INFO  [loader] load finished run=0b7e6a52 cards=7 completed=true\n"
		if buf.String() != want {
			t.Errorf("text = %q, want %q", buf.String(), want)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLogs(&buf, entries, FormatJSON); err != nil {
			t.Fatalf("WriteLogs() error = %v", err)
		}
		var got []LogEntry
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if len(got) != 1 || got[0].Message != "load finished" {
			t.Errorf("decoded = %+v", got)
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLogs(&buf, entries, FormatCSV); err != nil {
			t.Fatalf("WriteLogs() error = %v", err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("output is not CSV: %v", err)
		}
		if len(records) != 2 || records[1][2] != "loader" {
			t.Errorf("records = %v", records)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := WriteLogs(&bytes.Buffer{}, entries, "xml"); err == nil {
			t.Error("expected an error for an unknown format")
		}
	})
}

func TestCountByLevel(t *testing.T) {
	entries := []LogEntry{{Level: LevelInfo}, {Level: LevelWarn}, {Level: LevelInfo}}
	if got := FormatCounts(CountByLevel(entries)); got != "INFO=2 WARN=1" {
		t.Errorf("FormatCounts() = %q", got)
	}
}
