package logging

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// LogEntry is one parsed line of recents.log.
type LogEntry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Message    string         `json:"msg"`
	Component  string         `json:"component,omitempty"`
	RunID      string         `json:"run_id,omitempty"`
	Identifier string         `json:"identifier,omitempty"`
	Attrs      map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects entries. Zero fields match everything.
type LogFilter struct {
	// MinLevel keeps entries at or above this level.
	MinLevel   string
	Since      time.Time
	Component  string
	RunID      string
	Identifier string
	Contains   string
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ReadLogs parses recents.log in stateDir and up to backups rotated copies,
// compressed or not. Entries come back oldest first; unparsable lines are
// skipped.
func ReadLogs(stateDir string, backups int) ([]LogEntry, error) {
	path := filepath.Join(stateDir, LogFileName)

	var entries []LogEntry
	for n := backups; n >= 1; n-- {
		backup := BackupPath(path, n)
		for _, candidate := range []string{backup, backup + ".gz"} {
			got, err := readLogFile(candidate)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			entries = append(entries, got...)
		}
	}

	got, err := readLogFile(path)
	if err != nil {
		if os.IsNotExist(err) && len(entries) > 0 {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	entries = append(entries, got...)

	slices.SortStableFunc(entries, func(a, b LogEntry) int {
		return a.Time.Compare(b.Time)
	})
	return entries, nil
}

func readLogFile(path string) ([]LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	var entries []LogEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if entry, err := ParseLogEntry(line); err == nil {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return entries, nil
}

// ParseLogEntry parses one JSON line written by Logger.
func ParseLogEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	str := func(key string) string {
		s, _ := raw[key].(string)
		delete(raw, key)
		return s
	}

	entry := LogEntry{
		Level:      str("level"),
		Message:    str("msg"),
		Component:  str("component"),
		RunID:      str("run_id"),
		Identifier: str("identifier"),
	}
	if _, ok := levelOrder[entry.Level]; !ok {
		entry.Level = recordLevel(line)
	}
	if ts := str("time"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Time = t
		}
	}
	if len(raw) > 0 {
		entry.Attrs = raw
	}
	return entry, nil
}

// recordLevel returns the first "level" member of a JSON line. slog writes
// the record level before any attribute, so a caller attribute named "level"
// cannot shadow it.
func recordLevel(line string) string {
	dec := json.NewDecoder(strings.NewReader(line))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return ""
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return ""
		}
		if tok != "level" {
			continue
		}
		var level string
		if err := json.Unmarshal(value, &level); err != nil {
			return ""
		}
		if _, ok := levelOrder[level]; ok {
			return level
		}
		return ""
	}
	return ""
}

// FilterLogs returns the entries matching every set field of f.
func FilterLogs(entries []LogEntry, f LogFilter) []LogEntry {
	var out []LogEntry
	for _, e := range entries {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f LogFilter) matches(e LogEntry) bool {
	if f.MinLevel != "" {
		want, ok := levelOrder[strings.ToUpper(f.MinLevel)]
		if got, known := levelOrder[e.Level]; ok && (!known || got < want) {
			return false
		}
	}
	switch {
	case !f.Since.IsZero() && e.Time.Before(f.Since):
		return false
	case f.Component != "" && e.Component != f.Component:
		return false
	case f.RunID != "" && e.RunID != f.RunID:
		return false
	case f.Identifier != "" && e.Identifier != f.Identifier:
		return false
	case f.Contains != "" && !strings.Contains(e.Message, f.Contains):
		return false
	}
	return true
}

// Export formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// WriteLogs writes entries to w as text, json or csv.
func WriteLogs(w io.Writer, entries []LogEntry, format string) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return writeText(w, entries)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatCSV:
		return writeCSV(w, entries)
	default:
		return fmt.Errorf("unsupported log format %q (supported: text, json, csv)", format)
	}
}

func writeText(w io.Writer, entries []LogEntry) error {
	for _, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "%s %-5s", e.Time.Format("15:04:05.000"), e.Level)
		if e.Component != "" {
			fmt.Fprintf(&b, " [%s]", e.Component)
		}
		b.WriteString(" " + e.Message)
		if e.RunID != "" {
			b.WriteString(" run=" + shortRun(e.RunID))
		}
		if e.Identifier != "" {
			b.WriteString(" id=" + e.Identifier)
		}
		keys := make([]string, 0, len(e.Attrs))
		for k := range e.Attrs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeCSV(w io.Writer, entries []LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "level", "component", "run_id", "identifier", "message", "attrs"}); err != nil {
		return err
	}
	for _, e := range entries {
		attrs := ""
		if len(e.Attrs) > 0 {
			if b, err := json.Marshal(e.Attrs); err == nil {
				attrs = string(b)
			}
		}
		if err := cw.Write([]string{
			e.Time.Format(time.RFC3339Nano),
			e.Level,
			e.Component,
			e.RunID,
			e.Identifier,
			e.Message,
			attrs,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CountByLevel tallies entries per level.
func CountByLevel(entries []LogEntry) map[string]int {
	counts := make(map[string]int, len(levelOrder))
	for _, e := range entries {
		counts[e.Level]++
	}
	return counts
}

// FormatCounts renders CountByLevel output in level order.
func FormatCounts(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	for _, level := range ValidLevels() {
		if n := counts[level]; n > 0 {
			parts = append(parts, level+"="+strconv.Itoa(n))
		}
	}
	return strings.Join(parts, " ")
}
