// Package audit appends a durable, greppable record of phonebook operations
// to a log file. One line per operation; the log is never read back by the
// application except for the log viewing command.
package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Op identifies the kind of operation an entry records.
type Op string

const (
	OpAdd         Op = "add"
	OpUpdate      Op = "update"
	OpDelete      Op = "delete"
	OpSearch      Op = "search"
	OpSort        Op = "sort"
	OpBatchAdd    Op = "batch-add"
	OpBatchDelete Op = "batch-delete"
	OpExport      Op = "export"
	OpClear       Op = "clear"
)

// Entry is one audit record. Target is the contact name, query, or file
// the operation acted on; Detail carries the failure reason or batch
// operation ID, "-" when empty.
type Entry struct {
	Time   time.Time
	Op     Op
	Target string
	Ok     bool
	Detail string
}

// Recorder receives audit entries. Implemented by Logger; Nop discards.
type Recorder interface {
	Append(e Entry) error
}

// Nop is a Recorder that discards entries. Useful in tests.
type Nop struct{}

// Append discards the entry.
func (Nop) Append(Entry) error { return nil }

// Logger appends entries to a text file. The file handle is opened,
// flushed, and closed within each Append so a crash mid-operation
// cannot corrupt prior entries.
type Logger struct {
	path string
}

// NewLogger creates a Logger writing to path. The parent directory is
// created on first append.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Path returns the log file path.
func (l *Logger) Path() string { return l.path }

// Line layout: RFC3339 UTC timestamp, op, target, ok|fail, detail,
// tab-separated. Tabs inside fields are replaced with spaces so the
// layout stays stable for external grep/cut tooling.
func formatLine(e Entry) string {
	ts := e.Time.UTC().Format(time.RFC3339)
	outcome := "ok"
	if !e.Ok {
		outcome = "fail"
	}
	detail := e.Detail
	if detail == "" {
		detail = "-"
	}
	fields := []string{ts, string(e.Op), e.Target, outcome, detail}
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(strings.ReplaceAll(f, "\t", " "), "\n", " ")
	}
	return strings.Join(fields, "\t")
}

// Append formats the entry as one line and appends it to the log file.
// A zero Time is filled with the current time.
func (l *Logger) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("audit: creating log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: opening %s: %w", l.path, err)
	}

	_, werr := fmt.Fprintln(f, formatLine(e))
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("audit: writing %s: %w", l.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("audit: closing %s: %w", l.path, cerr)
	}
	return nil
}

// Read returns all log lines in order. A missing log file yields an
// empty slice, not an error.
func (l *Logger) Read() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("audit: opening %s: %w", l.path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("audit: reading %s: %w", l.path, err)
	}
	return lines, nil
}

// Clear truncates the log file and records the truncation as the first
// entry of the fresh log.
func (l *Logger) Clear() error {
	if err := os.WriteFile(l.path, nil, 0o644); err != nil {
		return fmt.Errorf("audit: clearing %s: %w", l.path, err)
	}
	return l.Append(Entry{Op: OpClear, Target: l.path, Ok: true})
}
