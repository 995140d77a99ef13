package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppend_WritesOneLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	err := l.Append(Entry{Time: ts, Op: OpAdd, Target: "Alice Smith", Ok: true})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSuffix(string(data), "\n")
	want := "2026-08-26T12:00:00Z\tadd\tAlice Smith\tok\t-"
	if got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestAppend_FailureOutcomeAndDetail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	err := l.Append(Entry{Op: OpDelete, Target: "Bob", Ok: false, Detail: "not found"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	lines, err := l.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("line count = %d, want 1", len(lines))
	}
	fields := strings.Split(lines[0], "\t")
	if len(fields) != 5 {
		t.Fatalf("field count = %d, want 5: %q", len(fields), lines[0])
	}
	if fields[1] != "delete" || fields[3] != "fail" || fields[4] != "not found" {
		t.Errorf("fields = %v, want delete/fail/not found", fields)
	}
}

func TestAppend_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".rolodex", "audit.log")
	l := NewLogger(path)

	if err := l.Append(Entry{Op: OpAdd, Target: "Alice", Ok: true}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestAppend_IsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		if err := l.Append(Entry{Op: OpAdd, Target: name, Ok: true}); err != nil {
			t.Fatalf("Append(%s) error = %v", name, err)
		}
	}

	lines, err := l.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		if !strings.Contains(lines[i], name) {
			t.Errorf("line %d = %q, want target %q", i, lines[i], name)
		}
	}
}

func TestAppend_SanitizesTabsInFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	err := l.Append(Entry{Op: OpSearch, Target: "a\tb\nc", Ok: true})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	lines, _ := l.Read()
	if len(lines) != 1 {
		t.Fatalf("line count = %d, want 1", len(lines))
	}
	if fields := strings.Split(lines[0], "\t"); len(fields) != 5 {
		t.Errorf("embedded tab broke layout: %d fields in %q", len(fields), lines[0])
	}
}

func TestRead_MissingFile(t *testing.T) {
	l := NewLogger(filepath.Join(t.TempDir(), "missing.log"))
	lines, err := l.Read()
	if err != nil {
		t.Fatalf("Read(missing) error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Read(missing) = %v, want empty", lines)
	}
}

func TestClear_TruncatesAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewLogger(path)

	for i := 0; i < 3; i++ {
		if err := l.Append(Entry{Op: OpAdd, Target: "Alice", Ok: true}); err != nil {
			t.Fatal(err)
		}
	}

	if err := l.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	lines, err := l.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("line count after Clear = %d, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "\tclear\t") {
		t.Errorf("first entry of fresh log = %q, want clear op", lines[0])
	}
}
