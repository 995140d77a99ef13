package batch

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/smileynet/rolodex/internal/audit"
	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/phonebook"
)

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportAdd(t *testing.T) {
	path := writeCSV(t,
		"first_name,last_name,phone,email,address",
		"Alice,Smith,123,a@x.com,Addr1",
		"Bob,Jones,456,b@x.com,Addr2",
	)
	book := phonebook.New(audit.Nop{})

	result, err := NewRunner(audit.Nop{}).ImportAdd(book, path)
	if err != nil {
		t.Fatalf("ImportAdd() error = %v", err)
	}
	if result.Succeeded != 2 || result.Failed() != 0 {
		t.Errorf("result = %d succeeded, %d failed, want 2/0", result.Succeeded, result.Failed())
	}
	if book.Len() != 2 {
		t.Errorf("book size = %d, want 2", book.Len())
	}
	if result.ID == "" {
		t.Error("result should carry an operation ID")
	}
}

func TestImportAdd_ToleratesBadRows(t *testing.T) {
	path := writeCSV(t,
		"first_name,last_name,phone,email,address",
		"Alice,Smith,123,a@x.com,Addr1",
		",NoFirstName,999",      // Empty name: parse failure.
		"Bob,Jones",             // Too few columns: parse failure.
		"Carol,White,789",       // Valid despite earlier failures.
		"Alice,Smith,000",       // Duplicate: domain failure.
	)
	book := phonebook.New(audit.Nop{})

	result, err := NewRunner(audit.Nop{}).ImportAdd(book, path)
	if err != nil {
		t.Fatalf("ImportAdd() error = %v", err)
	}
	if result.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", result.Succeeded)
	}
	if result.Failed() != 3 {
		t.Fatalf("failed = %d, want 3: %+v", result.Failed(), result.Failures)
	}
	if book.Len() != 2 {
		t.Errorf("book size = %d, want 2", book.Len())
	}

	// Failures carry line numbers and reasons.
	lines := map[int]bool{}
	for _, f := range result.Failures {
		if f.Reason == "" {
			t.Errorf("failure at line %d has no reason", f.Line)
		}
		lines[f.Line] = true
	}
	for _, want := range []int{3, 4, 6} {
		if !lines[want] {
			t.Errorf("missing failure for line %d: %+v", want, result.Failures)
		}
	}
}

func TestImportAdd_MissingFile(t *testing.T) {
	book := phonebook.New(audit.Nop{})
	_, err := NewRunner(audit.Nop{}).ImportAdd(book, filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Fatal("ImportAdd(missing file) should return error")
	}
}

func TestImportAdd_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	book := phonebook.New(audit.Nop{})

	_, err := NewRunner(audit.Nop{}).ImportAdd(book, path)
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("ImportAdd(empty) error = %v, want ErrMissingHeader", err)
	}
}

func TestImportAdd_UnreadableHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("\"unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	book := phonebook.New(audit.Nop{})

	_, err := NewRunner(audit.Nop{}).ImportAdd(book, path)
	if errors.Is(err, ErrMissingHeader) {
		t.Fatalf("error = %v, want the underlying parse error, not ErrMissingHeader", err)
	}
	if !errors.Is(err, csv.ErrQuote) {
		t.Fatalf("error = %v, want wrapped csv.ErrQuote", err)
	}
}

func TestImportDelete(t *testing.T) {
	book := phonebook.New(audit.Nop{})
	for _, row := range [][]string{
		{"Alice", "Smith", "123"},
		{"Bob", "Jones", "456"},
	} {
		c, err := contact.FromRow(row)
		if err != nil {
			t.Fatal(err)
		}
		if err := book.Add(c); err != nil {
			t.Fatal(err)
		}
	}

	path := writeCSV(t,
		"first_name,last_name,phone",
		"Alice,Smith,123",
		"Carol,White,789", // Not in the book: per-row failure.
	)

	result, err := NewRunner(audit.Nop{}).ImportDelete(book, path)
	if err != nil {
		t.Fatalf("ImportDelete() error = %v", err)
	}
	if result.Succeeded != 1 || result.Failed() != 1 {
		t.Errorf("result = %d succeeded, %d failed, want 1/1", result.Succeeded, result.Failed())
	}
	if book.Len() != 1 {
		t.Errorf("book size = %d, want 1", book.Len())
	}
	if _, ok := book.Get("Bob Jones"); !ok {
		t.Error("Bob Jones should survive the batch delete")
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	book := phonebook.New(audit.Nop{})
	for _, row := range [][]string{
		{"Alice", "Smith", "123", "a@x.com", "Addr1"},
		{"Bob", "Jones", "456", "b@x.com", "Addr2"},
		{"Carol", "White", "789", "", ""},
	} {
		c, err := contact.FromRow(row)
		if err != nil {
			t.Fatal(err)
		}
		if err := book.Add(c); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	runner := NewRunner(audit.Nop{})
	if err := runner.Export(book, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	fresh := phonebook.New(audit.Nop{})
	result, err := runner.ImportAdd(fresh, path)
	if err != nil {
		t.Fatalf("ImportAdd(exported file) error = %v", err)
	}
	if result.Failed() != 0 {
		t.Fatalf("round-trip failures: %+v", result.Failures)
	}
	if fresh.Len() != book.Len() {
		t.Fatalf("round-trip size = %d, want %d", fresh.Len(), book.Len())
	}
	for i, want := range book.List() {
		if got := fresh.List()[i]; !got.Equal(want) {
			t.Errorf("contact %d = %+v, want %+v", i, got.Fields(), want.Fields())
		}
	}
}

func TestExport_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte("stale content\nmore stale content\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	book := phonebook.New(audit.Nop{})
	if err := NewRunner(audit.Nop{}).Export(book, path); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join(contact.Header(), ",") + "\n"
	if string(data) != want {
		t.Errorf("exported empty book = %q, want header only %q", data, want)
	}
}

func TestExport_UnwritablePath(t *testing.T) {
	book := phonebook.New(audit.Nop{})
	err := NewRunner(audit.Nop{}).Export(book, filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv"))
	if err == nil {
		t.Fatal("Export to unwritable path should return error")
	}
}

func TestExport_WriteFailureAudited(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("forcing a write failure relies on /dev/full")
	}

	logger := audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"))
	book := phonebook.New(audit.Nop{})

	if err := NewRunner(logger).Export(book, "/dev/full"); err == nil {
		t.Fatal("Export to /dev/full should return error")
	}

	lines, err := logger.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("audit line count = %d, want 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "\texport\t") || !strings.Contains(lines[0], "\tfail\t") {
		t.Errorf("entry = %q, want a failing export entry", lines[0])
	}
}

func TestBatchAuditCorrelation(t *testing.T) {
	logger := audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"))
	book := phonebook.New(logger)
	path := writeCSV(t,
		"first_name,last_name,phone",
		"Alice,Smith,123",
		",Bad,999",
	)

	result, err := NewRunner(logger).ImportAdd(book, path)
	if err != nil {
		t.Fatalf("ImportAdd() error = %v", err)
	}

	lines, err := logger.Read()
	if err != nil {
		t.Fatal(err)
	}
	// One per-row add (book), one per-row parse failure, one batch summary.
	if len(lines) != 3 {
		t.Fatalf("audit line count = %d, want 3: %v", len(lines), lines)
	}
	var correlated int
	for _, line := range lines {
		if strings.Contains(line, "id="+result.ID) {
			correlated++
		}
	}
	if correlated != 2 {
		t.Errorf("entries carrying the batch ID = %d, want 2 (row failure + summary)", correlated)
	}
	if !strings.Contains(lines[2], "succeeded=1 failed=1") {
		t.Errorf("summary = %q, want succeeded=1 failed=1", lines[2])
	}
}
