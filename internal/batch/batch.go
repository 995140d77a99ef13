// Package batch implements CSV-driven bulk add, bulk delete, and export.
// Batch operations are failure-tolerant row by row: a malformed row or a
// row-level domain error is recorded and processing continues.
package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/smileynet/rolodex/internal/audit"
	"github.com/smileynet/rolodex/internal/contact"
	"github.com/smileynet/rolodex/internal/phonebook"
)

// ErrMissingHeader indicates a CSV file with no header row.
var ErrMissingHeader = errors.New("batch: missing header row")

// RowFailure records one failed row of a batch operation.
type RowFailure struct {
	Line   int // 1-based line number in the CSV file.
	Reason string
}

// Result summarizes a batch operation. ID correlates the operation's
// audit entries.
type Result struct {
	ID        string
	Succeeded int
	Failures  []RowFailure
}

// Failed returns the number of failed rows.
func (r Result) Failed() int { return len(r.Failures) }

// Runner executes batch operations against a phonebook, recording
// batch-level audit entries. Per-row successes are audited by the book
// itself; per-row parse failures are audited here.
type Runner struct {
	rec audit.Recorder
}

// NewRunner creates a Runner recording to rec.
func NewRunner(rec audit.Recorder) *Runner {
	return &Runner{rec: rec}
}

// ImportAdd reads the CSV at path (header row, then data rows) and adds
// each row's contact to the book. Row-level failures never abort the
// batch. A file that cannot be opened or has no header fails outright.
func (r *Runner) ImportAdd(book *phonebook.Book, path string) (Result, error) {
	return r.eachRow(book, path, audit.OpBatchAdd, func(book *phonebook.Book, c contact.Contact) error {
		return book.Add(c)
	})
}

// ImportDelete reads the CSV at path and deletes each row's contact from
// the book, keyed by full name. Missing contacts are per-row failures.
func (r *Runner) ImportDelete(book *phonebook.Book, path string) (Result, error) {
	return r.eachRow(book, path, audit.OpBatchDelete, func(book *phonebook.Book, c contact.Contact) error {
		return book.Delete(c.FullName())
	})
}

// eachRow is the shared row-by-row loop for batch add and delete.
func (r *Runner) eachRow(book *phonebook.Book, path string, op audit.Op, apply func(*phonebook.Book, contact.Contact) error) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		_ = r.rec.Append(audit.Entry{Op: op, Target: path, Ok: false, Detail: "cannot open file"})
		return Result{}, fmt.Errorf("batch: opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // FromRow validates column counts.

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			_ = r.rec.Append(audit.Entry{Op: op, Target: path, Ok: false, Detail: "missing header row"})
			return Result{}, fmt.Errorf("%w: %s", ErrMissingHeader, path)
		}
		_ = r.rec.Append(audit.Entry{Op: op, Target: path, Ok: false, Detail: "unreadable header row"})
		return Result{}, fmt.Errorf("batch: reading header of %s: %w", path, err)
	}

	result := Result{ID: uuid.NewString()}
	line := 1
	for {
		line++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			r.rowFailed(op, &result, line, err.Error())
			continue
		}

		c, err := contact.FromRow(row)
		if err != nil {
			r.rowFailed(op, &result, line, err.Error())
			continue
		}

		if err := apply(book, c); err != nil {
			// Domain failures are already audited by the book.
			result.Failures = append(result.Failures, RowFailure{Line: line, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}

	detail := fmt.Sprintf("id=%s succeeded=%d failed=%d", result.ID, result.Succeeded, result.Failed())
	_ = r.rec.Append(audit.Entry{Op: op, Target: path, Ok: true, Detail: detail})
	return result, nil
}

// rowFailed records a parse-level row failure in the result and the audit log.
func (r *Runner) rowFailed(op audit.Op, result *Result, line int, reason string) {
	result.Failures = append(result.Failures, RowFailure{Line: line, Reason: reason})
	detail := fmt.Sprintf("id=%s line=%d %s", result.ID, line, reason)
	_ = r.rec.Append(audit.Entry{Op: op, Target: fmt.Sprintf("line %d", line), Ok: false, Detail: detail})
}

// Export writes the header row followed by one row per contact, in the
// book's current order, overwriting any existing file at path.
func (r *Runner) Export(book *phonebook.Book, path string) error {
	f, err := os.Create(path)
	if err != nil {
		_ = r.rec.Append(audit.Entry{Op: audit.OpExport, Target: path, Ok: false, Detail: "cannot create file"})
		return fmt.Errorf("batch: creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	werr := w.Write(contact.Header())
	for _, c := range book.List() {
		if werr != nil {
			break
		}
		werr = w.Write(c.Row())
	}
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}

	cerr := f.Close()
	if werr != nil {
		_ = r.rec.Append(audit.Entry{Op: audit.OpExport, Target: path, Ok: false, Detail: "write failed"})
		return fmt.Errorf("batch: writing %s: %w", path, werr)
	}
	if cerr != nil {
		_ = r.rec.Append(audit.Entry{Op: audit.OpExport, Target: path, Ok: false, Detail: "close failed"})
		return fmt.Errorf("batch: closing %s: %w", path, cerr)
	}

	detail := fmt.Sprintf("contacts=%d", book.Len())
	_ = r.rec.Append(audit.Entry{Op: audit.OpExport, Target: path, Ok: true, Detail: detail})
	return nil
}
