// Package phonebook maintains the ordered contact collection, enforces the
// name uniqueness invariant, and records every operation to an audit log.
package phonebook

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/smileynet/rolodex/internal/audit"
	"github.com/smileynet/rolodex/internal/contact"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrDuplicateName = errors.New("phonebook: duplicate name")
	ErrNotFound      = errors.New("phonebook: contact not found")
	ErrInvalidQuery  = errors.New("phonebook: invalid query")
)

// Searchable fields accepted by Search.
const (
	FieldAny     = "any"
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldAddress = "address"
)

// Sort modes accepted by Sort.
const (
	SortAlphabetical = "alphabetical"
	SortGroup        = "group"
)

// Book is an ordered collection of contacts. Insertion order is preserved
// for listing; Sort reorders it explicitly. Not safe for concurrent use:
// the application is single-user and single-threaded by design.
type Book struct {
	contacts      []contact.Contact
	rec           audit.Recorder
	caseSensitive bool
}

// Option configures a Book.
type Option func(*Book)

// WithCaseSensitive makes Search match case-sensitively.
// The default is case-insensitive substring matching.
func WithCaseSensitive(v bool) Option {
	return func(b *Book) { b.caseSensitive = v }
}

// New creates an empty Book that records operations to rec.
func New(rec audit.Recorder, opts ...Option) *Book {
	b := &Book{rec: rec}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the book's contents with the given contacts, preserving
// their order. Used when restoring a persisted book; not audited.
// Fails with ErrDuplicateName if two contacts share a key.
func (b *Book) Load(contacts []contact.Contact) error {
	seen := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		if _, dup := seen[c.Key()]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, c.FullName())
		}
		seen[c.Key()] = struct{}{}
	}
	b.contacts = append([]contact.Contact(nil), contacts...)
	return nil
}

// Len returns the number of contacts.
func (b *Book) Len() int { return len(b.contacts) }

// List returns a copy of the contacts in their current order.
func (b *Book) List() []contact.Contact {
	return append([]contact.Contact(nil), b.contacts...)
}

// Get returns the contact with the given full name, if present.
func (b *Book) Get(name string) (contact.Contact, bool) {
	if i := b.index(name); i >= 0 {
		return b.contacts[i], true
	}
	return contact.Contact{}, false
}

// Add appends c to the book. Fails with ErrDuplicateName if a contact
// with the same name already exists; the collection is unchanged on any
// failure, including an audit write failure.
func (b *Book) Add(c contact.Contact) error {
	if b.index(c.FullName()) >= 0 {
		b.recordFail(audit.OpAdd, c.FullName(), "duplicate name")
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.FullName())
	}
	if err := b.record(audit.OpAdd, c.FullName(), ""); err != nil {
		return err
	}
	b.contacts = append(b.contacts, c)
	return nil
}

// Update overwrites the named contact's fields with the non-empty fields
// of f. Fails with ErrNotFound if absent. Renaming onto an existing
// contact fails with ErrDuplicateName.
func (b *Book) Update(name string, f contact.Fields) error {
	i := b.index(name)
	if i < 0 {
		b.recordFail(audit.OpUpdate, name, "not found")
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	updated := b.contacts[i]
	updated.Apply(f)
	if updated.Key() != b.contacts[i].Key() && b.index(updated.FullName()) >= 0 {
		b.recordFail(audit.OpUpdate, name, "rename collides with existing contact")
		return fmt.Errorf("%w: %q", ErrDuplicateName, updated.FullName())
	}

	if err := b.record(audit.OpUpdate, name, ""); err != nil {
		return err
	}
	b.contacts[i] = updated
	return nil
}

// Delete removes the named contact. Fails with ErrNotFound if absent.
func (b *Book) Delete(name string) error {
	i := b.index(name)
	if i < 0 {
		b.recordFail(audit.OpDelete, name, "not found")
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err := b.record(audit.OpDelete, name, ""); err != nil {
		return err
	}
	b.contacts = append(b.contacts[:i], b.contacts[i+1:]...)
	return nil
}

// Search returns contacts whose field contains query as a substring.
// Matching is case-insensitive unless the book was built with
// WithCaseSensitive(true). Field is one of name, phone, email, address,
// or any; anything else fails with ErrInvalidQuery. The collection is
// never mutated.
func (b *Book) Search(field, query string) ([]contact.Contact, error) {
	switch field {
	case FieldAny, FieldName, FieldPhone, FieldEmail, FieldAddress:
	default:
		b.recordFail(audit.OpSearch, query, fmt.Sprintf("unknown field %q", field))
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, field)
	}

	var matches []contact.Contact
	for _, c := range b.contacts {
		if b.matches(c, field, query) {
			matches = append(matches, c)
		}
	}

	detail := fmt.Sprintf("field=%s matches=%d", field, len(matches))
	if err := b.record(audit.OpSearch, query, detail); err != nil {
		return nil, err
	}
	return matches, nil
}

// Sort reorders the book: alphabetical sorts by last name then first
// name; group stably groups contacts by last-name initial, keeping the
// existing order within each group. Unknown modes fail with
// ErrInvalidQuery.
func (b *Book) Sort(mode string) error {
	var less func(x, y contact.Contact) bool
	switch mode {
	case SortAlphabetical:
		less = func(x, y contact.Contact) bool {
			lx, ly := strings.ToLower(x.LastName), strings.ToLower(y.LastName)
			if lx != ly {
				return lx < ly
			}
			return strings.ToLower(x.FirstName) < strings.ToLower(y.FirstName)
		}
	case SortGroup:
		less = func(x, y contact.Contact) bool {
			return initial(x.LastName) < initial(y.LastName)
		}
	default:
		b.recordFail(audit.OpSort, mode, "unknown sort mode")
		return fmt.Errorf("%w: unknown sort mode %q", ErrInvalidQuery, mode)
	}

	if err := b.record(audit.OpSort, mode, ""); err != nil {
		return err
	}
	sort.SliceStable(b.contacts, func(i, j int) bool {
		return less(b.contacts[i], b.contacts[j])
	})
	return nil
}

// index returns the position of the contact with the given full name,
// or -1 if absent. Lookup is case-insensitive via contact.Key.
func (b *Book) index(name string) int {
	key := contact.Key(name)
	for i, c := range b.contacts {
		if c.Key() == key {
			return i
		}
	}
	return -1
}

func (b *Book) matches(c contact.Contact, field, query string) bool {
	contains := func(haystack string) bool {
		if b.caseSensitive {
			return strings.Contains(haystack, query)
		}
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(query))
	}

	switch field {
	case FieldName:
		return contains(c.FirstName) || contains(c.LastName) || contains(c.FullName())
	case FieldPhone:
		return contains(c.Phone)
	case FieldEmail:
		return contains(c.Email)
	case FieldAddress:
		return contains(c.Address)
	default: // FieldAny
		return contains(c.FullName()) || contains(c.Phone) ||
			contains(c.Email) || contains(c.Address)
	}
}

// initial returns the lowercased first byte of s, or 0 for empty strings
// so contacts without a last name group first.
func initial(s string) byte {
	if s == "" {
		return 0
	}
	return strings.ToLower(s)[0]
}

// record audits a successful operation. A write failure aborts the
// calling operation so the collection and log never diverge.
func (b *Book) record(op audit.Op, target, detail string) error {
	err := b.rec.Append(audit.Entry{Op: op, Target: target, Ok: true, Detail: detail})
	if err != nil {
		return fmt.Errorf("phonebook: recording audit entry: %w", err)
	}
	return nil
}

// recordFail audits a failed operation. Best-effort: the domain error is
// what the caller needs to see.
func (b *Book) recordFail(op audit.Op, target, reason string) {
	_ = b.rec.Append(audit.Entry{Op: op, Target: target, Ok: false, Detail: reason})
}
