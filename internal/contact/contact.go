// Package contact defines the Contact value type and its CSV row codec.
package contact

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrValidation = errors.New("contact: invalid field")
	ErrParse      = errors.New("contact: malformed row")
)

// Fields holds the mutable attributes of a contact, used for updates
// and revision history. An empty field in an update means "keep".
type Fields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// Revision records one update to a contact: the values before and after.
type Revision struct {
	Time time.Time `json:"time"`
	Old  Fields    `json:"old"`
	New  Fields    `json:"new"`
}

// Contact is a single person's record. The full name, compared
// case-insensitively, is the lookup key within a phonebook.
type Contact struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	History   []Revision `json:"history,omitempty"`
}

// New creates a Contact with the given attributes. The first name is
// required; everything else is preserved as entered. Phone and email
// formats are not enforced here; interactive input validation lives
// with the caller (see ValidPhone, ValidEmail).
func New(first, last, phone, email, address string) (Contact, error) {
	if strings.TrimSpace(first) == "" {
		return Contact{}, fmt.Errorf("%w: first name cannot be empty", ErrValidation)
	}

	now := time.Now().UTC().Truncate(time.Second)
	return Contact{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
		Phone:     phone,
		Email:     email,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullName returns "First Last", or just the first name when the last
// name is empty.
func (c Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Key returns the case-folded full name used for uniqueness and lookup.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key returns this contact's lookup key.
func (c Contact) Key() string {
	return Key(c.FullName())
}

// Fields returns the contact's current mutable attributes.
func (c Contact) Fields() Fields {
	return Fields{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
	}
}

// Apply overwrites the contact's attributes with the non-empty fields of f,
// bumps UpdatedAt, and appends a revision recording the change. A name
// field that is blank after trimming counts as unset, so an update can
// never leave the contact with an empty first name.
func (c *Contact) Apply(f Fields) {
	old := c.Fields()

	if strings.TrimSpace(f.FirstName) != "" {
		c.FirstName = strings.TrimSpace(f.FirstName)
	}
	if strings.TrimSpace(f.LastName) != "" {
		c.LastName = strings.TrimSpace(f.LastName)
	}
	if f.Phone != "" {
		c.Phone = f.Phone
	}
	if f.Email != "" {
		c.Email = f.Email
	}
	if f.Address != "" {
		c.Address = f.Address
	}

	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	c.History = append(c.History, Revision{
		Time: c.UpdatedAt,
		Old:  old,
		New:  c.Fields(),
	})
}

// Equal reports whether two contacts have the same core attributes.
// Timestamps and history are bookkeeping, not identity.
func (c Contact) Equal(other Contact) bool {
	return c.Fields() == other.Fields()
}

// Header returns the canonical CSV column header, matching Row order.
func Header() []string {
	return []string{"first_name", "last_name", "phone", "email", "address"}
}

// Row returns the contact's fields in canonical CSV column order.
func (c Contact) Row() []string {
	return []string{c.FirstName, c.LastName, c.Phone, c.Email, c.Address}
}

// FromRow parses one CSV data row into a Contact. Email and address are
// optional trailing columns; rows with fewer than 3 or more than 5
// columns, or an empty first-name column, fail with ErrParse.
func FromRow(row []string) (Contact, error) {
	if len(row) < 3 || len(row) > 5 {
		return Contact{}, fmt.Errorf("%w: want 3-5 columns, got %d", ErrParse, len(row))
	}
	if strings.TrimSpace(row[0]) == "" {
		return Contact{}, fmt.Errorf("%w: first name column is empty", ErrParse)
	}

	email, address := "", ""
	if len(row) > 3 {
		email = row[3]
	}
	if len(row) > 4 {
		address = row[4]
	}

	c, err := New(row[0], row[1], row[2], email, address)
	if err != nil {
		return Contact{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return c, nil
}

var (
	phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	emailPattern = regexp.MustCompile(`^.+@.+\..+$`)
)

// ValidPhone reports whether phone matches the (###) ###-#### format.
// Used by interactive input prompts; stored contacts keep whatever the
// user or CSV provided.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidEmail reports whether email looks like user@domain.tld.
// An empty email is valid; the field is optional.
func ValidEmail(email string) bool {
	return email == "" || emailPattern.MatchString(email)
}
