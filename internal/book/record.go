package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Record is one contact: an immutable name, an ordered set of unique phones,
// and an optional email and birthday.
type Record struct {
	name     Name
	phones   []Phone
	email    *Email
	birthday *Birthday
	clock    Clock
}

// NewRecord creates an empty record. The clock is used to validate birthdays
// and to compute the birthday countdown; nil means the real clock.
func NewRecord(name string, clock Clock) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n, clock: clockOrDefault(clock)}, nil
}

// Name returns the record's identity.
func (r *Record) Name() string { return r.name.Value() }

// Phones returns a copy of the phone numbers in insertion order.
func (r *Record) Phones() []string {
	out := make([]string, len(r.phones))
	for i, p := range r.phones {
		out[i] = p.Value()
	}
	return out
}

// Email returns the address and whether one is set.
func (r *Record) Email() (string, bool) {
	if r.email == nil {
		return "", false
	}
	return r.email.Value(), true
}

// Birthday returns the date and whether one is set.
func (r *Record) Birthday() (time.Time, bool) {
	if r.birthday == nil {
		return time.Time{}, false
	}
	return r.birthday.Value(), true
}

// -----------------------------------------------------------------------------
// Phones
// -----------------------------------------------------------------------------

// AddPhone appends raw unless an equal phone is already present.
func (r *Record) AddPhone(raw string) error {
	p, err := NewPhone(raw)
	if err != nil {
		return err
	}
	if r.phoneIndex(raw) >= 0 {
		return fmt.Errorf("%w: %s already has phone %s", ErrDuplicateValue, r.Name(), raw)
	}
	r.phones = append(r.phones, p)
	return nil
}

// ChangePhone replaces the first phone equal to old with newRaw, keeping its
// position. Replacing a phone with one the record already holds elsewhere is
// rejected so phones stay unique.
func (r *Record) ChangePhone(old, newRaw string) error {
	i := r.phoneIndex(old)
	if i < 0 {
		return fmt.Errorf("%w: %s has no phone %s", ErrNotFound, r.Name(), old)
	}
	updated := r.phones[i]
	if err := updated.Set(newRaw); err != nil {
		return err
	}
	if j := r.phoneIndex(newRaw); j >= 0 && j != i {
		return fmt.Errorf("%w: %s already has phone %s", ErrDuplicateValue, r.Name(), newRaw)
	}
	r.phones[i] = updated
	return nil
}

// RemovePhone deletes the first phone equal to raw.
func (r *Record) RemovePhone(raw string) error {
	i := r.phoneIndex(raw)
	if i < 0 {
		return fmt.Errorf("%w: %s has no phone %s", ErrNotFound, r.Name(), raw)
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return nil
}

func (r *Record) phoneIndex(raw string) int {
	for i, p := range r.phones {
		if p.Equal(raw) {
			return i
		}
	}
	return -1
}

// -----------------------------------------------------------------------------
// Email & Birthday
// -----------------------------------------------------------------------------

// SetEmail replaces the email.
func (r *Record) SetEmail(raw string) error {
	e, err := NewEmail(raw)
	if err != nil {
		return err
	}
	r.email = &e
	return nil
}

// ClearEmail removes the email, if any.
func (r *Record) ClearEmail() { r.email = nil }

// SetBirthday replaces the birthday.
func (r *Record) SetBirthday(raw string) error {
	b, err := NewBirthday(raw, r.clock)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// ClearBirthday removes the birthday, if any.
func (r *Record) ClearBirthday() { r.birthday = nil }

// DaysToBirthday returns the number of days until the next occurrence of the
// birthday, 0 when it is today. The second result is false when no birthday
// is stored.
//
// A Feb 29 birthday falls on Mar 1 in non-leap years.
func (r *Record) DaysToBirthday() (int, bool) {
	if r.birthday == nil {
		return 0, false
	}
	today := dateOf(r.clock.Now())
	next := NextOccurrence(today, r.birthday.Value())
	return int(next.Sub(today).Hours() / 24), true
}

// NextOccurrence returns the first anniversary of birth on or after the date
// of now. Both values are reduced to calendar dates in UTC.
func NextOccurrence(now, birth time.Time) time.Time {
	today := dateOf(now)

	// time.Date normalizes Feb 29 to Mar 1 when the target year is not a leap year.
	candidate := time.Date(today.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(today) {
		candidate = time.Date(today.Year()+1, birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	}
	return candidate
}

// String is the search projection: name|email|phones|birthday, with phones
// joined by "; " and absent values rendered empty.
func (r *Record) String() string {
	email, _ := r.Email()
	birthday := ""
	if r.birthday != nil {
		birthday = r.birthday.String()
	}
	return strings.Join([]string{
		r.Name(),
		email,
		strings.Join(r.Phones(), config.PhoneSeparator),
		birthday,
	}, config.ProjectionSeparator)
}

// tableRow renders the record for the contact table, using config.EmptyCell
// for absent values.
func (r *Record) tableRow() []string {
	row := []string{r.Name(), config.EmptyCell, config.EmptyCell, config.EmptyCell}
	if len(r.phones) > 0 {
		row[1] = strings.Join(r.Phones(), config.PhoneSeparator)
	}
	if r.birthday != nil {
		row[2] = r.birthday.String()
	}
	if email, ok := r.Email(); ok {
		row[3] = email
	}
	return row
}
