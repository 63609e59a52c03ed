package book

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Field is a self-validating single value. The set of implementations is
// closed: Name, Phone, Email and Birthday.
//
// Construction and Set both validate; a failed Set leaves the previous value
// untouched.
type Field interface {
	fmt.Stringer
	Set(raw string) error
	field()
}

var (
	phonePattern     = regexp.MustCompile(`^\d{1,` + strconv.Itoa(config.MaxPhoneDigits) + `}$`)
	birthdaySplitter = regexp.MustCompile(`[` + regexp.QuoteMeta(config.BirthdayDelimiters) + `]`)
	digitsPattern    = regexp.MustCompile(`^\d+$`)
)

// -----------------------------------------------------------------------------
// Name
// -----------------------------------------------------------------------------

// Name identifies a record. Any non-blank string is accepted.
type Name struct {
	value string
}

// NewName validates raw and wraps it.
func NewName(raw string) (Name, error) {
	var n Name
	if err := n.Set(raw); err != nil {
		return Name{}, err
	}
	return n, nil
}

// Set replaces the name after validation.
func (n *Name) Set(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	n.value = raw
	return nil
}

// Value returns the stored name.
func (n Name) Value() string { return n.value }

func (n Name) String() string { return n.value }

func (Name) field() {}

// -----------------------------------------------------------------------------
// Phone
// -----------------------------------------------------------------------------

// Phone is a string of 1 to config.MaxPhoneDigits ASCII digits.
type Phone struct {
	value string
}

// NewPhone validates raw and wraps it.
func NewPhone(raw string) (Phone, error) {
	var p Phone
	if err := p.Set(raw); err != nil {
		return Phone{}, err
	}
	return p, nil
}

// Set replaces the number after validation.
func (p *Phone) Set(raw string) error {
	if !phonePattern.MatchString(raw) {
		return fmt.Errorf("%w: phone %q must be 1-%d digits", ErrValidation, raw, config.MaxPhoneDigits)
	}
	p.value = raw
	return nil
}

// Value returns the stored digits.
func (p Phone) Value() string { return p.value }

func (p Phone) String() string { return p.value }

// Equal reports whether the stored digits match raw exactly.
func (p Phone) Equal(raw string) bool { return p.value == raw }

func (Phone) field() {}

// -----------------------------------------------------------------------------
// Email
// -----------------------------------------------------------------------------

// Email is any address containing an '@'.
type Email struct {
	value string
}

// NewEmail validates raw and wraps it.
func NewEmail(raw string) (Email, error) {
	var e Email
	if err := e.Set(raw); err != nil {
		return Email{}, err
	}
	return e, nil
}

// Set replaces the address after validation.
func (e *Email) Set(raw string) error {
	if !strings.Contains(raw, "@") {
		return fmt.Errorf("%w: email %q must contain @", ErrValidation, raw)
	}
	e.value = raw
	return nil
}

// Value returns the stored address.
func (e Email) Value() string { return e.value }

func (e Email) String() string { return e.value }

func (Email) field() {}

// -----------------------------------------------------------------------------
// Birthday
// -----------------------------------------------------------------------------

// Birthday is a calendar date strictly before today.
// Input is "day<sep>month<sep>year" where <sep> is one of config.BirthdayDelimiters.
type Birthday struct {
	date  time.Time
	clock Clock
}

// NewBirthday parses raw and checks it against the clock's current date.
func NewBirthday(raw string, clock Clock) (Birthday, error) {
	b := Birthday{clock: clockOrDefault(clock)}
	if err := b.Set(raw); err != nil {
		return Birthday{}, err
	}
	return b, nil
}

// Set replaces the date after validation.
func (b *Birthday) Set(raw string) error {
	date, err := parseBirthday(raw)
	if err != nil {
		return err
	}
	today := dateOf(clockOrDefault(b.clock).Now())
	if !date.Before(today) {
		return fmt.Errorf("%w: birthday %s is not in the past", ErrValidation, date.Format(config.DateFormatDisplay))
	}
	b.date = date
	return nil
}

// Value returns the date at midnight UTC.
func (b Birthday) Value() time.Time { return b.date }

// String renders the date as YYYY-MM-DD.
func (b Birthday) String() string { return b.date.Format(config.DateFormatDisplay) }

func (Birthday) field() {}

// parseBirthday splits raw into day, month and year and rejects dates that
// time.Date would silently normalize (e.g. 31-02-2000).
func parseBirthday(raw string) (time.Time, error) {
	parts := birthdaySplitter.Split(raw, -1)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: birthday %q must be day-month-year", ErrValidation, raw)
	}

	var dmy [3]int
	for i, part := range parts {
		// Atoi alone would accept signs such as "+06".
		if !digitsPattern.MatchString(part) {
			return time.Time{}, fmt.Errorf("%w: birthday %q must be day-month-year", ErrValidation, raw)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: birthday %q must be day-month-year", ErrValidation, raw)
		}
		dmy[i] = n
	}

	day, month, year := dmy[0], time.Month(dmy[1]), dmy[2]
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: birthday %q is not a calendar date", ErrValidation, raw)
	}
	return date, nil
}

// restoreBirthday rebuilds a stored birthday without the "in the past" check,
// which only applies to user input.
func restoreBirthday(value string, clock Clock) (Birthday, error) {
	date, err := time.Parse(config.DateFormatDisplay, value)
	if err != nil {
		return Birthday{}, fmt.Errorf("%w: %s %q", ErrValidation, config.ErrDateParse, value)
	}
	return Birthday{date: date, clock: clockOrDefault(clock)}, nil
}
