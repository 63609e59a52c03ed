package book

import "errors"

// Failure classes returned by the address book. Callers match them with
// errors.Is; the wrapped message names the offending input.
var (
	// ErrValidation reports malformed name, phone, email or birthday input.
	ErrValidation = errors.New("invalid value")

	// ErrDuplicateKey reports a record name that already exists.
	ErrDuplicateKey = errors.New("already exists")

	// ErrDuplicateValue reports a phone already present on a record.
	ErrDuplicateValue = errors.New("duplicate value")

	// ErrNotFound reports a missing record or phone.
	ErrNotFound = errors.New("not found")
)
