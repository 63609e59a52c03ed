package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// birthdayInputLayout renders a parsed date back into the day-month-year
// form accepted by book.Record.SetBirthday.
const birthdayInputLayout = "02-01-2006"

// ImportStats summarizes a vCard import.
type ImportStats struct {
	Cards   int // cards decoded
	Created int // new records
	Merged  int // cards merged into an existing record
	Skipped int // fields rejected by validation
}

// ExportVCard writes every record as a vCard 4.0 card with FN, TEL, EMAIL
// and BDAY properties.
func ExportVCard(w io.Writer, records []*book.Record) error {
	enc := vcard.NewEncoder(w)
	for _, r := range records {
		card := make(vcard.Card)
		card.SetValue(vcard.FieldVersion, config.VCardVersion)
		card.SetValue(vcard.FieldFormattedName, r.Name())
		for _, p := range r.Phones() {
			card.Add(vcard.FieldTelephone, &vcard.Field{Value: p})
		}
		if email, ok := r.Email(); ok {
			card.SetValue(vcard.FieldEmail, email)
		}
		if bday, ok := r.Birthday(); ok {
			card.SetValue(vcard.FieldBirthday, bday.Format(config.DateFormatFullBasic))
		}

		if err := enc.Encode(card); err != nil {
			return fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
		}
	}
	return nil
}

// ImportVCard decodes cards from r into ab. A card whose name already exists
// is merged into that record; fields the book rejects are skipped and counted.
// Decoding stops at the first malformed card, keeping what was imported.
func ImportVCard(ctx context.Context, r io.Reader, ab *book.AddressBook) (ImportStats, error) {
	var stats ImportStats
	log := slog.With(config.LogKeyComponent, config.CompEngine)

	decoder := vcard.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			return stats, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
		}
		stats.Cards++

		name := cardName(card)
		if name == "" {
			log.Warn(config.MsgSkippedCard, config.LogKeyValue, card.Value(vcard.FieldUID))
			continue
		}

		rec, err := ab.Get(name)
		if err == nil {
			stats.Merged++
		} else {
			rec, err = ab.AddRecord(name)
			if err != nil {
				log.Warn(config.MsgSkippedCard, config.LogKeyName, name, config.LogKeyError, err)
				continue
			}
			stats.Created++
		}

		stats.Skipped += mergeCard(rec, card, log)
	}

	log.Info(config.MsgImportDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyRecords, stats.Cards),
			slog.Int(config.LogKeyCreated, stats.Created),
			slog.Int(config.LogKeyMerged, stats.Merged),
			slog.Int(config.LogKeySkipped, stats.Skipped),
		),
	)
	return stats, nil
}

// cardName picks FN, falling back to the structured N property. Words are
// joined with config.NameWordJoiner because console commands address a
// record by a single token.
func cardName(card vcard.Card) string {
	name := card.Value(vcard.FieldFormattedName)
	if strings.TrimSpace(name) == "" {
		if n := card.Name(); n != nil {
			name = n.GivenName + " " + n.FamilyName
		}
	}
	return strings.Join(strings.Fields(name), config.NameWordJoiner)
}

// mergeCard copies phones, the first email and the birthday of card into rec.
// It returns the number of rejected fields.
func mergeCard(rec *book.Record, card vcard.Card, log *slog.Logger) int {
	skipped := 0
	reject := func(field, value string, err error) {
		skipped++
		log.Debug(config.MsgSkippedField,
			config.LogKeyName, rec.Name(),
			config.LogKeyKey, field,
			config.LogKeyValue, value,
			config.LogKeyError, err)
	}

	for _, tel := range card.Values(vcard.FieldTelephone) {
		digits := digitsOnly(tel)
		err := rec.AddPhone(digits)
		if errors.Is(err, book.ErrDuplicateValue) {
			continue
		}
		if err != nil {
			reject(vcard.FieldTelephone, tel, err)
		}
	}

	if email := card.Value(vcard.FieldEmail); email != "" {
		if err := rec.SetEmail(email); err != nil {
			reject(vcard.FieldEmail, email, err)
		}
	}

	if bday := card.Value(vcard.FieldBirthday); bday != "" {
		date, err := parseDate(bday)
		if err == nil {
			err = rec.SetBirthday(date.Format(birthdayInputLayout))
		}
		if err != nil {
			reject(vcard.FieldBirthday, bday, err)
		}
	}
	return skipped
}

// digitsOnly strips the punctuation and URI prefix vCard producers put
// around phone numbers ("tel:+1-555-0100").
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// parseDate handles the vCard date formats that carry a year. Year-less
// values (--MM-DD) cannot be stored in the book and are rejected.
func parseDate(value string) (time.Time, error) {
	formats := []string{
		config.DateFormatDisplay,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}
