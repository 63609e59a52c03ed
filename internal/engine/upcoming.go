package engine

import (
	"sort"
	"time"

	"github.com/tartampluch/go-addressbook/internal/book"
)

// BirthdayEntry is a lightweight view of a contact's next birthday, used by
// the "birthdays" console command.
type BirthdayEntry struct {
	Name        string
	DateOfBirth time.Time

	// NextOccurrence is the next anniversary on or after today.
	NextOccurrence time.Time

	// DaysLeft is 0 when the birthday is today.
	DaysLeft int

	// AgeNext is the age the person turns at NextOccurrence.
	AgeNext int
}

// Upcoming lists the records whose next birthday falls within the next days
// days (today included), sorted by date and then by name.
func Upcoming(records []*book.Record, now time.Time, days int) []BirthdayEntry {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var entries []BirthdayEntry
	for _, r := range records {
		birth, ok := r.Birthday()
		if !ok {
			continue
		}

		next := book.NextOccurrence(now, birth)
		left := int(next.Sub(today).Hours() / 24)
		if left > days {
			continue
		}

		entries = append(entries, BirthdayEntry{
			Name:           r.Name(),
			DateOfBirth:    birth,
			NextOccurrence: next,
			DaysLeft:       left,
			AgeNext:        next.Year() - birth.Year(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.NextOccurrence.Equal(b.NextOccurrence) {
			return a.Name < b.Name
		}
		return a.NextOccurrence.Before(b.NextOccurrence)
	})
	return entries
}
