package engine_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func clockAt(year int, month time.Month, day int) MockClock {
	return MockClock{CurrentTime: time.Date(year, month, day, 10, 0, 0, 0, time.UTC)}
}

// contact describes one record to seed into a test book.
type contact struct {
	name     string
	birthday string // day-month-year, empty for none
	phones   []string
	email    string
}

func newBook(t *testing.T, clock book.Clock, contacts ...contact) *book.AddressBook {
	t.Helper()
	ab := book.New(clock)
	for _, c := range contacts {
		rec, err := ab.AddRecord(c.name)
		require.NoError(t, err)
		for _, p := range c.phones {
			require.NoError(t, rec.AddPhone(p))
		}
		if c.email != "" {
			require.NoError(t, rec.SetEmail(c.email))
		}
		if c.birthday != "" {
			require.NoError(t, rec.SetBirthday(c.birthday))
		}
	}
	return ab
}

func TestCalendar_BirthdayToday(t *testing.T) {
	clock := clockAt(2025, 1, 1)
	ab := newBook(t, clock, contact{name: "John Doe", birthday: "01-01-2000"})

	gen := &engine.Generator{Clock: clock}
	ics, today, err := gen.Calendar(context.Background(), ab.All())

	require.NoError(t, err)
	assert.Equal(t, 1, today, "Should identify one birthday today")

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: John Doe (25)")
	assert.Contains(t, icsStr, "REFRESH-INTERVAL")
	assert.Contains(t, icsStr, "DTSTAMP:20250101T100000Z")
}

func TestCalendar_GeneratesYearRange(t *testing.T) {
	clock := clockAt(2025, 1, 1)
	ab := newBook(t, clock, contact{name: "Range Test", birthday: "31-12-1990"})

	gen := &engine.Generator{Clock: clock}
	ics, today, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)
	assert.Equal(t, 0, today)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20241231", "Should include previous year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20251231", "Should include current year")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20261231", "Should include next year")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestCalendar_BabyBornLastYear(t *testing.T) {
	clock := clockAt(2025, 1, 1)
	ab := newBook(t, clock, contact{name: "Baby", birthday: "01-05-2024"})

	gen := &engine.Generator{
		Clock: clock,
		FormatSummary: func(name string, age int) string {
			if age == 0 {
				return fmt.Sprintf("Birthday: %s (Birth)", name)
			}
			return fmt.Sprintf("Birthday: %s (%d)", name, age)
		},
	}

	ics, _, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240501")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (Birth)")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (1)")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Baby (2)")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestCalendar_SkipsYearsBeforeBirth(t *testing.T) {
	clock := clockAt(2025, 6, 1)
	ab := newBook(t, clock, contact{name: "Newborn", birthday: "01-03-2025"})

	gen := &engine.Generator{Clock: clock}
	ics, _, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)

	icsStr := string(ics)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20240301", "Should not generate events before birth")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Newborn (birth)")
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestCalendar_LeapYear(t *testing.T) {
	// 2025 is not a leap year, so Feb 29 is celebrated on March 1st.
	clock := clockAt(2025, 3, 1)
	ab := newBook(t, clock, contact{name: "Leap Baby", birthday: "29-02-2000"})

	gen := &engine.Generator{Clock: clock}
	ics, today, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)

	assert.Equal(t, 1, today)
	icsStr := string(ics)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20250301")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240229")
}

func TestCalendar_WithReminders(t *testing.T) {
	clock := clockAt(2025, 6, 1)
	ab := newBook(t, clock, contact{name: "Alarm Test", birthday: "01-01-1990"})

	gen := &engine.Generator{Clock: clock, ReminderTrigger: "-P1D"}
	ics, _, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)

	icsStr := string(ics)
	assert.Contains(t, icsStr, "BEGIN:VALARM")
	assert.Contains(t, icsStr, "TRIGGER:-P1D")
	assert.Contains(t, icsStr, "ACTION:DISPLAY")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VALARM"), "One alarm per event")
}

func TestCalendar_NoBirthdaysReturnsStub(t *testing.T) {
	clock := clockAt(2025, 6, 1)
	ab := newBook(t, clock, contact{name: "No Date", phones: []string{"123"}})

	gen := &engine.Generator{Clock: clock}
	ics, today, err := gen.Calendar(context.Background(), ab.All())

	require.NoError(t, err)
	assert.Equal(t, 0, today)
	assert.Equal(t, config.StubVCalendar, string(ics))
}

func TestCalendar_StableUIDs(t *testing.T) {
	clock := clockAt(2025, 6, 1)
	ab := newBook(t, clock, contact{name: "Stable", birthday: "10-10-1980"})

	gen := &engine.Generator{Clock: clock}
	first, _, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)
	second, _, err := gen.Calendar(context.Background(), ab.All())
	require.NoError(t, err)

	uids := func(ics []byte) []string {
		var out []string
		for _, line := range strings.Split(string(ics), "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				out = append(out, line)
			}
		}
		return out
	}
	require.Len(t, uids(first), 3)
	assert.Equal(t, uids(first), uids(second))
	assert.Contains(t, uids(first)[0], "@"+config.ICalDomain)
}

func TestCalendar_ContextCancellation(t *testing.T) {
	clock := clockAt(2025, 6, 1)
	ab := newBook(t, clock, contact{name: "Cancelled", birthday: "01-01-1990"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &engine.Generator{Clock: clock}
	ics, _, err := gen.Calendar(ctx, ab.All())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ics)
}
