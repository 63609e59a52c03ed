package book_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// fixedNow is June 15th, 2025 (non-leap year).
var fixedNow = MockClock{CurrentTime: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}

func TestNewPhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"single digit", "1", false},
		{"typical", "0501234567", false},
		{"twenty digits", strings.Repeat("9", 20), false},
		{"twenty-one digits", strings.Repeat("9", 21), true},
		{"empty", "", true},
		{"letters", "12ab", true},
		{"plus prefix", "+380501234567", true},
		{"spaces", "050 123", true},
		{"non-ascii digits", "١٢٣", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := book.NewPhone(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, book.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, p.Value())
			assert.True(t, p.Equal(tt.raw))
		})
	}
}

func TestPhone_SetKeepsOldValueOnFailure(t *testing.T) {
	p, err := book.NewPhone("123")
	require.NoError(t, err)

	assert.ErrorIs(t, p.Set("abc"), book.ErrValidation)
	assert.Equal(t, "123", p.Value())

	require.NoError(t, p.Set("456"))
	assert.Equal(t, "456", p.String())
	assert.False(t, p.Equal("123"))
}

func TestNewEmail(t *testing.T) {
	for _, raw := range []string{"a@a.com", "@", "user@", "x@y@z"} {
		e, err := book.NewEmail(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, e.String())
	}

	for _, raw := range []string{"", "a.com", "user at host"} {
		_, err := book.NewEmail(raw)
		assert.ErrorIs(t, err, book.ErrValidation, raw)
	}
}

func TestNewName(t *testing.T) {
	n, err := book.NewName("Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", n.Value())

	n, err = book.NewName("O'Brien-2")
	require.NoError(t, err, "any non-blank string is a valid name")
	assert.Equal(t, "O'Brien-2", n.String())

	_, err = book.NewName("")
	assert.ErrorIs(t, err, book.ErrValidation)
	_, err = book.NewName("   ")
	assert.ErrorIs(t, err, book.ErrValidation)
}

func TestNewBirthday(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"dash", "06-12-1979", "1979-12-06", false},
		{"underscore", "06_12_1979", "1979-12-06", false},
		{"slash", "6/12/1979", "1979-12-06", false},
		{"backslash", `06\12\1979`, "1979-12-06", false},
		{"mixed delimiters", "06-12/1979", "1979-12-06", false},
		{"leap day", "29-02-2000", "2000-02-29", false},
		{"yesterday", "14-06-2025", "2025-06-14", false},
		{"today is not in the past", "15-06-2025", "", true},
		{"future", "01-01-2999", "", true},
		{"non-leap Feb 29", "29-02-2001", "", true},
		{"month 13", "01-13-1990", "", true},
		{"day 32", "32-01-1990", "", true},
		{"two parts", "01-1990", "", true},
		{"four parts", "01-01-19-90", "", true},
		{"dots", "01.01.1990", "", true},
		{"letters", "aa-bb-cccc", "", true},
		{"plus sign", "+06-12-1979", "", true},
		{"minus sign", "06--12-1979", "", true},
		{"signed year", "06-12-+1979", "", true},
		{"inner space", "06- 12-1979", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := book.NewBirthday(tt.raw, fixedNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, book.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.String())
		})
	}
}

func TestBirthday_Value(t *testing.T) {
	b, err := book.NewBirthday("06-12-1979", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1979, 12, 6, 0, 0, 0, 0, time.UTC), b.Value())
}

func TestFields_ImplementField(t *testing.T) {
	name, _ := book.NewName("A")
	phone, _ := book.NewPhone("1")
	email, _ := book.NewEmail("a@b")
	bday, _ := book.NewBirthday("01-01-2000", fixedNow)

	fields := []book.Field{&name, &phone, &email, &bday}
	for _, f := range fields {
		assert.NotEmpty(t, f.String())
	}
}
