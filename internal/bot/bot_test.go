package bot_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/bot"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

var fixedNow = MockClock{CurrentTime: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}

func newBot(t *testing.T) (*bot.Bot, *book.AddressBook, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.dat")
	ab := book.New(fixedNow)
	return bot.New(ab, bot.Options{
		DataFile: path,
		Messages: bot.NewMessages("en"),
		Clock:    fixedNow,
	}), ab, path
}

// run executes lines in order and returns the reply to the last one.
func run(t *testing.T, b *bot.Bot, lines ...string) bot.Reply {
	t.Helper()
	var reply bot.Reply
	for _, line := range lines {
		var err error
		reply, err = b.Execute(context.Background(), line)
		require.NoError(t, err, line)
	}
	return reply
}

func TestExecute_Replies(t *testing.T) {
	setup := []string{
		"add record Alice",
		"add phone Alice 111",
		"add record Bob",
	}

	tests := []struct {
		name string
		line string
		want string
	}{
		{"hello", "hello", "Hi! How can I help you?"},
		{"verb is case-insensitive", "HeLLo", "Hi! How can I help you?"},
		{"add record", "add record Carol", "Carol added to address book."},
		{"add phone", "add phone Bob 222", "Phone 222 added to Bob."},
		{"add email", "add email Bob bob@example.com", "Email bob@example.com added to Bob."},
		{"add birthday", "add birthday Bob 06-12-1979", "Birthday 1979-12-06 added to Bob."},
		{"birthday other delimiter", "add birthday Bob 06/12/1979", "Birthday 1979-12-06 added to Bob."},
		{"change phone", "change phone Alice 111 333", "Phone of Alice changed from 111 to 333."},
		{"change email", "change email Bob b@example.org", "Email of Bob changed to b@example.org."},
		{"change birthday", "change birthday Bob 01_01_2000", "Birthday of Bob changed to 2000-01-01."},
		{"del record", "del record Bob", "Bob was deleted."},
		{"del phone", "del phone Alice 111", "Phone 111 was deleted from Alice."},

		{"duplicate record", "add record Alice", "add record: already exists: contact Alice"},
		{"duplicate phone", "add phone Alice 111", "add phone: duplicate value: Alice already has phone 111"},
		{"unknown record", "add phone Zed 1", "add phone: not found: contact Zed"},
		{"unknown phone", "change phone Alice 999 1", "change phone: not found: Alice has no phone 999"},
		{"no email to delete", "del email Bob", "del email: not found: Bob has no email"},
		{"no birthday to delete", "del birthday Bob", "del birthday: not found: Bob has no birthday"},
		{"future birthday", "add birthday Bob 01-01-2999", "add birthday: invalid value: birthday 2999-01-01 is not in the past"},
		{"birthday on today's date", "add birthday Bob 15-06-2000", "Birthday 2000-06-15 added to Bob."},
		{"bad email", "add email Bob nope", `add email: invalid value: email "nope" must contain @`},

		{"missing subject", "add", "add: missing arguments. Usage: add record|phone|email|birthday"},
		{"missing arguments", "add phone Alice", "add phone: missing arguments. Usage: add phone <name> <phone>"},
		{"change needs new phone", "change phone Alice 111", "change phone: missing arguments. Usage: change phone <name> <phone> <new phone>"},
		{"wrong subject", "add foo bar", "add foo bar: wrong command."},
		{"del wrong subject", "del address Alice", "del address Alice: wrong command."},
		{"unknown verb", "frobnicate now", `frobnicate is unknown! Type "help" for the list of commands.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, _ := newBot(t)
			run(t, b, setup...)

			reply := run(t, b, tt.line)
			assert.False(t, reply.Exit)
			assert.Equal(t, tt.want, reply.Text)
		})
	}
}

func TestExecute_InvalidPhoneKeepsState(t *testing.T) {
	b, ab, _ := newBot(t)
	reply := run(t, b, "add record Alice", "add phone Alice 12ab")

	assert.True(t, strings.HasPrefix(reply.Text, "add phone: invalid value"), reply.Text)
	rec, err := ab.Get("Alice")
	require.NoError(t, err)
	assert.Empty(t, rec.Phones())
}

func TestExecute_ExitPhrases(t *testing.T) {
	for _, line := range []string{"good bye", "Good Bye", "  GOOD   bye ", "exit", "CLOSE", "bye", "."} {
		t.Run(line, func(t *testing.T) {
			b, _, _ := newBot(t)
			reply := run(t, b, line)
			assert.True(t, reply.Exit)
			assert.Equal(t, "Good bye!", reply.Text)
		})
	}

	b, _, _ := newBot(t)
	reply := run(t, b, "exit now")
	assert.False(t, reply.Exit, "exit phrases must match the whole line")
}

func TestExecute_EmptyLine(t *testing.T) {
	b, _, _ := newBot(t)
	reply := run(t, b, "   ")
	assert.Equal(t, bot.Reply{}, reply)
}

func TestExecute_Show(t *testing.T) {
	b, _, _ := newBot(t)
	run(t, b,
		"add record Alice",
		"add phone Alice 111",
		"add email Alice alice@example.com",
		"add record Bob",
	)

	all := run(t, b, "show").Text
	assert.Contains(t, all, "Alice")
	assert.Contains(t, all, "Bob")
	assert.Contains(t, all, "alice@example.com")

	filtered := run(t, b, "show example.com").Text
	assert.Contains(t, filtered, "Alice")
	assert.NotContains(t, filtered, "Bob")

	assert.Equal(t, "No contacts found.", run(t, b, "show nobody").Text)
}

func TestExecute_Help(t *testing.T) {
	b, _, _ := newBot(t)
	help := run(t, b, "help").Text
	for _, verb := range []string{"add:", "change:", "del:", "show", "birthdays", "export", "import", "save", "load"} {
		assert.Contains(t, help, verb)
	}
}

func TestExecute_SaveLoad(t *testing.T) {
	b, ab, path := newBot(t)
	run(t, b, "add record Alice", "add phone Alice 111")

	assert.Equal(t, "1 records have been saved to "+path+".", run(t, b, "save").Text)

	run(t, b, "del record Alice")
	assert.Equal(t, 0, ab.Len())

	assert.Equal(t, "Records have been loaded from "+path+", the book now holds 1.", run(t, b, "load").Text)
	rec, err := ab.Get("Alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"111"}, rec.Phones())
}

func TestExecute_LoadMissingFile(t *testing.T) {
	b, ab, _ := newBot(t)
	reply := run(t, b, "load")
	assert.Contains(t, reply.Text, "holds 0")
	assert.Equal(t, 0, ab.Len())
}

func TestExecute_SnapshotFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	b := bot.New(book.New(fixedNow), bot.Options{DataFile: dir, Clock: fixedNow})

	for _, line := range []string{"save", "load"} {
		reply, err := b.Execute(context.Background(), line)
		require.Error(t, err, line)

		var snapErr *bot.SnapshotError
		assert.ErrorAs(t, err, &snapErr)
		assert.Empty(t, reply.Text)
	}

	assert.Error(t, b.Save())
}

func TestExecute_Birthdays(t *testing.T) {
	b, _, _ := newBot(t)
	run(t, b,
		"add record Alice", "add birthday Alice 16-06-1990",
		"add record Bob", "add birthday Bob 15-06-2000",
		"add record Carol", "add birthday Carol 01-01-1980",
	)

	reply := run(t, b, "birthdays 7")
	assert.Equal(t,
		"2025-06-15  Bob turns 25 in 0 day(s)\n2025-06-16  Alice turns 35 in 1 day(s)",
		reply.Text)

	assert.Equal(t, "No birthdays in the next 0 days.", run(t, b, "del birthday Bob", "birthdays 0").Text)

	bad := run(t, b, "birthdays soon").Text
	assert.True(t, strings.HasPrefix(bad, "birthdays: invalid value"), bad)
	assert.True(t, strings.HasPrefix(run(t, b, "birthdays -1").Text, "birthdays: invalid value"))
	assert.Contains(t, run(t, b, "birthdays").Text, "missing arguments")
}

func TestExecute_ExportImport(t *testing.T) {
	dir := t.TempDir()
	vcf := filepath.Join(dir, "contacts.vcf")
	ics := filepath.Join(dir, "birthdays.ics")

	b, _, _ := newBot(t)
	run(t, b,
		"add record Alice", "add phone Alice 111", "add birthday Alice 06-12-1979",
		"add record Bob", "add email Bob bob@example.com",
	)

	assert.Equal(t, "Exported 2 contacts to "+vcf+".", run(t, b, "export vcard "+vcf).Text)
	assert.Equal(t, "Exported 2 contacts to "+ics+".", run(t, b, "export ical "+ics).Text)

	calendar, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.Contains(t, string(calendar), "SUMMARY:Birthday: Alice (46)")

	other, ab, _ := newBot(t)
	reply := run(t, other, "import vcard "+vcf)
	assert.Equal(t, "Imported 2 cards from "+vcf+": 2 created, 0 merged, 0 fields skipped.", reply.Text)
	assert.Equal(t, 2, ab.Len())

	missing := run(t, other, "import vcard "+filepath.Join(dir, "nope.vcf")).Text
	assert.True(t, strings.HasPrefix(missing, "import vcard failed:"), missing)

	unwritable := run(t, other, "export vcard "+filepath.Join(dir, "missing", "x.vcf")).Text
	assert.True(t, strings.HasPrefix(unwritable, "export vcard failed:"), unwritable)
}

func TestExecute_ImportedMultiWordNameStaysOperable(t *testing.T) {
	vcf := filepath.Join(t.TempDir(), "smith.vcf")
	require.NoError(t, os.WriteFile(vcf, []byte("BEGIN:VCARD\nVERSION:3.0\nFN:John Smith\nEND:VCARD\n"), 0o600))

	b, ab, _ := newBot(t)
	run(t, b, "import vcard "+vcf)
	require.Equal(t, 1, ab.Len())

	assert.Equal(t, "Phone 222 added to John_Smith.", run(t, b, "add phone John_Smith 222").Text)
	assert.Equal(t, "John_Smith was deleted.", run(t, b, "del record John_Smith").Text)
	assert.Equal(t, 0, ab.Len())
}

func TestExecute_French(t *testing.T) {
	ab := book.New(fixedNow)
	b := bot.New(ab, bot.Options{
		DataFile: filepath.Join(t.TempDir(), "contacts.dat"),
		Messages: bot.NewMessages("fr"),
		Clock:    fixedNow,
	})

	assert.Equal(t, "Alice ajouté au carnet.", run(t, b, "add record Alice").Text)
	assert.Equal(t, "Au revoir !", run(t, b, "bye").Text)
}
