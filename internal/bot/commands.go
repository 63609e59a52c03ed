package bot

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

// command is one dispatchable operation. arity counts the arguments after the
// verb (and subject, for verbs that take one).
type command struct {
	usage string
	arity int
	run   func(ctx context.Context, args []string) (string, error)
}

// subjects lists the verbs whose second word selects the operation.
var subjects = map[string][]string{
	"add":    {"record", "phone", "email", "birthday"},
	"change": {"phone", "email", "birthday"},
	"del":    {"record", "phone", "email", "birthday"},
	"export": {"ical", "vcard"},
	"import": {"vcard"},
}

func (b *Bot) commandTable() map[string]command {
	return map[string]command{
		"hello": {usage: "hello", run: b.hello},
		"help":  {usage: "help", run: b.help},
		"show":  {usage: "show [text]", run: b.show},
		"save":  {usage: "save", run: b.save},
		"load":  {usage: "load", run: b.load},

		"birthdays": {usage: "birthdays <days>", arity: 1, run: b.birthdays},

		"add record":   {usage: "add record <name>", arity: 1, run: b.addRecord},
		"add phone":    {usage: "add phone <name> <phone>", arity: 2, run: b.addPhone},
		"add email":    {usage: "add email <name> <email>", arity: 2, run: b.setEmail(config.TKeyEmailAdded)},
		"add birthday": {usage: "add birthday <name> <dd-mm-yyyy>", arity: 2, run: b.setBirthday(config.TKeyBirthdayAdded)},

		"change phone":    {usage: "change phone <name> <phone> <new phone>", arity: 3, run: b.changePhone},
		"change email":    {usage: "change email <name> <email>", arity: 2, run: b.setEmail(config.TKeyEmailChanged)},
		"change birthday": {usage: "change birthday <name> <dd-mm-yyyy>", arity: 2, run: b.setBirthday(config.TKeyBirthdayChanged)},

		"del record":   {usage: "del record <name>", arity: 1, run: b.deleteRecord},
		"del phone":    {usage: "del phone <name> <phone>", arity: 2, run: b.deletePhone},
		"del email":    {usage: "del email <name>", arity: 1, run: b.deleteEmail},
		"del birthday": {usage: "del birthday <name>", arity: 1, run: b.deleteBirthday},

		"export ical":  {usage: "export ical <path>", arity: 1, run: b.exportICal},
		"export vcard": {usage: "export vcard <path>", arity: 1, run: b.exportVCard},
		"import vcard": {usage: "import vcard <path>", arity: 1, run: b.importVCard},
	}
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

func (b *Bot) hello(context.Context, []string) (string, error) {
	return b.msg.T(config.TKeyHello, nil), nil
}

func (b *Bot) help(context.Context, []string) (string, error) {
	return b.msg.T(config.TKeyHelp, nil), nil
}

func (b *Bot) show(_ context.Context, args []string) (string, error) {
	search := strings.Join(args, " ")
	if len(b.book.Search(search)) == 0 {
		return b.msg.T(config.TKeyNoResults, nil), nil
	}
	return strings.TrimRight(b.book.RenderTable(search), "\n"), nil
}

func (b *Bot) save(context.Context, []string) (string, error) {
	if err := b.book.Save(b.dataFile); err != nil {
		return "", &SnapshotError{Err: err}
	}
	return b.msg.T(config.TKeySaved, map[string]any{"Path": b.dataFile, "Count": b.book.Len()}), nil
}

func (b *Bot) load(context.Context, []string) (string, error) {
	if err := b.book.Load(b.dataFile); err != nil {
		return "", &SnapshotError{Err: err}
	}
	return b.msg.T(config.TKeyLoaded, map[string]any{"Path": b.dataFile, "Count": b.book.Len()}), nil
}

// Save writes the book to the data file. It is used for the implicit save at
// the end of a session.
func (b *Bot) Save() error {
	_, err := b.save(context.Background(), nil)
	return err
}

// Load merges the data file into the book.
func (b *Bot) Load() error {
	_, err := b.load(context.Background(), nil)
	return err
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

func (b *Bot) addRecord(_ context.Context, args []string) (string, error) {
	if _, err := b.book.AddRecord(args[0]); err != nil {
		return "", err
	}
	return b.msg.T(config.TKeyRecordAdded, map[string]any{"Name": args[0]}), nil
}

func (b *Bot) deleteRecord(_ context.Context, args []string) (string, error) {
	if err := b.book.DeleteRecord(args[0]); err != nil {
		return "", err
	}
	return b.msg.T(config.TKeyRecordDeleted, map[string]any{"Name": args[0]}), nil
}

func (b *Bot) addPhone(_ context.Context, args []string) (string, error) {
	rec, err := b.book.Get(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.AddPhone(args[1]); err != nil {
		return "", err
	}
	return b.msg.T(config.TKeyPhoneAdded, map[string]any{"Name": args[0], "Phone": args[1]}), nil
}

func (b *Bot) changePhone(_ context.Context, args []string) (string, error) {
	rec, err := b.book.Get(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.ChangePhone(args[1], args[2]); err != nil {
		return "", err
	}
	return b.msg.T(config.TKeyPhoneChanged, map[string]any{"Name": args[0], "Old": args[1], "New": args[2]}), nil
}

func (b *Bot) deletePhone(_ context.Context, args []string) (string, error) {
	rec, err := b.book.Get(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.RemovePhone(args[1]); err != nil {
		return "", err
	}
	return b.msg.T(config.TKeyPhoneDeleted, map[string]any{"Name": args[0], "Phone": args[1]}), nil
}

// setEmail serves both "add email" and "change email"; only the reply differs.
func (b *Bot) setEmail(key string) func(context.Context, []string) (string, error) {
	return func(_ context.Context, args []string) (string, error) {
		rec, err := b.book.Get(args[0])
		if err != nil {
			return "", err
		}
		if err := rec.SetEmail(args[1]); err != nil {
			return "", err
		}
		return b.msg.T(key, map[string]any{"Name": args[0], "Email": args[1]}), nil
	}
}

func (b *Bot) deleteEmail(_ context.Context, args []string) (string, error) {
	rec, err := b.book.Get(args[0])
	if err != nil {
		return "", err
	}
	if _, ok := rec.Email(); !ok {
		return "", fmt.Errorf("%w: %s has no email", book.ErrNotFound, args[0])
	}
	rec.ClearEmail()
	return b.msg.T(config.TKeyEmailDeleted, map[string]any{"Name": args[0]}), nil
}

func (b *Bot) setBirthday(key string) func(context.Context, []string) (string, error) {
	return func(_ context.Context, args []string) (string, error) {
		rec, err := b.book.Get(args[0])
		if err != nil {
			return "", err
		}
		if err := rec.SetBirthday(args[1]); err != nil {
			return "", err
		}
		date, _ := rec.Birthday()
		return b.msg.T(key, map[string]any{
			"Name":     args[0],
			"Birthday": date.Format(config.DateFormatDisplay),
		}), nil
	}
}

func (b *Bot) deleteBirthday(_ context.Context, args []string) (string, error) {
	rec, err := b.book.Get(args[0])
	if err != nil {
		return "", err
	}
	if _, ok := rec.Birthday(); !ok {
		return "", fmt.Errorf("%w: %s has no birthday", book.ErrNotFound, args[0])
	}
	rec.ClearBirthday()
	return b.msg.T(config.TKeyBirthdayDeleted, map[string]any{"Name": args[0]}), nil
}

// -----------------------------------------------------------------------------
// Birthdays & Exchange Formats
// -----------------------------------------------------------------------------

func (b *Bot) birthdays(_ context.Context, args []string) (string, error) {
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		return "", fmt.Errorf("%w: days %q must be a non-negative integer", book.ErrValidation, args[0])
	}

	entries := engine.Upcoming(b.book.All(), b.clock.Now(), days)
	if len(entries) == 0 {
		return b.msg.T(config.TKeyBirthdayNone, map[string]any{"Days": days}), nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, b.msg.T(config.TKeyBirthdayLine, map[string]any{
			"Date": e.NextOccurrence.Format(config.DateFormatDisplay),
			"Name": e.Name,
			"Age":  e.AgeNext,
			"Days": e.DaysLeft,
		}))
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) exportICal(ctx context.Context, args []string) (string, error) {
	data, _, err := b.calendar.Calendar(ctx, b.book.All())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(args[0], data, config.FilePermUserRW); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrOutputOpen, err)
	}
	return b.exported(args[0]), nil
}

func (b *Bot) exportVCard(_ context.Context, args []string) (string, error) {
	f, err := os.OpenFile(args[0], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermUserRW)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrOutputOpen, err)
	}
	if err := engine.ExportVCard(f, b.book.All()); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrOutputOpen, err)
	}
	return b.exported(args[0]), nil
}

func (b *Bot) exported(path string) string {
	return b.msg.T(config.TKeyExported, map[string]any{"Count": b.book.Len(), "Path": path})
}

func (b *Bot) importVCard(ctx context.Context, args []string) (string, error) {
	rc, err := engine.Source{LocalPath: args[0]}.Open(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	stats, err := engine.ImportVCard(ctx, rc, b.book)
	if err != nil {
		return "", err
	}
	return b.msg.T(config.TKeyImported, map[string]any{
		"Path":    args[0],
		"Cards":   stats.Cards,
		"Created": stats.Created,
		"Merged":  stats.Merged,
		"Skipped": stats.Skipped,
	}), nil
}
