// Package bot turns console input lines into address book operations and
// their localized replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

var (
	// ErrArity reports a command given fewer arguments than it needs.
	ErrArity = errors.New("missing arguments")

	// ErrUnknownCommand reports a verb the bot does not know.
	ErrUnknownCommand = errors.New("unknown command")

	// errUnknownSubject reports a known verb with an unknown subject
	// ("add foo").
	errUnknownSubject = errors.New("unknown subject")
)

// SnapshotError wraps a failure to read or write the data file. It is the
// only error Execute returns: the session cannot continue safely after it.
type SnapshotError struct {
	Err error
}

func (e *SnapshotError) Error() string { return e.Err.Error() }

func (e *SnapshotError) Unwrap() error { return e.Err }

// Reply is the outcome of one input line.
type Reply struct {
	Text string
	Exit bool // the user asked to end the session
}

// Options configures a Bot.
type Options struct {
	// DataFile is the snapshot used by "save" and "load".
	DataFile string

	// Messages translates replies; English when nil.
	Messages *Messages

	// Clock drives the birthday commands; the real clock when nil.
	Clock book.Clock

	// ReminderTrigger is copied into exported calendars (e.g. "-P1D").
	ReminderTrigger string
}

// Bot dispatches console commands against one address book.
type Bot struct {
	book     *book.AddressBook
	msg      *Messages
	clock    book.Clock
	dataFile string
	calendar *engine.Generator
	commands map[string]command
}

// New creates a bot operating on ab.
func New(ab *book.AddressBook, opts Options) *Bot {
	b := &Bot{
		book:     ab,
		msg:      opts.Messages,
		clock:    opts.Clock,
		dataFile: opts.DataFile,
	}
	if b.msg == nil {
		b.msg = NewMessages(config.DefaultLanguage)
	}
	if b.clock == nil {
		b.clock = book.RealClock{}
	}
	if b.dataFile == "" {
		b.dataFile = config.DefaultDataFile
	}
	b.calendar = &engine.Generator{
		Clock:           b.clock,
		FormatSummary:   b.msg.SummaryFormatter(),
		ReminderTrigger: opts.ReminderTrigger,
	}
	b.commands = b.commandTable()
	return b
}

// Messages returns the translator used for replies.
func (b *Bot) Messages() *Messages { return b.msg }

// Execute runs one input line. Every recoverable failure is turned into a
// one-line reply naming the command; a non-nil error is always a
// *SnapshotError.
func (b *Bot) Execute(ctx context.Context, line string) (Reply, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Reply{}, nil
	}

	if isExitPhrase(fields) {
		return Reply{Text: b.msg.T(config.TKeyGoodbye, nil), Exit: true}, nil
	}

	name, cmd, args, err := b.resolve(fields)
	if err == nil && len(args) < cmd.arity {
		err = fmt.Errorf("%w: %s", ErrArity, cmd.usage)
	}
	if err == nil {
		var text string
		text, err = cmd.run(ctx, args)
		if err == nil {
			slog.Info(config.MsgCommand,
				config.LogKeyComponent, config.CompBot,
				config.LogKeyCommand, name,
			)
			return Reply{Text: text}, nil
		}
	}

	slog.Warn(config.MsgCommandFailed,
		config.LogKeyComponent, config.CompBot,
		config.LogKeyCommand, name,
		config.LogKeyError, err,
	)

	var snapErr *SnapshotError
	if errors.As(err, &snapErr) {
		return Reply{}, err
	}
	return Reply{Text: b.describe(name, cmd.usage, err)}, nil
}

// resolve finds the command for the first one or two words of the line.
// The returned name is used in replies and logs even when err is set.
func (b *Bot) resolve(fields []string) (string, command, []string, error) {
	verb := strings.ToLower(fields[0])

	if subs, ok := subjects[verb]; ok {
		if len(fields) < 2 {
			usage := verb + " " + strings.Join(subs, "|")
			return verb, command{usage: usage}, nil, fmt.Errorf("%w: %s", ErrArity, usage)
		}
		name := verb + " " + strings.ToLower(fields[1])
		cmd, ok := b.commands[name]
		if !ok {
			return strings.Join(fields, " "), command{}, nil, errUnknownSubject
		}
		return name, cmd, fields[2:], nil
	}

	cmd, ok := b.commands[verb]
	if !ok {
		return fields[0], command{}, nil, ErrUnknownCommand
	}
	return verb, cmd, fields[1:], nil
}

// describe converts err into the localized one-line reply for command name.
func (b *Bot) describe(name, usage string, err error) string {
	data := map[string]any{"Command": name, "Usage": usage, "Detail": err.Error()}

	switch {
	case errors.Is(err, ErrArity):
		return b.msg.T(config.TKeyErrArity, data)
	case errors.Is(err, ErrUnknownCommand):
		return b.msg.T(config.TKeyErrUnknown, data)
	case errors.Is(err, errUnknownSubject):
		return b.msg.T(config.TKeyErrSubject, data)
	case errors.Is(err, book.ErrValidation):
		return b.msg.T(config.TKeyErrValidation, data)
	case errors.Is(err, book.ErrDuplicateKey), errors.Is(err, book.ErrDuplicateValue):
		return b.msg.T(config.TKeyErrDuplicate, data)
	case errors.Is(err, book.ErrNotFound):
		return b.msg.T(config.TKeyErrNotFound, data)
	default:
		return b.msg.T(config.TKeyErrFailed, data)
	}
}

func isExitPhrase(fields []string) bool {
	return slices.Contains(config.ExitPhrases, strings.ToLower(strings.Join(fields, " ")))
}
