package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// runSession is the interactive loop. The book is loaded from the data file
// first and saved back whenever the loop ends: exit phrase, end of input,
// termination signal, fatal command error or panic.
func (a *app) runSession(ctx context.Context) (err error) {
	b, ab := a.newBot()
	log := slog.With(config.LogKeyComponent, config.CompMain)

	// A file that cannot be read is left untouched: the session never starts.
	if err := b.Load(); err != nil {
		return err
	}
	log.Info(config.MsgSessionStart,
		config.LogKeyFile, a.settings.DataFile,
		config.LogKeyRecords, ab.Len(),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error(config.ErrRecovered, config.LogKeyError, r)
			err = fmt.Errorf("%s: %v", config.ErrRecovered, r)
		}
		if saveErr := b.Save(); saveErr != nil {
			err = errors.Join(err, saveErr)
		} else {
			fmt.Fprintln(a.stdout, config.MsgAllSaved)
		}
		log.Info(config.MsgSessionEnd, config.LogKeyRecords, ab.Len())
	}()

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := readLines(readCtx, a.stdin)
	fmt.Fprint(a.stdout, config.MsgIntro+"\n")

	for {
		fmt.Fprint(a.stdout, config.MsgPrompt)

		select {
		case <-ctx.Done():
			fmt.Fprintln(a.stdout)
			log.Info(config.MsgSignal)
			return nil

		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.stdout)
				return nil
			}

			reply, err := b.Execute(ctx, line)
			if err != nil {
				return err
			}
			if reply.Text != "" {
				fmt.Fprintln(a.stdout, reply.Text)
			}
			if reply.Exit {
				return nil
			}
		}
	}
}

// readLines feeds input lines to the returned channel until EOF or until ctx
// is done. Scanning runs in its own goroutine so that a blocked read never
// delays the reaction to a signal.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
