package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/bot"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/engine"
	"github.com/tartampluch/go-addressbook/internal/server"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

// loadBook reads the data file into a new book.
func (a *app) loadBook() (*book.AddressBook, error) {
	ab := book.New(a.clock)
	if err := ab.Load(a.settings.DataFile); err != nil {
		return nil, err
	}
	return ab, nil
}

// generator returns the calendar generator with localized summaries.
func (a *app) generator() *engine.Generator {
	return &engine.Generator{
		Clock:           a.clock,
		FormatSummary:   bot.NewMessages(a.settings.Language).SummaryFormatter(),
		ReminderTrigger: a.settings.ReminderTrigger,
	}
}

// output opens path for writing, or returns stdout when path is empty.
func (a *app) output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{a.stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermUserRW)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrOutputOpen, err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// -----------------------------------------------------------------------------
// export
// -----------------------------------------------------------------------------

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: config.CmdShortExport,
	}
	cmd.PersistentFlags().StringVar(&out, config.FlagOut, "", config.FlagDescOut)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ical",
			Short: config.CmdShortICal,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.exportICal(cmd.Context(), out)
			},
		},
		&cobra.Command{
			Use:   "vcard",
			Short: config.CmdShortVCard,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.exportVCard(out)
			},
		},
	)
	return cmd
}

func (a *app) exportICal(ctx context.Context, out string) error {
	ab, err := a.loadBook()
	if err != nil {
		return err
	}

	data, _, err := a.generator().Calendar(ctx, ab.All())
	if err != nil {
		return err
	}

	w, err := a.output(out)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("%s: %w", config.ErrOutputOpen, err)
	}
	a.logExport("ical", ab.Len())
	return w.Close()
}

func (a *app) exportVCard(out string) error {
	ab, err := a.loadBook()
	if err != nil {
		return err
	}

	w, err := a.output(out)
	if err != nil {
		return err
	}
	if err := engine.ExportVCard(w, ab.All()); err != nil {
		_ = w.Close()
		return err
	}
	a.logExport("vcard", ab.Len())
	return w.Close()
}

func (a *app) logExport(format string, records int) {
	slog.Info(config.MsgExportDone,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFormat, format,
		config.LogKeyRecords, records,
	)
}

// -----------------------------------------------------------------------------
// import
// -----------------------------------------------------------------------------

func newImportCmd(a *app) *cobra.Command {
	var url, user string

	vcardCmd := &cobra.Command{
		Use:   "vcard [path]",
		Short: config.CmdShortImpVCF,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := engine.Source{
				WebURL:  firstNonEmpty(url, a.settings.CardDAVURL),
				WebUser: firstNonEmpty(user, a.settings.CardDAVUser),
			}
			if len(args) == 1 {
				// An explicit file wins over a configured URL.
				src.LocalPath, src.WebURL = args[0], ""
			}
			return a.importVCard(cmd.Context(), src, nil)
		},
	}
	vcardCmd.Flags().StringVar(&url, config.FlagURL, "", config.FlagDescURL)
	vcardCmd.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)

	cmd := &cobra.Command{
		Use:   "import",
		Short: config.CmdShortImport,
	}
	cmd.AddCommand(vcardCmd)
	return cmd
}

// importVCard merges the source into the data file. The password of a
// remote source comes from the system keyring.
func (a *app) importVCard(ctx context.Context, src engine.Source, fetcher engine.VCardFetcher) error {
	if src.WebURL != "" && src.WebUser != "" {
		pass, err := keyring.Get(config.KeyringService, src.WebUser)
		if err != nil {
			slog.Debug(config.MsgPassFail,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyUser, src.WebUser,
				config.LogKeyError, err,
			)
		}
		src.WebPass = pass
	}

	ab, err := a.loadBook()
	if err != nil {
		return err
	}

	rc, err := src.Open(ctx, fetcher)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	stats, err := engine.ImportVCard(ctx, rc, ab)
	if err != nil {
		return err
	}
	if err := ab.Save(a.settings.DataFile); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, config.MsgImportSummary, stats.Cards, stats.Created, stats.Merged, stats.Skipped)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// -----------------------------------------------------------------------------
// serve
// -----------------------------------------------------------------------------

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: config.CmdShortServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			srv := server.NewFeedServer(a.settings.ServerPort)
			if err := a.publish(ctx, srv); err != nil {
				return err
			}

			interval := time.Duration(a.settings.RefreshMinutes) * time.Minute
			go a.refreshFeeds(ctx, srv, interval)

			fmt.Fprintf(a.stdout, config.MsgServing,
				config.RouteCalendar, config.RouteVCard, config.LocalhostBindAddr, srv.Port)
			return srv.Start(ctx)
		},
	}
}

// refreshFeeds republishes the data file every interval until ctx is done,
// so that edits made by a concurrent console session reach the feeds.
// A failed refresh keeps the previous content online.
func (a *app) refreshFeeds(ctx context.Context, srv *server.FeedServer, interval time.Duration) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-ticker.C:
			if err := a.publish(ctx, srv); err != nil {
				log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
			}
		}
	}
}

// publish renders the book into both feeds of srv.
func (a *app) publish(ctx context.Context, srv *server.FeedServer) error {
	ab, err := a.loadBook()
	if err != nil {
		return err
	}

	ics, _, err := a.generator().Calendar(ctx, ab.All())
	if err != nil {
		return err
	}

	var vcf bytes.Buffer
	if err := engine.ExportVCard(&vcf, ab.All()); err != nil {
		return err
	}

	srv.UpdateCalendar(ics)
	srv.UpdateContacts(vcf.Bytes())
	return nil
}

// -----------------------------------------------------------------------------
// login
// -----------------------------------------------------------------------------

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user>",
		Short: config.CmdShortLogin,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.login(args[0])
		},
	}
}

// login reads the password from stdin and stores it in the keyring.
func (a *app) login(user string) error {
	fmt.Fprintf(a.stdout, config.MsgPasswordPrompt, user)

	pass, err := a.readPassword()
	if err != nil {
		return err
	}

	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyring, err)
	}
	fmt.Fprintln(a.stdout, config.MsgPasswordStored)
	return nil
}

// readPassword reads without echo from a terminal, or one line otherwise.
func (a *app) readPassword() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stdout)
		if err != nil {
			return "", fmt.Errorf("%s: %w", config.ErrReadPassword, err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%s: %w", config.ErrReadPassword, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
