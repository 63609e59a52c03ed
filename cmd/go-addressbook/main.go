package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/bot"
	"github.com/tartampluch/go-addressbook/internal/config"
)

// main delegates to runMain so that deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain wires signals, runs the command tree and maps the outcome to an
// exit code.
func runMain() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		clock:  book.RealClock{},
	}
	defer a.close()

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		fmt.Fprintf(os.Stderr, config.MsgFatal, err)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// app carries what every command needs: flags, settings and the console.
type app struct {
	debug    bool
	file     string
	lang     string
	settings *config.Settings

	stdin  io.Reader
	stdout io.Writer
	clock  book.Clock

	logCloser io.Closer
}

// newRootCmd builds the command tree. The root command runs the interactive
// session.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CommandName,
		Short:         config.CmdShortRoot,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSession(cmd.Context())
		},
	}
	root.SetVersionTemplate(config.MsgVersionTemplate)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)

	flags := root.PersistentFlags()
	flags.BoolVar(&a.debug, config.FlagDebug, false, config.FlagDescDebug)
	flags.StringVar(&a.file, config.FlagFile, "", config.FlagDescFile)
	flags.StringVar(&a.lang, config.FlagLang, "", config.FlagDescLang)

	root.AddCommand(
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
		newLoginCmd(a),
	)
	return root
}

// init loads settings, applies flag overrides and starts logging.
func (a *app) init() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if a.file != "" {
		settings.DataFile = a.file
	}
	if a.lang != "" {
		settings.Language = a.lang
	}
	a.settings = settings

	a.logCloser = setupLogging(a.debug)
	logStartupInfo()
	return nil
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// newBot creates the dispatcher over a fresh book bound to the data file.
func (a *app) newBot() (*bot.Bot, *book.AddressBook) {
	ab := book.New(a.clock)
	b := bot.New(ab, bot.Options{
		DataFile:        a.settings.DataFile,
		Messages:        bot.NewMessages(a.settings.Language),
		Clock:           a.clock,
		ReminderTrigger: a.settings.ReminderTrigger,
	})
	return b, ab
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyDate, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs the default JSON logger. Stdout belongs to the
// console session, so logs go to a file in the user cache directory and to
// stderr only in debug mode.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	if debugMode {
		writers = append(writers, os.Stderr)
	}

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
