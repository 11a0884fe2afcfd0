package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/go-lifecalendar/internal/config"
	"github.com/tartampluch/go-lifecalendar/internal/engine"
	"github.com/tartampluch/go-lifecalendar/internal/server"
	"github.com/tartampluch/go-lifecalendar/internal/ui"
)

// options are the parsed command line. Empty strings mean "use the stored preference".
type options struct {
	version bool
	debug   bool
	birth   string
	vcard   string
	view    string
	port    string
}

// main only converts runMain's result into an exit code, so that deferred closes run first.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

func runMain(args []string) int {
	opts, err := parseFlags(flag.NewFlagSet(os.Args[0], flag.ContinueOnError), args)
	if err != nil {
		return config.ExitCodeError
	}

	if opts.version {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	if logFile := setupLogging(opts.debug); logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	// SIGINT or SIGTERM cancel the root context, which stops the feed and quits the UI.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	fs.BoolVar(&opts.version, config.FlagVersion, false, config.FlagDescVersion)
	fs.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.StringVar(&opts.birth, config.FlagBirth, "", config.FlagDescBirth)
	fs.StringVar(&opts.vcard, config.FlagVCard, "", config.FlagDescVCard)
	fs.StringVar(&opts.view, config.FlagView, "", config.FlagDescView)
	fs.StringVar(&opts.port, config.FlagPort, "", config.FlagDescPort)
	err := fs.Parse(args)
	return opts, err
}

// run wires the clock, feed server and UI, then blocks in the Fyne loop.
func run(ctx context.Context, opts options) error {
	var initialView *engine.ViewMode
	if opts.view != "" {
		v, err := engine.ParseViewMode(opts.view)
		if err != nil {
			return err
		}
		initialView = &v
	}

	a := app.NewWithID(config.AppID)
	prefs := a.Preferences()
	prefs.SetString(config.PrefLastRun, config.Version)

	clock := engine.RealClock{}
	srv := server.NewCalendarServer(resolvePort(opts.port, prefs.String(config.PrefServerPort)), clock)

	// A rejected birth date is not fatal: the intake form asks again.
	birth, err := loadBirth(ctx, opts, engine.NewHTTPFetcher(), clock.Now())
	if err != nil {
		slog.Warn(config.ErrBirthRejected,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
	}

	gui := ui.NewLifeCalendarApp(a, ctx, srv)
	gui.Clock = clock
	gui.InitialView = initialView

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run(birth)
	return nil
}

// resolvePort prefers the flag, then the stored preference, then the default port.
func resolvePort(flagPort, prefPort string) string {
	switch {
	case flagPort != "":
		return flagPort
	case prefPort != "":
		return prefPort
	default:
		return config.DefaultPort
	}
}

// loadBirth reads the birth date from the command line. The zero value means none was given.
func loadBirth(ctx context.Context, opts options, fetcher engine.VCardFetcher, now time.Time) (engine.BirthDate, error) {
	switch {
	case opts.birth != "":
		return engine.ValidateBirthDate(opts.birth, now)
	case opts.vcard != "":
		return engine.LoadBirthDate(ctx, opts.vcard, fetcher, now)
	default:
		return engine.BirthDate{}, nil
	}
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		config.Commit,
		config.Date,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger on stdout and, when possible, a log file in the
// user cache dir. The returned file is nil if only stdout is used.
func setupLogging(debug bool) *os.File {
	logFile := openLogFile()

	var out io.Writer = os.Stdout
	if logFile != nil {
		out = io.MultiWriter(os.Stdout, logFile)
	}
	slog.SetDefault(newLogger(out, debug))
	return logFile
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
}

// openLogFile truncates the previous run's log. Failures are reported on stderr only.
func openLogFile() *os.File {
	logPath, err := logFilePath()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return nil
	}
	f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		return nil
	}
	return f
}

func logFilePath() (string, error) {
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
