package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/config"
	"github.com/erazemk/popis/internal/db"
	"github.com/erazemk/popis/internal/photo"
	"github.com/erazemk/popis/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	min    slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string, level slog.Level) (func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		min:    level,
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

const usage = `Usage: popis [flags] <command> [command flags]

Commands:
  serve       run the local HTTP API
  list        list, search and filter items
  stats       show catalog statistics
  export      write all items as CSV
  backup      upload a backup to the configured S3 bucket
  passcode    set the API passcode
  reset       delete all items, labels, photos and search history

Flags:
  -c, -config <path>   config file (default: ~/.config/popis/config.yaml)
  -d, -db <path>       SQLite database path (overrides config)
  -p, -photos <dir>    photo directory (overrides config)
  -l, -log <path>      log file path (overrides config)
  -h, -help            show this help and exit

Run 'popis <command> -h' for command flags.
`

// command runs one subcommand with its remaining arguments.
type command func(ctx context.Context, cfg *config.Config, args []string) error

var commands = map[string]command{
	"serve":    cmdServe,
	"list":     cmdList,
	"stats":    cmdStats,
	"export":   cmdExport,
	"backup":   cmdBackup,
	"passcode": cmdPasscode,
	"reset":    cmdReset,
}

func main() {
	fs := flag.NewFlagSet("popis", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", config.DefaultPath(), "")
	fs.StringVar(&configPath, "c", config.DefaultPath(), "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var photosDir string
	fs.StringVar(&photosDir, "photos", "", "")
	fs.StringVar(&photosDir, "p", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	name := fs.Arg(0)
	run, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", name)
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if photosDir != "" {
		cfg.PhotosDir = photosDir
	}
	if logPath != "" {
		cfg.LogFile = logPath
	}

	// Only the server logs progress; other commands keep stdout for output.
	level := slog.LevelWarn
	if name == "serve" {
		level = slog.LevelInfo
	}
	closeLog, err := setupLogger(cfg.LogFile, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(context.Background(), cfg, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error(name+" failed", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeAndExit(closeLog, 1)
	}
}

func closeAndExit(closeLog func(), code int) {
	if closeLog != nil {
		closeLog()
	}
	os.Exit(code)
}

// app bundles the opened storage layers.
type app struct {
	store   *store.Store
	photos  *photo.Store
	catalog *catalog.Repository
	close   func()
}

// openApp opens and migrates the database, then loads the catalog.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	photos, err := photo.NewStore(cfg.PhotosDir)
	if err != nil {
		database.Close()
		return nil, err
	}

	s := store.New(database)
	repo, err := catalog.New(ctx, s, photos)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	return &app{
		store:   s,
		photos:  photos,
		catalog: repo,
		close:   func() { database.Close() },
	}, nil
}
