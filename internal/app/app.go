package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kmaclean/osprey/internal/burrow"
	"github.com/kmaclean/osprey/internal/config"
	"github.com/kmaclean/osprey/internal/engine"
	"github.com/kmaclean/osprey/internal/prefs"
	"github.com/kmaclean/osprey/internal/telemetry"
	"github.com/kmaclean/osprey/internal/ui"
)

// Options configure the Osprey application.
type Options struct {
	ConfigPath  string // empty uses default ~/.config/osprey/config.toml
	PrefsPath   string // empty uses default ~/.config/osprey/prefs.toml
	SlowSeconds int    // zero uses prefs, then the engine default
	FastSeconds int    // zero uses prefs, then the engine default
	NoPush      bool   // force polling even when prefs enable push
	LogPath     string // empty logs to ~/.local/state/osprey/osprey.log
	LogLevel    string // empty uses the config file's level
}

const defaultLogPath = "~/.local/state/osprey/osprey.log"

// Run boots the Osprey dashboard until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logWriter, closeLog, err := openLog(opts.LogPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()
	log := telemetry.NewLogger(logWriter, level)
	appLog := telemetry.Component(log, "app")

	client, err := burrow.NewClient(cfg.APIBind, cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("init burrowd client: %w", err)
	}

	appLog.Info().
		Str("api_bind", cfg.APIBind).
		Bool("push", userPrefs.UsePush && !opts.NoPush).
		Msg("osprey starting")

	engOpts := engine.Options{
		UsePush:      userPrefs.UsePush && !opts.NoPush,
		SlowInterval: intervalFrom(opts.SlowSeconds, userPrefs.SlowPollSeconds),
		FastInterval: intervalFrom(opts.FastSeconds, userPrefs.FastPollSeconds),
		Logger:       telemetry.Component(log, "engine"),
	}
	eng := engine.New(client, engOpts)

	eng.Start(ctx)
	defer eng.Stop()

	uiOpts := ui.Options{
		Engine:    eng,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(ctx, uiOpts)
}

// intervalFrom resolves an interval from a flag override and a prefs value,
// in that order. Zero lets the engine apply its own default.
func intervalFrom(flagSeconds, prefSeconds int) time.Duration {
	if flagSeconds > 0 {
		return time.Duration(flagSeconds) * time.Second
	}
	if prefSeconds > 0 {
		return time.Duration(prefSeconds) * time.Second
	}
	return 0
}

// openLog opens the log file, creating its directory when needed. The TUI
// owns the terminal, so logs never go to stderr while the program runs.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		path = defaultLogPath
	}
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}
