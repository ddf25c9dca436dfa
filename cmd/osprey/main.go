package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kmaclean/osprey/internal/app"
	"github.com/kmaclean/osprey/internal/prefs"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override osprey config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (default "+prefs.DefaultPath()+")")
	slowSeconds := flag.Int("slow", 0, "slow poll interval in seconds (optional, defaults to 30s)")
	fastSeconds := flag.Int("fast", 0, "fast poll interval in seconds (optional, defaults to 5s)")
	noPush := flag.Bool("no-push", false, "disable the push channel and rely on polling")
	logPath := flag.String("log", "", "log file path (optional)")
	logLevel := flag.String("log-level", "", "log level: trace, debug, info, warn, error (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		NoPush:     *noPush,
		LogPath:    *logPath,
		LogLevel:   *logLevel,
	}
	if s := *slowSeconds; s > 0 {
		opts.SlowSeconds = s
	}
	if f := *fastSeconds; f > 0 {
		opts.FastSeconds = f
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "osprey: %v\n", err)
		return 1
	}
	return 0
}
