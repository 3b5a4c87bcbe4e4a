// cmd/urldiff/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"urldiff/internal/platform/config"
	"urldiff/internal/platform/errors"
	"urldiff/internal/platform/logx"
	"urldiff/internal/platform/ui"
	"urldiff/internal/platform/urlfilter"
)

var (
	// Set with -ldflags at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitCancelled = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// After the first signal a second one gets the default action.
		<-ctx.Done()
		stop()
	}()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// 1. Configuration
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Try: urldiff -h for help")
		return exitUsage
	}
	if cfg.PrintHelp {
		config.PrintHelp(stdout)
		return exitOK
	}
	if cfg.PrintVersion {
		config.PrintVersion(stdout, version, commit, date)
		return exitOK
	}

	// 2. Logger
	logger, closeLog := newLogger(cfg, stderr)
	defer closeLog()

	logger.Debug("urldiff starting",
		"version", version,
		"commit", commit,
		"inputs", len(cfg.Inputs),
		"config", cfg.ConfigPath,
	)

	// 3. Engine and stream
	opts, err := cfg.ToOptions()
	if err != nil {
		logger.Err(err, "phase", "config")
		return exitUsage
	}

	presenter := ui.NewPresenter(cfg.UIMode(), stderr, cfg.PresenterOptions())
	defer presenter.Close()

	engine := urlfilter.NewEngine(opts, logger)
	stream := urlfilter.NewStream(urlfilter.StreamOptions{Scope: cfg.Scope}, engine, presenter, logger).
		WithStdin(stdin)

	presenter.Start(ui.RunInfo{
		Version:        version,
		Inputs:         cfg.Inputs,
		Threshold:      opts.Threshold,
		Window:         opts.Window,
		QueryMode:      opts.Metric.QueryMode.String(),
		PathStrategy:   opts.Metric.PathStrategy.String(),
		IgnoreTracking: opts.Metric.IgnoreTracking,
		IgnoredParams:  opts.Metric.IgnoredParams,
		Scope:          cfg.Scope,
	})

	// 4. Stream inputs to stdout, flushed whenever input goes idle
	out := bufio.NewWriter(stdout)
	stats, runErr := stream.RunFiles(ctx, cfg.Inputs, out)
	flushErr := out.Flush()

	presenter.Finish(stats)
	logger.Debug("urldiff finished",
		"lines", stats.Lines,
		"accepted", stats.Accepted,
		"suppressed", stats.Suppressed,
		"comparisons", stats.Comparisons,
		"elapsed_ms", stats.DurationMs,
	)

	switch {
	case runErr != nil && errors.IsCancelled(runErr):
		presenter.Warning("interrupted, output is partial")
		return exitCancelled
	case runErr != nil:
		logger.Err(runErr, "phase", "run")
		presenter.Error(runErr.Error())
		return exitFailure
	case flushErr != nil:
		logger.Err(flushErr, "phase", "output")
		presenter.Error(flushErr.Error())
		return exitFailure
	}
	return exitOK
}

// newLogger returns the logger for cfg and a function releasing it. Quiet
// runs only log errors unless a log file is configured.
func newLogger(cfg config.Config, stderr io.Writer) (logx.Logger, func()) {
	if cfg.Log.File != "" {
		logger, closer := logx.NewFile(cfg.Log.File, cfg.LogLevel())
		return logger, func() { _ = closer.Close() }
	}

	lvl := cfg.LogLevel()
	if cfg.Quiet && lvl < logx.LevelError {
		lvl = logx.LevelError
	}
	w := zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: "15:04:05",
		NoColor:    cfg.Raw,
	}
	return logx.NewWithWriter(w, lvl), func() {}
}
