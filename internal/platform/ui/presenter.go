// Package ui renders run diagnostics on stderr. Accepted URLs themselves go
// to stdout through the stream; a Presenter only narrates what happened.
package ui

import (
	"io"

	"urldiff/internal/platform/urlfilter"
)

// UIMode selects the presenter implementation.
type UIMode string

const (
	UIModePretty UIMode = "pretty" // pterm styled output (default)
	UIModeRaw    UIMode = "raw"    // One log line per event
	UIModeQuiet  UIMode = "quiet"  // No diagnostics
)

// Presenter receives per-line decisions from the stream plus run-level
// events from the CLI.
type Presenter interface {
	urlfilter.Reporter

	// Start shows the effective configuration.
	Start(info RunInfo)

	Info(msg string)
	Warning(msg string)
	Error(msg string)

	// Finish shows the final counters.
	Finish(stats urlfilter.StreamStats)

	// Close flushes and releases resources.
	Close() error
}

// RunInfo describes one invocation.
type RunInfo struct {
	Version        string
	Inputs         []string
	Threshold      float64
	Window         int
	QueryMode      string
	PathStrategy   string
	IgnoreTracking bool
	IgnoredParams  []string
	Scope          []string
}

// Options tune the presenters that produce output.
type Options struct {
	ShowSuppressed bool      // Also report suppressed URLs
	Format         LogFormat // Raw mode line format
}

// NewPresenter builds the presenter for mode writing to w.
func NewPresenter(mode UIMode, w io.Writer, opts Options) Presenter {
	switch mode {
	case UIModeQuiet:
		return NewNoopPresenter()
	case UIModeRaw:
		return NewRawPresenter(w, opts.Format, opts.ShowSuppressed)
	default:
		return NewPTermPresenter(w, opts.ShowSuppressed)
	}
}
