package ui

import "urldiff/internal/platform/urlfilter"

// NoopPresenter produces no output. Used for quiet mode.
type NoopPresenter struct{}

// NewNoopPresenter creates a presenter without output.
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

func (n *NoopPresenter) Start(info RunInfo)                             {}
func (n *NoopPresenter) Accepted(d urlfilter.Decision)                  {}
func (n *NoopPresenter) Suppressed(d urlfilter.Decision)                {}
func (n *NoopPresenter) Skipped(lineNo int, line string, reason string) {}
func (n *NoopPresenter) Info(msg string)                                {}
func (n *NoopPresenter) Warning(msg string)                             {}
func (n *NoopPresenter) Error(msg string)                               {}
func (n *NoopPresenter) Finish(stats urlfilter.StreamStats)             {}

// Close does nothing.
func (n *NoopPresenter) Close() error {
	return nil
}
