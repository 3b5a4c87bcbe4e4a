package urlfilter

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"urldiff/internal/platform/errors"
	"urldiff/internal/platform/logx"
	"urldiff/internal/platform/validator"
)

// Skip reasons passed to Reporter.Skipped.
const (
	SkipInvalidUTF8 = "invalid utf-8"
	SkipOutOfScope  = "out of scope"
)

// Reporter receives per-line diagnostics from a Stream.
type Reporter interface {
	Accepted(d Decision)
	Suppressed(d Decision)
	Skipped(lineNo int, line string, reason string)
}

// NopReporter discards all diagnostics.
type NopReporter struct{}

func (NopReporter) Accepted(Decision)           {}
func (NopReporter) Suppressed(Decision)         {}
func (NopReporter) Skipped(int, string, string) {}

// StreamOptions configures line filtering in front of the engine.
type StreamOptions struct {
	Scope []string // Hostnames fed to the engine; empty means all
}

// Stream feeds newline-separated URLs through an Engine and writes accepted
// lines in input order. When w is buffered (has a Flush method) it is
// flushed whenever the input has nothing more ready, so slow producers see
// accepted URLs promptly.
type Stream struct {
	opts     StreamOptions
	engine   *Engine
	reporter Reporter
	logger   logx.Logger
	stdin    io.Reader
}

// NewStream creates a stream over engine. A nil reporter discards
// diagnostics.
func NewStream(opts StreamOptions, engine *Engine, reporter Reporter, logger logx.Logger) *Stream {
	if logger == nil {
		logger = logx.NewNop()
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Stream{
		opts:     opts,
		engine:   engine,
		reporter: reporter,
		logger:   logger.With("component", "stream"),
		stdin:    os.Stdin,
	}
}

// WithStdin sets the reader RunFiles uses for "-".
func (s *Stream) WithStdin(r io.Reader) *Stream {
	s.stdin = r
	return s
}

// Run processes every line of r. Counters accumulate into the returned
// stats even when an error ends the run early.
func (s *Stream) Run(ctx context.Context, r io.Reader, w io.Writer) (StreamStats, error) {
	var stats StreamStats
	err := s.run(ctx, r, w, &stats)
	return stats, err
}

// RunFiles processes the named inputs in order with the same engine, so
// duplicates are detected across files. "-" reads the stream's stdin.
func (s *Stream) RunFiles(ctx context.Context, paths []string, w io.Writer) (StreamStats, error) {
	var stats StreamStats
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	for _, path := range paths {
		if err := s.runFile(ctx, path, w, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (s *Stream) runFile(ctx context.Context, path string, w io.Writer, stats *StreamStats) error {
	if path == "-" {
		s.logger.Debug("reading input", "source", "stdin")
		return s.run(ctx, s.stdin, w, stats)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "open %s", path), errors.ErrInputSource)
	}
	defer f.Close()

	s.logger.Debug("reading input", "source", path)
	return s.run(ctx, f, w, stats)
}

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// readResult is one ReadBytes call handed from the reader goroutine.
type readResult struct {
	line []byte
	err  error
}

// readLines reads r line by line on its own goroutine, so a blocked read
// never delays cancellation. It exits after the final read or once done is
// closed.
func readLines(r io.Reader, done <-chan struct{}) <-chan readResult {
	out := make(chan readResult)
	go func() {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadBytes('\n')
			select {
			case out <- readResult{line: line, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

func (s *Stream) run(ctx context.Context, r io.Reader, w io.Writer, stats *StreamStats) error {
	start := time.Now()
	before := s.engine.Stats()
	defer func() {
		after := s.engine.Stats()
		stats.Comparisons += after.Comparisons - before.Comparisons
		stats.Duration += time.Since(start)
		stats.DurationMs = stats.Duration.Milliseconds()
	}()

	done := make(chan struct{})
	defer close(done)
	lines := readLines(r, done)
	lineNo := 0

	for {
		if err := ctx.Err(); err != nil {
			return s.cancelled(err, stats)
		}

		var res readResult
		select {
		case res = <-lines:
		default:
			// The next read would block: hand accepted lines downstream first.
			if err := flush(w); err != nil {
				return errors.Mark(errors.Wrap(err, "flush output"), errors.ErrOutput)
			}
			select {
			case res = <-lines:
			case <-ctx.Done():
				return s.cancelled(ctx.Err(), stats)
			}
		}

		if len(res.line) > 0 {
			lineNo++
			if err := s.handle(lineNo, res.line, w, stats); err != nil {
				return err
			}
		}

		if res.err == io.EOF {
			return nil
		}
		if res.err != nil {
			return errors.Mark(errors.Wrapf(res.err, "read line %d", lineNo+1), errors.ErrInputSource)
		}
	}
}

func (s *Stream) cancelled(err error, stats *StreamStats) error {
	s.logger.Warn("stream cancelled", "lines", stats.Lines)
	return errors.Mark(errors.Wrap(err, "stream cancelled"), errors.ErrCancelled)
}

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (s *Stream) handle(lineNo int, line []byte, w io.Writer, stats *StreamStats) error {
	stats.Lines++

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		stats.Blank++
		return nil
	}

	if !utf8.Valid(line) {
		stats.Invalid++
		text := string(bytes.ToValidUTF8(line, []byte("�")))
		s.logger.Debug("skipping line", "line", lineNo, "reason", SkipInvalidUTF8)
		s.reporter.Skipped(lineNo, text, SkipInvalidUTF8)
		return nil
	}

	u := Parse(string(line))
	if len(s.opts.Scope) > 0 && !validator.InScope(u.Hostname(), s.opts.Scope) {
		stats.OutOfScope++
		s.reporter.Skipped(lineNo, u.Raw(), SkipOutOfScope)
		return nil
	}

	d := s.engine.InsertIfNovel(u)
	if !d.Accepted {
		stats.Suppressed++
		s.reporter.Suppressed(d)
		return nil
	}

	stats.Accepted++
	if _, err := io.WriteString(w, d.Raw+"\n"); err != nil {
		return errors.Mark(errors.Wrapf(err, "write line %d", lineNo), errors.ErrOutput)
	}
	s.reporter.Accepted(d)
	return nil
}
