// Package urlfilter implements streaming near-duplicate suppression for URLs.
// A Metric scores how different two URLs are; an Engine keeps the set of
// accepted URLs sorted and compares each new URL against a bounded window of
// sorted neighbours; a Stream feeds lines through the engine.
package urlfilter

import (
	"fmt"
	"strings"
	"time"

	"urldiff/internal/platform/errors"
)

// QueryMode selects how query strings are compared.
type QueryMode int

const (
	// QueryKeysOnly counts differing parameter keys and ignores values.
	QueryKeysOnly QueryMode = iota

	// QueryValues additionally counts keys present on both sides whose
	// value lists differ.
	QueryValues
)

// String returns string representation of the query mode.
func (q QueryMode) String() string {
	switch q {
	case QueryKeysOnly:
		return "keys"
	case QueryValues:
		return "values"
	default:
		return "unknown"
	}
}

// ParseQueryMode maps "keys" or "values" to a QueryMode.
func ParseQueryMode(s string) (QueryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keys", "":
		return QueryKeysOnly, nil
	case "values":
		return QueryValues, nil
	default:
		return QueryKeysOnly, invalidOption("unknown query mode %q (want keys or values)", s)
	}
}

// invalidOption reports an option value the engine cannot use.
func invalidOption(format string, args ...any) error {
	return errors.Mark(errors.Errorf(format, args...), errors.ErrInvalidInput)
}

// PathStrategy selects the path sub-metric.
type PathStrategy int

const (
	// PathPositional compares segments position by position and adds the
	// difference in segment count.
	// Example: /a/b/c vs /a/x → 1 (b≠x) + 1 (extra c) = 2
	PathPositional PathStrategy = iota

	// PathEditRatio scales the rune-level edit distance of the raw paths
	// by the longer path length, times PathRatioScale.
	// Example: /users/1 vs /users/12 → 4 * 1/9
	PathEditRatio
)

// String returns string representation of the path strategy.
func (p PathStrategy) String() string {
	switch p {
	case PathPositional:
		return "positional"
	case PathEditRatio:
		return "ratio"
	default:
		return "unknown"
	}
}

// ParsePathStrategy maps "positional" or "ratio" to a PathStrategy.
func ParsePathStrategy(s string) (PathStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positional", "":
		return PathPositional, nil
	case "ratio":
		return PathEditRatio, nil
	default:
		return PathPositional, invalidOption("unknown path strategy %q (want positional or ratio)", s)
	}
}

const (
	// QueryWeight multiplies the query sub-metric in the aggregate distance.
	QueryWeight = 2

	// DefaultPathRatioScale is the maximum penalty of PathEditRatio.
	DefaultPathRatioScale = 4.0

	// DefaultThreshold suppresses only URLs that are structurally identical
	// to an accepted neighbour under the default metric.
	DefaultThreshold = 1.0

	// DefaultWindow probes 2*8 sorted neighbours per lookup.
	DefaultWindow = 8
)

// MetricOptions configures a Metric.
type MetricOptions struct {
	QueryMode      QueryMode
	PathStrategy   PathStrategy
	PathRatioScale float64  // Max penalty for PathEditRatio
	IgnoreTracking bool     // Drop known tracking parameters before comparison
	IgnoredParams  []string // Extra query keys dropped before comparison (case-insensitive)
}

// DefaultMetricOptions returns keys-only query comparison and positional paths.
func DefaultMetricOptions() MetricOptions {
	return MetricOptions{
		QueryMode:      QueryKeysOnly,
		PathStrategy:   PathPositional,
		PathRatioScale: DefaultPathRatioScale,
	}
}

// Validate checks if metric options are valid.
func (o MetricOptions) Validate() error {
	if o.QueryMode != QueryKeysOnly && o.QueryMode != QueryValues {
		return invalidOption("query_mode must be keys or values, got %d", o.QueryMode)
	}
	if o.PathStrategy != PathPositional && o.PathStrategy != PathEditRatio {
		return invalidOption("path_strategy must be positional or ratio, got %d", o.PathStrategy)
	}
	if o.PathStrategy == PathEditRatio && o.PathRatioScale <= 0 {
		return invalidOption("path_ratio_scale must be > 0, got %.2f", o.PathRatioScale)
	}
	return nil
}

// Options configures the dedup Engine. Threshold and Window are fixed for
// the lifetime of an engine.
type Options struct {
	Threshold float64 // A URL is a near-duplicate when distance < Threshold
	Window    int     // k: probe positions [i-k, i+k) around the insertion point i
	Metric    MetricOptions
}

// DefaultOptions returns the default engine configuration.
func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Window:    DefaultWindow,
		Metric:    DefaultMetricOptions(),
	}
}

// Validate checks if engine options are valid.
func (o Options) Validate() error {
	if o.Threshold < 0 {
		return invalidOption("threshold must be >= 0, got %.2f", o.Threshold)
	}
	if o.Window < 1 {
		return invalidOption("window must be >= 1, got %d", o.Window)
	}
	return o.Metric.Validate()
}

// EngineStats counts engine decisions.
type EngineStats struct {
	Processed   int `json:"processed"`
	Accepted    int `json:"accepted"`
	Suppressed  int `json:"suppressed"`
	Comparisons int `json:"comparisons"`
}

// ComparisonsPerURL returns the average number of probes per processed URL.
func (s EngineStats) ComparisonsPerURL() float64 {
	if s.Processed == 0 {
		return 0.0
	}
	return float64(s.Comparisons) / float64(s.Processed)
}

// StreamStats tracks what happened to every input line.
type StreamStats struct {
	Lines      int `json:"lines"`
	Blank      int `json:"blank"`
	Invalid    int `json:"invalid"`
	OutOfScope int `json:"out_of_scope"`
	Accepted   int `json:"accepted"`
	Suppressed int `json:"suppressed"`

	Comparisons int           `json:"comparisons"`
	DurationMs  int64         `json:"duration_ms"`
	Duration    time.Duration `json:"-"`
}

// ReductionRatio returns the percentage of URL lines that were suppressed.
func (s StreamStats) ReductionRatio() float64 {
	urls := s.Accepted + s.Suppressed
	if urls == 0 {
		return 0.0
	}
	return float64(s.Suppressed) / float64(urls) * 100.0
}

// ThroughputLinesPerSecond returns processing throughput.
func (s StreamStats) ThroughputLinesPerSecond() float64 {
	if s.Duration == 0 {
		return 0.0
	}
	return float64(s.Lines) / s.Duration.Seconds()
}

// String returns human-readable statistics.
func (s StreamStats) String() string {
	return fmt.Sprintf(
		"StreamStats{lines: %d, accepted: %d, suppressed: %d, reduction: %.1f%%, invalid: %d, out_of_scope: %d, blank: %d, comparisons: %d, duration: %v, throughput: %.0f lines/s}",
		s.Lines,
		s.Accepted,
		s.Suppressed,
		s.ReductionRatio(),
		s.Invalid,
		s.OutOfScope,
		s.Blank,
		s.Comparisons,
		s.Duration,
		s.ThroughputLinesPerSecond(),
	)
}
