package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"urldiff/internal/platform/urlfilter"
)

// LogFormat is the line format of the raw presenter.
type LogFormat string

const (
	LogFormatText LogFormat = "text" // logfmt (default)
	LogFormatJSON LogFormat = "json" // One JSON object per line
)

// RawPresenter writes one unstyled line per event, for pipelines and log
// collectors.
type RawPresenter struct {
	format         LogFormat
	w              io.Writer
	showSuppressed bool
	mu             sync.Mutex
	startTime      time.Time
}

// NewRawPresenter creates a raw presenter writing to w.
func NewRawPresenter(w io.Writer, format LogFormat, showSuppressed bool) *RawPresenter {
	if format != LogFormatJSON {
		format = LogFormatText
	}
	return &RawPresenter{
		format:         format,
		w:              w,
		showSuppressed: showSuppressed,
		startTime:      time.Now(),
	}
}

// log writes one event in the configured format.
func (r *RawPresenter) log(level, message string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := time.Now().UTC().Format(time.RFC3339)

	if r.format == LogFormatJSON {
		r.logJSON(timestamp, level, message, fields)
	} else {
		r.logText(timestamp, level, message, fields)
	}
}

// logText writes logfmt: timestamp LEVEL message key=value key2=value2
func (r *RawPresenter) logText(timestamp, level, message string, fields map[string]interface{}) {
	parts := []string{timestamp, fmt.Sprintf("%-5s", level), message}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, r.formatValue(fields[k])))
	}

	fmt.Fprintln(r.w, strings.Join(parts, " "))
}

// logJSON writes a JSON object.
func (r *RawPresenter) logJSON(timestamp, level, message string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"message":   message,
	}

	if len(fields) > 0 {
		entry["data"] = fields
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(r.w, "{\"level\":\"ERROR\",\"message\":%q}\n", err.Error())
		return
	}
	fmt.Fprintln(r.w, string(jsonBytes))
}

// formatValue quotes strings with spaces for logfmt.
func (r *RawPresenter) formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return val.String()
	case float64:
		return fmt.Sprintf("%.1f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Start logs the effective configuration.
func (r *RawPresenter) Start(info RunInfo) {
	r.startTime = time.Now()
	r.log("INFO", "run_started", map[string]interface{}{
		"version":         info.Version,
		"threshold":       formatScore(info.Threshold),
		"window":          info.Window,
		"query_mode":      info.QueryMode,
		"path_strategy":   info.PathStrategy,
		"ignore_tracking": info.IgnoreTracking,
		"ignored_params":  strings.Join(info.IgnoredParams, ","),
		"scope":           strings.Join(info.Scope, ","),
		"inputs":          len(info.Inputs),
		"log_format":      string(r.format),
	})
}

// Accepted logs an accepted URL with its score.
func (r *RawPresenter) Accepted(d urlfilter.Decision) {
	r.log("INFO", "url_accepted", map[string]interface{}{
		"url":     d.Raw,
		"score":   formatScore(d.Distance),
		"checked": d.Checked,
	})
}

// Suppressed logs a dropped URL, when enabled.
func (r *RawPresenter) Suppressed(d urlfilter.Decision) {
	if !r.showSuppressed {
		return
	}
	r.log("INFO", "url_suppressed", map[string]interface{}{
		"url":      d.Raw,
		"score":    formatScore(d.Distance),
		"neighbor": d.Neighbor,
		"checked":  d.Checked,
	})
}

// Skipped logs an unusable line.
func (r *RawPresenter) Skipped(lineNo int, line string, reason string) {
	r.log("WARN", "line_skipped", map[string]interface{}{
		"line":   lineNo,
		"reason": reason,
		"text":   line,
	})
}

// Info logs an informational message.
func (r *RawPresenter) Info(msg string) {
	r.log("INFO", msg, nil)
}

// Warning logs a warning.
func (r *RawPresenter) Warning(msg string) {
	r.log("WARN", msg, nil)
}

// Error logs an error.
func (r *RawPresenter) Error(msg string) {
	r.log("ERROR", msg, nil)
}

// Finish logs the final counters.
func (r *RawPresenter) Finish(stats urlfilter.StreamStats) {
	r.log("INFO", "run_completed", map[string]interface{}{
		"lines":        stats.Lines,
		"accepted":     stats.Accepted,
		"suppressed":   stats.Suppressed,
		"invalid":      stats.Invalid,
		"out_of_scope": stats.OutOfScope,
		"blank":        stats.Blank,
		"comparisons":  stats.Comparisons,
		"reduction":    stats.ReductionRatio(),
		"duration":     stats.Duration,
	})
}

// Close does nothing.
func (r *RawPresenter) Close() error {
	return nil
}
