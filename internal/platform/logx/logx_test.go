package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode parses the JSON lines written by a logger.
func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), "line: %s", line)
		out = append(out, rec)
	}
	return out
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New())
	assert.NotNil(t, NewSilent())
	assert.NotNil(t, NewNop())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"dbg", LevelDebug},
		{"  debug  ", LevelDebug},
		{"info", LevelInfo},
		{"inf", LevelInfo},
		{"", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"err", LevelError},
		{"ERROR", LevelError},
		{"garbage", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLevelString(t *testing.T) {
	for _, lvl := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		assert.Equal(t, lvl, ParseLevel(lvl.String()))
	}
	assert.Equal(t, "unknown", Level(42).String())
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []any
		expected []any
	}{
		{"empty input", []any{}, []any{}},
		{"single pair", []any{"key", "value"}, []any{"key", "value"}},
		{"odd number of elements", []any{"key1", 1, "key2"}, []any{"key1", 1, "key2", "(missing)"}},
		{"non-string key", []any{7, true}, []any{"7", true}},
		{"duration value", []any{"took", 2 * time.Second}, []any{"took", "2s"}},
		{"error value", []any{"cause", errors.New("boom")}, []any{"cause", "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fields(tt.input...))
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelDebug)

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "count", 42)
	logger.Warn("warning message", "enabled", true)
	logger.Err(errors.New("test error"), "source", "stdin")

	recs := decode(t, &buf)
	require.Len(t, recs, 4)

	assert.Equal(t, "debug", recs[0]["level"])
	assert.Equal(t, "debug message", recs[0]["message"])
	assert.Equal(t, "value", recs[0]["key"])

	assert.Equal(t, "info", recs[1]["level"])
	assert.EqualValues(t, 42, recs[1]["count"])

	assert.Equal(t, "warn", recs[2]["level"])
	assert.Equal(t, true, recs[2]["enabled"])

	assert.Equal(t, "error", recs[3]["level"])
	assert.Equal(t, "test error", recs[3]["error"])
	assert.Equal(t, "stdin", recs[3]["source"])
}

func TestLogger_ErrNil(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, LevelDebug).Err(nil, "source", "stdin")
	assert.Empty(t, buf.String())
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelDebug)
	scoped := logger.With("component", "engine")

	logger.Info("original")
	scoped.Info("scoped")

	recs := decode(t, &buf)
	require.Len(t, recs, 2)
	_, has := recs[0]["component"]
	assert.False(t, has, "original logger must not inherit scope")
	assert.Equal(t, "engine", recs[1]["component"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		lvl  Level
		want []string
	}{
		{LevelDebug, []string{"debug", "info", "warn", "error"}},
		{LevelInfo, []string{"info", "warn", "error"}},
		{LevelWarn, []string{"warn", "error"}},
		{LevelError, []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.lvl.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&buf, tt.lvl)
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Err(errors.New("e"))

			var got []string
			for _, rec := range decode(t, &buf) {
				got = append(got, rec["level"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, LevelError)
	logger.Info("hidden")
	logger.SetLevel(LevelDebug)
	logger.Debug("visible")

	recs := decode(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "visible", recs[0]["message"])
}

func TestLogger_ThreadSafety(t *testing.T) {
	var buf safeBuffer
	logger := NewWithWriter(&buf, LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("concurrent", "n", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, strings.Count(buf.String(), "concurrent"))
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urldiff.log")
	logger, closer := NewFile(path, LevelInfo)
	logger.Info("to file", "accepted", 3)
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	data := string(raw)
	assert.Contains(t, data, `"accepted":3`)
	assert.Contains(t, data, "to file")
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
