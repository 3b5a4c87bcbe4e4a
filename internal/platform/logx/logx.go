// Package logx is the key/value logger shared by every urldiff component.
// Records go to stderr through a zerolog console writer, or as JSON lines to
// a size-rotated file when one is configured.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase name used in config files and env vars.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// Rotation limits for file output.
const (
	fileMaxSizeMB  = 10
	fileMaxBackups = 3
)

type zeroLogger struct {
	mu sync.Mutex
	zl zerolog.Logger
}

// New returns a console logger on stderr, level taken from URLDIFF_LOG_LEVEL.
func New() Logger {
	return NewWithLevel(ParseLevel(os.Getenv("URLDIFF_LOG_LEVEL")))
}

// NewWithLevel creates a console logger on stderr with a specific level.
func NewWithLevel(lvl Level) Logger {
	w := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}
	return NewWithWriter(w, lvl)
}

// NewWithWriter builds a logger writing zerolog output to w. Passing a plain
// writer yields JSON lines; wrap it in zerolog.ConsoleWriter for text.
func NewWithWriter(w io.Writer, lvl Level) Logger {
	zl := zerolog.New(w).
		Level(toZerolog(lvl)).
		With().
		Timestamp().
		Logger()
	return &zeroLogger{zl: zl}
}

// NewFile creates a JSON logger writing to a rotated file at path.
// The returned closer releases the file handle.
func NewFile(path string, lvl Level) (Logger, io.Closer) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		LocalTime:  true,
	}
	return NewWithWriter(lj, lvl), lj
}

// NewSilent creates a logger that only outputs errors.
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewNop discards everything.
func NewNop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func (s *zeroLogger) With(kv ...any) Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &zeroLogger{zl: s.zl.With().Fields(fields(kv...)).Logger()}
}

func (s *zeroLogger) SetLevel(lvl Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zl = s.zl.Level(toZerolog(lvl))
}

func (s *zeroLogger) Debug(msg string, kv ...any) { s.log(zerolog.DebugLevel, msg, kv...) }
func (s *zeroLogger) Info(msg string, kv ...any)  { s.log(zerolog.InfoLevel, msg, kv...) }
func (s *zeroLogger) Warn(msg string, kv ...any)  { s.log(zerolog.WarnLevel, msg, kv...) }
func (s *zeroLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zl.Error().Err(err).Fields(fields(kv...)).Msg("")
}

func (s *zeroLogger) log(l zerolog.Level, msg string, kv ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zl.WithLevel(l).Fields(fields(kv...)).Msg(msg)
}

// fields turns variadic key/value pairs into the slice form zerolog accepts.
// Keys are stringified; a trailing key without value gets "(missing)".
func fields(kv ...any) []any {
	out := make([]any, 0, len(kv)+1)
	for i := 0; i < len(kv); i += 2 {
		out = append(out, fmt.Sprint(kv[i]))
		if i+1 < len(kv) {
			out = append(out, normalizeValue(kv[i+1]))
		} else {
			out = append(out, "(missing)")
		}
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case time.Duration:
		return t.String()
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps a level name to a Level; unknown names mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
