// Package logger provides a simple leveled logger for the application.
// It supports three levels: off (no output), normal (info/warn/error),
// and verbose (includes debug). The logger is safe for concurrent use.
//
// Child loggers created with With share the parent's level and outputs
// and prefix every message with a component tag, e.g. "[INF] capture: ...".
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level controls the verbosity of the logger.
type Level int32

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// String returns the config name of the level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelVerbose:
		return "verbose"
	default:
		return "normal"
	}
}

// ParseLevel maps a config string to a Level. Unknown names yield
// LevelNormal and an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "quiet", "none":
		return LevelOff, nil
	case "", "normal", "info":
		return LevelNormal, nil
	case "verbose", "debug":
		return LevelVerbose, nil
	}
	return LevelNormal, fmt.Errorf("unknown log level %q", s)
}

// sinks holds the per-level writers shared by a logger and its children.
type sinks struct {
	level  atomic.Int32
	debug  *log.Logger
	info   *log.Logger
	warn   *log.Logger
	errLog *log.Logger
}

// Logger is a leveled logger. All methods are safe for concurrent use.
type Logger struct {
	s      *sinks
	prefix string
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	flags := log.Ltime

	s := &sinks{
		debug:  log.New(out, "[DBG] ", flags),
		info:   log.New(out, "[INF] ", flags),
		warn:   log.New(out, "[WRN] ", flags),
		errLog: log.New(out, "[ERR] ", flags),
	}
	s.level.Store(int32(level))
	return &Logger{s: s}
}

// With returns a child logger tagged with component. Nested children
// join tags with a slash.
func (l *Logger) With(component string) *Logger {
	p := component
	if l.prefix != "" {
		p = l.prefix + "/" + component
	}
	return &Logger{s: l.s, prefix: p}
}

// SetLevel changes the log level at runtime for this logger and all of
// its children.
func (l *Logger) SetLevel(level Level) {
	l.s.level.Store(int32(level))
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	return Level(l.s.level.Load())
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	if l.GetLevel() >= LevelVerbose {
		l.s.debug.Output(2, l.format(format, args))
	}
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	if l.GetLevel() >= LevelNormal {
		l.s.info.Output(2, l.format(format, args))
	}
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	if l.GetLevel() >= LevelNormal {
		l.s.warn.Output(2, l.format(format, args))
	}
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	if l.GetLevel() >= LevelNormal {
		l.s.errLog.Output(2, l.format(format, args))
	}
}

func (l *Logger) format(format string, args []any) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return msg
	}
	return l.prefix + ": " + msg
}
