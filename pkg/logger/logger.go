// Package logger wraps charmbracelet/log behind a small strata-flavored
// surface: a process-wide default logger stored atomically, package-level
// logging helpers, and log-level parsing for configuration values.
package logger

import (
	"fmt"
	"os"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

// Logger is the strata logger. It embeds the charm logger so callers get
// the full structured key-value API.
type Logger struct {
	*charm.Logger
}

// NewLogger wraps a charm logger.
func NewLogger(l *charm.Logger) *Logger {
	return &Logger{Logger: l}
}

// New creates a new Logger writing to stderr with default settings.
func New() *Logger {
	return NewLogger(charm.New(os.Stderr))
}

// defaultLogger is the global default Logger instance stored atomically.
var defaultLogger atomic.Value

func init() {
	defaultLogger.Store(NewLogger(charm.Default()))
}

// Default returns the global default Logger instance.
func Default() *Logger {
	return defaultLogger.Load().(*Logger)
}

// SetDefault sets a new global default Logger instance.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// ParseLevel converts a configuration string into a charm log level.
// An empty string means Info.
func ParseLevel(level string) (charm.Level, error) {
	if level == "" {
		return charm.InfoLevel, nil
	}
	parsed, err := charm.ParseLevel(level)
	if err != nil {
		return charm.InfoLevel, fmt.Errorf("invalid log level %q; supported levels are debug, info, warn, error, fatal", level)
	}
	return parsed, nil
}

// Debug logs a message at debug level using the default logger.
func Debug(msg any, keyvals ...any) {
	Default().Debug(msg, keyvals...)
}

// Info logs a message at info level using the default logger.
func Info(msg any, keyvals ...any) {
	Default().Info(msg, keyvals...)
}

// Warn logs a message at warn level using the default logger.
func Warn(msg any, keyvals ...any) {
	Default().Warn(msg, keyvals...)
}

// Error logs a message at error level using the default logger.
func Error(msg any, keyvals ...any) {
	Default().Error(msg, keyvals...)
}
