// Package logging provides the structured logger shared by catalogcheck components.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures the logger.
type Options struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is text, json or logfmt.
	Format string
	// Output is the writer for log output (default: os.Stderr).
	Output io.Writer
	// Prefix is the component name prefix.
	Prefix string
}

// DefaultOptions returns the default logger options, honoring CATALOGCHECK_LOG_LEVEL.
func DefaultOptions() Options {
	opts := Options{
		Level:  "info",
		Format: "text",
		Output: os.Stderr,
	}
	if level := os.Getenv("CATALOGCHECK_LOG_LEVEL"); level != "" {
		opts.Level = level
	}
	return opts
}

// ParseLevel converts a string level to log.Level. Unknown levels map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func parseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New creates a logger with the given options.
func New(opts Options) *log.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return log.NewWithOptions(opts.Output, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		Formatter:       parseFormatter(opts.Format),
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
	})
}

var (
	mu            sync.RWMutex
	defaultLogger = New(DefaultOptions())
)

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Default returns the process-wide logger.
func Default() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// Component returns a child of the default logger prefixed with name.
func Component(name string) *log.Logger {
	return Default().WithPrefix(name)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
