// Package logging builds the application logger. The TUI owns the terminal, so
// log lines go to a file instead of stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"movix-cli/store"
)

const defaultLogFile = "movix.log"

type Options struct {
	// File is the destination; empty means the user cache dir.
	File  string
	Level string
	Debug bool
}

// New opens the log file for appending and returns a logger writing to it.
// The returned closer releases the file.
func New(opts Options) (*log.Logger, io.Closer, error) {
	path, err := resolvePath(opts.File)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := NewWriter(file, opts)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return logger, file, nil
}

// NewWriter returns a logger writing to w at the configured level.
func NewWriter(w io.Writer, opts Options) (*log.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.TextFormatter,
	}), nil
}

// ParseLevel accepts debug, info, warn and error; empty means info.
func ParseLevel(raw string) (log.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(raw)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("unknown log level %q", raw)
	}
	return level, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func resolvePath(file string) (string, error) {
	if file = strings.TrimSpace(file); file != "" {
		return file, nil
	}
	return store.CachePath(defaultLogFile)
}
