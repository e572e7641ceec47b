// Package logging builds the process slog handler: a text or JSON handler on
// stderr, fanned out to an optional log file.
package logging

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"git.home.luguber.info/inful/livedoc/internal/config"
	"git.home.luguber.info/inful/livedoc/internal/errors"
)

// Options selects the handler shape. Verbose forces debug level.
type Options struct {
	Level   config.LogLevel
	Format  config.LogFormat
	File    string
	Verbose bool
}

// FromConfig returns the options described by cfg.
func FromConfig(cfg config.LoggingConfig, verbose bool) Options {
	return Options{Level: cfg.Level, Format: cfg.Format, File: cfg.File, Verbose: verbose}
}

// Logger is a configured slog.Logger plus the resources it holds open.
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// New builds a logger writing to w and, when opts.File is set, appending to that file.
func New(w io.Writer, opts Options) (*Logger, error) {
	level := new(slog.LevelVar)
	level.Set(opts.Level.SlogLevel())
	if opts.Verbose {
		level.Set(slog.LevelDebug)
	}

	handlers := []slog.Handler{newHandler(w, opts.Format, level)}

	var closer io.Closer
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open log file").
				WithContext("path", opts.File)
		}
		// Files always get JSON so they stay machine readable.
		handlers = append(handlers, newHandler(f, config.LogFormatJSON, level))
		closer = f
	}

	var h slog.Handler
	if len(handlers) == 1 {
		h = handlers[0]
	} else {
		h = slogmulti.Fanout(handlers...)
	}
	return &Logger{Logger: slog.New(h), level: level, closer: closer}, nil
}

// Setup builds a logger on stderr and installs it as the slog default.
func Setup(opts Options) (*Logger, error) {
	l, err := New(os.Stderr, opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l.Logger)
	return l, nil
}

// SetLevel changes the level of every handler.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func newHandler(w io.Writer, format config.LogFormat, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
