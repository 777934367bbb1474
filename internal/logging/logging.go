// Package logging builds the process slog.Logger: coloured stderr output,
// an optional rotated log file, or file-only output while the TUI owns the
// terminal.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure Setup.
type Options struct {
	File  string // rotated log file; empty disables file output
	Level string // debug|info|warn|error
	TUI   bool   // never write to stderr
	// Stderr overrides os.Stderr, mainly for tests.
	Stderr io.Writer
}

// Logger is a configured slog.Logger plus the file it may hold open.
type Logger struct {
	*slog.Logger
	file *lumberjack.Logger
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup builds the logger described by opts.
func Setup(opts Options) (*Logger, error) {
	lvl := ParseLevel(opts.Level)
	var handlers []slog.Handler
	out := &Logger{}

	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		out.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		handlers = append(handlers, tint.NewHandler(out.file, &tint.Options{
			Level:       lvl,
			TimeFormat:  time.RFC3339,
			NoColor:     true,
			ReplaceAttr: redact,
		}))
	}

	if !opts.TUI {
		w := opts.Stderr
		noColor := os.Getenv("NO_COLOR") != ""
		if w == nil {
			w = os.Stderr
			noColor = noColor || !isatty.IsTerminal(os.Stderr.Fd())
		} else {
			noColor = true
		}
		handlers = append(handlers, tint.NewHandler(w, &tint.Options{
			Level:       lvl,
			TimeFormat:  time.TimeOnly,
			NoColor:     noColor,
			ReplaceAttr: redact,
		}))
	}

	switch len(handlers) {
	case 0:
		out.Logger = slog.New(slog.DiscardHandler)
	case 1:
		out.Logger = slog.New(handlers[0])
	default:
		out.Logger = slog.New(&MultiHandler{handlers: handlers})
	}
	return out, nil
}

// redact keeps credentials out of every log sink.
func redact(_ []string, a slog.Attr) slog.Attr {
	switch strings.ToLower(a.Key) {
	case "token", "authorization", "password":
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

// MultiHandler fans a record out to several handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes record to every enabled handler, even after one fails.
func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}
