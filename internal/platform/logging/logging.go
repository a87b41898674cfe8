// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelCritical marks failures that were isolated from the request that caused
// them and need operator attention, such as an undelivered verification email.
const LevelCritical = slog.Level(12)

// Options controls the handler built by New.
type Options struct {
	Level string
	// File enables a rotated JSON log file in addition to stdout.
	File string
}

// New returns a JSON logger writing to stdout and, when configured, to a
// rotated file.
func New(opts Options) *slog.Logger {
	var w io.Writer = os.Stdout
	if opts.File != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    128,
			MaxAge:     30,
			MaxBackups: 30,
		})
	}
	return NewWithWriter(w, opts.Level)
}

// NewWithWriter builds a logger on an arbitrary writer.
func NewWithWriter(w io.Writer, level string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: replaceLevel,
	})
	return slog.New(h)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "critical":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// Critical logs msg on the default logger at LevelCritical.
func Critical(ctx context.Context, msg string, args ...any) {
	slog.Default().Log(ctx, LevelCritical, msg, args...)
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}
