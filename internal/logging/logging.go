// Package logging builds the slog loggers and rotating writers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	// File sends the log to a rotating file instead of stderr.
	File string
}

// ParseLevel maps a level name to slog. Unknown names mean error, so a typo
// never makes the log noisier.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// New returns the process logger. Console output goes to stderr, colored by
// tint unless the format is json. File output is always JSON.
func New(opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)

	if opts.File != "" {
		h := slog.NewJSONHandler(RotatingFile(opts.File, 16), &slog.HandlerOptions{Level: level})
		return slog.New(h).With("app", "clima")
	}
	return slog.New(newHandler(os.Stderr, opts.Format, level)).With("app", "clima")
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// RotatingFile returns a size-rotated writer for path, creating its
// directory. maxSizeMB bounds each file.
func RotatingFile(path string, maxSizeMB int) *lumberjack.Logger {
	if dir := filepath.Dir(path); dir != "" {
		_ = os.MkdirAll(dir, 0755)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
}
