// Package slog wraps log/slog with the environment-driven setup used by the
// server and helpers that attribute records to the caller's source line.
package slog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/azizndao/gexpress/util"
)

// Logger is a *slog.Logger whose Error takes an error value.
type Logger struct {
	*slog.Logger
}

// Config controls how Create builds the handler.
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	AddSource bool
	Output    io.Writer
}

// DefaultConfig returns JSON output at Info level on stdout.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "json",
		AddSource: true,
		Output:    os.Stdout,
	}
}

// LoadConfig reads LOG_LEVEL, LOG_FORMAT and IS_DEBUG. Debug mode switches to
// text output at Debug level unless LOG_LEVEL says otherwise.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if util.GetEnvBool("IS_DEBUG", false) {
		cfg.Level = slog.LevelDebug
		cfg.Format = "text"
	}
	cfg.Level = parseLevel(util.GetEnv("LOG_LEVEL", ""), cfg.Level)
	cfg.Format = strings.ToLower(util.GetEnv("LOG_FORMAT", cfg.Format))
	return cfg
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	if s == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return level
}

// Create builds a Logger from the environment.
func Create() *Logger {
	return New(LoadConfig())
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// DiscardLogger returns a Logger that drops every record. Used in tests.
func DiscardLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// With returns a Logger that includes the given attributes in each record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Error logs err at Error level.
func (l *Logger) Error(err error, args ...any) {
	l.log(context.Background(), 0, slog.LevelError, err.Error(), args...)
}

// InfoWithSource logs msg at Info level, attributing it to the caller skip
// frames above the direct caller.
func (l *Logger) InfoWithSource(ctx context.Context, skip int, msg string, args ...any) {
	l.log(ctx, skip, slog.LevelInfo, msg, args...)
}

// ErrorWithSource logs err at Error level, attributing it like InfoWithSource.
func (l *Logger) ErrorWithSource(ctx context.Context, skip int, err error, args ...any) {
	l.log(ctx, skip, slog.LevelError, err.Error(), args...)
}

func (l *Logger) log(ctx context.Context, skip int, level slog.Level, msg string, args ...any) {
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// runtime.Callers, log, the exported wrapper, then skip more.
	runtime.Callers(skip+3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}
