package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/azizndao/gexpress/router"
	gslog "github.com/azizndao/gexpress/slog"
	"github.com/azizndao/gexpress/util"
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	// Logger receives one record per request. Default: the router's logger.
	Logger *gslog.Logger

	// Level is the level of successful requests; 4xx are logged at Warn
	// and 5xx at Error. Records below the logger's level are dropped.
	// Default: Info
	Level slog.Level

	// Skip returns true for requests that should not be logged
	Skip func(*router.Ctx) bool
}

// DefaultLoggerConfig returns default logger configuration
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{Level: slog.LevelInfo}
}

// LoadLoggerConfig loads LoggerConfig from environment variables
// Environment variables:
//   - ENABLE_LOGGER (bool): enable/disable logger middleware (default: true)
//   - LOGGER_SKIP_PATHS ([]string): comma separated paths never logged, e.g. "/ping,/metrics"
//
// Returns nil if ENABLE_LOGGER=false, otherwise returns config
func LoadLoggerConfig() *LoggerConfig {
	if !util.GetEnvBool("ENABLE_LOGGER", true) {
		return nil
	}

	cfg := DefaultLoggerConfig()
	if skip := util.GetEnvSlice("LOGGER_SKIP_PATHS", nil); len(skip) > 0 {
		paths := make(map[string]struct{}, len(skip))
		for _, p := range skip {
			paths[p] = struct{}{}
		}
		cfg.Skip = func(c *router.Ctx) bool {
			_, ok := paths[c.Path()]
			return ok
		}
	}
	return &cfg
}

// Logger creates a layer that logs every request once the rest of the chain
// has run, including requests answered by the 404/405 fallbacks.
//
// Example usage:
//
//	r.Use(middleware.Logger())
//
//	r.Use(middleware.Logger(middleware.LoggerConfig{
//	    Level: slog.LevelDebug,
//	    Skip:  func(c *router.Ctx) bool { return c.Path() == "/ping" },
//	}))
func Logger(config ...LoggerConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultLoggerConfig)

	return func(c *router.Ctx) error {
		if cfg.Skip != nil && cfg.Skip(c) {
			c.Next()
			return nil
		}

		start := time.Now()
		err := c.Continue()
		duration := time.Since(start)

		logger := cfg.Logger
		if logger == nil {
			logger = c.Logger()
		}
		logRequest(logger, cfg.Level, c, duration)
		return err
	}
}

func logRequest(logger *gslog.Logger, base slog.Level, c *router.Ctx, duration time.Duration) {
	status := c.ResponseStatus()
	if status == 0 {
		status = http.StatusOK
	}

	level := base
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	ctx := c.Context()
	if !logger.Enabled(ctx, level) {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
		slog.Int("size", c.BytesWritten()),
		slog.String("remote_addr", c.IP()),
	}
	if rctx := chi.RouteContext(ctx); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			attrs = append(attrs, slog.String("route", pattern))
		}
	}
	if id := GetRequestID(c); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if ua := c.UserAgent(); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	logger.LogAttrs(ctx, level, "HTTP request", attrs...)
}
