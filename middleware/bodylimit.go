package middleware

import (
	"net/http"
	"strconv"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// Common size constants for convenience
const (
	KB = 1024
	MB = 1024 * KB
	GB = 1024 * MB
)

// BodyLimitConfig holds configuration for the BodyLimit middleware
type BodyLimitConfig struct {
	// MaxSize is the maximum allowed size of request body in bytes
	// Default: 10MB
	MaxSize int64

	// Strict rejects requests whose body length is not declared (chunked
	// uploads) with 411 Length Required.
	// Default: false
	Strict bool

	// SkipFunc is a function that determines if body size check should be skipped
	// Default: nil (check all requests)
	SkipFunc func(*router.Ctx) bool
}

// DefaultBodyLimitConfig returns default configuration for body limit
func DefaultBodyLimitConfig() BodyLimitConfig {
	return BodyLimitConfig{MaxSize: 10 * MB}
}

// LoadBodyLimitConfig loads BodyLimitConfig from environment variables
// Environment variables:
//   - BODY_LIMIT (int): maximum body size in bytes; 0 disables (default: 10MB)
//   - BODY_LIMIT_STRICT (bool): require Content-Length (default: false)
//
// Returns nil when BODY_LIMIT is 0 or negative
func LoadBodyLimitConfig() *BodyLimitConfig {
	cfg := DefaultBodyLimitConfig()
	cfg.MaxSize = util.GetEnvInt64("BODY_LIMIT", cfg.MaxSize)
	if cfg.MaxSize <= 0 {
		return nil
	}
	cfg.Strict = util.GetEnvBool("BODY_LIMIT_STRICT", cfg.Strict)
	return &cfg
}

// BodyLimit creates a layer that rejects request bodies over MaxSize.
//
// A declared Content-Length over the limit is answered with 413 before any
// later layer runs. Bodies without a declared length are capped with
// http.MaxBytesReader, so reading past the limit through Ctx.Body fails with
// 413 as well. In strict mode a body of unknown length gets 411.
//
// Example usage:
//
//	r.Use(middleware.BodyLimit())
//
//	r.UseWith("/upload/*", middleware.BodyLimit(middleware.BodyLimitConfig{
//	    MaxSize: 50 * middleware.MB,
//	}))
func BodyLimit(config ...BodyLimitConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultBodyLimitConfig)

	return func(c *router.Ctx) error {
		if cfg.SkipFunc != nil && cfg.SkipFunc(c) {
			c.Next()
			return nil
		}

		length := c.Request.ContentLength
		if header := c.Get("Content-Length"); header != "" {
			if n, err := strconv.ParseInt(header, 10, 64); err == nil {
				length = n
			}
		}

		switch {
		case length > cfg.MaxSize:
			c.Logger().Warn("body limit: payload too large", "path", c.Path(), "size", length, "limit", cfg.MaxSize)
			return errors.RequestEntityTooLarge(map[string]any{
				"error":          "Payload too large",
				"max_size_bytes": cfg.MaxSize,
				"actual_size":    length,
			}, nil)
		case length < 0 && cfg.Strict:
			c.Logger().Warn("body limit: missing Content-Length", "path", c.Path())
			return errors.LengthRequired(map[string]any{
				"error":          "Content-Length header required",
				"max_size_bytes": cfg.MaxSize,
			}, nil)
		}

		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Response, c.Request.Body, cfg.MaxSize)
		}
		c.Next()
		return nil
	}
}

// BodyLimitWithSize is a helper function that creates a BodyLimit middleware
// with a specific size limit using default configuration
func BodyLimitWithSize(maxSize int64) router.Handler {
	cfg := DefaultBodyLimitConfig()
	cfg.MaxSize = maxSize
	return BodyLimit(cfg)
}
