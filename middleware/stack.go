// Package middleware provides the layers most applications put in front of
// their routes: request logging, recovery, request ids, security headers,
// CORS, body limits, timeouts, metrics and tracing.
//
// Layers are router.Handlers and are registered with Router.Use or UseWith.
// Stack returns the standard net/http middleware chain built from
// environment variables, for Router.UseHTTP.
package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/slog"
	"github.com/azizndao/gexpress/util"
)

// Stack builds a middleware stack from environment variables.
// Middleware are loaded and applied in this specific order:
//  1. RealIP - Extract real client IP from proxy headers
//  2. RequestID - Generate unique request IDs
//  3. Logger - Request/response logging
//  4. Recovery - Panic recovery (prevents crashes)
//  5. Compress - GZIP/Deflate compression
//  6. BodyLimit - Request body size limiting
//  7. RateLimit - Rate limiting (if configured)
//  8. CORS - Cross-origin resource sharing
//
// Each middleware can be disabled via its corresponding ENABLE_* environment variable.
func Stack(logger *slog.Logger) chi.Middlewares {
	if logger == nil {
		logger = slog.DiscardLogger()
	}
	middlewares := make(chi.Middlewares, 0, 8)

	if util.GetEnvBool("ENABLE_REAL_IP", true) {
		middlewares = append(middlewares, middleware.RealIP)
	}

	if LoadRequestIDConfig() != nil {
		middlewares = append(middlewares, middleware.RequestID)
	}

	if util.GetEnvBool("ENABLE_LOGGER", true) {
		if util.GetEnvBool("IS_DEBUG", false) {
			middlewares = append(middlewares, middleware.Logger)
		} else {
			middlewares = append(middlewares, httplog.RequestLogger(logger.Logger, &httplog.Options{
				Schema: httplog.SchemaECS,
			}))
		}
	}

	if util.GetEnvBool("ENABLE_RECOVERY", true) {
		middlewares = append(middlewares, middleware.Recoverer)
	}

	if compressCfg := LoadCompressConfig(); compressCfg != nil {
		middlewares = append(middlewares, middleware.Compress(compressCfg.Level))
	}

	if bodyLimitCfg := LoadBodyLimitConfig(); bodyLimitCfg != nil {
		middlewares = append(middlewares, middleware.RequestSize(bodyLimitCfg.MaxSize))
	}

	if rateLimitCfg := LoadRateLimitConfig(); rateLimitCfg != nil {
		middlewares = append(middlewares, httprate.Limit(
			rateLimitCfg.Max,
			rateLimitCfg.Window,
			httprate.WithKeyByRealIP(),
			httprate.WithLimitHandler(writeTooManyRequests),
		))
	}

	if corsCfg := LoadCORSOptions(); corsCfg != nil {
		middlewares = append(middlewares, cors.Handler(*corsCfg))
	}
	return middlewares
}

func writeTooManyRequests(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(errors.TooManyRequests("Rate-limited", nil))
}

// RateLimitConfig configures the httprate limiter in Stack. Per-route
// limits with pluggable storage live in the ratelimit package.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// LoadRateLimitConfig loads RateLimitConfig from environment variables
// Environment variables:
//   - RATE_LIMIT_MAX (int): requests allowed per window; 0 disables (default: 0)
//   - RATE_LIMIT_WINDOW (duration): window length (default: 1m)
//
// Returns nil when rate limiting is disabled
func LoadRateLimitConfig() *RateLimitConfig {
	limit := util.GetEnvInt("RATE_LIMIT_MAX", 0)
	if limit <= 0 {
		return nil
	}
	return &RateLimitConfig{
		Max:    limit,
		Window: util.GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}
