package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// DefaultRequestIDHeader is the default header name for request ID
const DefaultRequestIDHeader = "X-Request-ID"

// RequestIDConfig holds configuration for the RequestID middleware
type RequestIDConfig struct {
	// Header is the name of the header to use for request ID
	// Default: "X-Request-ID"
	Header string

	// Generator is a function that generates a unique request ID
	// Default: generates a random 16-byte hex string
	Generator func() string
}

// DefaultRequestIDConfig returns default configuration for RequestID middleware
func DefaultRequestIDConfig() RequestIDConfig {
	return RequestIDConfig{
		Header:    DefaultRequestIDHeader,
		Generator: defaultRequestIDGenerator,
	}
}

func defaultRequestIDGenerator() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// LoadRequestIDConfig loads RequestIDConfig from environment variables
// Environment variable: ENABLE_REQUEST_ID (bool)
// Returns nil if ENABLE_REQUEST_ID=false, otherwise returns default config
func LoadRequestIDConfig() *RequestIDConfig {
	if !util.GetEnvBool("ENABLE_REQUEST_ID", true) {
		return nil
	}

	cfg := DefaultRequestIDConfig()
	cfg.Header = util.GetEnv("REQUEST_ID_HEADER", cfg.Header)
	return &cfg
}

// RequestID creates a middleware that adds a unique request ID to each request.
// An incoming id in the configured header is kept; otherwise one is
// generated. The id is echoed in the response header and stored in the
// request context under chi's key, so GetRequestID and chi's GetReqID agree.
//
// Example usage:
//
//	r.Use(middleware.RequestID())
//
//	r.Get("/", func(c *router.Ctx) error {
//	    return c.JSON(map[string]string{"request_id": middleware.GetRequestID(c)})
//	})
func RequestID(config ...RequestIDConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultRequestIDConfig)
	if cfg.Header == "" {
		cfg.Header = DefaultRequestIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = defaultRequestIDGenerator
	}

	return func(c *router.Ctx) error {
		requestID := c.Get(cfg.Header)
		if requestID == "" {
			requestID = cfg.Generator()
		}

		c.Set(cfg.Header, requestID)
		c.SetValue(middleware.RequestIDKey, requestID)

		c.Next()
		return nil
	}
}

// GetRequestID returns the request id set by RequestID or by chi's
// RequestID middleware, or "".
func GetRequestID(c *router.Ctx) string {
	return RequestIDFrom(c.Context())
}

// RequestIDFrom is GetRequestID for a plain context.
func RequestIDFrom(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
