// Package ratelimit limits how many requests a client may make in a time
// window. Counters live in a Store: MemoryStore for a single process,
// RedisStore when several instances share the limit.
package ratelimit

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// Store is the interface for rate limit storage backends
type Store interface {
	// Increment adds one to the counter for key and returns the new count
	// and the time left in the window. An absent or expired counter starts
	// a new window at 1.
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error)

	// Decrement takes one back from the counter for key. A missing key is
	// not an error.
	Decrement(ctx context.Context, key string) error

	// Get returns the current count for key and the time left in its window.
	Get(ctx context.Context, key string) (int, time.Duration, error)

	// Reset drops the counter for key
	Reset(ctx context.Context, key string) error

	// Close releases the store's resources
	Close() error
}

// Config holds configuration for the RateLimit layer
type Config struct {
	// Max is the maximum number of requests allowed in the time window
	Max int

	// Window is the time window for rate limiting
	Window time.Duration

	// Store is the storage backend for rate limit counters
	// Default: NewMemoryStore()
	Store Store

	// KeyGenerator returns the key a request is counted under
	// Default: the client IP
	KeyGenerator func(*router.Ctx) string

	// Handler answers requests over the limit
	// Default: returns 429 Too Many Requests
	Handler router.Handler

	// SkipFailedRequests gives back the slot of requests answered with a
	// status >= 400 or an error
	SkipFailedRequests bool

	// SkipSuccessfulRequests gives back the slot of requests answered
	// with a status < 400
	SkipSuccessfulRequests bool

	// HeaderPrefix is the prefix for rate limit headers
	// Default: "X-RateLimit-"
	HeaderPrefix string
}

// DefaultConfig returns default configuration for rate limiting
func DefaultConfig() Config {
	return Config{
		Max:          100,
		Window:       time.Minute,
		KeyGenerator: keyByIP,
		Handler:      tooManyRequests,
		HeaderPrefix: "X-RateLimit-",
	}
}

// LoadConfig loads Config from environment variables
// Environment variables:
//   - RATE_LIMIT_MAX (int): requests allowed per window; 0 disables (default: 100)
//   - RATE_LIMIT_WINDOW (duration): window length (default: 1m)
//   - RATE_LIMIT_HEADER_PREFIX (string): default "X-RateLimit-"
//
// Returns nil when rate limiting is disabled
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Max = util.GetEnvInt("RATE_LIMIT_MAX", cfg.Max)
	if cfg.Max <= 0 {
		return nil
	}
	cfg.Window = util.GetEnvDuration("RATE_LIMIT_WINDOW", cfg.Window)
	cfg.HeaderPrefix = util.GetEnv("RATE_LIMIT_HEADER_PREFIX", cfg.HeaderPrefix)
	return &cfg
}

func keyByIP(c *router.Ctx) string {
	return c.IP()
}

func tooManyRequests(c *router.Ctx) error {
	return errors.TooManyRequests("Too many requests, please try again later", nil)
}

// RateLimit creates a layer that counts requests per key and answers the
// ones over Max within Window with Handler, stopping the chain. Every
// counted request gets X-RateLimit-Limit, -Remaining and -Reset headers;
// rejected ones also get Retry-After.
//
// When the store fails the request is let through and the failure logged.
//
// Example usage:
//
//	r.Use(ratelimit.RateLimit())
//
//	api := r.Group("/api")
//	api.Use(ratelimit.RateLimit(ratelimit.Config{
//	    Max:    10,
//	    Window: time.Minute,
//	    Store:  ratelimit.NewRedisStore(adapter, "api:"),
//	    KeyGenerator: func(c *router.Ctx) string {
//	        return c.BearerToken()
//	    },
//	}))
func RateLimit(config ...Config) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultConfig)

	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = keyByIP
	}
	if cfg.Handler == nil {
		cfg.Handler = tooManyRequests
	}
	if cfg.HeaderPrefix == "" {
		cfg.HeaderPrefix = "X-RateLimit-"
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	return func(c *router.Ctx) error {
		ctx := c.Context()
		key := cfg.KeyGenerator(c)

		count, ttl, err := cfg.Store.Increment(ctx, key, cfg.Window)
		if err != nil {
			c.Logger().Error(err, "component", "ratelimit", "op", "increment", "key", key)
			c.Next()
			return nil
		}

		c.Set(cfg.HeaderPrefix+"Limit", strconv.Itoa(cfg.Max))
		c.Set(cfg.HeaderPrefix+"Remaining", strconv.Itoa(max(cfg.Max-count, 0)))
		c.Set(cfg.HeaderPrefix+"Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > cfg.Max {
			c.Set("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			return cfg.Handler(c)
		}

		if !cfg.SkipFailedRequests && !cfg.SkipSuccessfulRequests {
			c.Next()
			return nil
		}

		err = c.Continue()
		failed := err != nil || c.ResponseStatus() >= http.StatusBadRequest
		if (failed && cfg.SkipFailedRequests) || (!failed && cfg.SkipSuccessfulRequests) {
			if derr := cfg.Store.Decrement(context.WithoutCancel(ctx), key); derr != nil {
				c.Logger().Error(derr, "component", "ratelimit", "op", "decrement", "key", key)
			}
		}
		return err
	}
}
