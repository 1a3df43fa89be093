package middleware

import (
	"context"
	"time"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

const (
	// DefaultTimeout is the default timeout duration for requests
	DefaultTimeout = 30 * time.Second
)

// TimeoutConfig holds configuration for the Timeout middleware
type TimeoutConfig struct {
	// Timeout is the maximum duration for the request
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultTimeoutConfig returns default timeout configuration
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Timeout: DefaultTimeout,
	}
}

// LoadTimeoutConfig loads TimeoutConfig from environment variables
// Environment variable: REQUEST_TIMEOUT (duration); 0 disables (default: 30s)
// Returns nil when the timeout is disabled
func LoadTimeoutConfig() *TimeoutConfig {
	cfg := DefaultTimeoutConfig()
	cfg.Timeout = util.GetEnvDuration("REQUEST_TIMEOUT", cfg.Timeout)
	if cfg.Timeout <= 0 {
		return nil
	}
	return &cfg
}

// Timeout returns a layer that puts a deadline on the request context.
// Later layers stop being dispatched once it passes; handlers doing slow work
// should watch c.Done(). A request that times out before anything was
// written is answered with 504.
func Timeout(config ...TimeoutConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultTimeoutConfig)

	return func(c *router.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), cfg.Timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		err := c.Continue()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Written() {
			return errors.GatewayTimeout(nil, ctx.Err())
		}
		return err
	}
}
