package middleware

import (
	"net/http"
	"strings"

	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// HeartbeatConfig holds configuration for the Heartbeat middleware
type HeartbeatConfig struct {
	// Endpoint is the path to respond to
	// Default: "/ping"
	Endpoint string

	// Response is the response body to send
	// Default: "."
	Response string
}

// DefaultHeartbeatConfig returns default heartbeat configuration
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Endpoint: "/ping",
		Response: ".",
	}
}

// LoadHeartbeatConfig loads HeartbeatConfig from environment variables
// Environment variables:
//   - ENABLE_HEARTBEAT (bool): enable/disable the endpoint (default: true)
//   - HEARTBEAT_ENDPOINT (string): path to answer (default: "/ping")
//
// Returns nil if ENABLE_HEARTBEAT=false
func LoadHeartbeatConfig() *HeartbeatConfig {
	if !util.GetEnvBool("ENABLE_HEARTBEAT", true) {
		return nil
	}
	cfg := DefaultHeartbeatConfig()
	cfg.Endpoint = util.GetEnv("HEARTBEAT_ENDPOINT", cfg.Endpoint)
	return &cfg
}

// Heartbeat creates a layer that answers GET and HEAD on the endpoint with
// 200 and stops the chain, so health checks never reach later layers.
//
// Example usage:
//
//	r.Use(middleware.Heartbeat())
//
//	r.Use(middleware.Heartbeat(middleware.HeartbeatConfig{
//	    Endpoint: "/health",
//	    Response: "OK",
//	}))
func Heartbeat(config ...HeartbeatConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultHeartbeatConfig)

	if !strings.HasPrefix(cfg.Endpoint, "/") {
		cfg.Endpoint = "/" + cfg.Endpoint
	}

	return func(c *router.Ctx) error {
		method := c.Method()
		if (method != http.MethodGet && method != http.MethodHead) || c.Path() != cfg.Endpoint {
			c.Next()
			return nil
		}

		if method == http.MethodHead {
			c.Set("Content-Type", "text/plain; charset=utf-8")
			return c.Status(http.StatusOK).End()
		}
		return c.Status(http.StatusOK).SendString(cfg.Response)
	}
}
