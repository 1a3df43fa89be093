package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/cors"

	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// CORSOptions contains configuration for CORS middleware
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string // Headers that browsers are allowed to access
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSOptions returns sensible default CORS options
func DefaultCORSOptions() CORSOptions {
	return CORSOptions{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With", "X-Request-ID"},
		MaxAge:         24 * time.Hour,
	}
}

// LoadCORSOptions loads go-chi/cors options for Stack from environment variables
// Environment variables:
//   - ENABLE_CORS (bool): enable/disable CORS (default: true)
//   - CORS_ALLOWED_ORIGINS ([]string): comma separated origins (default: "*")
//   - CORS_ALLOWED_METHODS ([]string): comma separated methods
//   - CORS_ALLOWED_HEADERS ([]string): comma separated request headers
//   - CORS_EXPOSED_HEADERS ([]string): comma separated response headers
//   - CORS_ALLOW_CREDENTIALS (bool): default false
//   - CORS_MAX_AGE (duration): preflight cache time (default: 24h)
//
// Returns nil if ENABLE_CORS=false
func LoadCORSOptions() *cors.Options {
	if !util.GetEnvBool("ENABLE_CORS", true) {
		return nil
	}
	opts := LoadCORSConfig()
	return &cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   opts.AllowedMethods,
		AllowedHeaders:   opts.AllowedHeaders,
		ExposedHeaders:   opts.ExposedHeaders,
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           int(opts.MaxAge.Seconds()),
	}
}

// LoadCORSConfig reads the CORS_* variables into CORSOptions for the CORS layer.
func LoadCORSConfig() CORSOptions {
	opts := DefaultCORSOptions()
	opts.AllowedOrigins = util.GetEnvSlice("CORS_ALLOWED_ORIGINS", opts.AllowedOrigins)
	opts.AllowedMethods = util.GetEnvSlice("CORS_ALLOWED_METHODS", opts.AllowedMethods)
	opts.AllowedHeaders = util.GetEnvSlice("CORS_ALLOWED_HEADERS", opts.AllowedHeaders)
	opts.ExposedHeaders = util.GetEnvSlice("CORS_EXPOSED_HEADERS", opts.ExposedHeaders)
	opts.AllowCredentials = util.GetEnvBool("CORS_ALLOW_CREDENTIALS", opts.AllowCredentials)
	opts.MaxAge = util.GetEnvDuration("CORS_MAX_AGE", opts.MaxAge)
	return opts
}

// CORS returns a layer handling Cross-Origin Resource Sharing. Allowed
// origins get the Access-Control-* headers. A preflight request (OPTIONS
// carrying an Origin) is answered with 204 and stops the chain.
func CORS(options ...CORSOptions) router.Handler {
	opts := util.FirstOrDefault(options, DefaultCORSOptions)

	wildcard := slices.Contains(opts.AllowedOrigins, "*")
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")
	exposed := strings.Join(opts.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(int(opts.MaxAge.Seconds()))

	return func(c *router.Ctx) error {
		origin := c.Get("Origin")
		preflight := c.Method() == http.MethodOptions && origin != ""

		if origin != "" && (wildcard || slices.Contains(opts.AllowedOrigins, origin)) {
			// Credentials forbid the "*" origin, so echo the caller's.
			if wildcard && !opts.AllowCredentials {
				c.Set("Access-Control-Allow-Origin", "*")
			} else {
				c.Set("Access-Control-Allow-Origin", origin)
				c.Response.Header().Add("Vary", "Origin")
			}
			if opts.AllowCredentials {
				c.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" && !preflight {
				c.Set("Access-Control-Expose-Headers", exposed)
			}
		}

		if !preflight {
			c.Next()
			return nil
		}

		if methods != "" {
			c.Set("Access-Control-Allow-Methods", methods)
		}
		if headers != "" {
			c.Set("Access-Control-Allow-Headers", headers)
		}
		if opts.MaxAge > 0 {
			c.Set("Access-Control-Max-Age", maxAge)
		}
		return c.NoContent()
	}
}
