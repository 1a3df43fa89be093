package middleware

import (
	"fmt"

	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// SecurityHeadersConfig lists the headers SecurityHeaders sets. An empty
// field leaves that header alone.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	XSSProtection         string
	ContentTypeOptions    string
	FrameOptions          string
	ReferrerPolicy        string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds; 0
	// disables the header.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// DefaultSecurityHeadersConfig returns a conservative header set
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline';",
		XSSProtection:         "1; mode=block",
		ContentTypeOptions:    "nosniff",
		FrameOptions:          "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
	}
}

// LoadSecurityHeadersConfig loads SecurityHeadersConfig from environment variables
// Environment variables:
//   - ENABLE_SECURITY_HEADERS (bool): enable/disable the layer (default: true)
//   - SECURITY_CSP (string): Content-Security-Policy value
//   - SECURITY_FRAME_OPTIONS (string): X-Frame-Options value (default: DENY)
//   - SECURITY_HSTS_MAX_AGE (int): HSTS max-age in seconds, 0 disables (default: 31536000)
//
// Returns nil if ENABLE_SECURITY_HEADERS=false
func LoadSecurityHeadersConfig() *SecurityHeadersConfig {
	if !util.GetEnvBool("ENABLE_SECURITY_HEADERS", true) {
		return nil
	}
	cfg := DefaultSecurityHeadersConfig()
	cfg.ContentSecurityPolicy = util.GetEnv("SECURITY_CSP", cfg.ContentSecurityPolicy)
	cfg.FrameOptions = util.GetEnv("SECURITY_FRAME_OPTIONS", cfg.FrameOptions)
	cfg.HSTSMaxAge = util.GetEnvInt("SECURITY_HSTS_MAX_AGE", cfg.HSTSMaxAge)
	return &cfg
}

// SecurityHeaders returns a layer that sets browser security headers on
// every response and lets the chain go on. It never rejects a request.
func SecurityHeaders(config ...SecurityHeadersConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultSecurityHeadersConfig)

	headers := make(map[string]string, 6)
	set := func(name, value string) {
		if value != "" {
			headers[name] = value
		}
	}
	set("Content-Security-Policy", cfg.ContentSecurityPolicy)
	set("X-XSS-Protection", cfg.XSSProtection)
	set("X-Content-Type-Options", cfg.ContentTypeOptions)
	set("X-Frame-Options", cfg.FrameOptions)
	set("Referrer-Policy", cfg.ReferrerPolicy)
	if cfg.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers["Strict-Transport-Security"] = hsts
	}

	return func(c *router.Ctx) error {
		c.SetHeaders(headers)
		c.Next()
		return nil
	}
}
