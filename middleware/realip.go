package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/samber/lo"

	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// RealIPConfig holds configuration for the RealIP middleware
type RealIPConfig struct {
	// TrustedProxies is a list of CIDR ranges for trusted proxies
	// Only these proxies are allowed to set the client IP headers
	// If empty, all proxies are trusted (not recommended for production)
	TrustedProxies []string

	// Headers is the priority list of headers to check for the real IP
	Headers []string
}

// DefaultRealIPConfig returns default configuration for RealIP middleware
func DefaultRealIPConfig() RealIPConfig {
	return RealIPConfig{
		TrustedProxies: []string{
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"127.0.0.0/8",
			"::1/128",
			"fc00::/7",
			"fe80::/10",
		},
		Headers: []string{
			"CF-Connecting-IP",
			"True-Client-IP",
			"X-Real-IP",
			"X-Forwarded-For",
		},
	}
}

// RealIP returns a layer that rewrites Request.RemoteAddr to the client IP
// found in proxy headers, but only when the direct peer is a trusted proxy.
// Later layers then see the client address through c.IP and RemoteAddr.
// X-Forwarded-For and X-Real-IP are dropped once used, and always dropped
// when they come from an untrusted peer.
//
// Example usage:
//
//	r.Use(middleware.RealIP(middleware.RealIPConfig{
//	    TrustedProxies: []string{"10.0.0.0/8"},
//	    Headers:        []string{"X-Forwarded-For"},
//	}))
func RealIP(config ...RealIPConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultRealIPConfig)

	trusted := lo.FilterMap(cfg.TrustedProxies, func(cidr string, _ int) (netip.Prefix, bool) {
		prefix, err := netip.ParsePrefix(cidr)
		return prefix, err == nil
	})
	headers := cfg.Headers
	if len(headers) == 0 {
		headers = DefaultRealIPConfig().Headers
	}

	return func(c *router.Ctx) error {
		c.Next()

		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}
		if len(trusted) > 0 && !isTrustedProxy(host, trusted) {
			// Headers from an untrusted peer are client input.
			stripProxyHeaders(c.Request.Header)
			return nil
		}

		for _, h := range headers {
			value := c.Get(h)
			if value == "" {
				continue
			}
			first, _, _ := strings.Cut(value, ",")
			if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
				c.Request.RemoteAddr = addr.String()
				stripProxyHeaders(c.Request.Header)
				return nil
			}
		}
		return nil
	}
}

func stripProxyHeaders(h http.Header) {
	h.Del("X-Forwarded-For")
	h.Del("X-Real-IP")
}

func isTrustedProxy(host string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return lo.ContainsBy(trusted, func(p netip.Prefix) bool {
		return p.Contains(addr)
	})
}
