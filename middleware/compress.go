package middleware

import (
	"compress/gzip"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

// CompressConfig holds configuration for the Compress middleware
type CompressConfig struct {
	// Level is the compression level (0-9)
	// -1 = default compression
	// 0 = no compression
	// 1 = best speed
	// 9 = best compression
	// Default: gzip.DefaultCompression (-1)
	Level int

	// Types restricts compression to these content types.
	// Default: chi's list of text, JSON and JavaScript types
	Types []string
}

// DefaultCompressConfig returns default compression configuration
func DefaultCompressConfig() CompressConfig {
	return CompressConfig{
		Level: gzip.DefaultCompression,
	}
}

// LoadCompressConfig loads CompressConfig from environment variables
// Environment variables:
//   - ENABLE_COMPRESS (bool): enable/disable compression (default: true)
//   - COMPRESS_LEVEL (int): compression level (default: -1)
//
// Returns nil if ENABLE_COMPRESS=false
func LoadCompressConfig() *CompressConfig {
	if !util.GetEnvBool("ENABLE_COMPRESS", true) {
		return nil
	}

	cfg := DefaultCompressConfig()
	cfg.Level = util.GetEnvInt("COMPRESS_LEVEL", cfg.Level)
	return &cfg
}

// Compress returns a layer that compresses responses of later layers with
// chi's gzip/deflate encoder, for clients that accept it.
func Compress(config ...CompressConfig) router.Handler {
	cfg := util.FirstOrDefault(config, DefaultCompressConfig)
	return router.HTTPMiddleware(middleware.Compress(cfg.Level, cfg.Types...))
}
