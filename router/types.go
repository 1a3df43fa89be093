package router

import (
	"net/http"

	"github.com/azizndao/gexpress/intern"
	"github.com/azizndao/gexpress/util"
)

// Handler is the function signature for middleware and route handlers.
// A handler lets the chain go on by calling c.Next (or c.Continue);
// returning without doing so means the response is final. A non-nil error
// also stops the chain and is rendered by the router's ErrorHandler.
type Handler func(*Ctx) error

// ErrorHandler renders an error returned by a handler.
type ErrorHandler func(c *Ctx, err error)

// RouteInfo describes one registered layer.
type RouteInfo struct {
	Index   int       `json:"index"`
	Kind    LayerKind `json:"kind"`
	Pattern string    `json:"pattern"`
	Methods []string  `json:"methods,omitempty"`
}

// Options tunes dispatch behaviour.
type Options struct {
	// AutoHEAD answers HEAD requests with the GET route when no HEAD route
	// matches.
	AutoHEAD bool

	// AutoOPTIONS answers OPTIONS requests on a known path with 204 and an
	// Allow header when no OPTIONS route matches.
	AutoOPTIONS bool

	// NotFound runs when no route pattern matches the path. Default: 404 JSON.
	NotFound Handler

	// MethodNotAllowed runs when the path matches a route under other
	// methods only. The Allow header is already set. Default: 405 JSON.
	MethodNotAllowed Handler

	// ErrorHandler renders handler errors. Default: DefaultErrorHandler.
	ErrorHandler ErrorHandler

	// Interner holds parameter names. Default: intern.Default().
	Interner *intern.Interner
}

// DefaultOptions returns sensible default options
func DefaultOptions() Options {
	return Options{
		AutoHEAD:    true,
		AutoOPTIONS: true,
	}
}

// LoadOptions loads Options from environment variables
// Environment variables:
//   - ROUTER_AUTO_HEAD (bool): serve HEAD from GET routes (default: true)
//   - ROUTER_AUTO_OPTIONS (bool): answer OPTIONS with Allow (default: true)
func LoadOptions() Options {
	opts := DefaultOptions()
	opts.AutoHEAD = util.GetEnvBool("ROUTER_AUTO_HEAD", opts.AutoHEAD)
	opts.AutoOPTIONS = util.GetEnvBool("ROUTER_AUTO_OPTIONS", opts.AutoOPTIONS)
	return opts
}

// methods lists the verbs with registration helpers, in Allow header order.
var methods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}
