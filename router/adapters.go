package router

import (
	"net/http"
)

// HTTPMiddleware runs a standard net/http middleware as a layer. When the
// middleware calls its next handler, the rest of the chain runs with the
// request and writer it passed; if it never does, the chain stops there.
// The next handler must be called on the serving goroutine.
func HTTPMiddleware(mw func(http.Handler) http.Handler) Handler {
	return func(c *Ctx) error {
		res := c.Response
		var downstream error

		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Response = w
			downstream = c.Continue()
		}))
		h.ServeHTTP(c.Response, c.Request)

		// The middleware may have finalized its writer; the request keeps
		// whatever the middleware attached to it.
		c.Response = res
		return downstream
	}
}

// HTTPHandler runs a standard http.Handler as a final handler. Path
// parameters are available to it through URLParam.
func HTTPHandler(h http.Handler) Handler {
	return func(c *Ctx) error {
		h.ServeHTTP(c.Response, c.Request)
		return nil
	}
}

// HTTPHandlerFunc is HTTPHandler for a function.
func HTTPHandlerFunc(fn http.HandlerFunc) Handler {
	return HTTPHandler(fn)
}
