package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/azizndao/gexpress/slog"
	"github.com/azizndao/gexpress/typeutil"
	"github.com/azizndao/gexpress/validation"
)

// Ctx carries one request through the layer chain: the request and response,
// the bound path parameters and the continuation flag.
type Ctx struct {
	Request  *http.Request
	Response http.ResponseWriter

	writer     middleware.WrapResponseWriter
	statusCode int
	body       []byte // Cached request body
	bodyRead   bool

	params Params
	router *Router
	chain  *chain
	next   bool
}

func newCtx(w middleware.WrapResponseWriter, r *http.Request, router *Router) *Ctx {
	return &Ctx{
		Request:    r,
		Response:   w,
		writer:     w,
		statusCode: http.StatusOK,
		router:     router,
		params:     newParams(router.interner),
	}
}

// Next lets the chain go on once the current handler returns.
func (c *Ctx) Next() {
	c.next = true
}

// Continue marks the continuation and runs the rest of the chain right away,
// returning once it is done. Code after Continue sees the final response,
// which is how timing, tracing and recovery wrap downstream layers. The
// returned error is whatever a downstream handler failed with; it has
// already been rendered.
func (c *Ctx) Continue() error {
	c.next = true
	if c.chain == nil {
		return nil
	}
	return c.run()
}

// Abort stops the chain even if Next was called.
func (c *Ctx) Abort() {
	if c.chain != nil {
		c.chain.halted = true
	}
}

// Params returns every bound path parameter.
func (c *Ctx) Params() Params {
	return c.params
}

// Param gets a path parameter by name
func (c *Ctx) Param(name string) string {
	return c.params.Value(name)
}

// PathValue is an alias for Param
func (c *Ctx) PathValue(name string) string {
	return c.Param(name)
}

// Written reports whether a status line has been sent.
func (c *Ctx) Written() bool {
	return c.writer.Status() != 0
}

// ResponseStatus returns the status sent to the client, or 0.
func (c *Ctx) ResponseStatus() int {
	return c.writer.Status()
}

// BytesWritten returns the number of body bytes sent so far.
func (c *Ctx) BytesWritten() int {
	return c.writer.BytesWritten()
}

// Router returns the router dispatching this request.
func (c *Ctx) Router() *Router {
	return c.router
}

// Logger returns the logger instance for logging within routes and middleware
func (c *Ctx) Logger() *slog.Logger {
	return c.router.logger
}

// Validator returns the validator used by ValidateBody.
func (c *Ctx) Validator() *validation.Validator {
	return c.router.validator
}

func (c *Ctx) Context() context.Context {
	return c.Request.Context()
}

// Deadline returns the time when work done on behalf of this context should be canceled
func (c *Ctx) Deadline() (deadline time.Time, ok bool) {
	return c.Request.Context().Deadline()
}

// Done returns a channel that's closed when work done on behalf of this context should be canceled
func (c *Ctx) Done() <-chan struct{} {
	return c.Request.Context().Done()
}

// Err returns the error if the context is canceled or has exceeded its deadline
func (c *Ctx) Err() error {
	return c.Request.Context().Err()
}

// Value returns the value associated with this context for key, or nil if no value is associated with key
func (c *Ctx) Value(key any) any {
	return c.Request.Context().Value(key)
}

// SetValue sets a custom value in the request context
func (c *Ctx) SetValue(key any, value any) {
	c.Request = c.Request.WithContext(context.WithValue(c.Context(), key, value))
}

// GetValue gets a value from the request context
func (c *Ctx) GetValue(key any) any {
	return c.Context().Value(key)
}

// ValueAs reads a context value and converts it to T.
func ValueAs[T any](c *Ctx, key any) (T, error) {
	return typeutil.Convert[T](c.GetValue(key))
}
