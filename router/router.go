// Package router dispatches HTTP requests through an ordered stack of
// middleware and route layers.
//
// Layers run in registration order. Middleware layers match by pattern
// alone; every middleware whose pattern matches the path runs. Route layers
// match by method and path, and only the single most specific route pattern
// for the request method contributes. A handler passes control on with
// c.Next(); a handler that returns without calling it produces the final
// response. When every layer passes control on and no route ran, the router
// answers 405 if the path is registered under other methods and 404 if not.
//
// Register every layer before serving. Dispatch only reads the router, so
// any number of requests may be served concurrently.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/intern"
	"github.com/azizndao/gexpress/slog"
	"github.com/azizndao/gexpress/trie"
	"github.com/azizndao/gexpress/util"
	"github.com/azizndao/gexpress/validation"
)

// ErrNoHandler is returned when a layer is registered without handlers.
var ErrNoHandler = errors.New("router: no handler")

// Router owns the layer registry and the matchers that index it: one shared
// matcher for middleware and one per method for routes.
type Router struct {
	registry   Registry
	middleware *trie.Matcher
	routes     map[string]*trie.Matcher

	options      Options
	errorHandler ErrorHandler
	interner     *intern.Interner
	logger       *slog.Logger
	validator    *validation.Validator
}

// New creates a router. A nil logger discards output; a nil validator is
// replaced by one with the default configuration.
func New(logger *slog.Logger, validator *validation.Validator, options ...Options) *Router {
	opts := util.FirstOrDefault(options, DefaultOptions)

	if logger == nil {
		logger = slog.DiscardLogger()
	}
	if validator == nil {
		validator = validation.New(validation.DefaultConfig())
	}
	if opts.NotFound == nil {
		opts.NotFound = notFound
	}
	if opts.MethodNotAllowed == nil {
		opts.MethodNotAllowed = methodNotAllowed
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = DefaultErrorHandler
	}
	if opts.Interner == nil {
		opts.Interner = intern.Default()
	}

	return &Router{
		middleware:   trie.New(),
		routes:       make(map[string]*trie.Matcher),
		options:      opts,
		errorHandler: opts.ErrorHandler,
		interner:     opts.Interner,
		logger:       logger,
		validator:    validator,
	}
}

// Add registers a route layer answering method on pattern with handlers,
// run in order.
func (r *Router) Add(method, pattern string, handlers ...Handler) (*RouteEntry, error) {
	if len(handlers) == 0 {
		return nil, fmt.Errorf("%w for %s %s", ErrNoHandler, method, pattern)
	}
	p, err := trie.ParsePattern(pattern)
	if err != nil {
		return nil, err
	}

	entry := &RouteEntry{router: r, layer: newRouteLayer(p), index: r.registry.Len()}
	if err := entry.add(method, handlers); err != nil {
		return nil, err
	}
	r.registry.Append(entry.layer)
	return entry, nil
}

// AddMiddleware registers one middleware layer per handler under pattern.
func (r *Router) AddMiddleware(pattern string, handlers ...Handler) error {
	if len(handlers) == 0 {
		return fmt.Errorf("%w for middleware %s", ErrNoHandler, pattern)
	}
	p, err := trie.ParsePattern(pattern)
	if err != nil {
		return err
	}
	r.internNames(p)

	for _, h := range handlers {
		if err := r.middleware.InsertPattern(p, r.registry.Len()); err != nil {
			return err
		}
		r.registry.Append(newMiddlewareLayer(p, h))
	}
	return nil
}

// Route registers handlers for method on pattern and returns the entry so
// more methods can be attached. It panics on an invalid pattern.
func (r *Router) Route(pattern, method string, handlers ...Handler) *RouteEntry {
	entry, err := r.Add(method, pattern, handlers...)
	if err != nil {
		panic(err)
	}
	return entry
}

// Handle registers a route with a specific HTTP method
func (r *Router) Handle(method, pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, method, handlers...)
}

// Get registers a GET route
func (r *Router) Get(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodGet, handlers...)
}

// Head registers a HEAD route
func (r *Router) Head(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodHead, handlers...)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodPost, handlers...)
}

// Put registers a PUT route
func (r *Router) Put(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodPut, handlers...)
}

// Patch registers a PATCH route
func (r *Router) Patch(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodPatch, handlers...)
}

// Delete registers a DELETE route
func (r *Router) Delete(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodDelete, handlers...)
}

// Options registers an OPTIONS route
func (r *Router) Options(pattern string, handlers ...Handler) *RouteEntry {
	return r.Route(pattern, http.MethodOptions, handlers...)
}

// Use adds middleware that runs for every path.
func (r *Router) Use(handlers ...Handler) *Router {
	return r.UseWith("*", handlers...)
}

// UseWith adds middleware that runs for paths matching pattern. It panics
// on an invalid pattern.
func (r *Router) UseWith(pattern string, handlers ...Handler) *Router {
	if err := r.AddMiddleware(pattern, handlers...); err != nil {
		panic(err)
	}
	return r
}

// UseHTTP adds standard net/http middleware that runs for every path.
func (r *Router) UseHTTP(middlewares ...func(http.Handler) http.Handler) *Router {
	for _, mw := range middlewares {
		r.Use(HTTPMiddleware(mw))
	}
	return r
}

// Group returns a view of the router that prefixes every pattern.
func (r *Router) Group(prefix string) *Group {
	return &Group{router: r, prefix: prefix}
}

// Routes returns information about all registered layers
func (r *Router) Routes() []RouteInfo {
	return r.registry.Info()
}

// Layer returns the layer at index.
func (r *Router) Layer(index int) *Layer {
	return r.registry.Get(index)
}

// Logger returns the logger instance for the router
func (r *Router) Logger() *slog.Logger {
	return r.logger
}

// Validator returns the validator used by Ctx.ValidateBody.
func (r *Router) Validator() *validation.Validator {
	return r.validator
}

func (r *Router) routeMatcher(method string) *trie.Matcher {
	m, ok := r.routes[method]
	if !ok {
		m = trie.New()
		r.routes[method] = m
	}
	return m
}

// internNames puts a pattern's parameter names in the table at registration
// so requests only ever read it.
func (r *Router) internNames(p trie.Pattern) {
	for _, name := range p.ParamNames() {
		r.interner.GetOrIntern(name)
	}
}

// RouteEntry is a registered route layer. Attaching another method binds it
// to the same pattern and the same position in the layer stack.
type RouteEntry struct {
	router *Router
	layer  *Layer
	index  int
}

func (e *RouteEntry) add(method string, handlers []Handler) error {
	method = strings.ToUpper(method)
	if !e.layer.HasMethod(method) {
		if err := e.router.routeMatcher(method).InsertPattern(e.layer.pattern, e.index); err != nil {
			return err
		}
		e.router.internNames(e.layer.pattern)
	}
	e.layer.push(method, handlers...)
	return nil
}

// Handle appends handlers for method to this route. It panics if the
// pattern conflicts with another route under method.
func (e *RouteEntry) Handle(method string, handlers ...Handler) *RouteEntry {
	if len(handlers) == 0 {
		panic(fmt.Errorf("%w for %s %s", ErrNoHandler, method, e.Pattern()))
	}
	if err := e.add(method, handlers); err != nil {
		panic(err)
	}
	return e
}

func (e *RouteEntry) Get(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodGet, handlers...)
}

func (e *RouteEntry) Head(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodHead, handlers...)
}

func (e *RouteEntry) Post(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodPost, handlers...)
}

func (e *RouteEntry) Put(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodPut, handlers...)
}

func (e *RouteEntry) Patch(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodPatch, handlers...)
}

func (e *RouteEntry) Delete(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodDelete, handlers...)
}

func (e *RouteEntry) Options(handlers ...Handler) *RouteEntry {
	return e.Handle(http.MethodOptions, handlers...)
}

// Index returns the layer's position in the stack.
func (e *RouteEntry) Index() int {
	return e.index
}

func (e *RouteEntry) Pattern() string {
	return e.layer.Pattern()
}

// Methods returns the methods this route answers.
func (e *RouteEntry) Methods() []string {
	return e.layer.Methods()
}
