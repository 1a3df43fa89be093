package router

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"

	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/trie"
)

// step is one handler to run for a request. Route layers contribute one step
// per handler bound to the request method.
type step struct {
	handler Handler
	route   bool
}

// chain is the per-request execution state.
type chain struct {
	steps    []step
	pos      int
	routeRan bool
	halted   bool
	finished bool
	rendered bool // an error response has been produced
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	c := newCtx(middleware.NewWrapResponseWriter(w, req.ProtoMajor), req, r)
	r.plan(c)

	if err := c.run(); err != nil && !c.chain.rendered {
		r.errorHandler(c, err)
	}
}

// plan matches the request against both matchers and builds its chain.
func (r *Router) plan(c *Ctx) {
	path := c.Request.URL.Path
	method := c.Request.Method

	var indices []int
	var pattern string

	for _, m := range r.middleware.MatchAll(path) {
		indices = append(indices, m.Indices...)
		c.params.bind(m.Params)
	}

	routeMethod := method
	m, ok := r.matchRoute(method, path)
	if !ok && method == http.MethodHead && r.options.AutoHEAD {
		routeMethod = http.MethodGet
		m, ok = r.matchRoute(routeMethod, path)
	}
	if ok {
		indices = append(indices, m.Indices...)
		c.params.bind(m.Params)
		pattern = m.Pattern
	}

	slices.Sort(indices)
	indices = slices.Compact(indices)

	steps := make([]step, 0, len(indices)+2)
	for _, i := range indices {
		steps = r.registry.Get(i).appendSteps(steps, routeMethod)
	}
	c.chain = &chain{steps: steps}

	if c.params.Len() > 0 || pattern != "" {
		c.Request = c.Request.WithContext(r.withParams(c.Request.Context(), c.params, pattern))
	}
}

// withParams stores params for ParamsFrom and mirrors them into a chi route
// context so chi-aware handlers and loggers can read them.
func (r *Router) withParams(ctx context.Context, params Params, pattern string) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params.All() {
		rctx.URLParams.Add(k, v)
	}
	if pattern != "" {
		rctx.RoutePatterns = append(rctx.RoutePatterns, pattern)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	return context.WithValue(ctx, paramsKey{}, params)
}

func (r *Router) matchRoute(method, path string) (trie.Match, bool) {
	m := r.routes[method]
	if m == nil {
		return trie.Match{}, false
	}
	return m.MatchOne(path)
}

// run drives the chain from its current position. It is re-entered by
// Continue, so a chain may be several run calls deep.
func (c *Ctx) run() error {
	panicking := true
	defer func() {
		if panicking {
			c.chain.halted = true
		}
	}()

	err := c.loop()
	panicking = false
	return err
}

func (c *Ctx) loop() error {
	ch := c.chain
	for ch.pos < len(ch.steps) && !ch.halted {
		if err := c.Request.Context().Err(); err != nil {
			ch.halted = true
			c.router.logger.Debug("request abandoned", "method", c.Method(), "path", c.Path(), "error", err)
			return nil
		}

		s := ch.steps[ch.pos]
		ch.pos++
		if s.route {
			ch.routeRan = true
		}

		c.next = false
		if err := s.handler(c); err != nil {
			ch.halted = true
			if !ch.rendered {
				ch.rendered = true
				c.router.errorHandler(c, err)
			}
			return err
		}
		if ch.halted {
			return nil
		}
		if !c.next {
			ch.halted = true
			return nil
		}
	}

	if ch.halted || ch.finished || ch.routeRan {
		return nil
	}

	// Every layer continued and no route answered. Enclosing layers do not
	// see the fallback as an error.
	ch.finished = true
	ch.halted = true
	if err := c.router.fallback(c); err != nil {
		ch.rendered = true
		c.router.errorHandler(c, err)
	}
	return nil
}

// fallback answers a request no route handled: 405 when the path is known
// under other methods, 404 otherwise. Only route patterns decide between the
// two; middleware that matched and continued does not make a path known.
func (r *Router) fallback(c *Ctx) error {
	allowed := r.AllowedMethods(c.Path())
	if len(allowed) == 0 {
		r.logger.Debug("no route matched", "method", c.Method(), "path", c.Path())
		return r.options.NotFound(c)
	}

	c.Set("Allow", strings.Join(allowed, ", "))
	if c.Method() == http.MethodOptions && r.options.AutoOPTIONS {
		return c.NoContent()
	}

	r.logger.Debug("method not allowed", "method", c.Method(), "path", c.Path(), "allow", allowed)
	return r.options.MethodNotAllowed(c)
}

// AllowedMethods returns the methods with a route matching path, including
// the ones the router answers automatically.
func (r *Router) AllowedMethods(path string) []string {
	allowed := lo.Filter(lo.Keys(r.routes), func(method string, _ int) bool {
		_, ok := r.routes[method].MatchOne(path)
		return ok
	})
	if len(allowed) == 0 {
		return nil
	}

	if r.options.AutoHEAD && slices.Contains(allowed, http.MethodGet) {
		allowed = append(allowed, http.MethodHead)
	}
	if r.options.AutoOPTIONS {
		allowed = append(allowed, http.MethodOptions)
	}

	allowed = lo.Uniq(allowed)
	slices.SortFunc(allowed, func(a, b string) int {
		ia, ib := slices.Index(methods, a), slices.Index(methods, b)
		if ia < 0 || ib < 0 {
			// Extension methods sort after the standard ones.
			if ia == ib {
				return strings.Compare(a, b)
			}
			if ia < 0 {
				return 1
			}
			return -1
		}
		return ia - ib
	})
	return allowed
}

func notFound(c *Ctx) error {
	return errors.NotFound(nil, nil)
}

func methodNotAllowed(c *Ctx) error {
	return errors.MethodNotAllowed(nil, nil)
}

// DefaultErrorHandler renders *errors.ApiError values as JSON with their
// status and anything else as 500. Server errors are logged. When the
// response has already been started the error is only logged.
func DefaultErrorHandler(c *Ctx, err error) {
	apiErr, ok := errors.AsApi(err)
	if !ok {
		apiErr = errors.InternalServerError("Server Error", err)
	}
	apiErr = apiErr.WithData()

	if apiErr.Code >= http.StatusInternalServerError {
		c.Logger().ErrorWithSource(c.Context(), 0, err,
			"method", c.Method(),
			"path", c.Path(),
			"status", apiErr.Code,
		)
	}

	if c.Written() {
		c.Logger().Debug("error after response started", "path", c.Path(), "error", err)
		return
	}
	_ = c.Status(apiErr.Code).JSON(apiErr)
}
