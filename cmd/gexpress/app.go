package main

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"github.com/azizndao/gexpress"
	"github.com/azizndao/gexpress/errors"
	"github.com/azizndao/gexpress/middleware"
	"github.com/azizndao/gexpress/ratelimit"
	"github.com/azizndao/gexpress/router"
	"github.com/azizndao/gexpress/util"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2"`
}

type product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name" validate:"required,min=3,max=100"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

// catalog is the in-memory product list behind /api/products.
type catalog struct {
	mu       sync.RWMutex
	products []product
	nextID   int
}

func (c *catalog) list() []product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *catalog) add(p product) product {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	p.ID = c.nextID
	c.products = append(c.products, p)
	return p
}

func (c *catalog) find(id int) (product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Find(c.products, func(p product) bool { return p.ID == id })
}

func (c *catalog) remove(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, i, ok := lo.FindIndexOf(c.products, func(p product) bool { return p.ID == id })
	if ok {
		c.products = append(c.products[:i], c.products[i+1:]...)
	}
	return ok
}

// app is the demo application: a server, its metrics registry and the
// stores to release on shutdown.
type app struct {
	server   *gexpress.Server
	registry *prometheus.Registry
	limiter  ratelimit.Store
}

func newApp(config gexpress.Config) *app {
	config.Locales = append(config.Locales,
		gexpress.Locale(fr.New(), fr_translations.RegisterDefaultTranslations),
		gexpress.Locale(es.New(), es_translations.RegisterDefaultTranslations),
	)
	a := &app{
		server:   gexpress.New(config),
		registry: prometheus.NewRegistry(),
		limiter:  ratelimit.NewMemoryStore(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.routes()
	return a
}

func (a *app) close() error {
	return a.limiter.Close()
}

func (a *app) routes() {
	r := a.server.Router()

	r.Use(
		middleware.Metrics(middleware.WithNamespace("gexpress"), middleware.WithRegistry(a.registry)),
		middleware.Tracing(middleware.WithTraceFilter(func(c *router.Ctx) bool {
			return c.Path() != "/metrics"
		})),
	)
	if cfg := middleware.LoadSecurityHeadersConfig(); cfg != nil {
		r.Use(middleware.SecurityHeaders(*cfg))
	}
	if cfg := middleware.LoadHeartbeatConfig(); cfg != nil {
		r.Use(middleware.Heartbeat(*cfg))
	}

	r.Get("/metrics", router.HTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	r.Get("/debug/routes", func(c *router.Ctx) error {
		return c.JSON(c.Router().Routes())
	})

	r.Get("/hello", func(c *router.Ctx) error {
		return c.JSON(map[string]string{"message": "Hello World"})
	})
	r.Get("/hello/{name}", func(c *router.Ctx) error {
		return c.JSON(map[string]string{
			"message": fmt.Sprintf("Hello %s", c.Param("name")),
			"query":   c.Query("q"),
		})
	})
	r.Get("/request-id", func(c *router.Ctx) error {
		return c.JSON(map[string]string{"request_id": middleware.GetRequestID(c)})
	})
	r.Post("/register", func(c *router.Ctx) error {
		req, err := router.ValidateBody[registerRequest](c)
		if err != nil {
			return err
		}
		return c.Created(map[string]string{"email": req.Email, "name": req.Name})
	})
	r.Get("/files/{*path}", func(c *router.Ctx) error {
		return c.JSON(map[string]any{"segments": strings.Split(c.Param("path"), "/")})
	})

	slow := r.Group("/slow")
	slow.Use(middleware.Timeout(middleware.TimeoutConfig{Timeout: 2 * time.Second}))
	slow.Get("/endpoint", func(c *router.Ctx) error {
		select {
		case <-time.After(3 * time.Second):
			return c.JSON(map[string]string{"message": "done"})
		case <-c.Done():
			return nil
		}
	})

	a.apiRoutes(r.Group("/api"))
}

func (a *app) apiRoutes(api *router.Group) {
	api.Use(
		middleware.BodyLimitWithSize(64*middleware.KB),
		ratelimit.RateLimit(ratelimit.Config{
			Max:    util.GetEnvInt("API_RATE_LIMIT", 60),
			Window: time.Minute,
			Store:  a.limiter,
		}),
	)

	products := &catalog{}
	api.Get("/products", func(c *router.Ctx) error {
		return c.JSON(products.list())
	}).Post(func(c *router.Ctx) error {
		req, err := router.ValidateBody[product](c)
		if err != nil {
			return err
		}
		return c.Created(products.add(*req))
	})

	api.Get("/products/{id}", func(c *router.Ctx) error {
		id, err := c.PathInt("id")
		if err != nil {
			return err
		}
		p, ok := products.find(id)
		if !ok {
			return errors.NotFound(fmt.Sprintf("product %d not found", id), nil)
		}
		return c.JSON(p)
	}).Delete(func(c *router.Ctx) error {
		id, err := c.PathInt("id")
		if err != nil {
			return err
		}
		if !products.remove(id) {
			return errors.NotFound(fmt.Sprintf("product %d not found", id), nil)
		}
		return c.NoContent()
	})

	api.Get("/error", func(c *router.Ctx) error {
		return errors.BadRequest("Bad request example", nil)
	})
	api.Get("/teapot", func(c *router.Ctx) error {
		return c.Status(http.StatusTeapot).SendString("I'm a teapot")
	})
}
