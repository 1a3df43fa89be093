package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/azizndao/gexpress/router"
)

const defaultTracerName = "github.com/azizndao/gexpress"

// TracingConfig configures the OpenTelemetry middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer.
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider()
	TracerProvider trace.TracerProvider

	// Filter determines which requests to trace.
	// Return true to trace the request. If nil, all requests are traced.
	Filter func(c *router.Ctx) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(c *router.Ctx) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry middleware.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.TracerProvider = provider
	}
}

// WithTraceFilter sets a filter function for requests.
func WithTraceFilter(filter func(c *router.Ctx) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(c *router.Ctx) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing returns a layer that opens one server span per request around
// every later layer. The span context is placed in the request context, so
// handlers reach it with trace.SpanFromContext(c.Context()) and outgoing
// calls made with that context join the trace. After the chain runs the span
// gets the final status and route pattern, and 5xx responses or handler
// errors mark it as failed.
//
// The tracer comes from the global provider unless one is given; configure
// it in main before serving:
//
//	otel.SetTracerProvider(tp)
//	r.Use(middleware.Tracing(middleware.WithTracerName("shop")))
func Tracing(opts ...TracingOption) router.Handler {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}
	tracer := config.TracerProvider.Tracer(config.TracerName)

	return func(c *router.Ctx) error {
		if config.Filter != nil && !config.Filter(c) {
			c.Next()
			return nil
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.request.method", c.Method()),
			attribute.String("url.path", c.Path()),
			attribute.String("url.scheme", c.Scheme()),
			attribute.String("client.address", c.IP()),
		}
		if ua := c.UserAgent(); ua != "" {
			attrs = append(attrs, attribute.String("user_agent.original", ua))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(c)...)
		}

		ctx, span := tracer.Start(c.Context(), c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		err := c.Continue()

		route := routePattern(c)
		status := c.ResponseStatus()
		if status == 0 {
			status = http.StatusOK
		}
		if route != unmatchedRoute {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}
