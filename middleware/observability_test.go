package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/azizndao/gexpress/router"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	r := newRouter(nil)
	r.Use(Metrics(WithRegistry(reg), WithNamespace("test"), WithConstLabels(prometheus.Labels{"service": "shop"})))
	r.Get("/users/{id}", func(c *router.Ctx) error {
		return c.JSON(map[string]string{"id": c.Param("id")})
	})

	get(r, "/users/1")
	get(r, "/users/2")
	get(r, "/missing")

	expected := `
# HELP test_http_requests_total Total number of HTTP requests dispatched
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="/users/{id}",service="shop",status="200"} 2
test_http_requests_total{method="GET",route="unmatched",service="shop",status="404"} 1
# HELP test_http_requests_in_flight Number of requests currently being dispatched
# TYPE test_http_requests_in_flight gauge
test_http_requests_in_flight{service="shop"} 0
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"test_http_requests_total", "test_http_requests_in_flight")
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "test_http_request_duration_seconds", "test_http_response_size_bytes")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	Metrics(WithRegistry(reg))

	assert.Panics(t, func() {
		Metrics(WithRegistry(reg))
	})
}

type recordingProvider struct {
	embedded.TracerProvider
	tracer *recordingTracer
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

type recordingTracer struct {
	embedded.Tracer
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordedSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}}
	span.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

type recordedSpan struct {
	noop.Span
	name   string
	kind   trace.SpanKind
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetName(name string) { s.name = name }

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, attr := range kv {
		s.attrs[attr.Key] = attr.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

func TestTracing(t *testing.T) {
	tracer := &recordingTracer{}
	errBoom := errors.New("boom")

	r := newRouter(nil)
	r.Use(Tracing(
		WithTracerProvider(&recordingProvider{tracer: tracer}),
		WithTraceFilter(func(c *router.Ctx) bool { return c.Path() != "/health" }),
		WithAttributeExtractor(func(c *router.Ctx) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("tenant", c.Get("X-Tenant"))}
		}),
	))

	var inHandler trace.Span
	r.Get("/orders/{id}", func(c *router.Ctx) error {
		inHandler = trace.SpanFromContext(c.Context())
		return c.SendString(c.Param("id"))
	})
	r.Get("/fail", func(c *router.Ctx) error { return errBoom })
	r.Get("/health", ok)

	t.Run("successful request", func(t *testing.T) {
		tracer.spans = nil
		req := httptest.NewRequest(http.MethodGet, "/orders/9", nil)
		req.Header.Set("X-Tenant", "acme")
		serve(r, req)

		require.Len(t, tracer.spans, 1)
		span := tracer.spans[0]
		assert.Same(t, span, inHandler)
		assert.Equal(t, "GET /orders/{id}", span.name)
		assert.Equal(t, trace.SpanKindServer, span.kind)
		assert.Equal(t, "/orders/{id}", span.attrs["http.route"].AsString())
		assert.Equal(t, "/orders/9", span.attrs["url.path"].AsString())
		assert.Equal(t, "acme", span.attrs["tenant"].AsString())
		assert.Equal(t, int64(http.StatusOK), span.attrs["http.response.status_code"].AsInt64())
		assert.Equal(t, codes.Unset, span.status)
		assert.True(t, span.ended)
	})

	t.Run("handler error", func(t *testing.T) {
		tracer.spans = nil
		w := get(r, "/fail")
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		require.Len(t, tracer.spans, 1)
		span := tracer.spans[0]
		assert.Equal(t, codes.Error, span.status)
		assert.Equal(t, []error{errBoom}, span.errs)
		assert.Equal(t, int64(http.StatusInternalServerError), span.attrs["http.response.status_code"].AsInt64())
	})

	t.Run("unmatched keeps method name", func(t *testing.T) {
		tracer.spans = nil
		get(r, "/nowhere")

		require.Len(t, tracer.spans, 1)
		span := tracer.spans[0]
		assert.Equal(t, "GET", span.name)
		_, hasRoute := span.attrs["http.route"]
		assert.False(t, hasRoute)
		assert.Equal(t, codes.Unset, span.status)
		assert.Empty(t, span.errs)
		assert.Equal(t, int64(http.StatusNotFound), span.attrs["http.response.status_code"].AsInt64())
	})

	t.Run("filtered", func(t *testing.T) {
		tracer.spans = nil
		assert.Equal(t, "ok", get(r, "/health").Body.String())
		assert.Empty(t, tracer.spans)
	})
}
