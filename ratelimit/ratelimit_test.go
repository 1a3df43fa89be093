package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azizndao/gexpress/intern"
	"github.com/azizndao/gexpress/router"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestStore(t *testing.T) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestMemoryStore_Increment(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	count, ttl, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(20 * time.Second)
	count, ttl, err = store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 40*time.Second, ttl)

	count, _, err = store.Increment(ctx, "other", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_WindowExpiration(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, _, _ = store.Increment(ctx, "k", time.Second)
	_, _, _ = store.Increment(ctx, "k", time.Second)

	clock.Advance(time.Second)
	count, ttl, err := store.Increment(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, time.Second, ttl)
}

func TestMemoryStore_GetDecrementReset(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	count, ttl, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, ttl)

	_, _, _ = store.Increment(ctx, "k", time.Minute)
	_, _, _ = store.Increment(ctx, "k", time.Minute)
	clock.Advance(15 * time.Second)

	count, ttl, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 45*time.Second, ttl)

	require.NoError(t, store.Decrement(ctx, "k"))
	count, _, _ = store.Get(ctx, "k")
	assert.Equal(t, 1, count)

	require.NoError(t, store.Decrement(ctx, "missing"))

	require.NoError(t, store.Reset(ctx, "k"))
	count, _, _ = store.Get(ctx, "k")
	assert.Zero(t, count)

	_, _, _ = store.Increment(ctx, "k", time.Minute)
	clock.Advance(time.Minute)
	count, _, _ = store.Get(ctx, "k")
	assert.Zero(t, count, "expired windows read as empty")
}

func TestMemoryStore_Evict(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	_, _, _ = store.Increment(ctx, "old", time.Minute)
	clock.Advance(DefaultMaxAge)
	_, _, _ = store.Increment(ctx, "new", time.Minute)
	clock.Advance(time.Second)

	store.evict(DefaultMaxAge)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.Increment(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()

	count, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

type failingStore struct {
	MemoryStore
}

func (*failingStore) Increment(context.Context, string, time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func newRouter() *router.Router {
	opts := router.DefaultOptions()
	opts.Interner = intern.New()
	return router.New(nil, nil, opts)
}

func get(r http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	store, _ := newTestStore(t)

	r := newRouter()
	r.Use(RateLimit(Config{Max: 2, Window: time.Minute, Store: store}))
	r.Get("/", func(c *router.Ctx) error { return c.SendString("ok") })

	w := get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

	w = get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = get(r, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"code":429,"data":"Too many requests, please try again later"}`, w.Body.String())
}

func TestRateLimit_KeyGeneratorAndHandler(t *testing.T) {
	store, _ := newTestStore(t)

	r := newRouter()
	api := r.Group("/api")
	api.Use(RateLimit(Config{
		Max:          1,
		Window:       time.Minute,
		Store:        store,
		HeaderPrefix: "RateLimit-",
		KeyGenerator: func(c *router.Ctx) string { return c.BearerToken() },
		Handler: func(c *router.Ctx) error {
			return c.Status(http.StatusServiceUnavailable).SendString("slow down")
		},
	}))
	api.Get("/items", func(c *router.Ctx) error { return c.SendString("items") })
	r.Get("/open", func(c *router.Ctx) error { return c.SendString("open") })

	assert.Equal(t, http.StatusOK, get(r, "/api/items", "Authorization", "Bearer a").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/items", "Authorization", "Bearer b").Code)

	w := get(r, "/api/items", "Authorization", "Bearer a")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "slow down", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("RateLimit-Limit"))

	for range 3 {
		assert.Equal(t, "open", get(r, "/open").Body.String())
	}
}

func TestRateLimit_SkipRequests(t *testing.T) {
	t.Run("failed", func(t *testing.T) {
		store, _ := newTestStore(t)
		r := newRouter()
		r.Use(RateLimit(Config{Max: 1, Window: time.Minute, Store: store, SkipFailedRequests: true}))
		r.Get("/ok", func(c *router.Ctx) error { return c.SendString("ok") })

		for range 3 {
			assert.Equal(t, http.StatusNotFound, get(r, "/missing").Code)
		}
		assert.Equal(t, http.StatusOK, get(r, "/ok").Code)
		assert.Equal(t, http.StatusTooManyRequests, get(r, "/ok").Code)
	})

	t.Run("successful", func(t *testing.T) {
		store, _ := newTestStore(t)
		r := newRouter()
		r.Use(RateLimit(Config{Max: 1, Window: time.Minute, Store: store, SkipSuccessfulRequests: true}))
		r.Get("/ok", func(c *router.Ctx) error { return c.SendString("ok") })

		for range 3 {
			assert.Equal(t, http.StatusOK, get(r, "/ok").Code)
		}
		assert.Equal(t, http.StatusNotFound, get(r, "/missing").Code)
		assert.Equal(t, http.StatusTooManyRequests, get(r, "/ok").Code)
	})
}

func TestRateLimit_StoreFailureLetsRequestsThrough(t *testing.T) {
	r := newRouter()
	r.Use(RateLimit(Config{Max: 1, Window: time.Minute, Store: &failingStore{}}))
	r.Get("/", func(c *router.Ctx) error { return c.SendString("ok") })

	for range 3 {
		w := get(r, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")
	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, 5, cfg.Max)
	assert.Equal(t, 10*time.Second, cfg.Window)
	assert.Equal(t, "X-RateLimit-", cfg.HeaderPrefix)

	t.Setenv("RATE_LIMIT_MAX", "0")
	assert.Nil(t, LoadConfig())
}

func BenchmarkMemoryStore_Increment(b *testing.B) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	for i := 0; b.Loop(); i++ {
		_, _, _ = store.Increment(ctx, "key-"+strconv.Itoa(i%100), time.Minute)
	}
}
