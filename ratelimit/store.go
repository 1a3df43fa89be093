package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultCleanupInterval is how often MemoryStore drops stale windows
	DefaultCleanupInterval = time.Minute

	// DefaultMaxAge is how long a window is kept after it started
	DefaultMaxAge = 10 * time.Minute
)

// MemoryStore implements Store with a map guarded by a mutex. Counters are
// local to the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time

	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

// NewMemoryStore creates a MemoryStore. A background goroutine drops
// windows older than DefaultMaxAge every DefaultCleanupInterval until Close.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
		cleanup: time.NewTicker(DefaultCleanupInterval),
		done:    make(chan struct{}),
	}
	go m.cleanupRoutine()
	return m
}

// Increment increments the counter for the given key
func (m *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.Sub(e.windowStart) >= window {
		m.entries[key] = memoryEntry{count: 1, windowStart: now, window: window}
		return 1, window, nil
	}

	e.count++
	m.entries[key] = e
	return e.count, window - now.Sub(e.windowStart), nil
}

// Decrement decrements the counter for the given key
func (m *MemoryStore) Decrement(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && e.count > 0 {
		e.count--
		m.entries[key] = e
	}
	return nil
}

// Get returns the current count for the given key
func (m *MemoryStore) Get(_ context.Context, key string) (int, time.Duration, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return 0, 0, nil
	}
	elapsed := now.Sub(e.windowStart)
	if elapsed >= e.window {
		return 0, 0, nil
	}
	return e.count, e.window - elapsed, nil
}

// Reset resets the counter for the given key
func (m *MemoryStore) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryStore) cleanupRoutine() {
	defer m.cleanup.Stop()
	for {
		select {
		case <-m.cleanup.C:
			m.evict(DefaultMaxAge)
		case <-m.done:
			return
		}
	}
}

// evict drops windows that started more than maxAge ago.
func (m *MemoryStore) evict(maxAge time.Duration) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if now.Sub(e.windowStart) > maxAge {
			delete(m.entries, key)
		}
	}
}

// Len returns the number of keys being tracked.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
