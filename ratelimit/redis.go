package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"
)

// RedisCommander is the subset of a Redis client RedisStore needs.
// NewRedisClientAdapter turns a go-redis client into one.
type RedisCommander interface {
	// Eval executes a Lua script
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) (int64, error)
}

// RedisStore implements Store on Redis, so every instance behind a load
// balancer shares the same counters. Each key is a hash holding the count
// and the window start; updates run as Lua scripts to stay atomic.
type RedisStore struct {
	client RedisCommander
	prefix string
}

// NewRedisStore creates a RedisStore. Keys are stored under prefix
// ("ratelimit:" when empty).
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := ratelimit.NewRedisStore(ratelimit.NewRedisClientAdapter[*redis.Cmd, *redis.IntCmd](rdb), "ratelimit:")
func NewRedisStore(client RedisCommander, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Times are in milliseconds. The hash outlives its window so Get can still
// answer for it.
const incrementScript = `
local key = KEYS[1]
local window = tonumber(ARGV[1])
local now = tonumber(ARGV[2])

local data = redis.call('HMGET', key, 'count', 'window_start')
local count = tonumber(data[1]) or 0
local window_start = tonumber(data[2]) or now

if now - window_start >= window then
    count = 1
    window_start = now
else
    count = count + 1
end

redis.call('HSET', key, 'count', count, 'window_start', window_start, 'window', window)
redis.call('PEXPIRE', key, window * 2)

return {count, window - (now - window_start)}
`

const decrementScript = `
local key = KEYS[1]
local count = tonumber(redis.call('HGET', key, 'count')) or 0
if count > 0 then
    count = count - 1
    redis.call('HSET', key, 'count', count)
end
return count
`

const getScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])

local data = redis.call('HMGET', key, 'count', 'window_start', 'window')
local count = tonumber(data[1])
if not count then
    return {0, 0}
end
local left = tonumber(data[3]) - (now - tonumber(data[2]))
if left <= 0 then
    return {0, 0}
end
return {count, left}
`

// Increment increments the counter for the given key
func (r *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	result, err := r.client.Eval(ctx, incrementScript, []string{r.prefix + key},
		window.Milliseconds(), time.Now().UnixMilli())
	if err != nil {
		return 0, 0, fmt.Errorf("redis increment failed: %w", err)
	}
	return parseCountTTL(result)
}

// Decrement decrements the counter for the given key
func (r *RedisStore) Decrement(ctx context.Context, key string) error {
	if _, err := r.client.Eval(ctx, decrementScript, []string{r.prefix + key}); err != nil {
		return fmt.Errorf("redis decrement failed: %w", err)
	}
	return nil
}

// Get returns the current count for the given key
func (r *RedisStore) Get(ctx context.Context, key string) (int, time.Duration, error) {
	result, err := r.client.Eval(ctx, getScript, []string{r.prefix + key}, time.Now().UnixMilli())
	if err != nil {
		return 0, 0, fmt.Errorf("redis get failed: %w", err)
	}
	return parseCountTTL(result)
}

// Reset resets the counter for the given key
func (r *RedisStore) Reset(ctx context.Context, key string) error {
	if _, err := r.client.Del(ctx, r.prefix+key); err != nil {
		return fmt.Errorf("redis reset failed: %w", err)
	}
	return nil
}

// Close is a no-op; the client belongs to the caller.
func (r *RedisStore) Close() error {
	return nil
}

// parseCountTTL decodes the {count, milliseconds left} reply of the scripts.
func parseCountTTL(result any) (int, time.Duration, error) {
	arr, ok := result.([]any)
	if !ok || len(arr) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis response %v", result)
	}

	count, err := toInt(arr[0])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse count: %w", err)
	}
	ttl, err := toInt(arr[1])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse ttl: %w", err)
	}
	return count, time.Duration(ttl) * time.Millisecond, nil
}

// toInt converts a Redis integer reply, which clients return as int64 or
// as a string, to int.
func toInt(val any) (int, error) {
	var i64 int64
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		i64 = v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		i64 = n
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
	if i64 > math.MaxInt || i64 < math.MinInt {
		return 0, fmt.Errorf("value %d overflows int", i64)
	}
	return int(i64), nil
}
