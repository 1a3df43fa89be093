package ratelimit

import (
	"context"
)

// GoRedisClient is the part of a go-redis client (redis.Client,
// redis.ClusterClient, redis.Ring) RedisClientAdapter calls. The command
// types are narrowed to their Result methods so this package does not
// import go-redis.
type GoRedisClient[C GoRedisCmd, I GoRedisIntCmd] interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) C
	Del(ctx context.Context, keys ...string) I
}

// GoRedisCmd is satisfied by *redis.Cmd
type GoRedisCmd interface {
	Result() (any, error)
}

// GoRedisIntCmd is satisfied by *redis.IntCmd
type GoRedisIntCmd interface {
	Result() (int64, error)
}

// RedisClientAdapter wraps a go-redis client to implement RedisCommander.
// The command types cannot be inferred from the client, so name them:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	adapter := ratelimit.NewRedisClientAdapter[*redis.Cmd, *redis.IntCmd](rdb)
//	store := ratelimit.NewRedisStore(adapter, "")
type RedisClientAdapter[C GoRedisCmd, I GoRedisIntCmd] struct {
	client GoRedisClient[C, I]
}

// NewRedisClientAdapter creates an adapter for a go-redis client
func NewRedisClientAdapter[C GoRedisCmd, I GoRedisIntCmd](client GoRedisClient[C, I]) *RedisClientAdapter[C, I] {
	return &RedisClientAdapter[C, I]{client: client}
}

// Eval executes a Lua script
func (a *RedisClientAdapter[C, I]) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	return a.client.Eval(ctx, script, keys, args...).Result()
}

// Del deletes one or more keys
func (a *RedisClientAdapter[C, I]) Del(ctx context.Context, keys ...string) (int64, error) {
	return a.client.Del(ctx, keys...).Result()
}
