package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalCall struct {
	script string
	keys   []string
	args   []any
}

type fakeRedis struct {
	calls   []evalCall
	deleted []string
	reply   any
	err     error
}

func (f *fakeRedis) Eval(_ context.Context, script string, keys []string, args ...any) (any, error) {
	f.calls = append(f.calls, evalCall{script: script, keys: keys, args: args})
	return f.reply, f.err
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) (int64, error) {
	f.deleted = append(f.deleted, keys...)
	return int64(len(keys)), f.err
}

func TestRedisStore_Increment(t *testing.T) {
	client := &fakeRedis{reply: []any{int64(3), int64(1500)}}
	store := NewRedisStore(client, "")

	count, ttl, err := store.Increment(context.Background(), "1.2.3.4", 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1500*time.Millisecond, ttl)

	require.Len(t, client.calls, 1)
	call := client.calls[0]
	assert.Equal(t, incrementScript, call.script)
	assert.Equal(t, []string{"ratelimit:1.2.3.4"}, call.keys)
	require.Len(t, call.args, 2)
	assert.Equal(t, int64(2000), call.args[0])
}

func TestRedisStore_Get(t *testing.T) {
	client := &fakeRedis{reply: []any{"4", "250"}}
	store := NewRedisStore(client, "rl:")

	count, ttl, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, 250*time.Millisecond, ttl)
	assert.Equal(t, getScript, client.calls[0].script)
	assert.Equal(t, []string{"rl:k"}, client.calls[0].keys)
}

func TestRedisStore_DecrementAndReset(t *testing.T) {
	client := &fakeRedis{reply: int64(0)}
	store := NewRedisStore(client, "rl:")
	ctx := context.Background()

	require.NoError(t, store.Decrement(ctx, "k"))
	assert.Equal(t, decrementScript, client.calls[0].script)

	require.NoError(t, store.Reset(ctx, "k"))
	assert.Equal(t, []string{"rl:k"}, client.deleted)
	assert.NoError(t, store.Close())
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("connection refused")

	store := NewRedisStore(&fakeRedis{err: errDown}, "")
	_, _, err := store.Increment(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, errDown)
	assert.ErrorIs(t, store.Decrement(ctx, "k"), errDown)
	assert.ErrorIs(t, store.Reset(ctx, "k"), errDown)

	store = NewRedisStore(&fakeRedis{reply: "OK"}, "")
	_, _, err = store.Increment(ctx, "k", time.Minute)
	assert.ErrorContains(t, err, "unexpected redis response")

	store = NewRedisStore(&fakeRedis{reply: []any{"x", int64(1)}}, "")
	_, _, err = store.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to parse count")
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{in: 7, want: 7},
		{in: int64(42), want: 42},
		{in: "13", want: 13},
		{in: "nope", wantErr: true},
		{in: 1.5, wantErr: true},
	}
	for _, tt := range tests {
		got, err := toInt(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

type cmd struct {
	val any
	err error
}

func (c *cmd) Result() (any, error) { return c.val, c.err }

type intCmd struct {
	val int64
	err error
}

func (c *intCmd) Result() (int64, error) { return c.val, c.err }

// goRedis mimics the method set of a go-redis client.
type goRedis struct {
	lastScript string
}

func (g *goRedis) Eval(_ context.Context, script string, _ []string, _ ...any) *cmd {
	g.lastScript = script
	return &cmd{val: []any{int64(1), int64(60000)}}
}

func (g *goRedis) Del(_ context.Context, keys ...string) *intCmd {
	return &intCmd{val: int64(len(keys))}
}

func TestRedisClientAdapter(t *testing.T) {
	client := &goRedis{}
	store := NewRedisStore(NewRedisClientAdapter[*cmd, *intCmd](client), "")

	count, ttl, err := store.Increment(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, time.Minute, ttl)
	assert.Equal(t, incrementScript, client.lastScript)

	require.NoError(t, store.Reset(context.Background(), "k"))
}
