package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = r.Close() })
	require.NoError(t, r.Ping(context.Background()))
	return r, mr
}

func TestRedis_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(time.Minute)
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, r.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedis_SetNX(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	stored, err := r.SetNX(ctx, "dup", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = r.SetNX(ctx, "dup", []byte("2"), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored)

	value, err := mr.Get("dup")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
	assert.Equal(t, time.Hour, mr.TTL("dup"))
}

func TestRedis_IncrementKeepsFirstWindow(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	n, err := r.Increment(ctx, "rate", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Hour, mr.TTL("rate"))

	mr.FastForward(20 * time.Minute)
	n, err = r.Increment(ctx, "rate", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 40*time.Minute, mr.TTL("rate"))

	mr.FastForward(40 * time.Minute)
	n, err = r.Increment(ctx, "rate", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Hour, mr.TTL("rate"))
}

func TestRedis_IncrementRestoresMissingExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, mr.Set("rate", "4"))
	n, err := r.Increment(ctx, "rate", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, time.Hour, mr.TTL("rate"))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), RedisOptions{Addr: addr})
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
