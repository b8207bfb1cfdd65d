package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Redis implements Provider using Redis
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	r := NewRedisFromClient(redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}))

	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return r, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return result, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

func (r *Redis) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	stored, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set in cache: %w", err)
	}
	return stored, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// Increment runs INCR and TTL in one transaction and sets the expiry only
// when the key has none, so the window never slides. EXPIRE NX is avoided
// because it needs Redis 7.
func (r *Redis) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	// TTL reports -1 for a key without expiry.
	if window > 0 && ttl.Val() == -1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set counter window: %w", err)
		}
	}
	return incr.Val(), nil
}

// Ping verifies the connection to Redis
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
