package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = time.Minute

// Memory is an in-process Provider used when Redis is not configured.
// State is lost on restart and is not shared between replicas. Expired
// entries are swept in the background.
type Memory struct {
	items *gocache.Cache
}

func NewMemory() *Memory {
	return newMemory(memoryCleanupInterval)
}

func newMemory(cleanup time.Duration) *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, cleanup)}
}

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	switch v := v.(type) {
	case []byte:
		return append([]byte(nil), v...), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	default:
		return nil, ErrMiss
	}
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Set(key, append([]byte(nil), value...), expiration(ttl))
	return nil
}

func (m *Memory) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := m.items.Add(key, append([]byte(nil), value...), expiration(ttl)); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Increment keeps the expiry set by the first call, so the window does not
// slide.
func (m *Memory) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	// Add and IncrementInt64 each lock the cache; the key may expire or be
	// created between them, so retry a few times.
	for attempt := 0; attempt < 3; attempt++ {
		if err := m.items.Add(key, int64(1), expiration(window)); err == nil {
			return 1, nil
		}
		if n, err := m.items.IncrementInt64(key, 1); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("cache: counter " + key + " is not an integer")
}
