package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	time.Sleep(40 * time.Millisecond)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_SetNX(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	stored, err := m.SetNX(ctx, "dup", []byte("1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = m.SetNX(ctx, "dup", []byte("2"), time.Hour)
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := m.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestMemory_IncrementWindow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	window := 50 * time.Millisecond

	for want := int64(1); want <= 3; want++ {
		n, err := m.Increment(ctx, "rate", window)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	got, err := m.Get(ctx, "rate")
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))

	time.Sleep(2 * window)
	n, err := m.Increment(ctx, "rate", window)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemory_IncrementNonCounter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "rate", []byte("x"), time.Hour))
	_, err := m.Increment(ctx, "rate", time.Hour)
	assert.Error(t, err)
}

func TestMemory_SweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m := newMemory(10 * time.Millisecond)

	for i := 0; i < 1000; i++ {
		_, err := m.Increment(ctx, "rate:"+strconv.Itoa(i), 200*time.Millisecond)
		require.NoError(t, err)
	}
	require.Equal(t, 1000, m.items.ItemCount())

	assert.Eventually(t, func() bool {
		return m.items.ItemCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
