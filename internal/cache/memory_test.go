package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestMemoryCacheMissAfterExpiry(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheFlushPrefix(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ns:a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "ns:b", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "other:c", []byte("3"), time.Minute))

	require.NoError(t, c.FlushPrefix(ctx, "ns:"))

	_, ok, _ := c.Get(ctx, "ns:a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "ns:b")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "other:c")
	assert.True(t, ok)
}

func TestMemoryCacheStatsTracksHitsAndMisses(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Stop()
	ctx := context.Background()

	_, _, _ = c.Get(ctx, "missing")
	require.NoError(t, c.Set(ctx, "present", []byte("v"), time.Minute))
	_, _, _ = c.Get(ctx, "present")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestNamespacerKeyAndTTL(t *testing.T) {
	n := NewNamespacer("locatepricer", map[Namespace]time.Duration{
		NamespaceBorrowRate: 5 * time.Minute,
	})
	assert.Equal(t, "locatepricer:borrow_rate:AAPL", n.Key(NamespaceBorrowRate, "AAPL"))
	assert.Equal(t, 5*time.Minute, n.TTL(NamespaceBorrowRate))
	assert.Equal(t, time.Duration(0), n.TTL(NamespaceVolatility))
}
