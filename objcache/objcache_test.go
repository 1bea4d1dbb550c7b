package objcache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/objcache"
)

// TestEvictionHistogram exercises spec.md §8 scenario S4: capacity 5,
// flush_percent 70. Insert a..e, read a four times and b twice, then
// insert f and check the eviction outcome.
func TestEvictionHistogram(t *testing.T) {
	c := objcache.New[int](5, 70)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4)
	c.Set("e", 5)

	for i := 0; i < 4; i++ {
		_, ok := c.Get("a")
		require.True(t, ok)
	}
	for i := 0; i < 2; i++ {
		_, ok := c.Get("b")
		require.True(t, ok)
	}

	c.Set("f", 6)

	_, aOK := c.Get("a")
	_, bOK := c.Get("b")
	_, fOK := c.Get("f")
	require.True(t, aOK, "a survived the eviction with the highest hit count")
	require.True(t, bOK, "b survived the eviction with the second highest hit count")
	require.True(t, fOK, "f was just inserted and must be present")
	require.LessOrEqual(t, c.Size(), 3)
}

func TestCapacityNeverExceeded(t *testing.T) {
	c := objcache.New[int](5, 20)
	for i := 0; i < 50; i++ {
		c.Set(string(rune('a'+i%26)), i)
		require.LessOrEqual(t, c.Size(), 5)
	}
}

func TestUnboundedCacheNeverEvicts(t *testing.T) {
	c := objcache.New[int](0, 20)
	for i := 0; i < 100; i++ {
		c.Set(string(rune(i)), i)
	}
	require.Equal(t, 100, c.Size())
}

func TestAddIsInsertIfAbsent(t *testing.T) {
	c := objcache.New[int](0, 20)
	c.Add("k", 1)
	c.Add("k", 2)
	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestOutOfRangeFlushPercentDefaultsTo20(t *testing.T) {
	c := objcache.New[int](5, 0)
	for i := 0; i < 6; i++ {
		c.Set(string(rune('a'+i)), i)
	}
	// flush_count = 5*20/100 = 1, so exactly one eviction per overflow.
	require.Equal(t, 5, c.Size())
}

func TestDelete(t *testing.T) {
	c := objcache.New[int](0, 20)
	c.Set("k", 1)
	c.Delete("k")
	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Size())
}
