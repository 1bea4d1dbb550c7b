// Package objcache implements spec.md §4.F: a capacity-bounded variant
// of the Hash abstraction used internally for things like a parsed-URI
// or compiled-query cache. Eviction is by least-recently-useful
// (hit-count histogram), not insertion age, except as a tie-break.
package objcache

import "sync"

type entry[V any] struct {
	key  string
	val  V
	hits int
	seq  int
}

// Cache is a generic, capacity-bounded key/value store with hit-count
// eviction (spec.md §4.F). capacity=0 means unbounded: no eviction ever
// runs.
type Cache[V any] struct {
	mu           sync.Mutex
	capacity     int
	flushPercent int
	table        map[string]*entry[V]
	order        []*entry[V] // insertion order, for eviction tie-break
	seqCounter   int
}

// New builds a Cache. flushPercent out of (0,100] is reset to the
// spec's sensible default, 20.
func New[V any](capacity, flushPercent int) *Cache[V] {
	if flushPercent <= 0 || flushPercent > 100 {
		flushPercent = 20
	}
	return &Cache[V]{
		capacity:     capacity,
		flushPercent: flushPercent,
		table:        make(map[string]*entry[V]),
	}
}

// Size returns the current entry count.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table)
}

// Set inserts or overwrites key's value, evicting first if the cache is
// already full. The hit count resets to zero on overwrite, matching a
// fresh insert.
func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.table[key]; ok {
		e.val = val
		e.hits = 0
		return
	}
	c.evictIfFull()
	c.insert(key, val)
}

// Add inserts val only if key is absent; a no-op otherwise.
func (c *Cache[V]) Add(key string, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.table[key]; ok {
		return
	}
	c.evictIfFull()
	c.insert(key, val)
}

func (c *Cache[V]) insert(key string, val V) {
	e := &entry[V]{key: key, val: val, seq: c.seqCounter}
	c.seqCounter++
	c.table[key] = e
	c.order = append(c.order, e)
}

// Get returns key's value, incrementing its hit counter on success.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.table[key]
	if !ok {
		var zero V
		return zero, false
	}
	e.hits++
	return e.val, true
}

// Delete removes key unconditionally.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.table[key]
	if !ok {
		return
	}
	delete(c.table, key)
	c.removeFromOrder(e)
}

func (c *Cache[V]) removeFromOrder(e *entry[V]) {
	for i, o := range c.order {
		if o == e {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// evictIfFull implements spec.md §4.F's eviction policy: when inserting
// into a full fixed-capacity cache, compute a histogram of hit counts,
// evict flush_count = capacity*flush_percent/100 entries with the
// lowest hit counts (oldest first on ties), then decrement every
// surviving entry's hit count by the largest evicted count.
func (c *Cache[V]) evictIfFull() {
	if c.capacity <= 0 || len(c.table) < c.capacity {
		return
	}
	flushCount := c.capacity * c.flushPercent / 100
	if flushCount <= 0 {
		return
	}
	if flushCount > len(c.order) {
		flushCount = len(c.order)
	}

	victims := append([]*entry[V](nil), c.order...)
	sortByHitsThenAge(victims)

	var maxEvictedHits int
	for i := 0; i < flushCount; i++ {
		if victims[i].hits > maxEvictedHits {
			maxEvictedHits = victims[i].hits
		}
		delete(c.table, victims[i].key)
		c.removeFromOrder(victims[i])
	}
	for _, e := range c.order {
		e.hits -= maxEvictedHits
		if e.hits < 0 {
			e.hits = 0
		}
	}
}

// sortByHitsThenAge is a small insertion sort over a copy of every
// cached entry (at most capacity of them), so no need for sort.Slice
// overhead or an extra import.
func sortByHitsThenAge[V any](entries []*entry[V]) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if a.hits < b.hits || (a.hits == b.hits && a.seq <= b.seq) {
				break
			}
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}
