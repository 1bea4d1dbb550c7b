// Package memhash is the in-process chained hash table implementation of
// hashkv.Hash (spec.md §4.E "Memory variant"). It backs both the memory
// Storage backend's scratch use and the URI/Node intern tables (§9
// Design Notes: "a side table from content-hash to identifier").
package memhash

import (
	"sync"

	"github.com/oxhq/rdfcore/hashkv"
)

const defaultLoadFactor = 750 // parts per 1000, per spec.md §4.E

type entry struct {
	key      []byte
	values   [][]byte
	valueIdx map[string]int
	deleted  bool
}

// Hash is an in-memory chained hash table keyed by opaque byte strings,
// mapping each key to a de-duplicated, insertion-ordered multiset of
// values.
type Hash struct {
	mu         sync.Mutex
	opts       hashkv.OpenOptions
	buckets    [][]*entry
	order      []*entry
	loadFactor int
	count      int
}

// New returns an unopened Hash.
func New() *Hash { return &Hash{} }

func (h *Hash) Open(opts hashkv.OpenOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	lf := opts.LoadFactor
	if lf <= 0 {
		lf = defaultLoadFactor
	}
	h.opts = opts
	h.loadFactor = lf
	h.buckets = make([][]*entry, 16)
	h.order = h.order[:0]
	h.count = 0
	return nil
}

func (h *Hash) Close() error { return nil }
func (h *Hash) Sync() error  { return nil }

func (h *Hash) ValuesCount() (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var n int64
	for _, e := range h.order {
		if !e.deleted {
			n += int64(len(e.values))
		}
	}
	return n, nil
}

// fnv1a is used to pick a bucket; it need not be cryptographic, only
// well-distributed over arbitrary byte strings.
func fnv1a(b []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

func (h *Hash) bucketFor(key []byte) int {
	return int(fnv1a(key) % uint64(len(h.buckets)))
}

func (h *Hash) find(key []byte) *entry {
	idx := h.bucketFor(key)
	for _, e := range h.buckets[idx] {
		if !e.deleted && string(e.key) == string(key) {
			return e
		}
	}
	return nil
}

func (h *Hash) maybeGrow() {
	if len(h.buckets) == 0 {
		h.buckets = make([][]*entry, 16)
	}
	if h.count*1000/len(h.buckets) <= h.loadFactor {
		return
	}
	grown := make([][]*entry, len(h.buckets)*2)
	for _, bucket := range h.buckets {
		for _, e := range bucket {
			if e.deleted {
				continue
			}
			idx := int(fnv1a(e.key) % uint64(len(grown)))
			grown[idx] = append(grown[idx], e)
		}
	}
	h.buckets = grown
}

func (h *Hash) Put(key, value []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := h.find(key)
	if e == nil {
		e = &entry{key: append([]byte(nil), key...), valueIdx: make(map[string]int)}
		idx := h.bucketFor(e.key)
		h.buckets[idx] = append(h.buckets[idx], e)
		h.order = append(h.order, e)
		h.count++
		h.maybeGrow()
	}
	vs := string(value)
	if _, dup := e.valueIdx[vs]; dup {
		return nil
	}
	e.valueIdx[vs] = len(e.values)
	e.values = append(e.values, append([]byte(nil), value...))
	return nil
}

func (h *Hash) GetOne(key []byte) ([]byte, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.find(key)
	if e == nil || len(e.values) == 0 {
		return nil, false, nil
	}
	return e.values[0], true, nil
}

// GetAll returns every value for key via the same O(1) bucket lookup
// Contains/GetOne use, not a scan over every distinct key.
func (h *Hash) GetAll(key []byte) ([][]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.find(key)
	if e == nil {
		return nil, nil
	}
	out := make([][]byte, len(e.values))
	copy(out, e.values)
	return out, nil
}

// Keys returns every distinct non-empty key in insertion order.
func (h *Hash) Keys() ([][]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out [][]byte
	for _, e := range h.order {
		if !e.deleted && len(e.values) > 0 {
			out = append(out, e.key)
		}
	}
	return out, nil
}

func (h *Hash) Contains(key, value []byte) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.find(key)
	if e == nil {
		return false, nil
	}
	_, ok := e.valueIdx[string(value)]
	return ok, nil
}

func (h *Hash) ContainsKey(key []byte) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.find(key) != nil, nil
}

func (h *Hash) DeleteKey(key []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.find(key)
	if e == nil {
		return nil
	}
	e.deleted = true
	h.count--
	return nil
}

func (h *Hash) DeleteKeyValue(key, value []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.find(key)
	if e == nil {
		return nil
	}
	vs := string(value)
	i, ok := e.valueIdx[vs]
	if !ok {
		return nil
	}
	e.values = append(e.values[:i], e.values[i+1:]...)
	delete(e.valueIdx, vs)
	for k, v := range e.valueIdx {
		if v > i {
			e.valueIdx[k] = v - 1
		}
	}
	if len(e.values) == 0 {
		e.deleted = true
		h.count--
	}
	return nil
}

func (h *Hash) Fd() (int, bool) { return -1, false }

func (h *Hash) NewCursor() (hashkv.Cursor, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &cursor{h: h}, nil
}

// cursor walks h.order, which is stable across a walk so long as no
// concurrent Put/Delete interleaves, per spec.md §4.E.
type cursor struct {
	h        *Hash
	keyPos   int
	valPos   int
	curKey   []byte
	curValue []byte
}

func (c *cursor) Key() []byte   { return c.curKey }
func (c *cursor) Value() []byte { return c.curValue }
func (c *cursor) Close() error  { return nil }

func (c *cursor) Set(key, value []byte) bool {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	for i, e := range c.h.order {
		if e.deleted || string(e.key) != string(key) {
			continue
		}
		if j, ok := e.valueIdx[string(value)]; ok {
			c.keyPos = i
			c.valPos = j
			c.curKey = e.key
			c.curValue = e.values[j]
			return true
		}
	}
	return false
}

func (c *cursor) NextValue() ([]byte, bool) {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	if c.keyPos < 0 || c.keyPos >= len(c.h.order) {
		return nil, false
	}
	e := c.h.order[c.keyPos]
	if c.valPos+1 >= len(e.values) {
		return nil, false
	}
	c.valPos++
	c.curValue = e.values[c.valPos]
	return c.curValue, true
}

func (c *cursor) FirstKey() ([]byte, []byte, bool) {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	for i, e := range c.h.order {
		if e.deleted || len(e.values) == 0 {
			continue
		}
		c.keyPos = i
		c.valPos = 0
		c.curKey = e.key
		c.curValue = e.values[0]
		return c.curKey, c.curValue, true
	}
	return nil, nil, false
}

func (c *cursor) NextKey() ([]byte, []byte, bool) {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	for i := c.keyPos + 1; i < len(c.h.order); i++ {
		e := c.h.order[i]
		if e.deleted || len(e.values) == 0 {
			continue
		}
		c.keyPos = i
		c.valPos = 0
		c.curKey = e.key
		c.curValue = e.values[0]
		return c.curKey, c.curValue, true
	}
	return nil, nil, false
}

var _ hashkv.Hash = (*Hash)(nil)
