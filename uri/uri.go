// Package uri implements spec.md §4.B: an interned, reference-counted
// wrapper around an immutable byte sequence. Interning is keyed by the
// full byte sequence; two URI handles obtained from the same Cache with
// the same bytes are the same handle (pointer equality ≡ value
// equality), per spec.md §3's invariant.
//
// Per spec.md §9's design note, the intern table is built as "an owning
// arena indexed by stable integer identifiers, with a side table from
// content-hash to identifier": the side table is a memhash.Hash (reusing
// component E, "the intern table is the hash abstraction in memory
// mode"), and the arena is a plain Go map from identifier to *URI.
package uri

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/oxhq/rdfcore/hashkv"
	"github.com/oxhq/rdfcore/hashkv/memhash"
	"github.com/oxhq/rdfcore/rdferr"
)

// URI is an opaque handle over an immutable UTF-8 byte sequence. Copies
// of a URI value are cheap (it holds only a pointer) but all copies
// share one reference count via Cache.
type URI struct {
	bytes    []byte
	length   int
	cache    *Cache
	id       uint64
	refCount int64
}

// Bytes returns the URI's raw byte sequence. The returned slice must not
// be mutated.
func (u *URI) Bytes() []byte { return u.bytes }

// Len returns the cached byte length, for fast inequality checks.
func (u *URI) Len() int { return u.length }

// AsString renders the URI as a Go string.
func (u *URI) AsString() string { return string(u.bytes) }

// Equals is pointer equality: two URIs from the same Cache with equal
// bytes are the same handle.
func (u *URI) Equals(other *URI) bool { return u == other }

// Compare provides a total order over URIs, by byte sequence.
func (u *URI) Compare(other *URI) int {
	return strings.Compare(string(u.bytes), string(other.bytes))
}

// Release decrements the use-count; at zero the handle is removed from
// its Cache and may be reused by a later New with the same bytes only
// after a fresh allocation (spec.md §3).
func (u *URI) Release() {
	if u == nil || u.cache == nil {
		return
	}
	u.cache.release(u)
}

// Cache is the per-World URI intern table (one of the three mutexed
// caches spec.md §5 mandates).
type Cache struct {
	mu      sync.Mutex
	ids     hashkv.Hash // content bytes -> 8-byte big-endian id
	arena   map[uint64]*URI
	nextID  uint64
}

// NewCache builds an empty, opened intern cache.
func NewCache() *Cache {
	h := memhash.New()
	_ = h.Open(hashkv.OpenOptions{Identifier: "uri-intern", Writable: true})
	return &Cache{
		ids:   h,
		arena: make(map[uint64]*URI),
	}
}

// New interns bytes, incrementing the reference count of an existing
// handle or allocating a fresh one. An empty byte sequence is an
// InvalidArgument error per spec.md §7.
func New(c *Cache, bytes []byte) (*URI, error) {
	if len(bytes) == 0 {
		return nil, rdferr.Wrap(rdferr.InvalidArgument, "uri: empty byte sequence", rdferr.ErrEmptyURI)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if idBytes, ok, _ := c.ids.GetOne(bytes); ok {
		id := binary.BigEndian.Uint64(idBytes)
		u := c.arena[id]
		u.refCount++
		return u, nil
	}

	id := c.nextID
	c.nextID++
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], id)
	_ = c.ids.Put(append([]byte(nil), bytes...), idBytes[:])

	u := &URI{
		bytes:    append([]byte(nil), bytes...),
		length:   len(bytes),
		cache:    c,
		id:       id,
		refCount: 1,
	}
	c.arena[id] = u
	return u, nil
}

// NewFromURI clones another URI, bumping its reference count (the clone
// is the very same handle, per the interning invariant).
func NewFromURI(other *URI) *URI {
	other.cache.mu.Lock()
	defer other.cache.mu.Unlock()
	other.refCount++
	return other
}

func (c *Cache) release(u *URI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u.refCount--
	if u.refCount > 0 {
		return
	}
	delete(c.arena, u.id)
	_ = c.ids.DeleteKey(u.bytes)
}

// RefCount reports the current reference count; exposed for tests
// exercising spec.md §8 property 5 (reference-count discipline).
func (u *URI) RefCount() int64 { return u.refCount }

// NewRelativeToBase implements spec.md §4.B's deliberately partial RFC
// 3986 relative-resolution rules.
func NewRelativeToBase(c *Cache, base *URI, rel []byte) (*URI, error) {
	if len(rel) == 0 {
		return NewFromURI(base), nil
	}
	baseStr := base.AsString()
	relStr := string(rel)

	switch {
	case relStr[0] == '#':
		if i := strings.IndexByte(baseStr, '#'); i >= 0 {
			baseStr = baseStr[:i]
		}
		return New(c, []byte(baseStr+relStr))
	case isAbsolute(relStr):
		return New(c, rel)
	default:
		cut := lastSlashOrColon(baseStr)
		if cut >= 0 {
			baseStr = baseStr[:cut+1]
		}
		return New(c, []byte(baseStr+relStr))
	}
}

// isAbsolute matches "^[A-Za-z0-9]+:" per spec.md §4.B.
func isAbsolute(s string) bool {
	i := 0
	for i < len(s) && isAlnum(s[i]) {
		i++
	}
	return i > 0 && i < len(s) && s[i] == ':'
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func lastSlashOrColon(s string) int {
	slash := strings.LastIndexByte(s, '/')
	colon := strings.LastIndexByte(s, ':')
	if slash > colon {
		return slash
	}
	return colon
}

// NewNormalizedToBase implements spec.md §4.B's normalize-to-base rule.
func NewNormalizedToBase(c *Cache, str string, sourceBase, targetBase *URI) (*URI, error) {
	sb := sourceBase.AsString()
	if strings.HasPrefix(str, sb) {
		return New(c, []byte(targetBase.AsString()+strings.TrimPrefix(str, sb)))
	}
	if strings.HasPrefix(str, "#") {
		return New(c, []byte(targetBase.AsString()+str))
	}
	return New(c, []byte(str))
}
