// Package node implements spec.md §4.C: the Node (Term) sum type —
// IRI, Literal and Blank — interned per-kind the same way package uri
// interns URIs, and its self-delimiting storage encoding.
//
// The Term-union shape (and the IRI/Literal/Blank split with an Eq
// method) is grounded in other_examples' knakk-rdf/rdf.go; the varint
// self-delimiting encoding scheme is rdfcore's own, specified by
// spec.md §4.C.
package node

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/oxhq/rdfcore/hashkv"
	"github.com/oxhq/rdfcore/hashkv/memhash"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/uri"
)

// Kind tags which variant of the Term union a Node holds.
type Kind int

const (
	KindIRI Kind = iota + 1
	KindLiteral
	KindBlank
)

// rdfXMLLiteral is the datatype URI used to encode "well-formed XML
// literal" per spec.md §3.
const rdfXMLLiteral = "http://www.w3.org/1999/02/22-rdf-syntax-ns#XMLLiteral"

// Node is the interned, reference-counted Term handle.
type Node struct {
	kind Kind

	// IRI
	u *uri.URI

	// Literal
	litBytes []byte
	litLang  string
	litDT    *uri.URI

	// Blank
	blankID []byte

	cache    *Caches
	key      string
	id       uint64
	refCount int64
}

func (n *Node) Kind() Kind { return n.kind }

// URI returns the wrapped URI for an IRI node, or nil otherwise.
func (n *Node) URI() *uri.URI {
	if n.kind != KindIRI {
		return nil
	}
	return n.u
}

// LiteralParts returns a literal node's bytes, language and datatype; ok
// is false for non-literal nodes.
func (n *Node) LiteralParts() (bytes []byte, lang string, datatype *uri.URI, ok bool) {
	if n.kind != KindLiteral {
		return nil, "", nil, false
	}
	return n.litBytes, n.litLang, n.litDT, true
}

// BlankID returns a blank node's local identifier, or nil otherwise.
func (n *Node) BlankID() []byte {
	if n.kind != KindBlank {
		return nil
	}
	return n.blankID
}

// Equals implements spec.md §3's per-kind equality; since nodes are
// interned, this reduces to pointer equality for handles from the same
// Caches, but is defined structurally so cross-World comparisons (not
// expected, but not forbidden) still behave sensibly.
func (n *Node) Equals(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil || n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindIRI:
		return n.u.Equals(other.u) || n.u.AsString() == other.u.AsString()
	case KindLiteral:
		return string(n.litBytes) == string(other.litBytes) &&
			strings.EqualFold(n.litLang, other.litLang) &&
			datatypeEqual(n.litDT, other.litDT)
	case KindBlank:
		return string(n.blankID) == string(other.blankID)
	default:
		return false
	}
}

func datatypeEqual(a, b *uri.URI) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.AsString() == b.AsString()
}

func (n *Node) Release() {
	if n == nil || n.cache == nil {
		return
	}
	n.cache.release(n)
}

// RefCount is exposed for tests exercising spec.md §8 property 5.
func (n *Node) RefCount() int64 { return n.refCount }

// Caches holds the three per-kind intern tables spec.md §3 requires
// ("three caches: IRI, Literal, Blank"), each guarded by its own mutex
// per spec.md §5.
type Caches struct {
	iri     table
	literal table
	blank   table
}

type table struct {
	mu     sync.Mutex
	ids    hashkv.Hash
	arena  map[uint64]*Node
	nextID uint64
}

func newTable(name string) table {
	h := memhash.New()
	_ = h.Open(hashkv.OpenOptions{Identifier: name, Writable: true})
	return table{ids: h, arena: make(map[uint64]*Node)}
}

// NewCaches builds the three empty intern tables.
func NewCaches() *Caches {
	return &Caches{
		iri:     newTable("node-iri-intern"),
		literal: newTable("node-literal-intern"),
		blank:   newTable("node-blank-intern"),
	}
}

func (t *table) intern(key []byte, build func(id uint64) *Node) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idBytes, ok, _ := t.ids.GetOne(key); ok {
		id := binary.BigEndian.Uint64(idBytes)
		n := t.arena[id]
		n.refCount++
		return n
	}
	id := t.nextID
	t.nextID++
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], id)
	_ = t.ids.Put(append([]byte(nil), key...), idBytes[:])
	n := build(id)
	n.refCount = 1
	t.arena[id] = n
	return n
}

func (t *table) releaseKey(key []byte, id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.arena, id)
	_ = t.ids.DeleteKey(key)
}

func (c *Caches) release(n *Node) {
	var t *table
	switch n.kind {
	case KindIRI:
		t = &c.iri
	case KindLiteral:
		t = &c.literal
	case KindBlank:
		t = &c.blank
	}
	t.mu.Lock()
	n.refCount--
	done := n.refCount <= 0
	t.mu.Unlock()
	if done {
		t.releaseKey([]byte(n.key), n.id)
	}
}

// NewIRI interns an IRI node built from an already-interned URI.
func NewIRI(c *Caches, u *uri.URI) *Node {
	key := u.Bytes()
	return c.iri.intern(key, func(id uint64) *Node {
		return &Node{kind: KindIRI, u: u, cache: c, key: string(key), id: id}
	})
}

// NewIRIFromString interns bytes as a URI first, then as an IRI node.
func NewIRIFromString(c *Caches, uc *uri.Cache, bytes []byte) (*Node, error) {
	u, err := uri.New(uc, bytes)
	if err != nil {
		return nil, err
	}
	return NewIRI(c, u), nil
}

// NewIRIFromLocalName interns uriBytes+localName concatenated as one IRI.
func NewIRIFromLocalName(c *Caches, uc *uri.Cache, base []byte, localName []byte) (*Node, error) {
	full := append(append([]byte(nil), base...), localName...)
	return NewIRIFromString(c, uc, full)
}

// canonicalLiteral applies spec.md §4.C's canonicalization: datatype
// present implies language absent; language present with no datatype
// is a plain literal with language.
func canonicalLiteral(lang string, datatype *uri.URI) (string, *uri.URI) {
	if datatype != nil {
		return "", datatype
	}
	return lang, nil
}

func literalKey(bytes []byte, lang string, datatype *uri.URI) string {
	var b strings.Builder
	b.Write(bytes)
	b.WriteByte(0)
	b.WriteString(strings.ToLower(lang))
	b.WriteByte(0)
	if datatype != nil {
		b.WriteString(datatype.AsString())
	}
	return b.String()
}

// NewLiteral interns a literal node, canonicalizing language/datatype
// per spec.md §4.C.
func NewLiteral(c *Caches, bytes []byte, lang string, datatype *uri.URI) *Node {
	lang, datatype = canonicalLiteral(lang, datatype)
	key := literalKey(bytes, lang, datatype)
	return c.literal.intern([]byte(key), func(id uint64) *Node {
		return &Node{
			kind:     KindLiteral,
			litBytes: append([]byte(nil), bytes...),
			litLang:  lang,
			litDT:    datatype,
			cache:    c,
			key:      key,
			id:       id,
		}
	})
}

// NewXMLLiteral is a convenience constructor for the well-formed XML
// literal bit, encoded as the rdf:XMLLiteral datatype per spec.md §3.
func NewXMLLiteral(c *Caches, uc *uri.Cache, bytes []byte) (*Node, error) {
	dt, err := uri.New(uc, []byte(rdfXMLLiteral))
	if err != nil {
		return nil, err
	}
	return NewLiteral(c, bytes, "", dt), nil
}

// NewBlank interns a blank node by its local scope identifier.
func NewBlank(c *Caches, identifier []byte) *Node {
	key := string(identifier)
	return c.blank.intern(identifier, func(id uint64) *Node {
		return &Node{
			kind:    KindBlank,
			blankID: append([]byte(nil), identifier...),
			cache:   c,
			key:     key,
			id:      id,
		}
	})
}

// Clone bumps the reference count and returns the same handle, matching
// the interning invariant.
func Clone(n *Node) *Node {
	var t *table
	switch n.kind {
	case KindIRI:
		t = &n.cache.iri
	case KindLiteral:
		t = &n.cache.literal
	case KindBlank:
		t = &n.cache.blank
	}
	t.mu.Lock()
	n.refCount++
	t.mu.Unlock()
	return n
}

// --- Encoding (spec.md §4.C) ---

const (
	tagIRI     byte = 1
	tagLiteral byte = 2
	tagBlank   byte = 3
)

// Encode produces the self-delimiting byte string spec.md §4.C defines
// for use as a storage key/value.
func Encode(n *Node) []byte {
	var buf []byte
	switch n.kind {
	case KindIRI:
		buf = append(buf, tagIRI)
		buf = appendVarint(buf, uint64(len(n.u.Bytes())))
		buf = append(buf, n.u.Bytes()...)
	case KindLiteral:
		buf = append(buf, tagLiteral)
		buf = appendVarint(buf, uint64(len(n.litBytes)))
		buf = appendVarint(buf, uint64(len(n.litLang)))
		dtLen := 0
		if n.litDT != nil {
			dtLen = len(n.litDT.Bytes())
		}
		buf = appendVarint(buf, uint64(dtLen))
		buf = append(buf, n.litBytes...)
		buf = append(buf, []byte(n.litLang)...)
		if n.litDT != nil {
			buf = append(buf, n.litDT.Bytes()...)
		}
	case KindBlank:
		buf = append(buf, tagBlank)
		buf = appendVarint(buf, uint64(len(n.blankID)))
		buf = append(buf, n.blankID...)
	}
	return buf
}

func appendVarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// Decode is the exact inverse of Encode, interning the result into the
// given caches so decoded nodes participate in the same identity
// guarantees as freshly constructed ones.
func Decode(c *Caches, uc *uri.Cache, buf []byte) (*Node, int, error) {
	if len(buf) == 0 {
		return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: empty buffer", rdferr.ErrTruncated)
	}
	tag := buf[0]
	rest := buf[1:]
	switch tag {
	case tagIRI:
		l, n, err := readVarint(rest)
		if err != nil {
			return nil, 0, err
		}
		rest = rest[n:]
		if uint64(len(rest)) < l {
			return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: truncated IRI", rdferr.ErrTruncated)
		}
		bytes := rest[:l]
		nd, err := NewIRIFromString(c, uc, bytes)
		if err != nil {
			return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: invalid IRI bytes", err)
		}
		return nd, 1 + n + int(l), nil
	case tagLiteral:
		bl, n1, err := readVarint(rest)
		if err != nil {
			return nil, 0, err
		}
		rest = rest[n1:]
		ll, n2, err := readVarint(rest)
		if err != nil {
			return nil, 0, err
		}
		rest = rest[n2:]
		dl, n3, err := readVarint(rest)
		if err != nil {
			return nil, 0, err
		}
		rest = rest[n3:]
		need := bl + ll + dl
		if uint64(len(rest)) < need {
			return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: truncated literal", rdferr.ErrTruncated)
		}
		litBytes := rest[:bl]
		lang := string(rest[bl : bl+ll])
		var dt *uri.URI
		if dl > 0 {
			dtBytes := rest[bl+ll : bl+ll+dl]
			dt, err = uri.New(uc, dtBytes)
			if err != nil {
				return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: invalid literal datatype", err)
			}
		}
		nd := NewLiteral(c, litBytes, lang, dt)
		return nd, 1 + n1 + n2 + n3 + int(need), nil
	case tagBlank:
		l, n, err := readVarint(rest)
		if err != nil {
			return nil, 0, err
		}
		rest = rest[n:]
		if uint64(len(rest)) < l {
			return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: truncated blank", rdferr.ErrTruncated)
		}
		nd := NewBlank(c, rest[:l])
		return nd, 1 + n + int(l), nil
	default:
		return nil, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: invalid tag", rdferr.ErrBadTag)
	}
}

func readVarint(buf []byte) (uint64, int, error) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, rdferr.Wrap(rdferr.InvalidEncoding, "node: invalid varint", rdferr.ErrTruncated)
	}
	return v, n, nil
}
