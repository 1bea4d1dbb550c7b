// Package statement implements spec.md §4.D: the (subject, predicate,
// object, graph?) triple/quad, its partial-statement wildcard semantics,
// and its encode/decode-parts wire format.
package statement

import (
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/uri"
)

// Statement is a 3-tuple of nodes plus an optional graph (context) node.
// A nil field in a Statement used as a match pattern is a wildcard
// (spec.md §3's "partial statement").
type Statement struct {
	Subject   *node.Node
	Predicate *node.Node
	Object    *node.Node
	Graph     *node.Node
}

// New constructs an empty (all-wildcard) statement.
func New() *Statement { return &Statement{} }

// NewFromNodes constructs a fully-bound statement from three nodes, with
// no graph. Callers are responsible for spec.md §3's shape constraints
// (subject IRI/Blank, predicate IRI); Validate checks them.
func NewFromNodes(s, p, o *node.Node) *Statement {
	return &Statement{Subject: s, Predicate: p, Object: o}
}

// Validate enforces spec.md §3's node-kind constraints for a fully bound
// statement (fields present in a partial pattern are exempt).
func (t *Statement) Validate() error {
	if t.Subject != nil && t.Subject.Kind() != node.KindIRI && t.Subject.Kind() != node.KindBlank {
		return rdferr.New(rdferr.InvalidArgument, "statement: subject must be IRI or Blank")
	}
	if t.Predicate != nil && t.Predicate.Kind() != node.KindIRI {
		return rdferr.New(rdferr.InvalidArgument, "statement: predicate must be IRI")
	}
	if t.Graph != nil && t.Graph.Kind() != node.KindIRI && t.Graph.Kind() != node.KindBlank {
		return rdferr.New(rdferr.InvalidArgument, "statement: graph must be IRI or Blank")
	}
	return nil
}

// Clone returns a statement with the same node handles; since nodes are
// interned and reference-counted, a true deep copy bumps each field's
// reference count so the clone owns its own references (spec.md §3:
// "A Statement never shares storage with another; node fields are owned
// by the Statement").
func (t *Statement) Clone() *Statement {
	clone := &Statement{}
	if t.Subject != nil {
		clone.Subject = node.Clone(t.Subject)
	}
	if t.Predicate != nil {
		clone.Predicate = node.Clone(t.Predicate)
	}
	if t.Object != nil {
		clone.Object = node.Clone(t.Object)
	}
	if t.Graph != nil {
		clone.Graph = node.Clone(t.Graph)
	}
	return clone
}

// Clear releases this statement's owned references and resets every
// field to the wildcard (nil) state.
func (t *Statement) Clear() {
	if t.Subject != nil {
		t.Subject.Release()
	}
	if t.Predicate != nil {
		t.Predicate.Release()
	}
	if t.Object != nil {
		t.Object.Release()
	}
	if t.Graph != nil {
		t.Graph.Release()
	}
	*t = Statement{}
}

// Equals compares every field for equality, including the graph.
func (t *Statement) Equals(other *Statement) bool {
	if t == nil || other == nil {
		return t == other
	}
	return nodeEq(t.Subject, other.Subject) &&
		nodeEq(t.Predicate, other.Predicate) &&
		nodeEq(t.Object, other.Object) &&
		nodeEq(t.Graph, other.Graph)
}

func nodeEq(a, b *node.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}

// Matches reports whether t (a fully or partially bound pattern) matches
// candidate: a wildcard field in t matches any value in candidate; a
// present field must equal exactly (spec.md §3/§4.D).
func (t *Statement) Matches(candidate *Statement) bool {
	if !fieldMatches(t.Subject, candidate.Subject) {
		return false
	}
	if !fieldMatches(t.Predicate, candidate.Predicate) {
		return false
	}
	if !fieldMatches(t.Object, candidate.Object) {
		return false
	}
	if !fieldMatches(t.Graph, candidate.Graph) {
		return false
	}
	return true
}

func fieldMatches(pattern, value *node.Node) bool {
	if pattern == nil {
		return true
	}
	if value == nil {
		return false
	}
	return pattern.Equals(value)
}

// --- Encoding (spec.md §4.D) ---

const magic = 'x'

const (
	flagS byte = 's'
	flagP byte = 'p'
	flagO byte = 'o'
	flagC byte = 'c'
)

// EncodeParts produces the wire form: a magic byte, then one flag byte
// per present field, then each present field's node.Encode output in
// S,P,O,C order.
func EncodeParts(t *Statement) []byte {
	buf := []byte{magic}
	type part struct {
		flag byte
		n    *node.Node
	}
	parts := []part{
		{flagS, t.Subject},
		{flagP, t.Predicate},
		{flagO, t.Object},
		{flagC, t.Graph},
	}
	for _, p := range parts {
		if p.n != nil {
			buf = append(buf, p.flag)
		}
	}
	buf = append(buf, 0) // terminator for the flag list
	for _, p := range parts {
		if p.n != nil {
			buf = append(buf, node.Encode(p.n)...)
		}
	}
	return buf
}

// DecodeParts is the exact inverse of EncodeParts.
func DecodeParts(c *node.Caches, uc *uri.Cache, buf []byte) (*Statement, error) {
	if len(buf) == 0 || buf[0] != magic {
		return nil, rdferr.Wrap(rdferr.InvalidEncoding, "statement: missing magic byte", rdferr.ErrBadTag)
	}
	pos := 1
	var flags []byte
	for pos < len(buf) && buf[pos] != 0 {
		flags = append(flags, buf[pos])
		pos++
	}
	if pos >= len(buf) {
		return nil, rdferr.Wrap(rdferr.InvalidEncoding, "statement: unterminated flag list", rdferr.ErrTruncated)
	}
	pos++ // skip terminator

	t := &Statement{}
	for _, flag := range flags {
		n, consumed, err := node.Decode(c, uc, buf[pos:])
		if err != nil {
			return nil, err
		}
		pos += consumed
		switch flag {
		case flagS:
			t.Subject = n
		case flagP:
			t.Predicate = n
		case flagO:
			t.Object = n
		case flagC:
			t.Graph = n
		default:
			return nil, rdferr.Wrap(rdferr.InvalidEncoding, "statement: unknown field flag", rdferr.ErrBadTag)
		}
	}
	return t, nil
}
