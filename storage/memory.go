package storage

import (
	"github.com/oxhq/rdfcore/internal/list"
	"github.com/oxhq/rdfcore/iterator"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/stream"
)

// memEntry is one (statement, context) pair, spec.md §4.J's "ordered
// list of (statement, context) entries" as a single list item rather
// than the two index-parallel slices this used to be.
type memEntry struct {
	stmt *statement.Statement
	ctx  *node.Node
}

// MemoryStorage is the linear-scan backend of spec.md §4.J: no indexes,
// every find is O(n) over the ordered entry list. Appropriate for small
// graphs, scratch models, and tests, where building three hash indexes
// is wasted work.
type MemoryStorage struct {
	entries *list.List[*memEntry]
}

// NewMemoryStorage constructs an empty backend, ready without Open.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: list.New[*memEntry]()}
}

func (m *MemoryStorage) Open(opts Options) error { return nil }
func (m *MemoryStorage) Close() error            { m.entries.Clear(); return nil }
func (m *MemoryStorage) Sync() error             { return nil }

func (m *MemoryStorage) Size() int64 { return int64(m.entries.Len()) }

func graphEquals(a, b *node.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}

func entryMatches(e *memEntry, t *statement.Statement) bool {
	return e.stmt.Subject.Equals(t.Subject) && e.stmt.Predicate.Equals(t.Predicate) &&
		e.stmt.Object.Equals(t.Object) && graphEquals(e.ctx, t.Graph)
}

func (m *MemoryStorage) findNode(t *statement.Statement) *list.Node[*memEntry] {
	for n := m.entries.First(); n != nil; n = n.Next() {
		if entryMatches(n.Value(), t) {
			return n
		}
	}
	return nil
}

func (m *MemoryStorage) AddStatement(t *statement.Statement) error {
	if err := requireBound(t); err != nil {
		return err
	}
	if m.findNode(t) != nil {
		return nil
	}
	m.entries.Add(&memEntry{stmt: statement.NewFromNodes(t.Subject, t.Predicate, t.Object), ctx: t.Graph})
	return nil
}

func (m *MemoryStorage) RemoveStatement(t *statement.Statement) error {
	if err := requireBound(t); err != nil {
		return err
	}
	n := m.findNode(t)
	if n == nil {
		return nil
	}
	m.entries.RemoveNode(n)
	return nil
}

func (m *MemoryStorage) ContainsStatement(t *statement.Statement) (bool, error) {
	if err := requireBound(t); err != nil {
		return false, err
	}
	return m.findNode(t) != nil, nil
}

// matchSource streams matches out of the entry list lazily, node by
// node, rather than materializing a result slice up front.
type matchSource struct {
	next    *list.Node[*memEntry]
	pattern *statement.Statement
	cur     *memEntry
}

func (s *matchSource) Next() bool {
	for s.next != nil {
		n := s.next
		s.next = n.Next()
		e := n.Value()
		if fieldOK(s.pattern.Subject, e.stmt.Subject) && fieldOK(s.pattern.Predicate, e.stmt.Predicate) &&
			fieldOK(s.pattern.Object, e.stmt.Object) && fieldOK(s.pattern.Graph, e.ctx) {
			s.cur = e
			return true
		}
	}
	return false
}

func (s *matchSource) Item() *statement.Statement {
	return statement.NewFromNodes(s.cur.stmt.Subject, s.cur.stmt.Predicate, s.cur.stmt.Object)
}

func (s *matchSource) Aux(p iterator.Projection) (any, bool) {
	if p != iterator.ProjContext || s.cur.ctx == nil {
		return nil, false
	}
	return s.cur.ctx, true
}

func (s *matchSource) Close() error { return nil }

func (m *MemoryStorage) FindStatements(pattern *statement.Statement) (*stream.Stream, error) {
	return stream.New(&matchSource{next: m.entries.First(), pattern: pattern}), nil
}

func (m *MemoryStorage) HasArcIn(n, predicate *node.Node) (bool, error) {
	found := false
	m.entries.ForEach(func(e *memEntry) {
		if !found && e.stmt.Object.Equals(n) && e.stmt.Predicate.Equals(predicate) {
			found = true
		}
	})
	return found, nil
}

func (m *MemoryStorage) HasArcOut(n, predicate *node.Node) (bool, error) {
	found := false
	m.entries.ForEach(func(e *memEntry) {
		if !found && e.stmt.Subject.Equals(n) && e.stmt.Predicate.Equals(predicate) {
			found = true
		}
	})
	return found, nil
}

// FindInContext is a linear scan filtered by graph; MemoryStorage has
// no separate Contexts index to dispatch against, so this is the same
// cost as FindStatements with only Graph bound.
func (m *MemoryStorage) FindInContext(graph *node.Node) (*stream.Stream, error) {
	return m.FindStatements(&statement.Statement{Graph: graph})
}

func (m *MemoryStorage) Contexts() ([]*node.Node, error) {
	seen := make(map[*node.Node]bool)
	var out []*node.Node
	m.entries.ForEach(func(e *memEntry) {
		if e.ctx == nil || seen[e.ctx] {
			return
		}
		seen[e.ctx] = true
		out = append(out, e.ctx)
	})
	return out, nil
}

var _ Storage = (*MemoryStorage)(nil)
