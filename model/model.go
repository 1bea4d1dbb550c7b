// Package model implements spec.md §4.K: the statement-level API over a
// Storage, with submodel composition, typed-literal convenience
// constructors, and delegation to the parser/serializer/query shims.
//
// Model intentionally does not import packages parser, serializer or
// query: those packages depend on Model (to parse into it, serialize
// its streams, and run queries against it), so the dependency points
// the other way. Model instead declares the minimal structural
// interfaces it needs (Parser, Serializer, Query below) and resolves
// concrete implementations through the World's factory registries —
// the same pattern package world itself uses for its five registries.
package model

import (
	"github.com/oxhq/rdfcore/internal/list"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/stream"
	"github.com/oxhq/rdfcore/uri"
	"github.com/oxhq/rdfcore/world"
)

// Parser is the shape Model.LoadFromURI/LoadFromString expect a
// registered parser factory's product to have (spec.md §4.L).
type Parser interface {
	ParseStringIntoModel(data []byte, baseURI *uri.URI, sink *Model) error
	ParseStringAsStream(data []byte, baseURI *uri.URI) (*stream.Stream, error)
	ParseURIIntoModel(u *uri.URI, sink *Model) error
	ParseURIAsStream(u *uri.URI) (*stream.Stream, error)
}

// Serializer is the shape Model.ToString expects (spec.md §4.M).
type Serializer interface {
	SerializeModelToString(m *Model) (string, error)
	SerializeStreamToString(s *stream.Stream) (string, error)
	SetNamespace(prefix string, ns *uri.URI)
}

// Query is the shape Model.Execute expects (spec.md §4.M).
type Query interface {
	Execute(m *Model, queryText string, baseURI *uri.URI) (*Results, error)
}

// ResultsShape distinguishes the three result kinds a query may return.
type ResultsShape int

const (
	ShapeBindings ResultsShape = iota
	ShapeBoolean
	ShapeGraph
)

// Binding is one (name, node) pair in a bindings row; Node is nil when
// the variable is unbound in that row.
type Binding struct {
	Name string
	Node *node.Node
}

// Results is the handle spec.md §4.M describes: bindings rows, a single
// boolean, or a graph stream, plus a cursor and an optional
// LIMIT/OFFSET pair.
type Results struct {
	Shape    ResultsShape
	Rows     [][]Binding    // ShapeBindings
	Bool     bool           // ShapeBoolean
	Graph    *stream.Stream // ShapeGraph
	Limit    int            // 0 means unlimited
	Offset   int
	pos      int
	finished bool
}

// Next advances the bindings cursor; only meaningful for ShapeBindings.
func (r *Results) Next() bool {
	if r.Shape != ShapeBindings || r.finished {
		return false
	}
	if r.pos < r.Offset {
		r.pos = r.Offset
	}
	if r.pos >= len(r.Rows) || (r.Limit > 0 && r.pos-r.Offset >= r.Limit) {
		r.finished = true
		return false
	}
	r.pos++
	return true
}

// Finished reports whether the bindings cursor is exhausted.
func (r *Results) Finished() bool { return r.finished }

// Current returns the bindings row at the cursor's current position.
func (r *Results) Current() []Binding {
	if r.pos <= 0 || r.pos > len(r.Rows) {
		return nil
	}
	return r.Rows[r.pos-1]
}

// Model is the statement-level API over a Storage (spec.md §4.K). subs
// is the "ordered list of child models" spec.md §4.K describes, backed
// by internal/list rather than a Go slice (component F in spec.md §2's
// dependency order).
type Model struct {
	world *world.World
	store storage.Storage
	subs  *list.List[*Model]
}

// New builds a Model over an already-opened Storage.
func New(w *world.World, store storage.Storage) *Model {
	return &Model{world: w, store: store, subs: list.New[*Model]()}
}

// AddSubmodel appends a read-only child consulted by reads (self
// first, then children in registration order), per spec.md §4.K.
func (m *Model) AddSubmodel(sub *Model) { m.subs.Add(sub) }

// Size returns self's statement count; submodels are not counted
// (matching spec.md §4.K's "writes go only to self").
func (m *Model) Size() int64 { return m.store.Size() }

// AddStatement inserts t into self.
func (m *Model) AddStatement(t *statement.Statement) error {
	return m.store.AddStatement(t)
}

// AddStatementWithContext inserts t under the given named graph,
// spec.md §4.K's context-scoped add.
func (m *Model) AddStatementWithContext(t *statement.Statement, context *node.Node) error {
	withCtx := statement.NewFromNodes(t.Subject, t.Predicate, t.Object)
	withCtx.Graph = context
	return m.store.AddStatement(withCtx)
}

// AddTriple is a typed-literal convenience constructor: builds a
// statement from already-interned nodes and inserts it in one call.
func (m *Model) AddTriple(subject, predicate, object *node.Node) error {
	t := statement.NewFromNodes(subject, predicate, object)
	if err := t.Validate(); err != nil {
		return err
	}
	return m.store.AddStatement(t)
}

// AddLiteralTriple interns a literal object node via the World and
// inserts (subject, predicate, literal).
func (m *Model) AddLiteralTriple(subject, predicate *node.Node, value []byte, lang string, datatype *uri.URI) error {
	obj := m.world.NewLiteral(value, lang, datatype)
	return m.AddTriple(subject, predicate, obj)
}

// RemoveStatement deletes t from self only; a statement present only in
// a submodel is reported as a no-op via the returned bool, not an error
// (spec.md §4.K).
func (m *Model) RemoveStatement(t *statement.Statement) (removed bool, err error) {
	existed, err := m.store.ContainsStatement(t)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}
	if err := m.store.RemoveStatement(t); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAllInContext deletes every statement whose graph equals context.
func (m *Model) RemoveAllInContext(context *node.Node) error {
	s, err := m.store.FindInContext(context)
	if err != nil {
		return err
	}
	defer s.Cancel()
	var toRemove []*statement.Statement
	for s.Next() {
		t := s.Current()
		withCtx := statement.NewFromNodes(t.Subject, t.Predicate, t.Object)
		withCtx.Graph = context
		toRemove = append(toRemove, withCtx)
	}
	for _, t := range toRemove {
		if err := m.store.RemoveStatement(t); err != nil {
			return err
		}
	}
	return nil
}

// ContainsStatement reports whether t exists in self or any submodel.
func (m *Model) ContainsStatement(t *statement.Statement) (bool, error) {
	ok, err := m.store.ContainsStatement(t)
	if err != nil || ok {
		return ok, err
	}
	for n := m.subs.First(); n != nil; n = n.Next() {
		ok, err := n.Value().ContainsStatement(t)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// FindStatements merges self's matches with every submodel's, self
// first, per spec.md §4.K.
func (m *Model) FindStatements(pattern *statement.Statement) (*stream.Stream, error) {
	selfStream, err := m.store.FindStatements(pattern)
	if err != nil {
		return nil, err
	}
	if m.subs.Len() == 0 {
		return selfStream, nil
	}

	var all []*statement.Statement
	var allCtx []*node.Node
	for selfStream.Next() {
		all = append(all, selfStream.Current())
		allCtx = append(allCtx, selfStream.CurrentContext())
	}
	_ = selfStream.Cancel()

	for n := m.subs.First(); n != nil; n = n.Next() {
		subStream, err := n.Value().FindStatements(pattern)
		if err != nil {
			return nil, err
		}
		for subStream.Next() {
			all = append(all, subStream.Current())
			allCtx = append(allCtx, subStream.CurrentContext())
		}
		_ = subStream.Cancel()
	}
	return stream.FromSlice(all, allCtx), nil
}

// HasArcIn/HasArcOut check self only, as these are storage-level index
// probes (spec.md §4.I); check submodels explicitly if needed.
func (m *Model) HasArcIn(n, predicate *node.Node) (bool, error)  { return m.store.HasArcIn(n, predicate) }
func (m *Model) HasArcOut(n, predicate *node.Node) (bool, error) { return m.store.HasArcOut(n, predicate) }

// EnumerateContexts lists every distinct graph node in self.
func (m *Model) EnumerateContexts() ([]*node.Node, error) { return m.store.Contexts() }

// SerializeContext returns every statement under context as a Stream,
// per spec.md §4.I's Contexts-serialize(graph).
func (m *Model) SerializeContext(context *node.Node) (*stream.Stream, error) {
	return m.store.FindInContext(context)
}

// Sync forwards to the backing Storage.
func (m *Model) Sync() error { return m.store.Sync() }

// Close forwards to the backing Storage.
func (m *Model) Close() error { return m.store.Close() }

// World exposes the owning World, e.g. for node construction by a
// caller building statements to insert.
func (m *Model) World() *world.World { return m.world }

// LoadFromURI resolves the named parser factory and delegates into it
// with this Model as sink, per spec.md §4.K.
func (m *Model) LoadFromURI(parserName string, u *uri.URI) error {
	p, err := m.lookupParser(parserName)
	if err != nil {
		return err
	}
	return p.ParseURIIntoModel(u, m)
}

// LoadFromString parses data directly, without a source URI.
func (m *Model) LoadFromString(parserName string, data []byte, baseURI *uri.URI) error {
	p, err := m.lookupParser(parserName)
	if err != nil {
		return err
	}
	return p.ParseStringIntoModel(data, baseURI, m)
}

func (m *Model) lookupParser(name string) (Parser, error) {
	v, ok := m.world.Parser.Get(name)
	if !ok {
		return nil, rdferr.Wrap(rdferr.NotFound, "model: unknown parser "+name, rdferr.ErrUnknownFactory)
	}
	factory, ok := v.(func() Parser)
	if !ok {
		return nil, rdferr.New(rdferr.InvalidArgument, "model: parser factory "+name+" has the wrong type")
	}
	return factory(), nil
}

// ToString delegates to the named serializer.
func (m *Model) ToString(serializerName string) (string, error) {
	v, ok := m.world.Serializer.Get(serializerName)
	if !ok {
		return "", rdferr.Wrap(rdferr.NotFound, "model: unknown serializer "+serializerName, rdferr.ErrUnknownFactory)
	}
	factory, ok := v.(func() Serializer)
	if !ok {
		return "", rdferr.New(rdferr.InvalidArgument, "model: serializer factory "+serializerName+" has the wrong type")
	}
	return factory().SerializeModelToString(m)
}

// Execute delegates to the named query language, per spec.md §4.M.
func (m *Model) Execute(queryName, queryText string, baseURI *uri.URI) (*Results, error) {
	v, ok := m.world.Query.Get(queryName)
	if !ok {
		return nil, rdferr.Wrap(rdferr.NotFound, "model: unknown query language "+queryName, rdferr.ErrUnknownFactory)
	}
	factory, ok := v.(func() Query)
	if !ok {
		return nil, rdferr.New(rdferr.InvalidArgument, "model: query factory "+queryName+" has the wrong type")
	}
	return factory().Execute(m, queryText, baseURI)
}
