// Package stream implements spec.md §4.H: the Stream of Statement,
// identical in contract to package iterator but specialized to
// Statement, with the additional per-position "current graph context"
// projection used wherever sequences of triples flow (find-statements
// results, parser output, serializer input).
package stream

import (
	"github.com/oxhq/rdfcore/iterator"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/statement"
)

// Source produces raw statements plus, optionally, the graph context
// each one came from.
type Source = iterator.Source[*statement.Statement]

// MapFunc transforms a statement, or rejects it (spec.md §4.H).
type MapFunc = iterator.MapFunc[*statement.Statement]

// Stream is the lazy, single-pass, finite sequence of Statement, not
// restartable.
type Stream struct {
	it *iterator.Iterator[*statement.Statement]
}

// New wraps a Source with no maps registered.
func New(src Source) *Stream {
	return &Stream{it: iterator.New(src)}
}

// End reports whether the stream is exhausted.
func (s *Stream) End() bool { return s.it.End() }

// Next advances to the next statement.
func (s *Stream) Next() bool { return s.it.Next() }

// Current returns the statement at the present position.
func (s *Stream) Current() *statement.Statement { return s.it.Current() }

// CurrentContext returns the graph node the current statement came
// from, if the source provides one.
func (s *Stream) CurrentContext() *node.Node {
	v, ok := s.it.Aux(iterator.ProjContext)
	if !ok {
		return nil
	}
	n, _ := v.(*node.Node)
	return n
}

// AddMap registers a filter-map transform, applied lazily on each
// Current read, in registration order.
func (s *Stream) AddMap(fn MapFunc, release iterator.ReleaseFunc) {
	s.it.AddMap(fn, release)
}

// Cancel releases every registered map's context and the source's
// finish callback, exactly once (spec.md §5).
func (s *Stream) Cancel() error { return s.it.Cancel() }

// FromSlice builds a Stream directly from a materialized slice of
// (statement, context) pairs; used by the hashes storage backend,
// package model, the N-Triples and Turtle parsers, and
// query/triplepattern.
func FromSlice(items []*statement.Statement, contexts []*node.Node) *Stream {
	return New(&sliceSource{items: items, contexts: contexts, pos: -1})
}

type sliceSource struct {
	items    []*statement.Statement
	contexts []*node.Node
	pos      int
}

func (s *sliceSource) Next() bool {
	if s.pos+1 >= len(s.items) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Item() *statement.Statement {
	if s.pos < 0 || s.pos >= len(s.items) {
		return nil
	}
	return s.items[s.pos]
}

func (s *sliceSource) Aux(p iterator.Projection) (any, bool) {
	if p != iterator.ProjContext || s.pos < 0 || s.pos >= len(s.contexts) {
		return nil, false
	}
	if s.contexts[s.pos] == nil {
		return nil, false
	}
	return s.contexts[s.pos], true
}

func (s *sliceSource) Close() error { return nil }
