// Package query implements spec.md §4.M's query shim: a factory
// registry keyed by query-language name. The concrete language lives in
// query/triplepattern.
package query

import (
	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/world"
)

// Factory builds a fresh model.Query instance.
type Factory func() model.Query

// Register adds a named query-language factory to w's registry.
//
// The registry stores the factory as the unnamed func() model.Query
// type, not the named Factory type above: a type assertion only
// matches an identical dynamic type, and model.go (which cannot import
// this package without a cycle) asserts against the unnamed type, so
// Register and Lookup must agree on that same unnamed type.
func Register(w *world.World, name string, f Factory) error {
	var fn func() model.Query = f
	return w.Query.Register(name, fn)
}

// Lookup resolves a registered query language by name.
func Lookup(w *world.World, name string) (model.Query, error) {
	v, ok := w.Query.Get(name)
	if !ok {
		return nil, rdferr.Wrap(rdferr.NotFound, "query: unknown language "+name, rdferr.ErrUnknownFactory)
	}
	f, ok := v.(func() model.Query)
	if !ok {
		return nil, rdferr.New(rdferr.InvalidArgument, "query: factory "+name+" has the wrong type")
	}
	return f(), nil
}
