package query

import (
	"github.com/oxhq/rdfcore/query/triplepattern"
	"github.com/oxhq/rdfcore/world"
)

// RegisterBuiltins registers the triplepattern query language under
// its spec.md §6 name.
func RegisterBuiltins(w *world.World) error {
	return Register(w, triplepattern.Name, triplepattern.Factory())
}
