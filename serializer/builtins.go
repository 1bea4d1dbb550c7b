package serializer

import (
	"github.com/oxhq/rdfcore/serializer/ntriples"
	"github.com/oxhq/rdfcore/serializer/turtle"
	"github.com/oxhq/rdfcore/world"
)

// RegisterBuiltins registers the ntriples and turtle serializers under
// their spec.md §6 names.
func RegisterBuiltins(w *world.World) error {
	if err := Register(w, ntriples.Name, ntriples.Factory()); err != nil {
		return err
	}
	return Register(w, turtle.Name, turtle.Factory())
}
