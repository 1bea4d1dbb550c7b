package parser

import (
	"github.com/oxhq/rdfcore/parser/ntriples"
	"github.com/oxhq/rdfcore/parser/turtle"
	"github.com/oxhq/rdfcore/world"
)

// RegisterBuiltins registers the ntriples and turtle parsers under
// their spec.md §6 names and common MIME/syntax-URI aliases. Like
// storage.RegisterBuiltins, this is opt-in: World.Open does not call
// it, so a client that only wants one syntax never pays for the other.
func RegisterBuiltins(w *world.World) error {
	if err := Register(w, Registration{
		Name:      ntriples.Name,
		MIMETypes: []string{"application/n-triples", "text/plain"},
		Build:     ntriples.Factory(w),
	}); err != nil {
		return err
	}
	return Register(w, Registration{
		Name:      turtle.Name,
		MIMETypes: []string{"text/turtle", "application/x-turtle"},
		Build:     turtle.Factory(w),
	})
}
