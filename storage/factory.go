package storage

import (
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/world"
)

// Factory builds a fresh, unopened Storage instance.
type Factory func() Storage

// RegisterFactory adds a named storage factory to w's registry
// (spec.md §4.A's pluggable storage factory table).
func RegisterFactory(w *world.World, name string, f Factory) error {
	return w.Storage.Register(name, f)
}

// Lookup resolves a previously registered storage factory by name.
func Lookup(w *world.World, name string) (Factory, error) {
	v, ok := w.Storage.Get(name)
	if !ok {
		return nil, rdferr.Wrap(rdferr.InvalidArgument, "storage: unknown factory "+name, rdferr.ErrUnknownFactory)
	}
	f, ok := v.(Factory)
	if !ok {
		return nil, rdferr.New(rdferr.InvalidArgument, "storage: factory "+name+" has the wrong type")
	}
	return f, nil
}

// RegisterBuiltins registers the "hashes" and "memory" backends under
// their spec.md §6 names. Not forced on the client by World.Open,
// mirroring internal/registry.Registry's "no built-in providers" stance
// in the teacher repo: a client opts in by calling this explicitly.
func RegisterBuiltins(w *world.World) error {
	if err := RegisterFactory(w, "memory", func() Storage { return NewMemoryStorage() }); err != nil {
		return err
	}
	return RegisterFactory(w, "hashes", func() Storage { return NewHashesStorage(w.NodeCaches, w.URICache) })
}
