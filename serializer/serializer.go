// Package serializer implements spec.md §4.M's serializer shim: a
// factory registry keyed by name, plus namespace-prefix and feature
// bookkeeping shared by every concrete syntax (serializer/ntriples).
package serializer

import (
	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/world"
)

// Factory builds a fresh model.Serializer instance.
type Factory func() model.Serializer

// Register adds a named serializer factory to w's registry.
//
// The registry stores the factory as the unnamed func() model.Serializer
// type, not the named Factory type above: a type assertion only
// matches an identical dynamic type, and model.go (which cannot import
// this package without a cycle) asserts against the unnamed type, so
// Register and Lookup must agree on that same unnamed type.
func Register(w *world.World, name string, f Factory) error {
	var fn func() model.Serializer = f
	return w.Serializer.Register(name, fn)
}

// Lookup resolves a registered serializer by name.
func Lookup(w *world.World, name string) (model.Serializer, error) {
	v, ok := w.Serializer.Get(name)
	if !ok {
		return nil, rdferr.Wrap(rdferr.NotFound, "serializer: unknown syntax "+name, rdferr.ErrUnknownFactory)
	}
	f, ok := v.(func() model.Serializer)
	if !ok {
		return nil, rdferr.New(rdferr.InvalidArgument, "serializer: factory "+name+" has the wrong type")
	}
	return f(), nil
}

// Namespaces is the prefix table shared by concrete serializers, per
// spec.md §4.M's "namespace-prefix registration".
type Namespaces struct {
	prefixes map[string]string
	features map[string]string
}

// NewNamespaces builds an empty table.
func NewNamespaces() *Namespaces {
	return &Namespaces{prefixes: make(map[string]string), features: make(map[string]string)}
}

// SetPrefix registers ns under prefix, overwriting any prior binding.
func (n *Namespaces) SetPrefix(prefix, ns string) { n.prefixes[prefix] = ns }

// Prefix returns the IRI bound to prefix, if any.
func (n *Namespaces) Prefix(prefix string) (string, bool) {
	v, ok := n.prefixes[prefix]
	return v, ok
}

// Prefixes lists every registered prefix name, in no particular order.
func (n *Namespaces) Prefixes() []string {
	out := make([]string, 0, len(n.prefixes))
	for p := range n.prefixes {
		out = append(out, p)
	}
	return out
}

// SetFeature/Feature implement spec.md §4.M's "per-feature get/set"
// (feature keys are URIs).
func (n *Namespaces) SetFeature(key, value string) { n.features[key] = value }
func (n *Namespaces) Feature(key string) (string, bool) {
	v, ok := n.features[key]
	return v, ok
}
