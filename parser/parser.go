// Package parser implements spec.md §4.L: the parser shim. It is a
// thin factory-registry + selection layer; the real parsing logic lives
// in syntax-specific subpackages (parser/ntriples, parser/turtle) that
// both satisfy model.Parser structurally.
package parser

import (
	"strings"
	"sync"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/world"
)

// Factory builds a fresh model.Parser instance.
type Factory func() model.Parser

// Registration carries a parser's name plus its MIME-type and
// syntax-URI aliases, per spec.md §4.L.
type Registration struct {
	Name      string
	MIMETypes []string
	URIs      []string
	Build     Factory
}

// aliases is kept alongside world.Parser's opaque registry since World
// only stores name->factory; the alias tables live here, one per World,
// so GuessByURIOrMIME has something to search without World needing to
// know about MIME types.
type aliases struct {
	byMIME map[string]string
	byURI  map[string]string
}

var (
	aliasMu       sync.Mutex
	registryAliases = map[*world.World]*aliases{}
)

// Register adds reg to w's parser factory table and alias indexes.
//
// The registry stores the factory as the unnamed func() model.Parser
// type (not the named Factory type above): a type assertion only
// matches an identical dynamic type, and model.go (which cannot import
// this package without a cycle) asserts against the unnamed type, so
// Register and Lookup must agree on that same unnamed type.
func Register(w *world.World, reg Registration) error {
	var fn func() model.Parser = reg.Build
	if err := w.Parser.Register(reg.Name, fn); err != nil {
		return err
	}
	aliasMu.Lock()
	defer aliasMu.Unlock()
	a, ok := registryAliases[w]
	if !ok {
		a = &aliases{byMIME: make(map[string]string), byURI: make(map[string]string)}
		registryAliases[w] = a
	}
	for _, m := range reg.MIMETypes {
		a.byMIME[strings.ToLower(m)] = reg.Name
	}
	for _, u := range reg.URIs {
		a.byURI[u] = reg.Name
	}
	return nil
}

// Lookup resolves a registered parser by name.
func Lookup(w *world.World, name string) (model.Parser, error) {
	v, ok := w.Parser.Get(name)
	if !ok {
		return nil, rdferr.Wrap(rdferr.NotFound, "parser: unknown syntax "+name, rdferr.ErrUnknownFactory)
	}
	f, ok := v.(func() model.Parser)
	if !ok {
		return nil, rdferr.New(rdferr.InvalidArgument, "parser: factory "+name+" has the wrong type")
	}
	return f(), nil
}

// GuessByURIOrMIME implements spec.md §4.L's public selector: first by
// MIME type, then by syntax URI, case-insensitively for MIME.
func GuessByURIOrMIME(w *world.World, mimeType, syntaxURI string) (name string, ok bool) {
	aliasMu.Lock()
	a, exists := registryAliases[w]
	aliasMu.Unlock()
	if !exists {
		return "", false
	}
	if mimeType != "" {
		if n, ok := a.byMIME[strings.ToLower(mimeType)]; ok {
			return n, true
		}
	}
	if syntaxURI != "" {
		if n, ok := a.byURI[syntaxURI]; ok {
			return n, true
		}
	}
	return "", false
}

// GuessBySniffing implements the original_source-grounded content
// heuristic (librdf's rdf_heuristics.c): when neither a URI nor a MIME
// type is informative, peek at the leading bytes.
func GuessBySniffing(data []byte) (name string, ok bool) {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	switch {
	case strings.HasPrefix(trimmed, "<?xml"), strings.Contains(trimmed, "<rdf:RDF"):
		return "rdfxml", true
	case strings.HasPrefix(trimmed, "@prefix"), strings.HasPrefix(trimmed, "@base"), strings.HasPrefix(trimmed, "PREFIX"):
		return "turtle", true
	case strings.HasPrefix(trimmed, "<"):
		return "ntriples", true
	default:
		return "", false
	}
}
