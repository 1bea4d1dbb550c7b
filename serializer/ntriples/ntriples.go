// Package ntriples implements spec.md §4.M's serializer shim for the
// N-Triples syntax: the exact textual inverse of parser/ntriples.
package ntriples

import (
	"fmt"
	"strings"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/serializer"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/stream"
	"github.com/oxhq/rdfcore/uri"
)

// Name is the syntax name this serializer registers under.
const Name = "ntriples"

// Serializer renders statements as N-Triples lines.
type Serializer struct {
	ns *serializer.Namespaces
}

// New builds a Serializer with an empty namespace table (N-Triples has
// no prefixes on the wire, but the table is still exposed per the
// shared shim contract).
func New() *Serializer { return &Serializer{ns: serializer.NewNamespaces()} }

// Factory is the shape serializer.Register's f argument wants.
func Factory() func() model.Serializer {
	return func() model.Serializer { return New() }
}

// SetNamespace implements the shared shim contract; N-Triples has no
// prefix syntax on the wire, so this only populates the namespace table
// for introspection (e.g. by a caller that later re-serializes as
// Turtle).
func (s *Serializer) SetNamespace(prefix string, ns *uri.URI) {
	s.ns.SetPrefix(prefix, ns.AsString())
}

func (s *Serializer) SerializeModelToString(m *model.Model) (string, error) {
	strm, err := m.FindStatements(&statement.Statement{})
	if err != nil {
		return "", err
	}
	return s.SerializeStreamToString(strm)
}

func (s *Serializer) SerializeStreamToString(strm *stream.Stream) (string, error) {
	defer strm.Cancel()
	var b strings.Builder
	for strm.Next() {
		t := strm.Current()
		line, err := renderStatement(t)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func renderStatement(t *statement.Statement) (string, error) {
	s, err := renderNode(t.Subject)
	if err != nil {
		return "", err
	}
	p, err := renderNode(t.Predicate)
	if err != nil {
		return "", err
	}
	o, err := renderNode(t.Object)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s .", s, p, o), nil
}

func renderNode(n *node.Node) (string, error) {
	switch n.Kind() {
	case node.KindIRI:
		return "<" + n.URI().AsString() + ">", nil
	case node.KindBlank:
		return "_:" + string(n.BlankID()), nil
	case node.KindLiteral:
		bytes, lang, dt, _ := n.LiteralParts()
		out := `"` + escape(string(bytes)) + `"`
		if lang != "" {
			out += "@" + lang
		} else if dt != nil {
			out += "^^<" + dt.AsString() + ">"
		}
		return out, nil
	default:
		return "", rdferr.New(rdferr.SerializeError, "ntriples: unrecognized node kind")
	}
}

func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
