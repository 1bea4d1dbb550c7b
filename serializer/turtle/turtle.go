// Package turtle implements spec.md §4.M's serializer shim for Turtle:
// one "subject predicate object ." line per statement, using a prefixed
// name wherever the IRI falls under a namespace registered via
// SetNamespace and falling back to a full <IRI> reference otherwise.
// Grounded in serializer/ntriples for the overall shape, since the two
// syntaxes share literal and blank-node lexical forms; the prefix
// lookup itself is grounded in knakk-rdf's ttl.go prefix map.
package turtle

import (
	"fmt"
	"sort"
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
const Name = "turtle"

// Serializer renders statements as Turtle, using whatever prefixes have
// been registered via SetNamespace to shorten IRIs.
type Serializer struct {
	ns *serializer.Namespaces
}

// New builds a Serializer with an empty namespace table.
func New() *Serializer { return &Serializer{ns: serializer.NewNamespaces()} }

// Factory is the shape serializer.Register's f argument wants.
func Factory() func() model.Serializer {
	return func() model.Serializer { return New() }
}

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
	s.writePrefixDirectives(&b)
	for strm.Next() {
		t := strm.Current()
		line, err := s.renderStatement(t)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// writePrefixDirectives emits a "@prefix p: <ns> ." line per registered
// prefix, sorted for deterministic output.
func (s *Serializer) writePrefixDirectives(b *strings.Builder) {
	names := s.ns.Prefixes()
	sort.Strings(names)
	for _, p := range names {
		ns, _ := s.ns.Prefix(p)
		fmt.Fprintf(b, "@prefix %s: <%s> .\n", p, ns)
	}
	if len(names) > 0 {
		b.WriteByte('\n')
	}
}

func (s *Serializer) renderStatement(t *statement.Statement) (string, error) {
	subj, err := s.renderNode(t.Subject)
	if err != nil {
		return "", err
	}
	pred, err := s.renderNode(t.Predicate)
	if err != nil {
		return "", err
	}
	obj, err := s.renderNode(t.Object)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s .", subj, pred, obj), nil
}

func (s *Serializer) renderNode(n *node.Node) (string, error) {
	switch n.Kind() {
	case node.KindIRI:
		return s.renderIRI(n.URI()), nil
	case node.KindBlank:
		return "_:" + string(n.BlankID()), nil
	case node.KindLiteral:
		bytes, lang, dt, _ := n.LiteralParts()
		out := `"` + escape(string(bytes)) + `"`
		if lang != "" {
			out += "@" + lang
		} else if dt != nil {
			out += "^^" + s.renderIRI(dt)
		}
		return out, nil
	default:
		return "", rdferr.New(rdferr.SerializeError, "turtle: unrecognized node kind")
	}
}

// renderIRI returns a prefixed name when u falls under a registered
// namespace, or a full <IRI> reference otherwise.
func (s *Serializer) renderIRI(u *uri.URI) string {
	str := u.AsString()
	for _, p := range s.ns.Prefixes() {
		ns, ok := s.ns.Prefix(p)
		if ok && ns != "" && strings.HasPrefix(str, ns) {
			local := strings.TrimPrefix(str, ns)
			if local != "" && isPlainLocalName(local) {
				return p + ":" + local
			}
		}
	}
	return "<" + str + ">"
}

func isPlainLocalName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
		if !ok {
			return false
		}
	}
	return true
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
