// Package ntriples implements spec.md §4.L's parser shim for the
// N-Triples line-oriented syntax, grounded in the line/token-oriented
// shape other_examples' gonum rdf.go and google-xtoproto rdfxml.go use
// for parsing RDF statements: one statement per line, fields separated
// by whitespace, terminated by a period.
package ntriples

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/stream"
	"github.com/oxhq/rdfcore/uri"
	"github.com/oxhq/rdfcore/world"
)

// Name is the syntax name this parser registers under (spec.md §4.L).
const Name = "ntriples"

// Parser is a stateless N-Triples reader; one instance may be reused
// across calls.
type Parser struct {
	W *world.World
}

// New builds a Parser bound to w, used to intern every node it reads.
func New(w *world.World) *Parser { return &Parser{W: w} }

// Factory is the shape parser.Register's Build field wants.
func Factory(w *world.World) func() model.Parser {
	return func() model.Parser { return New(w) }
}

func (p *Parser) ParseStringIntoModel(data []byte, baseURI *uri.URI, sink *model.Model) error {
	stmts, err := p.parseAll(data, baseURI)
	if err != nil {
		return err
	}
	for _, t := range stmts {
		if err := sink.AddStatement(t); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) ParseStringAsStream(data []byte, baseURI *uri.URI) (*stream.Stream, error) {
	stmts, err := p.parseAll(data, baseURI)
	if err != nil {
		return nil, err
	}
	return stream.FromSlice(stmts, make([]*node.Node, len(stmts))), nil
}

func (p *Parser) ParseURIIntoModel(u *uri.URI, sink *model.Model) error {
	return rdferr.New(rdferr.ParseError, "ntriples: parse-uri-into-model requires a resource fetcher; use ParseStringIntoModel with data already read by the caller")
}

func (p *Parser) ParseURIAsStream(u *uri.URI) (*stream.Stream, error) {
	return nil, rdferr.New(rdferr.ParseError, "ntriples: parse-uri-as-stream requires a resource fetcher; use ParseStringAsStream with data already read by the caller")
}

func (p *Parser) parseAll(data []byte, baseURI *uri.URI) ([]*statement.Statement, error) {
	var out []*statement.Statement
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		t, err := p.parseLine(trimmed, lineNo)
		if err != nil {
			if p.W != nil {
				p.W.Log(world.Message{
					Severity: world.Error,
					Facility: world.FacParser,
					Text:     err.Error(),
					Locator:  &rdferr.Locator{Line: lineNo},
				})
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *Parser) parseLine(line string, lineNo int) (*statement.Statement, error) {
	if !strings.HasSuffix(line, ".") {
		return nil, rdferr.New(rdferr.ParseError, fmt.Sprintf("ntriples: line %d: missing terminating '.'", lineNo)).WithLocator(&rdferr.Locator{Line: lineNo})
	}
	body := strings.TrimSpace(strings.TrimSuffix(line, "."))

	tok := newTokenizer(body)
	subjTok, err := tok.next()
	if err != nil {
		return nil, locErr(err, lineNo)
	}
	predTok, err := tok.next()
	if err != nil {
		return nil, locErr(err, lineNo)
	}
	objTok, err := tok.next()
	if err != nil {
		return nil, locErr(err, lineNo)
	}

	subj, err := p.termToNode(subjTok, true)
	if err != nil {
		return nil, locErr(err, lineNo)
	}
	pred, err := p.termToNode(predTok, false)
	if err != nil {
		return nil, locErr(err, lineNo)
	}
	obj, err := p.termToNode(objTok, true)
	if err != nil {
		return nil, locErr(err, lineNo)
	}
	t := statement.NewFromNodes(subj, pred, obj)
	if err := t.Validate(); err != nil {
		return nil, locErr(err, lineNo)
	}
	return t, nil
}

func locErr(err error, line int) error {
	if e, ok := err.(*rdferr.Error); ok {
		return e.WithLocator(&rdferr.Locator{Line: line})
	}
	return rdferr.Wrap(rdferr.ParseError, "ntriples: parse error", err).WithLocator(&rdferr.Locator{Line: line})
}

// term is one lexical N-Triples token: an IRI ref, a blank node label,
// or a literal with optional language/datatype suffix.
type term struct {
	kind    byte // 'i' iri, 'b' blank, 'l' literal
	value   string
	lang    string
	datatype string
}

func (p *Parser) termToNode(t term, allowLiteral bool) (*node.Node, error) {
	switch t.kind {
	case 'i':
		return p.W.NewIRI([]byte(t.value))
	case 'b':
		return p.W.NewBlankFromLabel([]byte(t.value)), nil
	case 'l':
		if !allowLiteral {
			return nil, rdferr.New(rdferr.ParseError, "ntriples: literal not permitted in this position")
		}
		var dt *uri.URI
		if t.datatype != "" {
			var err error
			dt, err = p.W.NewURI([]byte(t.datatype))
			if err != nil {
				return nil, err
			}
		}
		return p.W.NewLiteral([]byte(t.value), t.lang, dt), nil
	default:
		return nil, rdferr.New(rdferr.ParseError, "ntriples: unrecognized term")
	}
}

type tokenizer struct {
	s   string
	pos int
}

func newTokenizer(s string) *tokenizer { return &tokenizer{s: s} }

func (tk *tokenizer) skipSpace() {
	for tk.pos < len(tk.s) && (tk.s[tk.pos] == ' ' || tk.s[tk.pos] == '\t') {
		tk.pos++
	}
}

func (tk *tokenizer) next() (term, error) {
	tk.skipSpace()
	if tk.pos >= len(tk.s) {
		return term{}, rdferr.New(rdferr.ParseError, "ntriples: unexpected end of statement")
	}
	switch tk.s[tk.pos] {
	case '<':
		end := strings.IndexByte(tk.s[tk.pos+1:], '>')
		if end < 0 {
			return term{}, rdferr.New(rdferr.ParseError, "ntriples: unterminated IRI reference")
		}
		val := tk.s[tk.pos+1 : tk.pos+1+end]
		tk.pos = tk.pos + 1 + end + 1
		return term{kind: 'i', value: val}, nil
	case '_':
		if !strings.HasPrefix(tk.s[tk.pos:], "_:") {
			return term{}, rdferr.New(rdferr.ParseError, "ntriples: malformed blank node label")
		}
		start := tk.pos + 2
		end := start
		for end < len(tk.s) && !isSpace(tk.s[end]) {
			end++
		}
		val := tk.s[start:end]
		tk.pos = end
		return term{kind: 'b', value: val}, nil
	case '"':
		end := tk.pos + 1
		for end < len(tk.s) {
			if tk.s[end] == '\\' {
				end += 2
				continue
			}
			if tk.s[end] == '"' {
				break
			}
			end++
		}
		if end >= len(tk.s) {
			return term{}, rdferr.New(rdferr.ParseError, "ntriples: unterminated literal")
		}
		raw := tk.s[tk.pos+1 : end]
		val, err := unescape(raw)
		if err != nil {
			return term{}, err
		}
		tk.pos = end + 1
		t := term{kind: 'l', value: val}
		if tk.pos < len(tk.s) && tk.s[tk.pos] == '@' {
			start := tk.pos + 1
			e := start
			for e < len(tk.s) && !isSpace(tk.s[e]) {
				e++
			}
			t.lang = tk.s[start:e]
			tk.pos = e
		} else if strings.HasPrefix(tk.s[tk.pos:], "^^") {
			tk.pos += 2
			if tk.pos >= len(tk.s) || tk.s[tk.pos] != '<' {
				return term{}, rdferr.New(rdferr.ParseError, "ntriples: datatype must be an IRI reference")
			}
			end := strings.IndexByte(tk.s[tk.pos+1:], '>')
			if end < 0 {
				return term{}, rdferr.New(rdferr.ParseError, "ntriples: unterminated datatype IRI")
			}
			t.datatype = tk.s[tk.pos+1 : tk.pos+1+end]
			tk.pos = tk.pos + 1 + end + 1
		}
		return t, nil
	default:
		return term{}, rdferr.New(rdferr.ParseError, fmt.Sprintf("ntriples: unexpected character %q", tk.s[tk.pos]))
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", rdferr.New(rdferr.ParseError, "ntriples: dangling escape")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u':
			if i+4 >= len(s) {
				return "", rdferr.New(rdferr.ParseError, "ntriples: truncated \\u escape")
			}
			n, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", rdferr.Wrap(rdferr.ParseError, "ntriples: invalid \\u escape", err)
			}
			b.WriteRune(rune(n))
			i += 4
		default:
			return "", rdferr.New(rdferr.ParseError, "ntriples: unknown escape sequence")
		}
	}
	return b.String(), nil
}
