// Package turtle implements spec.md §4.L's parser shim for a practical
// subset of Turtle: @prefix/@base (and their SPARQL-style PREFIX/BASE
// spellings) directives, the "a" rdf:type shorthand, and
// predicate-object and object lists (";" and ","). Anonymous blank node
// property lists ("[...]") and collections ("(...)") are not
// supported and fail as ParseError — both need a recursive nested-triple
// stack the way knakk-rdf's ttl.go's ctxStack does, which is scope this
// subset deliberately leaves out.
//
// Grounded in knakk-rdf's ttl.go for the overall shape (a prefix map
// threaded through a directive/triples loop, a lookahead tokenizer) and
// in parser/ntriples for term syntax already shared with Turtle (IRI
// refs, blank node labels, quoted literals with @lang/^^datatype).
package turtle

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

// Name is the syntax name this parser registers under.
const Name = "turtle"

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// Parser is a stateless Turtle reader; one instance may be reused.
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
	return rdferr.New(rdferr.ParseError, "turtle: parse-uri-into-model requires a resource fetcher; use ParseStringIntoModel with data already read by the caller")
}

func (p *Parser) ParseURIAsStream(u *uri.URI) (*stream.Stream, error) {
	return nil, rdferr.New(rdferr.ParseError, "turtle: parse-uri-as-stream requires a resource fetcher; use ParseStringAsStream with data already read by the caller")
}

type state struct {
	p        *Parser
	lx       *lexer
	prefixes map[string]string
	base     *uri.URI
}

func (p *Parser) parseAll(data []byte, baseURI *uri.URI) ([]*statement.Statement, error) {
	st := &state{p: p, lx: newLexer(string(data)), prefixes: map[string]string{}, base: baseURI}
	var out []*statement.Statement

	for {
		st.lx.skipInsignificant()
		if st.lx.eof() {
			break
		}
		if st.lx.consumeKeyword("@prefix") {
			if err := st.parsePrefixDirective(true); err != nil {
				return nil, err
			}
			continue
		}
		if st.lx.consumeKeywordCI("PREFIX") {
			if err := st.parsePrefixDirective(false); err != nil {
				return nil, err
			}
			continue
		}
		if st.lx.consumeKeyword("@base") {
			if err := st.parseBaseDirective(true); err != nil {
				return nil, err
			}
			continue
		}
		if st.lx.consumeKeywordCI("BASE") {
			if err := st.parseBaseDirective(false); err != nil {
				return nil, err
			}
			continue
		}

		stmts, err := st.parseTriplesBlock()
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func (st *state) parsePrefixDirective(requireDot bool) error {
	st.lx.skipInsignificant()
	label, err := st.lx.readPrefixLabel()
	if err != nil {
		return err
	}
	st.lx.skipInsignificant()
	iriRef, err := st.lx.readIRIRef()
	if err != nil {
		return err
	}
	resolved, err := st.resolveIRIString(iriRef)
	if err != nil {
		return err
	}
	st.prefixes[label] = resolved
	st.lx.skipInsignificant()
	if requireDot {
		if !st.lx.consumeByte('.') {
			return rdferr.New(rdferr.ParseError, "turtle: @prefix directive must end with '.'")
		}
	}
	return nil
}

func (st *state) parseBaseDirective(requireDot bool) error {
	st.lx.skipInsignificant()
	iriRef, err := st.lx.readIRIRef()
	if err != nil {
		return err
	}
	resolved, err := st.resolveIRIString(iriRef)
	if err != nil {
		return err
	}
	b, err := st.p.W.NewURI([]byte(resolved))
	if err != nil {
		return err
	}
	st.base = b
	st.lx.skipInsignificant()
	if requireDot {
		if !st.lx.consumeByte('.') {
			return rdferr.New(rdferr.ParseError, "turtle: @base directive must end with '.'")
		}
	}
	return nil
}

// parseTriplesBlock parses "subject predicateObjectList '.'" and
// expands the predicate-object list into one statement per pair.
func (st *state) parseTriplesBlock() ([]*statement.Statement, error) {
	subj, err := st.parseTerm(false)
	if err != nil {
		return nil, err
	}

	var out []*statement.Statement
	for {
		st.lx.skipInsignificant()
		pred, err := st.parsePredicate()
		if err != nil {
			return nil, err
		}
		for {
			st.lx.skipInsignificant()
			obj, err := st.parseTerm(true)
			if err != nil {
				return nil, err
			}
			t := statement.NewFromNodes(subj, pred, obj)
			if err := t.Validate(); err != nil {
				return nil, err
			}
			out = append(out, t)

			st.lx.skipInsignificant()
			if st.lx.consumeByte(',') {
				continue
			}
			break
		}
		st.lx.skipInsignificant()
		if st.lx.consumeByte(';') {
			continue
		}
		break
	}
	st.lx.skipInsignificant()
	if !st.lx.consumeByte('.') {
		return nil, rdferr.New(rdferr.ParseError, "turtle: triples block must end with '.'")
	}
	return out, nil
}

func (st *state) parsePredicate() (*node.Node, error) {
	if st.lx.consumeKeywordBoundary("a") {
		return st.p.W.NewIRI([]byte(rdfType))
	}
	return st.parseTerm(false)
}

// parseTerm reads one IRI ref, prefixed name, blank node label, or
// (when allowLiteral) a quoted literal.
func (st *state) parseTerm(allowLiteral bool) (*node.Node, error) {
	st.lx.skipInsignificant()
	if st.lx.eof() {
		return nil, rdferr.New(rdferr.ParseError, "turtle: unexpected end of input")
	}

	switch st.lx.peek() {
	case '<':
		ref, err := st.lx.readIRIRef()
		if err != nil {
			return nil, err
		}
		resolved, err := st.resolveIRIString(ref)
		if err != nil {
			return nil, err
		}
		return st.p.W.NewIRI([]byte(resolved))
	case '_':
		label, err := st.lx.readBlankLabel()
		if err != nil {
			return nil, err
		}
		return st.p.W.NewBlankFromLabel([]byte(label)), nil
	case '"':
		if !allowLiteral {
			return nil, rdferr.New(rdferr.ParseError, "turtle: literal not permitted in this position")
		}
		return st.parseLiteral()
	case '[', '(':
		return nil, rdferr.New(rdferr.ParseError, "turtle: blank node property lists and collections are not supported")
	default:
		return st.parsePrefixedName()
	}
}

func (st *state) parseLiteral() (*node.Node, error) {
	raw, err := st.lx.readQuoted()
	if err != nil {
		return nil, err
	}
	val, err := unescape(raw)
	if err != nil {
		return nil, err
	}
	if st.lx.consumeByte('@') {
		lang := st.lx.readLangTag()
		return st.p.W.NewLiteral([]byte(val), lang, nil), nil
	}
	if st.lx.consumePrefix("^^") {
		dtNode, err := st.parseTerm(false)
		if err != nil {
			return nil, err
		}
		dt := dtNode.URI()
		return st.p.W.NewLiteral([]byte(val), "", dt), nil
	}
	return st.p.W.NewLiteral([]byte(val), "", nil), nil
}

func (st *state) parsePrefixedName() (*node.Node, error) {
	prefix, local, err := st.lx.readPrefixedName()
	if err != nil {
		return nil, err
	}
	ns, ok := st.prefixes[prefix]
	if !ok {
		return nil, rdferr.New(rdferr.ParseError, "turtle: undefined prefix "+prefix)
	}
	return st.p.W.NewIRI([]byte(ns + local))
}

// resolveIRIString resolves ref against st.base when ref has no scheme
// of its own, per spec.md §4.B's deliberately partial URI resolution.
func (st *state) resolveIRIString(ref string) (string, error) {
	if hasScheme(ref) || st.base == nil {
		return ref, nil
	}
	resolved, err := uri.NewRelativeToBase(st.p.W.URICache, st.base, []byte(ref))
	if err != nil {
		return "", err
	}
	return resolved.AsString(), nil
}

func hasScheme(s string) bool {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return false
	}
	for _, c := range s[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}

// --- lexer ---

type lexer struct {
	s   string
	pos int
}

func newLexer(s string) *lexer { return &lexer{s: s} }

func (lx *lexer) eof() bool { return lx.pos >= len(lx.s) }

func (lx *lexer) peek() byte {
	if lx.eof() {
		return 0
	}
	return lx.s[lx.pos]
}

func (lx *lexer) skipInsignificant() {
	for !lx.eof() {
		c := lx.s[lx.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			lx.pos++
			continue
		}
		if c == '#' {
			for !lx.eof() && lx.s[lx.pos] != '\n' {
				lx.pos++
			}
			continue
		}
		break
	}
}

func (lx *lexer) consumeByte(b byte) bool {
	if !lx.eof() && lx.s[lx.pos] == b {
		lx.pos++
		return true
	}
	return false
}

func (lx *lexer) consumePrefix(p string) bool {
	if strings.HasPrefix(lx.s[lx.pos:], p) {
		lx.pos += len(p)
		return true
	}
	return false
}

func (lx *lexer) consumeKeyword(kw string) bool {
	return lx.consumePrefix(kw)
}

func (lx *lexer) consumeKeywordCI(kw string) bool {
	if len(lx.s[lx.pos:]) < len(kw) {
		return false
	}
	if strings.EqualFold(lx.s[lx.pos:lx.pos+len(kw)], kw) {
		lx.pos += len(kw)
		return true
	}
	return false
}

// consumeKeywordBoundary matches kw only when followed by whitespace,
// so it never swallows a prefixed name like "a:b".
func (lx *lexer) consumeKeywordBoundary(kw string) bool {
	rest := lx.s[lx.pos:]
	if !strings.HasPrefix(rest, kw) {
		return false
	}
	after := lx.pos + len(kw)
	if after < len(lx.s) && !isBoundary(lx.s[after]) {
		return false
	}
	lx.pos = after
	return true
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func (lx *lexer) readIRIRef() (string, error) {
	if !lx.consumeByte('<') {
		return "", rdferr.New(rdferr.ParseError, "turtle: expected IRI reference")
	}
	end := strings.IndexByte(lx.s[lx.pos:], '>')
	if end < 0 {
		return "", rdferr.New(rdferr.ParseError, "turtle: unterminated IRI reference")
	}
	val := lx.s[lx.pos : lx.pos+end]
	lx.pos += end + 1
	return val, nil
}

func (lx *lexer) readBlankLabel() (string, error) {
	if !lx.consumePrefix("_:") {
		return "", rdferr.New(rdferr.ParseError, "turtle: malformed blank node label")
	}
	start := lx.pos
	for !lx.eof() && isNameChar(lx.s[lx.pos]) {
		lx.pos++
	}
	if lx.pos == start {
		return "", rdferr.New(rdferr.ParseError, "turtle: empty blank node label")
	}
	return lx.s[start:lx.pos], nil
}

func (lx *lexer) readPrefixLabel() (string, error) {
	start := lx.pos
	for !lx.eof() && lx.s[lx.pos] != ':' && !isBoundary(lx.s[lx.pos]) {
		lx.pos++
	}
	label := lx.s[start:lx.pos]
	if !lx.consumeByte(':') {
		return "", rdferr.New(rdferr.ParseError, "turtle: prefix label must end with ':'")
	}
	return label, nil
}

func (lx *lexer) readPrefixedName() (prefix, local string, err error) {
	start := lx.pos
	for !lx.eof() && lx.s[lx.pos] != ':' && !isBoundary(lx.s[lx.pos]) && lx.s[lx.pos] != ';' && lx.s[lx.pos] != ',' && lx.s[lx.pos] != '.' {
		lx.pos++
	}
	if lx.eof() || lx.s[lx.pos] != ':' {
		return "", "", rdferr.New(rdferr.ParseError, fmt.Sprintf("turtle: unrecognized term near %q", lx.s[start:min(start+16, len(lx.s))]))
	}
	prefix = lx.s[start:lx.pos]
	lx.pos++ // ':'
	localStart := lx.pos
	for !lx.eof() && isNameChar(lx.s[lx.pos]) {
		lx.pos++
	}
	local = lx.s[localStart:lx.pos]
	return prefix, local, nil
}

func (lx *lexer) readQuoted() (string, error) {
	quote := lx.s[lx.pos]
	lx.pos++
	start := lx.pos
	for !lx.eof() {
		if lx.s[lx.pos] == '\\' {
			lx.pos += 2
			continue
		}
		if lx.s[lx.pos] == quote {
			break
		}
		lx.pos++
	}
	if lx.eof() {
		return "", rdferr.New(rdferr.ParseError, "turtle: unterminated literal")
	}
	raw := lx.s[start:lx.pos]
	lx.pos++ // closing quote
	return raw, nil
}

func (lx *lexer) readLangTag() string {
	start := lx.pos
	for !lx.eof() && isNameChar(lx.s[lx.pos]) && lx.s[lx.pos] != '.' {
		lx.pos++
	}
	return lx.s[start:lx.pos]
}

func isNameChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '-' || b == '%'
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", rdferr.New(rdferr.ParseError, "turtle: dangling escape")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"', '\'':
			b.WriteByte(s[i])
		case '\\':
			b.WriteByte('\\')
		case 'u':
			if i+4 >= len(s) {
				return "", rdferr.New(rdferr.ParseError, "turtle: truncated \\u escape")
			}
			n, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				return "", rdferr.Wrap(rdferr.ParseError, "turtle: invalid \\u escape", err)
			}
			b.WriteRune(rune(n))
			i += 4
		default:
			return "", rdferr.New(rdferr.ParseError, "turtle: unknown escape sequence")
		}
	}
	return b.String(), nil
}
