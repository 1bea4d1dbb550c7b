// Package triplepattern implements spec.md §4.M's query shim with a
// small, real conjunctive triple-pattern language:
//
//	SELECT ?s ?p WHERE { ?s <http://ex/p> ?o . ?o <http://ex/q> ?x }
//	ASK WHERE { <http://ex/a> <http://ex/p> ?o }
//	CONSTRUCT WHERE { ?s <http://ex/p> ?o }
//
// Terms are `?var`, `<iri>`, or `"literal"` (no language/datatype suffix
// — the language is intentionally the smallest surface that exercises
// the shim; FILTER is not supported, rejected as QueryError). Every
// query runs through a small nested-loop join evaluator. A query with
// exactly one triple pattern — the common case — therefore costs exactly
// one model.FindStatements call, mirroring original_source/librdf's
// rdf_query_triples.c triples-match fast path.
package triplepattern

import (
	"strings"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/rdferr"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/stream"
	"github.com/oxhq/rdfcore/uri"
)

// Name is the language name this query type registers under.
const Name = "triplepattern"

// Query is a stateless evaluator; one instance may be reused.
type Query struct{}

// New builds a Query.
func New() *Query { return &Query{} }

// Factory is the shape query.Register's f argument wants.
func Factory() func() model.Query { return func() model.Query { return New() } }

type termKind int

const (
	termVar termKind = iota
	termIRI
	termLiteral
)

type qterm struct {
	kind  termKind
	value string
}

type triplePattern struct {
	s, p, o qterm
}

type astQuery struct {
	kind  string // "select", "ask", "construct"
	vars  []string
	where []triplePattern
}

func (q *Query) Execute(m *model.Model, queryText string, baseURI *uri.URI) (*model.Results, error) {
	ast, err := parse(queryText)
	if err != nil {
		return nil, err
	}

	bindings, err := evaluate(m, ast.where)
	if err != nil {
		return nil, err
	}

	switch ast.kind {
	case "ask":
		return &model.Results{Shape: model.ShapeBoolean, Bool: len(bindings) > 0}, nil
	case "construct":
		var stmts []*statement.Statement
		seen := make(map[string]bool)
		for _, b := range bindings {
			for _, tp := range ast.where {
				t, ok := instantiate(tp, b)
				if !ok {
					continue
				}
				key := string(node.Encode(t.Subject)) + string(node.Encode(t.Predicate)) + string(node.Encode(t.Object))
				if seen[key] {
					continue
				}
				seen[key] = true
				stmts = append(stmts, t)
			}
		}
		return &model.Results{Shape: model.ShapeGraph, Graph: stream.FromSlice(stmts, make([]*node.Node, len(stmts)))}, nil
	default: // select
		vars := ast.vars
		if len(vars) == 1 && vars[0] == "*" {
			vars = allVars(ast.where)
		}
		rows := make([][]model.Binding, 0, len(bindings))
		for _, b := range bindings {
			row := make([]model.Binding, 0, len(vars))
			for _, v := range vars {
				row = append(row, model.Binding{Name: v, Node: b[v]})
			}
			rows = append(rows, row)
		}
		return &model.Results{Shape: model.ShapeBindings, Rows: rows}, nil
	}
}

func allVars(where []triplePattern) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(t qterm) {
		if t.kind == termVar && !seen[t.value] {
			seen[t.value] = true
			out = append(out, t.value)
		}
	}
	for _, tp := range where {
		add(tp.s)
		add(tp.p)
		add(tp.o)
	}
	return out
}

type binding map[string]*node.Node

// evaluate runs a nested-loop join over where, starting from one empty
// binding. A single pattern degenerates to exactly one
// storage/model.FindStatements call: the fast path named above.
func evaluate(m *model.Model, where []triplePattern) ([]binding, error) {
	bindings := []binding{{}}
	for _, tp := range where {
		var next []binding
		for _, b := range bindings {
			pattern, err := patternFromBinding(m, tp, b)
			if err != nil {
				return nil, err
			}
			strm, err := m.FindStatements(pattern)
			if err != nil {
				return nil, err
			}
			for strm.Next() {
				t := strm.Current()
				nb, ok := extend(b, tp, t)
				if ok {
					next = append(next, nb)
				}
			}
			_ = strm.Cancel()
		}
		bindings = next
		if len(bindings) == 0 {
			break
		}
	}
	return bindings, nil
}

// patternFromBinding builds a partial statement.Statement for tp,
// substituting already-bound variables and leaving unbound variables
// and literal terms that must still be compared post-hoc as wildcards
// is not needed here since literal/IRI terms are always resolvable to
// concrete nodes up front.
func patternFromBinding(m *model.Model, tp triplePattern, b binding) (*statement.Statement, error) {
	s, err := termNode(m, tp.s, b)
	if err != nil {
		return nil, err
	}
	p, err := termNode(m, tp.p, b)
	if err != nil {
		return nil, err
	}
	o, err := termNode(m, tp.o, b)
	if err != nil {
		return nil, err
	}
	return &statement.Statement{Subject: s, Predicate: p, Object: o}, nil
}

func termNode(m *model.Model, t qterm, b binding) (*node.Node, error) {
	switch t.kind {
	case termIRI:
		return m.World().NewIRI([]byte(t.value))
	case termLiteral:
		return m.World().NewLiteral([]byte(t.value), "", nil), nil
	case termVar:
		if n, ok := b[t.value]; ok {
			return n, nil
		}
		return nil, nil // unbound: wildcard
	}
	return nil, rdferr.New(rdferr.QueryError, "triplepattern: unrecognized term kind")
}

// extend binds tp's unbound variables from the matched statement t,
// rejecting the match if an already-bound variable disagrees.
func extend(b binding, tp triplePattern, t *statement.Statement) (binding, bool) {
	nb := make(binding, len(b)+3)
	for k, v := range b {
		nb[k] = v
	}
	pairs := []struct {
		term qterm
		n    *node.Node
	}{{tp.s, t.Subject}, {tp.p, t.Predicate}, {tp.o, t.Object}}
	for _, pr := range pairs {
		if pr.term.kind != termVar {
			continue
		}
		if existing, ok := nb[pr.term.value]; ok {
			if !existing.Equals(pr.n) {
				return nil, false
			}
			continue
		}
		nb[pr.term.value] = pr.n
	}
	return nb, true
}

func instantiate(tp triplePattern, b binding) (*statement.Statement, bool) {
	resolve := func(t qterm) (*node.Node, bool) {
		if t.kind == termVar {
			n, ok := b[t.value]
			return n, ok
		}
		return nil, false
	}
	s, ok := resolve(tp.s)
	if !ok {
		return nil, false
	}
	p, ok := resolve(tp.p)
	if !ok {
		return nil, false
	}
	o, ok := resolve(tp.o)
	if !ok {
		return nil, false
	}
	return statement.NewFromNodes(s, p, o), true
}

// --- parsing ---

func parse(text string) (*astQuery, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(strings.ToUpper(text), "FILTER") {
		return nil, rdferr.New(rdferr.QueryError, "triplepattern: FILTER is not supported by this query language")
	}

	upper := strings.ToUpper(text)
	var kind string
	var rest string
	switch {
	case strings.HasPrefix(upper, "ASK"):
		kind = "ask"
		rest = text[3:]
	case strings.HasPrefix(upper, "CONSTRUCT"):
		kind = "construct"
		rest = text[len("CONSTRUCT"):]
	case strings.HasPrefix(upper, "SELECT"):
		kind = "select"
		rest = text[len("SELECT"):]
	default:
		return nil, rdferr.New(rdferr.QueryError, "triplepattern: query must start with SELECT, ASK or CONSTRUCT")
	}

	var vars []string
	if kind == "select" {
		whereIdx := indexOfWhere(rest)
		if whereIdx < 0 {
			return nil, rdferr.New(rdferr.QueryError, "triplepattern: missing WHERE")
		}
		varSection := strings.TrimSpace(rest[:whereIdx])
		rest = rest[whereIdx:]
		if varSection == "*" {
			vars = []string{"*"}
		} else {
			for _, f := range strings.Fields(varSection) {
				vars = append(vars, strings.TrimPrefix(f, "?"))
			}
		}
	}

	whereIdx := indexOfWhere(rest)
	if whereIdx < 0 {
		return nil, rdferr.New(rdferr.QueryError, "triplepattern: missing WHERE")
	}
	body := rest[whereIdx+len("WHERE"):]
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return nil, rdferr.New(rdferr.QueryError, "triplepattern: WHERE clause must be braced")
	}
	body = strings.TrimSpace(body[1 : len(body)-1])

	patterns, err := parsePatterns(body)
	if err != nil {
		return nil, err
	}
	return &astQuery{kind: kind, vars: vars, where: patterns}, nil
}

func indexOfWhere(s string) int {
	return strings.Index(strings.ToUpper(s), "WHERE")
}

func parsePatterns(body string) ([]triplePattern, error) {
	var out []triplePattern
	for _, clause := range strings.Split(body, ".") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		fields := strings.Fields(clause)
		if len(fields) != 3 {
			return nil, rdferr.New(rdferr.QueryError, "triplepattern: each triple pattern needs exactly 3 terms")
		}
		s, err := parseTerm(fields[0])
		if err != nil {
			return nil, err
		}
		p, err := parseTerm(fields[1])
		if err != nil {
			return nil, err
		}
		o, err := parseTerm(fields[2])
		if err != nil {
			return nil, err
		}
		out = append(out, triplePattern{s: s, p: p, o: o})
	}
	if len(out) == 0 {
		return nil, rdferr.New(rdferr.QueryError, "triplepattern: WHERE clause has no triple patterns")
	}
	return out, nil
}

func parseTerm(s string) (qterm, error) {
	switch {
	case strings.HasPrefix(s, "?"):
		return qterm{kind: termVar, value: strings.TrimPrefix(s, "?")}, nil
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return qterm{kind: termIRI, value: s[1 : len(s)-1]}, nil
	case strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && len(s) >= 2:
		return qterm{kind: termLiteral, value: s[1 : len(s)-1]}, nil
	default:
		return qterm{}, rdferr.New(rdferr.QueryError, "triplepattern: unrecognized term "+s)
	}
}
