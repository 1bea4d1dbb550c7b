package turtle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/parser/turtle"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/world"
)

func TestPrefixDirectiveAndRdfTypeShorthand(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)
	m := model.New(w, storage.NewMemoryStorage())

	doc := `@prefix ex: <http://ex/> .
ex:a a ex:Person ; ex:name "Alice" .
`
	require.NoError(t, p.ParseStringIntoModel([]byte(doc), nil, m))
	require.Equal(t, int64(2), m.Size())

	a, err := w.NewIRI([]byte("http://ex/a"))
	require.NoError(t, err)
	typePred, err := w.NewIRI([]byte("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"))
	require.NoError(t, err)
	ok, err := m.HasArcOut(a, typePred)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestObjectListExpandsToMultipleStatements(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)
	m := model.New(w, storage.NewMemoryStorage())

	doc := `@prefix ex: <http://ex/> .
ex:a ex:p ex:b, ex:c .
`
	require.NoError(t, p.ParseStringIntoModel([]byte(doc), nil, m))
	require.Equal(t, int64(2), m.Size())
}

func TestPredicateListSharesSubject(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)
	m := model.New(w, storage.NewMemoryStorage())

	doc := `@prefix ex: <http://ex/> .
ex:a ex:p ex:b ; ex:q ex:c .
`
	require.NoError(t, p.ParseStringIntoModel([]byte(doc), nil, m))
	require.Equal(t, int64(2), m.Size())
}

func TestBaseDirectiveResolvesRelativeIRIs(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)

	doc := `@base <http://ex/dir/> .
<a> <p> <b> .
`
	strm, err := p.ParseStringAsStream([]byte(doc), nil)
	require.NoError(t, err)
	require.True(t, strm.Next())
	require.Equal(t, "http://ex/dir/a", strm.Current().Subject.URI().AsString())
	strm.Cancel()
}

func TestBlankNodePropertyListsAreUnsupported(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)

	_, err := p.ParseStringAsStream([]byte(`@prefix ex: <http://ex/> . ex:a ex:p [ ex:q ex:r ] .`), nil)
	require.Error(t, err)
}

func TestUndefinedPrefixIsParseError(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)

	_, err := p.ParseStringAsStream([]byte(`ex:a ex:p ex:b .`), nil)
	require.Error(t, err)
}

func TestLiteralWithLangAndDatatype(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()
	p := turtle.New(w)

	doc := `@prefix ex: <http://ex/> .
ex:a ex:name "Alice"@en .
ex:a ex:age "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
`
	strm, err := p.ParseStringAsStream([]byte(doc), nil)
	require.NoError(t, err)
	var count int
	for strm.Next() {
		count++
	}
	strm.Cancel()
	require.Equal(t, 2, count)
}
