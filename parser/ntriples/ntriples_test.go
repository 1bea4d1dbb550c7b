package ntriples_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/parser/ntriples"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/world"
)

func newWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	return w
}

func TestParseStringIntoModel(t *testing.T) {
	w := newWorld(t)
	defer w.Free()
	p := ntriples.New(w)
	m := model.New(w, storage.NewMemoryStorage())

	doc := `<http://ex/a> <http://ex/p> "hello"@en .
_:b1 <http://ex/q> <http://ex/b> .
<http://ex/a> <http://ex/r> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .
`
	require.NoError(t, p.ParseStringIntoModel([]byte(doc), nil, m))
	require.Equal(t, int64(3), m.Size())
}

func TestParseStringAsStreamYieldsEachStatementOnce(t *testing.T) {
	w := newWorld(t)
	defer w.Free()
	p := ntriples.New(w)

	doc := "<http://ex/a> <http://ex/p> <http://ex/b> .\n"
	strm, err := p.ParseStringAsStream([]byte(doc), nil)
	require.NoError(t, err)
	var count int
	for strm.Next() {
		count++
		require.Equal(t, "http://ex/a", strm.Current().Subject.URI().AsString())
	}
	strm.Cancel()
	require.Equal(t, 1, count)
}

func TestMissingTerminatingPeriodIsParseError(t *testing.T) {
	w := newWorld(t)
	defer w.Free()
	p := ntriples.New(w)
	_, err := p.ParseStringAsStream([]byte("<http://ex/a> <http://ex/p> <http://ex/b>\n"), nil)
	require.Error(t, err)
}

func TestBlankCommentAndEmptyLinesAreSkipped(t *testing.T) {
	w := newWorld(t)
	defer w.Free()
	p := ntriples.New(w)
	doc := "# a comment\n\n<http://ex/a> <http://ex/p> <http://ex/b> .\n"
	strm, err := p.ParseStringAsStream([]byte(doc), nil)
	require.NoError(t, err)
	var count int
	for strm.Next() {
		count++
	}
	strm.Cancel()
	require.Equal(t, 1, count)
}
