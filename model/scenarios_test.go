package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/world"
)

// TestScenarioLoadQueryDump exercises spec.md §8 scenario S1: a
// dbhash-backed store named "t1" with contexts enabled, three
// statements, a bound-predicate find, and a close/reopen round trip.
func TestScenarioLoadQueryDump(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()

	dir := t.TempDir()
	store := storage.NewHashesStorage(w.NodeCaches, w.URICache)
	require.NoError(t, store.Open(storage.Options{Identifier: "t1", Dir: dir, Hashes: "dbhash", ContextsEnabled: true}))
	m := model.New(w, store)

	a, err := w.NewIRI([]byte("http://ex/a"))
	require.NoError(t, err)
	b, err := w.NewIRI([]byte("http://ex/b"))
	require.NoError(t, err)
	p, err := w.NewIRI([]byte("http://ex/p"))
	require.NoError(t, err)
	q, err := w.NewIRI([]byte("http://ex/q"))
	require.NoError(t, err)
	lit1 := w.NewLiteral([]byte("1"), "", nil)
	lit2 := w.NewLiteral([]byte("2"), "", nil)

	require.NoError(t, m.AddTriple(a, p, lit1))
	require.NoError(t, m.AddTriple(a, q, b))
	require.NoError(t, m.AddTriple(b, p, lit2))
	require.Equal(t, int64(3), m.Size())

	strm, err := m.FindStatements(&statement.Statement{Predicate: p})
	require.NoError(t, err)
	var subjects []string
	for strm.Next() {
		subjects = append(subjects, strm.Current().Subject.URI().AsString())
	}
	strm.Cancel()
	require.ElementsMatch(t, []string{"http://ex/a", "http://ex/b"}, subjects)

	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	reopened := storage.NewHashesStorage(w.NodeCaches, w.URICache)
	require.NoError(t, reopened.Open(storage.Options{Identifier: "t1", Dir: dir, Hashes: "dbhash", ContextsEnabled: true}))
	defer reopened.Close()
	m2 := model.New(w, reopened)
	require.Equal(t, int64(3), m2.Size())
}

// TestScenarioContexts exercises spec.md §8 scenario S2: the same
// triple stored under two distinct graphs counts as two statements, and
// removing one graph's statements leaves exactly the other.
func TestScenarioContexts(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()

	dir := t.TempDir()
	store := storage.NewHashesStorage(w.NodeCaches, w.URICache)
	require.NoError(t, store.Open(storage.Options{Identifier: "t2", Dir: dir, Hashes: "dbhash", ContextsEnabled: true}))
	m := model.New(w, store)

	a, err := w.NewIRI([]byte("http://ex/a"))
	require.NoError(t, err)
	p, err := w.NewIRI([]byte("http://ex/p"))
	require.NoError(t, err)
	lit1 := w.NewLiteral([]byte("1"), "", nil)
	gx, err := w.NewIRI([]byte("g:x"))
	require.NoError(t, err)
	gy, err := w.NewIRI([]byte("g:y"))
	require.NoError(t, err)

	require.NoError(t, m.AddStatementWithContext(statement.NewFromNodes(a, p, lit1), gx))
	require.NoError(t, m.AddStatementWithContext(statement.NewFromNodes(a, p, lit1), gy))
	require.Equal(t, int64(2), m.Size())

	require.NoError(t, m.RemoveAllInContext(gx))
	require.Equal(t, int64(1), m.Size())

	ctxs, err := m.EnumerateContexts()
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
	require.True(t, gy.Equals(ctxs[0]))
}
