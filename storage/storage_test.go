package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/statement"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/uri"
)

type fixture struct {
	caches              *node.Caches
	uris                *uri.Cache
	alice, bob, name, g *node.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	caches := node.NewCaches()
	uris := uri.NewCache()
	alice, err := node.NewIRIFromString(caches, uris, []byte("http://example.org/alice"))
	require.NoError(t, err)
	bob, err := node.NewIRIFromString(caches, uris, []byte("http://example.org/bob"))
	require.NoError(t, err)
	name, err := node.NewIRIFromString(caches, uris, []byte("http://example.org/knows"))
	require.NoError(t, err)
	g, err := node.NewIRIFromString(caches, uris, []byte("http://example.org/graph1"))
	require.NoError(t, err)
	return &fixture{caches: caches, uris: uris, alice: alice, bob: bob, name: name, g: g}
}

func testBackends(t *testing.T, f *fixture) map[string]storage.Storage {
	mem := storage.NewMemoryStorage()
	require.NoError(t, mem.Open(storage.Options{}))

	hashes := storage.NewHashesStorage(f.caches, f.uris)
	require.NoError(t, hashes.Open(storage.Options{Identifier: "t", Hashes: "memory", ContextsEnabled: true}))

	return map[string]storage.Storage{"memory": mem, "hashes": hashes}
}

func TestAddFindContainsAcrossBackends(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			tr := statement.NewFromNodes(f.alice, f.name, f.bob)
			require.NoError(t, store.AddStatement(tr))

			ok, err := store.ContainsStatement(tr)
			require.NoError(t, err)
			require.True(t, ok)

			strm, err := store.FindStatements(&statement.Statement{Subject: f.alice})
			require.NoError(t, err)
			var count int
			for strm.Next() {
				count++
				require.True(t, tr.Equals(strm.Current()))
			}
			strm.Cancel()
			require.Equal(t, 1, count)
			require.Equal(t, int64(1), store.Size())
		})
	}
}

func TestFindStatementsDispatchesByBoundField(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.AddStatement(statement.NewFromNodes(f.alice, f.name, f.bob)))
			require.NoError(t, store.AddStatement(statement.NewFromNodes(f.bob, f.name, f.alice)))

			byObject, err := store.FindStatements(&statement.Statement{Object: f.bob})
			require.NoError(t, err)
			var n int
			for byObject.Next() {
				n++
				require.True(t, f.bob.Equals(byObject.Current().Object))
			}
			byObject.Cancel()
			require.Equal(t, 1, n)
		})
	}
}

func TestRemoveStatement(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			tr := statement.NewFromNodes(f.alice, f.name, f.bob)
			require.NoError(t, store.AddStatement(tr))
			require.NoError(t, store.RemoveStatement(tr))

			ok, err := store.ContainsStatement(tr)
			require.NoError(t, err)
			require.False(t, ok)
			require.Equal(t, int64(0), store.Size())
		})
	}
}

// TestOnDiskFileNamesMatchSpec exercises spec.md §6's external interface:
// "D/N-sp2o.hdb, D/N-po2s.hdb, D/N-os2p.hdb, D/N-contexts.hdb".
func TestOnDiskFileNamesMatchSpec(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	store := storage.NewHashesStorage(f.caches, f.uris)
	require.NoError(t, store.Open(storage.Options{Identifier: "t1", Dir: dir, Hashes: "dbhash", ContextsEnabled: true}))
	defer store.Close()

	for _, suffix := range []string{"-sp2o", "-po2s", "-os2p", "-contexts"} {
		_, err := os.Stat(filepath.Join(dir, "t1"+suffix+".hdb"))
		require.NoError(t, err, "missing expected file for suffix %q", suffix)
	}
}

func TestDuplicateAddStatementIsSilentNoOp(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			tr := statement.NewFromNodes(f.alice, f.name, f.bob)
			require.NoError(t, store.AddStatement(tr))
			require.NoError(t, store.AddStatement(statement.NewFromNodes(f.alice, f.name, f.bob)))
			require.Equal(t, int64(1), store.Size())
		})
	}
}

func TestSameTripleDistinctContextsAreDistinctRows(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			gy, err := node.NewIRIFromString(f.caches, f.uris, []byte("http://example.org/graph2"))
			require.NoError(t, err)

			a := statement.NewFromNodes(f.alice, f.name, f.bob)
			a.Graph = f.g
			b := statement.NewFromNodes(f.alice, f.name, f.bob)
			b.Graph = gy
			require.NoError(t, store.AddStatement(a))
			require.NoError(t, store.AddStatement(b))
			require.Equal(t, int64(2), store.Size())

			require.NoError(t, store.RemoveStatement(a))
			require.Equal(t, int64(1), store.Size())

			ctxs, err := store.Contexts()
			require.NoError(t, err)
			require.Len(t, ctxs, 1)
			require.True(t, gy.Equals(ctxs[0]))
		})
	}
}

func TestContextsAndGraphScopedFind(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			withCtx := statement.NewFromNodes(f.alice, f.name, f.bob)
			withCtx.Graph = f.g
			require.NoError(t, store.AddStatement(withCtx))

			strm, err := store.FindStatements(&statement.Statement{Graph: f.g})
			require.NoError(t, err)
			var n int
			for strm.Next() {
				n++
			}
			strm.Cancel()
			require.Equal(t, 1, n)

			ctxs, err := store.Contexts()
			require.NoError(t, err)
			require.Len(t, ctxs, 1)
			require.True(t, f.g.Equals(ctxs[0]))

			inCtx, err := store.FindInContext(f.g)
			require.NoError(t, err)
			var got int
			for inCtx.Next() {
				tr := inCtx.Current()
				require.True(t, f.alice.Equals(tr.Subject))
				require.True(t, f.bob.Equals(tr.Object))
				got++
			}
			inCtx.Cancel()
			require.Equal(t, 1, got)
		})
	}
}

func TestHasArcInOut(t *testing.T) {
	f := newFixture(t)
	for name, store := range testBackends(t, f) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.AddStatement(statement.NewFromNodes(f.alice, f.name, f.bob)))

			ok, err := store.HasArcOut(f.alice, f.name)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = store.HasArcIn(f.bob, f.name)
			require.NoError(t, err)
			require.True(t, ok)

			ok, err = store.HasArcIn(f.alice, f.name)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}
