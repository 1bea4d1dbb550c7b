package turtle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/model"
	"github.com/oxhq/rdfcore/serializer/turtle"
	"github.com/oxhq/rdfcore/storage"
	"github.com/oxhq/rdfcore/world"
)

func TestSerializeUsesRegisteredPrefix(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()

	store := storage.NewMemoryStorage()
	m := model.New(w, store)
	a, err := w.NewIRI([]byte("http://ex/a"))
	require.NoError(t, err)
	p, err := w.NewIRI([]byte("http://ex/p"))
	require.NoError(t, err)
	b, err := w.NewIRI([]byte("http://ex/b"))
	require.NoError(t, err)
	require.NoError(t, m.AddTriple(a, p, b))

	s := turtle.New()
	ns, err := w.NewURI([]byte("http://ex/"))
	require.NoError(t, err)
	s.SetNamespace("ex", ns)

	out, err := s.SerializeModelToString(m)
	require.NoError(t, err)
	require.Contains(t, out, "@prefix ex: <http://ex/> .")
	require.Contains(t, out, "ex:a ex:p ex:b .")
}

func TestSerializeFallsBackToFullIRIWithoutPrefix(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()

	store := storage.NewMemoryStorage()
	m := model.New(w, store)
	a, err := w.NewIRI([]byte("http://ex/a"))
	require.NoError(t, err)
	p, err := w.NewIRI([]byte("http://ex/p"))
	require.NoError(t, err)
	b, err := w.NewIRI([]byte("http://ex/b"))
	require.NoError(t, err)
	require.NoError(t, m.AddTriple(a, p, b))

	out, err := turtle.New().SerializeModelToString(m)
	require.NoError(t, err)
	require.Contains(t, out, "<http://ex/a> <http://ex/p> <http://ex/b> .")
}
