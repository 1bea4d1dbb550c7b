package serializer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/serializer"
	"github.com/oxhq/rdfcore/world"
)

func TestRegisterBuiltinsAndLookup(t *testing.T) {
	w := world.New(world.Config{})
	require.NoError(t, w.Open())
	defer w.Free()

	_, err := serializer.Lookup(w, "ntriples")
	require.Error(t, err)

	require.NoError(t, serializer.RegisterBuiltins(w))
	s, err := serializer.Lookup(w, "ntriples")
	require.NoError(t, err)
	require.NotNil(t, s)

	s2, err := serializer.Lookup(w, "turtle")
	require.NoError(t, err)
	require.NotNil(t, s2)
}

func TestNamespacesPrefixAndFeature(t *testing.T) {
	ns := serializer.NewNamespaces()
	_, ok := ns.Prefix("ex")
	require.False(t, ok)

	ns.SetPrefix("ex", "http://ex/")
	v, ok := ns.Prefix("ex")
	require.True(t, ok)
	require.Equal(t, "http://ex/", v)
	require.Contains(t, ns.Prefixes(), "ex")

	_, ok = ns.Feature("http://example.org/feature")
	require.False(t, ok)
	ns.SetFeature("http://example.org/feature", "on")
	fv, ok := ns.Feature("http://example.org/feature")
	require.True(t, ok)
	require.Equal(t, "on", fv)
}
