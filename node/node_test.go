package node_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/node"
	"github.com/oxhq/rdfcore/uri"
)

func TestInternIRIReturnsSameHandle(t *testing.T) {
	uc := uri.NewCache()
	caches := node.NewCaches()

	a, err := node.NewIRIFromString(caches, uc, []byte("http://example.org/a"))
	require.NoError(t, err)
	b, err := node.NewIRIFromString(caches, uc, []byte("http://example.org/a"))
	require.NoError(t, err)

	require.Same(t, a, b, "interning the same IRI twice must return the same handle")
	require.True(t, a.Equals(b))
}

func TestInternLiteralCanonicalizesDatatypeOverLanguage(t *testing.T) {
	uc := uri.NewCache()
	caches := node.NewCaches()
	dt, err := uri.New(uc, []byte("http://www.w3.org/2001/XMLSchema#string"))
	require.NoError(t, err)

	a := node.NewLiteral(caches, []byte("hi"), "en", dt)
	_, lang, datatype, ok := a.LiteralParts()
	require.True(t, ok)
	require.Empty(t, lang, "a datatype present must clear any language tag")
	require.Equal(t, dt.AsString(), datatype.AsString())
}

func TestInternBlankByLabel(t *testing.T) {
	caches := node.NewCaches()
	a := node.NewBlank(caches, []byte("b1"))
	b := node.NewBlank(caches, []byte("b1"))
	require.Same(t, a, b)
	require.Equal(t, []byte("b1"), a.BlankID())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	uc := uri.NewCache()
	caches := node.NewCaches()

	iri, err := node.NewIRIFromString(caches, uc, []byte("http://example.org/p"))
	require.NoError(t, err)
	dt, err := uri.New(uc, []byte("http://www.w3.org/2001/XMLSchema#integer"))
	require.NoError(t, err)
	lit := node.NewLiteral(caches, []byte("42"), "", dt)
	blank := node.NewBlank(caches, []byte("genid1"))

	for _, n := range []*node.Node{iri, lit, blank} {
		buf := node.Encode(n)
		decoded, consumed, err := node.Decode(caches, uc, buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), consumed)
		require.True(t, n.Equals(decoded))
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	uc := uri.NewCache()
	caches := node.NewCaches()
	iri, err := node.NewIRIFromString(caches, uc, []byte("http://example.org/long-enough-iri"))
	require.NoError(t, err)

	buf := node.Encode(iri)
	_, _, err = node.Decode(caches, uc, buf[:len(buf)-1])
	require.Error(t, err)
}
