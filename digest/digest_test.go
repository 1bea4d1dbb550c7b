package digest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/digest"
)

func TestBuiltinsPreregistered(t *testing.T) {
	r := digest.NewRegistry()
	for _, name := range []string{"md5", "sha1", "blake2b"} {
		d, ok := r.Get(name)
		require.True(t, ok, "missing builtin digest %q", name)
		require.Equal(t, name, d.Name())
	}
}

func TestHexSumIsDeterministic(t *testing.T) {
	r := digest.NewRegistry()
	a, err := r.HexSum("md5", []byte("http://example.org/thing"))
	require.NoError(t, err)
	b, err := r.HexSum("md5", []byte("http://example.org/thing"))
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEmpty(t, a)
}

func TestDifferentAlgorithmsDisagree(t *testing.T) {
	r := digest.NewRegistry()
	md5Sum, err := r.HexSum("md5", []byte("x"))
	require.NoError(t, err)
	sha1Sum, err := r.HexSum("sha1", []byte("x"))
	require.NoError(t, err)
	require.NotEqual(t, md5Sum, sha1Sum)
}

func TestUnknownAlgorithmIsError(t *testing.T) {
	r := digest.NewRegistry()
	_, err := r.HexSum("nonexistent", []byte("x"))
	require.Error(t, err)
}

func TestRegisterDuplicateNameIsConflict(t *testing.T) {
	r := digest.NewRegistry()
	err := r.Register(fakeDigest{})
	require.Error(t, err)
}

type fakeDigest struct{}

func (fakeDigest) Name() string          { return "md5" }
func (fakeDigest) Sum(b []byte) []byte { return b }
