package uri_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/uri"
)

func TestInternReturnsSameHandle(t *testing.T) {
	c := uri.NewCache()
	a, err := uri.New(c, []byte("http://example.org/a"))
	require.NoError(t, err)
	b, err := uri.New(c, []byte("http://example.org/a"))
	require.NoError(t, err)
	require.True(t, a.Equals(b))
	require.Equal(t, int64(2), a.RefCount())
}

func TestEmptyURIIsInvalidArgument(t *testing.T) {
	c := uri.NewCache()
	_, err := uri.New(c, nil)
	require.Error(t, err)
}

func TestReleaseDropsFromCacheAtZero(t *testing.T) {
	c := uri.NewCache()
	a, err := uri.New(c, []byte("http://example.org/a"))
	require.NoError(t, err)
	a.Release()

	b, err := uri.New(c, []byte("http://example.org/a"))
	require.NoError(t, err)
	require.Equal(t, int64(1), b.RefCount())
}

// TestRelativeResolution exercises spec.md §8 scenario S5.
func TestRelativeResolution(t *testing.T) {
	c := uri.NewCache()

	cases := []struct{ base, rel, want string }{
		{"http://x/dir/", "#frag", "http://x/dir/#frag"},
		{"http://x/dir/a", "b", "http://x/dir/b"},
		{"http://x/", "http://y/z", "http://y/z"},
	}
	for _, tc := range cases {
		base, err := uri.New(c, []byte(tc.base))
		require.NoError(t, err)
		got, err := uri.NewRelativeToBase(c, base, []byte(tc.rel))
		require.NoError(t, err)
		require.Equal(t, tc.want, got.AsString())
	}
}

func TestRelativeResolutionEmptyRelClonesBase(t *testing.T) {
	c := uri.NewCache()
	base, err := uri.New(c, []byte("http://x/dir/"))
	require.NoError(t, err)
	got, err := uri.NewRelativeToBase(c, base, nil)
	require.NoError(t, err)
	require.True(t, base.Equals(got))
}

func TestNormalizedToBase(t *testing.T) {
	c := uri.NewCache()
	src, err := uri.New(c, []byte("http://old/dir/"))
	require.NoError(t, err)
	dst, err := uri.New(c, []byte("http://new/dir/"))
	require.NoError(t, err)

	got, err := uri.NewNormalizedToBase(c, "http://old/dir/thing", src, dst)
	require.NoError(t, err)
	require.Equal(t, "http://new/dir/thing", got.AsString())

	got, err = uri.NewNormalizedToBase(c, "#frag", src, dst)
	require.NoError(t, err)
	require.Equal(t, "http://new/dir/#frag", got.AsString())

	got, err = uri.NewNormalizedToBase(c, "http://elsewhere/x", src, dst)
	require.NoError(t, err)
	require.Equal(t, "http://elsewhere/x", got.AsString())
}
