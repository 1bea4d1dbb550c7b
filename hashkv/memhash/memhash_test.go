package memhash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/hashkv"
	"github.com/oxhq/rdfcore/hashkv/memhash"
)

func open(t *testing.T) *memhash.Hash {
	t.Helper()
	h := memhash.New()
	require.NoError(t, h.Open(hashkv.OpenOptions{Identifier: "t", Writable: true}))
	return h
}

func TestPutGetOneAndDuplicateValueIsSilent(t *testing.T) {
	h := open(t)
	require.NoError(t, h.Put([]byte("k"), []byte("v1")))
	require.NoError(t, h.Put([]byte("k"), []byte("v1"))) // duplicate (key,value)
	require.NoError(t, h.Put([]byte("k"), []byte("v2")))

	vals, err := h.GetAll([]byte("k"))
	require.NoError(t, err)
	require.Len(t, vals, 2)

	n, err := h.ValuesCount()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestContainsAndDeleteKeyValue(t *testing.T) {
	h := open(t)
	require.NoError(t, h.Put([]byte("k"), []byte("v1")))
	require.NoError(t, h.Put([]byte("k"), []byte("v2")))

	ok, err := h.Contains([]byte("k"), []byte("v1"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, h.DeleteKeyValue([]byte("k"), []byte("v1")))
	ok, err = h.Contains([]byte("k"), []byte("v1"))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = h.Contains([]byte("k"), []byte("v2"))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestDeleteKeyRemovesAllValues(t *testing.T) {
	h := open(t)
	require.NoError(t, h.Put([]byte("k"), []byte("v1")))
	require.NoError(t, h.Put([]byte("k"), []byte("v2")))
	require.NoError(t, h.DeleteKey([]byte("k")))

	ok, err := h.ContainsKey([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)

	vals, err := h.GetAll([]byte("k"))
	require.NoError(t, err)
	require.Empty(t, vals)
}

func TestCursorSetAndWalk(t *testing.T) {
	h := open(t)
	require.NoError(t, h.Put([]byte("a"), []byte("1")))
	require.NoError(t, h.Put([]byte("a"), []byte("2")))
	require.NoError(t, h.Put([]byte("b"), []byte("3")))

	cur, err := h.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	require.True(t, cur.Set([]byte("a"), []byte("1")))
	require.Equal(t, []byte("1"), cur.Value())
	v, ok := cur.NextValue()
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
	_, ok = cur.NextValue()
	require.False(t, ok, "no third value under key a")
}

func TestCursorFirstKeyThenNextKey(t *testing.T) {
	h := open(t)
	require.NoError(t, h.Put([]byte("a"), []byte("1")))
	require.NoError(t, h.Put([]byte("b"), []byte("2")))

	cur, err := h.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	k1, _, ok := cur.FirstKey()
	require.True(t, ok)

	k2, _, ok := cur.NextKey()
	require.True(t, ok)
	require.NotEqual(t, string(k1), string(k2))

	_, _, ok = cur.NextKey()
	require.False(t, ok, "only two distinct keys exist")
}

func TestCursorSetPastEndReturnsFalseNotError(t *testing.T) {
	h := open(t)
	require.NoError(t, h.Put([]byte("a"), []byte("1")))

	cur, err := h.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	ok := cur.Set([]byte("missing"), []byte("1"))
	require.False(t, ok)
}

func TestFdReturnsFalseForMemoryBackend(t *testing.T) {
	h := open(t)
	_, ok := h.Fd()
	require.False(t, ok)
}
