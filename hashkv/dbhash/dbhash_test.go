package dbhash_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/hashkv"
	"github.com/oxhq/rdfcore/hashkv/dbhash"
)

func TestPutGetAndReopen(t *testing.T) {
	dir := t.TempDir()
	h := dbhash.New()
	require.NoError(t, h.Open(hashkv.OpenOptions{Identifier: "t1-spo", Dir: dir, Writable: true}))

	require.NoError(t, h.Put([]byte("k"), []byte("v1")))
	require.NoError(t, h.Put([]byte("k"), []byte("v1"))) // duplicate, silently merged
	require.NoError(t, h.Put([]byte("k"), []byte("v2")))
	require.NoError(t, h.Sync())
	require.NoError(t, h.Close())

	reopened := dbhash.New()
	require.NoError(t, reopened.Open(hashkv.OpenOptions{Identifier: "t1-spo", Dir: dir, Writable: true}))
	defer reopened.Close()

	vals, err := reopened.GetAll([]byte("k"))
	require.NoError(t, err)
	require.Len(t, vals, 2)

	n, err := reopened.ValuesCount()
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestCreateNewTruncates(t *testing.T) {
	dir := t.TempDir()
	h := dbhash.New()
	require.NoError(t, h.Open(hashkv.OpenOptions{Identifier: "t2", Dir: dir, Writable: true}))
	require.NoError(t, h.Put([]byte("k"), []byte("v")))
	require.NoError(t, h.Close())

	fresh := dbhash.New()
	require.NoError(t, fresh.Open(hashkv.OpenOptions{Identifier: "t2", Dir: dir, Writable: true, CreateNew: true}))
	defer fresh.Close()

	n, err := fresh.ValuesCount()
	require.NoError(t, err)
	require.Equal(t, int64(0), n)
}

func TestReadOnlyOpenRequiresExistingFile(t *testing.T) {
	dir := t.TempDir()
	h := dbhash.New()
	err := h.Open(hashkv.OpenOptions{Identifier: "missing", Dir: dir, Writable: false})
	require.Error(t, err)
}

func TestDeleteKeyValueAndDeleteKey(t *testing.T) {
	dir := t.TempDir()
	h := dbhash.New()
	require.NoError(t, h.Open(hashkv.OpenOptions{Identifier: "t3", Dir: dir, Writable: true}))
	defer h.Close()

	require.NoError(t, h.Put([]byte("a"), []byte("1")))
	require.NoError(t, h.Put([]byte("a"), []byte("2")))
	require.NoError(t, h.DeleteKeyValue([]byte("a"), []byte("1")))

	ok, err := h.Contains([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, h.DeleteKey([]byte("a")))
	ok, err = h.ContainsKey([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCursorWalksKeysInOrder(t *testing.T) {
	dir := t.TempDir()
	h := dbhash.New()
	require.NoError(t, h.Open(hashkv.OpenOptions{Identifier: "t4", Dir: dir, Writable: true}))
	defer h.Close()

	require.NoError(t, h.Put([]byte("a"), []byte("1")))
	require.NoError(t, h.Put([]byte("a"), []byte("2")))
	require.NoError(t, h.Put([]byte("b"), []byte("3")))

	cur, err := h.NewCursor()
	require.NoError(t, err)
	defer cur.Close()

	k, v, ok := cur.FirstKey()
	require.True(t, ok)
	require.Equal(t, "a", string(k))
	require.Equal(t, "1", string(v))

	v2, ok := cur.NextValue()
	require.True(t, ok)
	require.Equal(t, "2", string(v2))

	k2, _, ok := cur.NextKey()
	require.True(t, ok)
	require.Equal(t, "b", string(k2))
}

func TestFilesAreNamedByIdentifier(t *testing.T) {
	dir := t.TempDir()
	h := dbhash.New()
	require.NoError(t, h.Open(hashkv.OpenOptions{Identifier: "t5-spo", Dir: dir, Writable: true}))
	defer h.Close()

	require.NoError(t, h.Put([]byte("k"), []byte("v")))
	require.NoError(t, h.Sync())

	_, err := os.Stat(filepath.Join(dir, "t5-spo.hdb"))
	require.NoError(t, err, "identifier-derived file must exist per spec.md §6")
}
