package list_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/rdfcore/internal/list"
)

func TestAddPopIsLIFOFromTheEnd(t *testing.T) {
	l := list.New[int]()
	l.Add(1)
	l.Add(2)
	l.Add(3)
	require.Equal(t, 3, l.Len())

	v, ok := l.Pop()
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 2, l.Len())
}

func TestUnshiftShiftIsLIFOFromTheStart(t *testing.T) {
	l := list.New[int]()
	l.Unshift(1)
	l.Unshift(2)
	l.Unshift(3)

	v, ok := l.Shift()
	require.True(t, ok)
	require.Equal(t, 3, v)

	v, ok = l.Shift()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestShiftAndPopOnEmptyListReportNotOK(t *testing.T) {
	l := list.New[int]()
	_, ok := l.Shift()
	require.False(t, ok)
	_, ok = l.Pop()
	require.False(t, ok)
}

func TestRemoveUnlinksByDefaultEquality(t *testing.T) {
	l := list.New[int]()
	l.Add(1)
	l.Add(2)
	l.Add(3)

	v, ok := l.Remove(2)
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 2, l.Len())
	require.False(t, l.Contains(2))

	var walked []int
	l.ForEach(func(x int) { walked = append(walked, x) })
	require.Equal(t, []int{1, 3}, walked)
}

func TestRemoveMissingReportsNotFound(t *testing.T) {
	l := list.New[int]()
	l.Add(1)
	_, ok := l.Remove(99)
	require.False(t, ok)
	require.Equal(t, 1, l.Len())
}

func TestRemoveNodeIsO1GivenAHeldReference(t *testing.T) {
	l := list.New[int]()
	l.Add(1)
	mid := l.Add(2)
	l.Add(3)

	l.RemoveNode(mid)
	require.Equal(t, 2, l.Len())

	var walked []int
	l.ForEach(func(x int) { walked = append(walked, x) })
	require.Equal(t, []int{1, 3}, walked)
}

func TestSetEqualsOverridesDefaultComparison(t *testing.T) {
	type pair struct{ key, val int }
	l := list.New[pair]()
	l.SetEquals(func(a, b pair) bool { return a.key == b.key })
	l.Add(pair{key: 1, val: 100})
	l.Add(pair{key: 2, val: 200})

	require.True(t, l.Contains(pair{key: 1, val: -1}))
	v, ok := l.Remove(pair{key: 2, val: -1})
	require.True(t, ok)
	require.Equal(t, 200, v.val)
}

func TestClearEmptiesTheList(t *testing.T) {
	l := list.New[int]()
	l.Add(1)
	l.Add(2)
	l.Clear()
	require.Equal(t, 0, l.Len())
	require.Nil(t, l.First())
	require.Nil(t, l.Last())
}

func TestIteratorWalksFrontToBack(t *testing.T) {
	l := list.New[int]()
	l.Add(1)
	l.Add(2)
	l.Add(3)

	it := l.Iterator()
	var got []int
	for it.Next() {
		got = append(got, it.Current())
	}
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestIteratorOnEmptyListEndsImmediately(t *testing.T) {
	l := list.New[int]()
	it := l.Iterator()
	require.True(t, it.End())
	require.False(t, it.Next())
}
