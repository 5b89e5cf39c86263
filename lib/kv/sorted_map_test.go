package kv

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/tree"
)

func TestSortedMap_PutGetDelete(t *testing.T) {
	m := NewSortedMap[int, string]()
	_, ok := m.Get(1)
	require.False(t, ok)

	prev, replaced := m.Put(2, "b")
	require.False(t, replaced)
	require.Zero(t, prev)
	m.Put(1, "a")
	m.Put(3, "c")

	prev, replaced = m.Put(2, "B")
	require.True(t, replaced)
	require.Equal(t, "b", prev)
	require.Equal(t, int64(3), m.Len())

	require.False(t, m.PutIfAbsent(2, "x"))
	require.True(t, m.PutIfAbsent(4, "d"))

	val, ok := m.Get(2)
	require.True(t, ok)
	require.Equal(t, "B", val)
	require.True(t, m.Contains(4))
	require.False(t, m.Contains(5))

	require.Equal(t, []int{1, 2, 3, 4}, m.Keys())
	require.Equal(t, []string{"a", "B", "c", "d"}, m.Values())

	val, ok = m.Delete(3)
	require.True(t, ok)
	require.Equal(t, "c", val)
	_, ok = m.Delete(3)
	require.False(t, ok)
	require.Equal(t, []int{1, 2, 4}, m.Keys())
}

func TestSortedMap_MinMaxPop(t *testing.T) {
	m := NewSortedMap[int, int]()
	_, _, ok := m.Min()
	require.False(t, ok)
	_, _, ok = m.PopMax()
	require.False(t, ok)

	for _, key := range lo.Shuffle(lo.Range(50)) {
		m.Put(key, key*10)
	}
	key, val, ok := m.Min()
	require.True(t, ok)
	require.Equal(t, 0, key)
	require.Equal(t, 0, val)
	key, val, ok = m.Max()
	require.True(t, ok)
	require.Equal(t, 49, key)
	require.Equal(t, 490, val)

	for i := 0; i < 25; i++ {
		key, val, ok = m.PopMin()
		require.True(t, ok)
		require.Equal(t, i, key)
		require.Equal(t, i*10, val)
	}
	for i := 49; i >= 25; i-- {
		key, _, ok = m.PopMax()
		require.True(t, ok)
		require.Equal(t, i, key)
	}
	require.Equal(t, int64(0), m.Len())
}

func TestSortedMap_ForeachEarlyStop(t *testing.T) {
	m := NewSortedMap[string, int]()
	for i, key := range []string{"d", "b", "a", "c"} {
		m.Put(key, i)
	}
	visited := make([]string, 0, 2)
	m.Foreach(func(idx int64, key string, val int) bool {
		visited = append(visited, key)
		return idx < 1
	})
	require.Equal(t, []string{"a", "b"}, visited)
}

func TestSortedMap_CloneAndClear(t *testing.T) {
	m := NewSortedMap[int, int](tree.WithRBTreeDesc[int, int]())
	for _, key := range lo.Shuffle(lo.Range(200)) {
		m.Put(key, key)
	}
	clone := m.Clone()
	require.Equal(t, m.Keys(), clone.Keys())
	require.Equal(t, 199, clone.Keys()[0])

	clone.Put(1000, 1000)
	clone.Delete(0)
	require.False(t, m.Contains(1000))
	require.True(t, m.Contains(0))

	m.Clear()
	require.Equal(t, int64(0), m.Len())
	require.Empty(t, m.Keys())
	require.Equal(t, int64(200), clone.Len())

	m.Put(1, 1)
	require.Equal(t, []int{1}, m.Keys())
}

func TestSortedMapFunc_CaseInsensitive(t *testing.T) {
	m := NewSortedMapFunc[string, int](func(i, j string) int64 {
		return int64(strings.Compare(strings.ToLower(i), strings.ToLower(j)))
	})
	m.Put("Banana", 1)
	m.Put("apple", 2)
	prev, replaced := m.Put("BANANA", 3)
	require.True(t, replaced)
	require.Equal(t, 1, prev)
	require.Equal(t, []string{"apple", "Banana"}, m.Keys())
	require.Equal(t, []int{2, 3}, m.Values())

	require.Panics(t, func() {
		NewSortedMapFunc[string, int](nil)
	})
}

func TestSortedMap_CloneKeepsRemoveBorrowPred(t *testing.T) {
	rootKey := func(m SortedMap[int, int]) int {
		return m.(*sortedMap[int, int]).tree.Root().Key()
	}
	pred := NewSortedMap[int, int](tree.WithRBTreeRemoveBorrowPred[int, int]())
	succ := NewSortedMap[int, int]()
	for _, key := range []int{1, 2, 3} {
		pred.Put(key, key)
		succ.Put(key, key)
	}
	predClone, succClone := pred.Clone(), succ.Clone()
	require.Equal(t, 2, rootKey(predClone))

	_, ok := predClone.Delete(2)
	require.True(t, ok)
	require.Equal(t, 1, rootKey(predClone))
	_, ok = succClone.Delete(2)
	require.True(t, ok)
	require.Equal(t, 3, rootKey(succClone))
	require.NoError(t, tree.Validate[int, int](predClone.(*sortedMap[int, int]).tree))
}
