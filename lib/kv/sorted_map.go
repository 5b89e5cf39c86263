package kv

import (
	"slices"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

var (
	_ SortedMap[int, struct{}] = (*sortedMap[int, struct{}])(nil)
)

type sortedMap[K any, V any] struct {
	tree tree.RBTree[K, V]
	// Clones are built with the same comparator and options.
	cmp  infra.Comparator[K]
	opts []tree.RBTreeOpt[K, V]
}

func (m *sortedMap[K, V]) Put(key K, val V) (V, bool) {
	if node, ok := m.tree.SearchNode(key); ok {
		prev := node.Val()
		node.SetVal(val)
		return prev, true
	}
	m.tree.Insert(key, val)
	return *new(V), false
}

func (m *sortedMap[K, V]) PutIfAbsent(key K, val V) bool {
	return m.tree.Insert(key, val)
}

func (m *sortedMap[K, V]) Get(key K) (V, bool) {
	return m.tree.Search(key)
}

func (m *sortedMap[K, V]) Contains(key K) bool {
	_, ok := m.tree.SearchNode(key)
	return ok
}

func (m *sortedMap[K, V]) Delete(key K) (V, bool) {
	node, ok := m.tree.Remove(key)
	if !ok {
		return *new(V), false
	}
	return node.Val(), true
}

func (m *sortedMap[K, V]) Len() int64 {
	return m.tree.Len()
}

func (m *sortedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.tree.Len())
	m.tree.Order(func(key K, val V) {
		keys = append(keys, key)
	})
	return keys
}

func (m *sortedMap[K, V]) Values() []V {
	vals := make([]V, 0, m.tree.Len())
	m.tree.Order(func(key K, val V) {
		vals = append(vals, val)
	})
	return vals
}

func (m *sortedMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	m.tree.Foreach(func(idx int64, color tree.RBColor, key K, val V) bool {
		return action(idx, key, val)
	})
}

func entryOf[K any, V any](node tree.RBNode[K, V]) (K, V, bool) {
	if node == nil {
		return *new(K), *new(V), false
	}
	return node.Key(), node.Val(), true
}

func (m *sortedMap[K, V]) Min() (K, V, bool) {
	return entryOf[K, V](m.tree.Min())
}

func (m *sortedMap[K, V]) Max() (K, V, bool) {
	return entryOf[K, V](m.tree.Max())
}

func (m *sortedMap[K, V]) PopMin() (K, V, bool) {
	node, _ := m.tree.RemoveMin()
	return entryOf[K, V](node)
}

func (m *sortedMap[K, V]) PopMax() (K, V, bool) {
	node, _ := m.tree.RemoveMax()
	return entryOf[K, V](node)
}

func (m *sortedMap[K, V]) Clone() SortedMap[K, V] {
	clone := newSortedMap[K, V](m.cmp, m.opts...)
	m.tree.PreOrder(func(key K, val V) {
		clone.tree.Insert(key, val)
	})
	return clone
}

func (m *sortedMap[K, V]) Clear() {
	m.tree.Release()
}

func newSortedMap[K any, V any](cmp infra.Comparator[K], opts ...tree.RBTreeOpt[K, V]) *sortedMap[K, V] {
	return &sortedMap[K, V]{
		tree: tree.NewRBTreeFunc[K, V](cmp, opts...),
		cmp:  cmp,
		opts: slices.Clone(opts),
	}
}

func NewSortedMap[K infra.OrderedKey, V any](opts ...tree.RBTreeOpt[K, V]) SortedMap[K, V] {
	return newSortedMap[K, V](infra.OrderedKeyCompare[K], opts...)
}

// NewSortedMapFunc panics if cmp is nil.
func NewSortedMapFunc[K any, V any](cmp infra.Comparator[K], opts ...tree.RBTreeOpt[K, V]) SortedMap[K, V] {
	return newSortedMap[K, V](cmp, opts...)
}
