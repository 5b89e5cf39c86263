package kv

import (
	"slices"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

var (
	_ SortedSet[int] = (*sortedSet[int])(nil)
)

type sortedSet[K any] struct {
	tree tree.RBTree[K, struct{}]
}

func (s *sortedSet[K]) Add(items ...K) int {
	added := 0
	for _, item := range items {
		if s.tree.Insert(item, struct{}{}) {
			added++
		}
	}
	return added
}

func (s *sortedSet[K]) Remove(items ...K) int {
	removed := 0
	for _, item := range items {
		if _, ok := s.tree.Remove(item); ok {
			removed++
		}
	}
	return removed
}

func (s *sortedSet[K]) Contains(item K) bool {
	_, ok := s.tree.SearchNode(item)
	return ok
}

func (s *sortedSet[K]) Len() int64 {
	return s.tree.Len()
}

func (s *sortedSet[K]) Items() []K {
	items := make([]K, 0, s.tree.Len())
	s.tree.Order(func(key K, _ struct{}) {
		items = append(items, key)
	})
	return items
}

func (s *sortedSet[K]) Foreach(action func(idx int64, item K) bool) {
	s.tree.Foreach(func(idx int64, color tree.RBColor, key K, _ struct{}) bool {
		return action(idx, key)
	})
}

func (s *sortedSet[K]) empty() *sortedSet[K] {
	return &sortedSet[K]{tree: tree.NewRBTreeFunc[K, struct{}](s.tree.Comparator())}
}

// sortedAs returns the items of other in the order of cmp. Sets built
// with another comparator, a reversed one for instance, are re-sorted.
func sortedAs[K any](other SortedSet[K], cmp infra.Comparator[K]) []K {
	if other == nil {
		return nil
	}
	items := other.Items()
	less := func(i, j K) int {
		return int(max(min(cmp(i, j), 1), -1))
	}
	if !slices.IsSortedFunc(items, less) {
		slices.SortFunc(items, less)
	}
	return items
}

// merge walks both sorted operands once. The keep flags select
// which side of the walk ends up in the result.
func (s *sortedSet[K]) merge(other SortedSet[K], keepLeft, keepBoth, keepRight bool) *sortedSet[K] {
	var (
		res   = s.empty()
		cmp   = s.tree.Comparator()
		left  = s.Items()
		right = sortedAs[K](other, cmp)
		i, j  int
	)
	for i < len(left) && j < len(right) {
		switch c := cmp(left[i], right[j]); {
		case c < 0:
			if keepLeft {
				res.tree.Insert(left[i], struct{}{})
			}
			i++
		case c > 0:
			if keepRight {
				res.tree.Insert(right[j], struct{}{})
			}
			j++
		default:
			if keepBoth {
				res.tree.Insert(left[i], struct{}{})
			}
			i++
			j++
		}
	}
	if keepLeft {
		for ; i < len(left); i++ {
			res.tree.Insert(left[i], struct{}{})
		}
	}
	if keepRight {
		for ; j < len(right); j++ {
			res.tree.Insert(right[j], struct{}{})
		}
	}
	return res
}

func (s *sortedSet[K]) Union(other SortedSet[K]) SortedSet[K] {
	return s.merge(other, true, true, true)
}

func (s *sortedSet[K]) Intersection(other SortedSet[K]) SortedSet[K] {
	return s.merge(other, false, true, false)
}

func (s *sortedSet[K]) Difference(other SortedSet[K]) SortedSet[K] {
	return s.merge(other, true, false, false)
}

func (s *sortedSet[K]) SymmetricDifference(other SortedSet[K]) SortedSet[K] {
	return s.merge(other, true, false, true)
}

func (s *sortedSet[K]) IsSubsetOf(other SortedSet[K]) bool {
	if other == nil {
		return s.Len() == 0
	}
	if s.Len() > other.Len() {
		return false
	}
	subset := true
	s.Foreach(func(idx int64, item K) bool {
		subset = other.Contains(item)
		return subset
	})
	return subset
}

func (s *sortedSet[K]) Equal(other SortedSet[K]) bool {
	if other == nil {
		return s.Len() == 0
	}
	return s.Len() == other.Len() && s.IsSubsetOf(other)
}

func (s *sortedSet[K]) Clone() SortedSet[K] {
	clone := s.empty()
	s.tree.PreOrder(func(key K, _ struct{}) {
		clone.tree.Insert(key, struct{}{})
	})
	return clone
}

func (s *sortedSet[K]) Clear() {
	s.tree.Release()
}

func NewSortedSet[K infra.OrderedKey](items ...K) SortedSet[K] {
	set := &sortedSet[K]{tree: tree.NewRBTree[K, struct{}]()}
	set.Add(items...)
	return set
}

// NewSortedSetFunc panics if cmp is nil.
func NewSortedSetFunc[K any](cmp infra.Comparator[K], items ...K) SortedSet[K] {
	set := &sortedSet[K]{tree: tree.NewRBTreeFunc[K, struct{}](cmp)}
	set.Add(items...)
	return set
}
