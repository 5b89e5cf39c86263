package tree

import (
	"errors"

	"github.com/benz9527/xtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(unknown)"
}

var (
	ErrRBTreeRedViolation   = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation = errors.New("[rbtree] black violation")
	ErrRBTreeRootViolation  = errors.New("[rbtree] root violation")
	ErrRBTreeOrderViolation = errors.New("[rbtree] order violation")
	ErrRBTreeLinkViolation  = errors.New("[rbtree] link violation")
	ErrRBTreeLenViolation   = errors.New("[rbtree] len violation")
	ErrRBTreeHeightExceeded = errors.New("[rbtree] height exceeds 2*log2(n+1)")
)

// RBNode is the read view of a tree node.
// The key is immutable, only the value may be replaced in place.
type RBNode[K any, V any] interface {
	Key() K
	Val() V
	SetVal(val V)
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is not thread safe. Callers who share a tree between
// goroutines have to serialize the access by themselves.
type RBTree[K any, V any] interface {
	// Len is the counter maintained by Insert and Remove, O(1).
	Len() int64
	// Size counts the nodes recursively, O(n).
	Size() int64
	// Height is the max depth, 0 for an empty tree.
	Height() int
	Root() RBNode[K, V]
	// Comparator returns the effective key order of the tree,
	// the descending option included.
	Comparator() infra.Comparator[K]
	// Insert does nothing and returns false if the key is present.
	Insert(key K, val V) bool
	// Remove returns the detached node or false if the key is absent.
	Remove(key K) (RBNode[K, V], bool)
	RemoveMin() (RBNode[K, V], bool)
	RemoveMax() (RBNode[K, V], bool)
	Search(key K) (V, bool)
	SearchNode(key K) (RBNode[K, V], bool)
	SearchFunc(fn func(RBNode[K, V]) int64) RBNode[K, V]
	Min() RBNode[K, V]
	Max() RBNode[K, V]
	// Order visits the elements in key order.
	Order(visitor func(key K, val V))
	// PreOrder visits node, left subtree, right subtree.
	PreOrder(visitor func(key K, val V))
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Release()
}
