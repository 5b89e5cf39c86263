package kv

import (
	"errors"
	"io"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrThreadSafeMapKeyNotFound = errors.New("[kv] key not found")
	ErrThreadSafeMapPurged      = errors.New("[kv] map purged")
)

// SortedMap keeps its entries in key order.
// It is not thread safe, see ThreadSafeStorer.
type SortedMap[K any, V any] interface {
	// Put inserts or replaces the value. It returns the previous
	// value and true if the key was present.
	Put(key K, val V) (V, bool)
	// PutIfAbsent keeps the present value and returns false.
	PutIfAbsent(key K, val V) bool
	Get(key K) (V, bool)
	Contains(key K) bool
	Delete(key K) (V, bool)
	Len() int64
	Keys() []K
	Values() []V
	Foreach(action func(idx int64, key K, val V) bool)
	Min() (K, V, bool)
	Max() (K, V, bool)
	PopMin() (K, V, bool)
	PopMax() (K, V, bool)
	Clone() SortedMap[K, V]
	Clear()
}

// SortedSet keeps unique items in key order.
// The set algebra expects both operands to share the same key order,
// the result takes the order of the receiver.
type SortedSet[K any] interface {
	// Add returns the number of items not present before.
	Add(items ...K) int
	// Remove returns the number of items present before.
	Remove(items ...K) int
	Contains(item K) bool
	Len() int64
	Items() []K
	Foreach(action func(idx int64, item K) bool)
	Union(other SortedSet[K]) SortedSet[K]
	Intersection(other SortedSet[K]) SortedSet[K]
	Difference(other SortedSet[K]) SortedSet[K]
	SymmetricDifference(other SortedSet[K]) SortedSet[K]
	IsSubsetOf(other SortedSet[K]) bool
	Equal(other SortedSet[K]) bool
	Clone() SortedSet[K]
	Clear()
}

type SafeStoreKeyFilterFunc[K any] func(key K) bool

func defaultAllKeysFilter[K any](key K) bool {
	return true
}

type Closable interface {
	io.Closer
}

// ThreadSafeStorer guards a SortedMap with a RWMutex.
// Keys and values are listed in key order.
type ThreadSafeStorer[K infra.OrderedKey, V any] interface {
	Purge() error
	AddOrUpdate(key K, obj V) error
	Replace(items map[K]V) error
	Delete(key K) (V, error)
	Get(key K) (item V, exists bool)
	Len() int64
	ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K
	ListValues(keys ...K) (items []V)
}
