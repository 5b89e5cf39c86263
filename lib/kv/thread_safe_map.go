package kv

import (
	"io"
	"reflect"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

type threadSafeMap[K infra.OrderedKey, V any] struct {
	lock           sync.RWMutex
	items          SortedMap[K, V]
	treeOpts       []tree.RBTreeOpt[K, V]
	isClosableItem bool
	isPurged       bool
}

func (t *threadSafeMap[K, V]) AddOrUpdate(key K, obj V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.isPurged {
		return ErrThreadSafeMapPurged
	}
	t.items.Put(key, obj)
	return nil
}

func (t *threadSafeMap[K, V]) Replace(items map[K]V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.isPurged {
		return ErrThreadSafeMapPurged
	}
	replaced := NewSortedMap[K, V](t.treeOpts...)
	for key, item := range items {
		replaced.Put(key, item)
	}
	t.items = replaced
	return nil
}

func (t *threadSafeMap[K, V]) Delete(key K) (V, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.isPurged {
		return *new(V), ErrThreadSafeMapPurged
	}
	item, exists := t.items.Delete(key)
	if !exists {
		return *new(V), ErrThreadSafeMapKeyNotFound
	}
	return item, nil
}

func (t *threadSafeMap[K, V]) Get(key K) (item V, exists bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.isPurged {
		return
	}
	return t.items.Get(key)
}

func (t *threadSafeMap[K, V]) Len() int64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.isPurged {
		return 0
	}
	return t.items.Len()
}

func (t *threadSafeMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {
	realFilters := lo.Filter(filters, func(filter SafeStoreKeyFilterFunc[K], _ int) bool {
		return filter != nil
	})
	if len(realFilters) == 0 {
		realFilters = append(realFilters, defaultAllKeysFilter[K])
	}

	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.isPurged {
		return []K{}
	}

	keys := make([]K, 0, t.items.Len())
	t.items.Foreach(func(idx int64, key K, val V) bool {
		if lo.ContainsBy(realFilters, func(filter SafeStoreKeyFilterFunc[K]) bool {
			return filter(key)
		}) {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

// ListValues returns all values in key order if no key is given.
// Otherwise, the values of the present keys in the order of the
// first occurrence of each key.
func (t *threadSafeMap[K, V]) ListValues(keys ...K) (items []V) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.isPurged {
		return []V{}
	}

	if len(keys) == 0 {
		return t.items.Values()
	}
	realKeys := lo.Uniq(keys)
	values := make([]V, 0, len(realKeys))
	for _, key := range realKeys {
		if item, exists := t.items.Get(key); exists {
			values = append(values, item)
		}
	}
	return values
}

func isNilItem(item any) bool {
	if item == nil {
		return true
	}
	switch v := reflect.ValueOf(item); v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
	}
	return false
}

// Purge closes the io.Closer values if the closeable item check is enabled.
// The map cannot be used after purging.
func (t *threadSafeMap[K, V]) Purge() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.isPurged {
		return nil
	}

	var merr error
	if t.isClosableItem {
		t.items.Foreach(func(idx int64, key K, item V) bool {
			if isNilItem(item) {
				return true
			}
			if closer, ok := any(item).(io.Closer); ok {
				multierr.AppendInto(&merr, closer.Close())
			}
			return true
		})
	}

	t.items.Clear()
	t.isPurged = true
	return merr
}

type ThreadSafeMapOption[K infra.OrderedKey, V any] func(*threadSafeMap[K, V])

// WithThreadSafeMapCloseableItemCheck closes the io.Closer values on Purge.
func WithThreadSafeMapCloseableItemCheck[K infra.OrderedKey, V any]() ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.isClosableItem = true
	}
}

func WithThreadSafeMapDesc[K infra.OrderedKey, V any]() ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.treeOpts = append(m.treeOpts, tree.WithRBTreeDesc[K, V]())
	}
}

func NewThreadSafeMap[K infra.OrderedKey, V any](opts ...ThreadSafeMapOption[K, V]) ThreadSafeStorer[K, V] {
	m := &threadSafeMap[K, V]{}
	for _, o := range opts {
		if o != nil {
			o(m)
		}
	}
	m.items = NewSortedMap[K, V](m.treeOpts...)
	return m
}
