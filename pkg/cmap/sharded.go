package cmap

import (
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the number of shards used by New.
const DefaultShardCount = 16

// Map is a concurrent map from string keys to V.
type Map[V any] struct {
	shards []*shard[V]
	mask   uint32
}

type shard[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// New creates a map with DefaultShardCount shards.
func New[V any]() *Map[V] {
	return NewWithShards[V](DefaultShardCount)
}

// NewWithShards creates a map with n shards. n is rounded up to a power of
// two; values below one select DefaultShardCount.
func NewWithShards[V any](n int) *Map[V] {
	if n < 1 {
		n = DefaultShardCount
	}
	size := 1
	for size < n {
		size <<= 1
	}

	m := &Map[V]{shards: make([]*shard[V], size), mask: uint32(size - 1)}
	for i := range m.shards {
		m.shards[i] = &shard[V]{items: make(map[string]V)}
	}
	return m
}

func (m *Map[V]) shardFor(key string) *shard[V] {
	return m.shards[murmur3.Sum32([]byte(key))&m.mask]
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores value under key.
func (m *Map[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// GetOrCreate returns the value under key, calling create under the shard
// lock to fill it when absent. create runs at most once per missing key.
func (m *Map[V]) GetOrCreate(key string, create func() V) V {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items[key]; ok {
		return v
	}
	v = create()
	s.items[key] = v
	return v
}

// Delete removes key and reports whether it was present.
func (m *Map[V]) Delete(key string) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	delete(s.items, key)
	return ok
}

// DeleteIf removes every entry for which pred returns true and returns how
// many were removed. Shards are locked one at a time.
func (m *Map[V]) DeleteIf(pred func(key string, value V) bool) int {
	n := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, v := range s.items {
			if pred(k, v) {
				delete(s.items, k)
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}

// Range calls fn for each entry until fn returns false. The view is not a
// snapshot across shards.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}
