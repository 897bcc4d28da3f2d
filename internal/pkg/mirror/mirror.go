// Package mirror keeps an ordered in-memory copy of a collection so read-only
// views can be computed without a store round trip.
package mirror

import "sync"

type Mirror[T any] struct {
	mu    sync.RWMutex
	items []T
	key   func(T) string
	// gen counts changes so a slow full reload can tell it was overtaken.
	gen uint64
}

func New[T any](key func(T) string) *Mirror[T] {
	return &Mirror[T]{key: key}
}

// Replace swaps the whole contents unconditionally.
func (m *Mirror[T]) Replace(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	m.mu.Lock()
	m.items = cp
	m.gen++
	m.mu.Unlock()
}

// Generation identifies the current contents. Take it before reading the
// store and hand it to ReplaceIf.
func (m *Mirror[T]) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// ReplaceIf swaps the contents only if nothing changed since gen was taken,
// so rows read before a concurrent write cannot undo it.
func (m *Mirror[T]) ReplaceIf(gen uint64, items []T) bool {
	cp := make([]T, len(items))
	copy(cp, items)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return false
	}
	m.items = cp
	m.gen++
	return true
}

// Prepend inserts item at the head, dropping any older copy with the same key.
func (m *Mirror[T]) Prepend(item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	k := m.key(item)
	out := make([]T, 0, len(m.items)+1)
	out = append(out, item)
	for _, it := range m.items {
		if m.key(it) != k {
			out = append(out, it)
		}
	}
	m.items = out
}

// Upsert replaces the item with the same key in place, or prepends it.
func (m *Mirror[T]) Upsert(item T) {
	m.mu.Lock()
	k := m.key(item)
	for i := range m.items {
		if m.key(m.items[i]) == k {
			m.items[i] = item
			m.gen++
			m.mu.Unlock()
			return
		}
	}
	m.mu.Unlock()
	m.Prepend(item)
}

func (m *Mirror[T]) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	out := m.items[:0:0]
	for _, it := range m.items {
		if m.key(it) != key {
			out = append(out, it)
		}
	}
	m.items = out
}

// Snapshot returns a copy safe to read without holding the lock.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Len is the number of mirrored items.
func (m *Mirror[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
