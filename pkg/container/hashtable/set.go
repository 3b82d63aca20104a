// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package hashtable

import (
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/redact"
)

// Set is a bounded hash set of K over the storage backend S: a Map with no
// values. Use NewFixedSet or NewInlineSet rather than naming the type
// directly. Inline sets declare their slot array over Cell[K, struct{}],
// e.g. [8]hashtable.Cell[string, struct{}].
type Set[K comparable, S any, PS storage.Storage[Cell[K, struct{}], S]] struct {
	m Map[K, struct{}, S, PS]
}

// NewFixedSet returns an empty heap-backed set holding up to capacity keys,
// hashing them with the given function.
func NewFixedSet[K comparable](
	capacity uint32, hash func(K) uint64,
) (*Set[K, storage.Heap[Cell[K, struct{}]], *storage.Heap[Cell[K, struct{}]]], error) {
	s := &Set[K, storage.Heap[Cell[K, struct{}]], *storage.Heap[Cell[K, struct{}]]]{}
	if err := s.m.init(capacity, slotsForCapacity(capacity), hash); err != nil {
		return nil, err
	}
	return s, nil
}

// NewInlineSet returns an empty inline set over the slot array type A, which
// must be [N]Cell[K, struct{}] with N >= 1.
func NewInlineSet[K comparable, A any](
	hash func(K) uint64,
) (*Set[K, storage.Inline[Cell[K, struct{}], A], *storage.Inline[Cell[K, struct{}], A]], error) {
	n, err := storage.InlineLen[Cell[K, struct{}], A]()
	if err != nil {
		return nil, err
	}
	s := &Set[K, storage.Inline[Cell[K, struct{}], A], *storage.Inline[Cell[K, struct{}], A]]{}
	if err := s.m.init(n, n, hash); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the current number of keys.
func (s *Set[K, S, PS]) Len() int { return s.m.Len() }

// Cap returns the fixed element capacity.
func (s *Set[K, S, PS]) Cap() int { return s.m.Cap() }

// Insert adds key. Inserting a present key is a no-op; inserting a new key
// fails with an error marked container.ErrCapacityExceeded when the set is
// at capacity.
func (s *Set[K, S, PS]) Insert(key K) error {
	return s.m.Insert(key, struct{}{})
}

// Contains reports whether key is present.
func (s *Set[K, S, PS]) Contains(key K) bool {
	return s.m.Contains(key)
}

// Remove deletes key, returning false when it is absent.
func (s *Set[K, S, PS]) Remove(key K) bool {
	return s.m.Remove(key)
}

// Clear removes all keys. Capacity is unchanged.
func (s *Set[K, S, PS]) Clear() {
	s.m.Clear()
}

// Release drops all keys and, for the heap variant, the backing allocation.
func (s *Set[K, S, PS]) Release() {
	s.m.Release()
}

// Iter returns an iterator over the keys in slot order.
func (s *Set[K, S, PS]) Iter() SetIterator[K, S, PS] {
	return SetIterator[K, S, PS]{it: s.m.Iter()}
}

// SafeFormat implements redact.SafeFormatter.
func (s *Set[K, S, PS]) SafeFormat(w redact.SafePrinter, verb rune) {
	s.m.SafeFormat(w, verb)
}

func (s *Set[K, S, PS]) String() string {
	return redact.StringWithoutMarkers(s)
}

// SetIterator yields a set's keys in slot order.
type SetIterator[K comparable, S any, PS storage.Storage[Cell[K, struct{}], S]] struct {
	it MapIterator[K, struct{}, S, PS]
}

// Next advances to the next key, returning false when the sequence is
// exhausted.
func (it *SetIterator[K, S, PS]) Next() bool {
	return it.it.Next()
}

// Cur returns the key at the iterator's position.
func (it *SetIterator[K, S, PS]) Cur() K {
	k, _ := it.it.Cur()
	return k
}
