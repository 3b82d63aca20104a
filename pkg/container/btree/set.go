// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package btree

import (
	"github.com/cockroachdb/bounded/pkg/container/ordered"
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/redact"
)

// Set is a bounded ordered set of K, a Map with no values.
type Set[K any, S any, PS storage.Storage[Node[K, struct{}], S]] struct {
	m Map[K, struct{}, S, PS]
}

// NewFixedSet returns an empty heap-backed set holding up to capacity keys.
func NewFixedSet[K any](
	capacity uint32, cmp ordered.CompareFn[K],
) (*Set[K, storage.Heap[Node[K, struct{}]], *storage.Heap[Node[K, struct{}]]], error) {
	s := &Set[K, storage.Heap[Node[K, struct{}]], *storage.Heap[Node[K, struct{}]]]{}
	if err := s.m.init(capacity, nodesForCapacity(capacity), cmp); err != nil {
		return nil, err
	}
	return s, nil
}

// NewInlineSet returns an empty inline set over the node array type A, which
// must be [N]Node[K, struct{}] with N >= 1.
func NewInlineSet[K any, A any](
	cmp ordered.CompareFn[K],
) (*Set[K, storage.Inline[Node[K, struct{}], A], *storage.Inline[Node[K, struct{}], A]], error) {
	n, err := storage.InlineLen[Node[K, struct{}], A]()
	if err != nil {
		return nil, err
	}
	s := &Set[K, storage.Inline[Node[K, struct{}], A], *storage.Inline[Node[K, struct{}], A]]{}
	if err := s.m.init(capacityForNodes(n), n, cmp); err != nil {
		return nil, err
	}
	return s, nil
}

// Insert adds key to the set. Inserting a present key is a no-op; inserting
// a new key fails with an error marked container.ErrCapacityExceeded when
// the set is at capacity.
func (s *Set[K, S, PS]) Insert(key K) error {
	return s.m.Insert(key, struct{}{})
}

// Contains reports whether key is present.
func (s *Set[K, S, PS]) Contains(key K) bool {
	return s.m.Contains(key)
}

// Remove deletes key from the set, reporting whether it was present.
func (s *Set[K, S, PS]) Remove(key K) bool {
	_, ok := s.m.Remove(key)
	return ok
}

// Len returns the current number of keys.
func (s *Set[K, S, PS]) Len() int {
	return s.m.Len()
}

// Cap returns the fixed key capacity.
func (s *Set[K, S, PS]) Cap() int {
	return s.m.Cap()
}

// Clear removes all keys. Capacity is unchanged.
func (s *Set[K, S, PS]) Clear() {
	s.m.Clear()
}

// Clone returns a copy of the set in fresh storage of matching capacity.
func (s *Set[K, S, PS]) Clone() (*Set[K, S, PS], error) {
	m, err := s.m.Clone()
	if err != nil {
		return nil, err
	}
	return &Set[K, S, PS]{m: *m}, nil
}

// Release drops all keys and, for the heap variant, the backing allocation.
func (s *Set[K, S, PS]) Release() {
	s.m.Release()
}

// Iter returns an iterator over the keys in ascending order.
func (s *Set[K, S, PS]) Iter() Iterator[K, struct{}, S, PS] {
	return s.m.Iter()
}

// SafeFormat implements redact.SafeFormatter.
func (s *Set[K, S, PS]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("btreeset[len=%d cap=%d]", uint32(s.m.Len()), uint32(s.m.Cap()))
}

func (s *Set[K, S, PS]) String() string {
	return redact.StringWithoutMarkers(s)
}
