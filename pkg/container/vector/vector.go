// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package vector provides a contiguous, capacity-bounded sequence.
//
// A vector never reallocates: pushing into a full vector fails with an error
// marked container.ErrCapacityExceeded and changes nothing. The heap-backed
// variant (NewFixed) picks its capacity at construction; the inline variant
// (NewInline) stores its elements in the vector value itself, with capacity
// fixed by the element array type.
package vector

import (
	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/redact"
)

// Vector is a bounded contiguous sequence of T over the storage backend S.
// Use NewFixed or NewInline rather than naming the type directly.
//
// A Vector is a single-threaded value type: concurrent use must be
// serialized by the caller.
type Vector[T any, S any, PS storage.Storage[T, S]] struct {
	len   uint32
	store S
}

// NewFixed returns an empty heap-backed vector with the given capacity.
// It fails with an error marked container.ErrAllocation when storage cannot
// be allocated; no vector exists in that case.
func NewFixed[T any](capacity uint32) (*Vector[T, storage.Heap[T], *storage.Heap[T]], error) {
	v := &Vector[T, storage.Heap[T], *storage.Heap[T]]{}
	if err := v.init(capacity); err != nil {
		return nil, err
	}
	return v, nil
}

// NewInline returns an empty inline vector whose capacity is the length of
// the array type A, which must be [N]T with N >= 1.
func NewInline[T any, A any]() (*Vector[T, storage.Inline[T, A], *storage.Inline[T, A]], error) {
	n, err := storage.InlineLen[T, A]()
	if err != nil {
		return nil, err
	}
	v := &Vector[T, storage.Inline[T, A], *storage.Inline[T, A]]{}
	if err := v.init(n); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *Vector[T, S, PS]) init(capacity uint32) error {
	return PS(&v.store).Init(capacity)
}

// Len returns the current number of elements.
func (v *Vector[T, S, PS]) Len() int {
	return int(v.len)
}

// Cap returns the fixed capacity.
func (v *Vector[T, S, PS]) Cap() int {
	return int(PS(&v.store).Capacity())
}

// Empty returns true iff the vector holds no elements.
func (v *Vector[T, S, PS]) Empty() bool {
	return v.len == 0
}

// Full returns true iff the vector has reached its capacity.
func (v *Vector[T, S, PS]) Full() bool {
	return v.len == PS(&v.store).Capacity()
}

// Push appends value. It fails with an error marked
// container.ErrCapacityExceeded when the vector is full, in which case the
// vector is unchanged.
func (v *Vector[T, S, PS]) Push(value T) error {
	st := PS(&v.store)
	if v.len >= st.Capacity() {
		return container.CapacityExceededf("vector full at capacity %d", st.Capacity())
	}
	*st.Slot(v.len) = value
	v.len++
	return nil
}

// Pop removes and returns the last element. ok is false when the vector is
// empty.
func (v *Vector[T, S, PS]) Pop() (value T, ok bool) {
	if v.len == 0 {
		return value, false
	}
	slot := PS(&v.store).Slot(v.len - 1)
	value = *slot
	var zero T
	*slot = zero // release the reference
	v.len--
	return value, true
}

// At returns a pointer to the element at index i. It fails with an error
// marked container.ErrOutOfBounds when i >= Len().
func (v *Vector[T, S, PS]) At(i int) (*T, error) {
	if i < 0 || uint32(i) >= v.len {
		return nil, container.OutOfBoundsf("index %d out of range for length %d", i, v.len)
	}
	return PS(&v.store).Slot(uint32(i)), nil
}

// Clear removes all elements in index order. Capacity is unchanged.
func (v *Vector[T, S, PS]) Clear() {
	occupied := PS(&v.store).Slice(0, v.len)
	var zero T
	for i := range occupied {
		occupied[i] = zero
	}
	v.len = 0
}

// AsSlice returns the occupied elements as a slice sharing the vector's
// storage. The slice is invalidated by any mutation of the vector.
func (v *Vector[T, S, PS]) AsSlice() []T {
	return PS(&v.store).Slice(0, v.len)
}

// Clone returns a copy of the vector in fresh storage of matching capacity.
func (v *Vector[T, S, PS]) Clone() (*Vector[T, S, PS], error) {
	c := &Vector[T, S, PS]{}
	if err := c.init(PS(&v.store).Capacity()); err != nil {
		return nil, err
	}
	copy(PS(&c.store).Slice(0, v.len), PS(&v.store).Slice(0, v.len))
	c.len = v.len
	return c, nil
}

// Release drops all elements and, for the heap variant, the backing
// allocation. The vector must not be used afterwards.
func (v *Vector[T, S, PS]) Release() {
	v.Clear()
	PS(&v.store).Release()
}

// Iter returns an iterator positioned before the first element, yielding
// elements in index order. The vector must not be mutated while iterating;
// a fresh iterator restarts from the beginning.
func (v *Vector[T, S, PS]) Iter() Iterator[T, S, PS] {
	return Iterator[T, S, PS]{v: v}
}

// SafeFormat implements redact.SafeFormatter.
func (v *Vector[T, S, PS]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("vector[len=%d cap=%d]", v.len, PS(&v.store).Capacity())
}

func (v *Vector[T, S, PS]) String() string {
	return redact.StringWithoutMarkers(v)
}

// Iterator yields a vector's elements in index order.
type Iterator[T any, S any, PS storage.Storage[T, S]] struct {
	v   *Vector[T, S, PS]
	pos uint32
}

// Next advances to the next element, returning false when the sequence is
// exhausted.
func (it *Iterator[T, S, PS]) Next() bool {
	if it.pos >= it.v.len {
		return false
	}
	it.pos++
	return true
}

// Cur returns the element at the iterator's position.
func (it *Iterator[T, S, PS]) Cur() T {
	return *PS(&it.v.store).Slot(it.pos - 1)
}
