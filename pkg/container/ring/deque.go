// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package ring provides a capacity-bounded double-ended queue maintained over
// a ring-addressed region of bounded storage.
//
// Unlike a growable ring buffer, a full Deque rejects pushes with an error
// marked container.ErrCapacityExceeded instead of doubling its storage.
package ring

import (
	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/redact"
)

// Deque is a bounded double-ended queue of T over the storage backend S.
// Use NewFixed or NewInline rather than naming the type directly.
//
// Physically the elements occupy a contiguous run of slots starting at the
// head cursor, wrapping around the end of storage. Because capacity never
// changes, the head cursor plus the length fully describe the layout; there
// is no tail cursor to keep in sync.
type Deque[T any, S any, PS storage.Storage[T, S]] struct {
	len   uint32
	head  uint32 // physical index of the logical front; meaningful iff len > 0
	store S
}

// NewFixed returns an empty heap-backed deque with the given capacity.
func NewFixed[T any](capacity uint32) (*Deque[T, storage.Heap[T], *storage.Heap[T]], error) {
	d := &Deque[T, storage.Heap[T], *storage.Heap[T]]{}
	if err := d.init(capacity); err != nil {
		return nil, err
	}
	return d, nil
}

// NewInline returns an empty inline deque whose capacity is the length of
// the array type A, which must be [N]T with N >= 1.
func NewInline[T any, A any]() (*Deque[T, storage.Inline[T, A], *storage.Inline[T, A]], error) {
	n, err := storage.InlineLen[T, A]()
	if err != nil {
		return nil, err
	}
	d := &Deque[T, storage.Inline[T, A], *storage.Inline[T, A]]{}
	if err := d.init(n); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Deque[T, S, PS]) init(capacity uint32) error {
	return PS(&d.store).Init(capacity)
}

// physical maps a logical position to a slot index. The deque must be
// non-empty or mid-push, so capacity is known to be non-zero. The sum is
// taken in uint64: head and pos can each approach 2^32, so uint32 arithmetic
// would wrap before the modulus.
func (d *Deque[T, S, PS]) physical(pos uint32) uint32 {
	capacity := PS(&d.store).Capacity()
	return uint32((uint64(d.head) + uint64(pos)) % uint64(capacity))
}

// Len returns the current number of elements.
func (d *Deque[T, S, PS]) Len() int {
	return int(d.len)
}

// Cap returns the fixed capacity.
func (d *Deque[T, S, PS]) Cap() int {
	return int(PS(&d.store).Capacity())
}

// Empty returns true iff the deque holds no elements.
func (d *Deque[T, S, PS]) Empty() bool {
	return d.len == 0
}

// Full returns true iff the deque has reached its capacity.
func (d *Deque[T, S, PS]) Full() bool {
	return d.len == PS(&d.store).Capacity()
}

// PushBack appends value at the logical back. It fails with an error marked
// container.ErrCapacityExceeded when the deque is full, in which case the
// deque is unchanged.
func (d *Deque[T, S, PS]) PushBack(value T) error {
	st := PS(&d.store)
	if d.len >= st.Capacity() {
		return container.CapacityExceededf("deque full at capacity %d", st.Capacity())
	}
	*st.Slot(d.physical(d.len)) = value
	d.len++
	return nil
}

// PushFront inserts value at the logical front. It fails with an error
// marked container.ErrCapacityExceeded when the deque is full, in which case
// the deque is unchanged.
func (d *Deque[T, S, PS]) PushFront(value T) error {
	st := PS(&d.store)
	capacity := st.Capacity()
	if d.len >= capacity {
		return container.CapacityExceededf("deque full at capacity %d", capacity)
	}
	d.head = uint32((uint64(d.head) + uint64(capacity) - 1) % uint64(capacity))
	*st.Slot(d.head) = value
	d.len++
	return nil
}

// PopFront removes and returns the logical front element. ok is false when
// the deque is empty.
func (d *Deque[T, S, PS]) PopFront() (value T, ok bool) {
	if d.len == 0 {
		return value, false
	}
	st := PS(&d.store)
	slot := st.Slot(d.head)
	value = *slot
	var zero T
	*slot = zero // release the reference
	d.head = (d.head + 1) % st.Capacity()
	d.len--
	return value, true
}

// PopBack removes and returns the logical back element. ok is false when the
// deque is empty.
func (d *Deque[T, S, PS]) PopBack() (value T, ok bool) {
	if d.len == 0 {
		return value, false
	}
	slot := PS(&d.store).Slot(d.physical(d.len - 1))
	value = *slot
	var zero T
	*slot = zero
	d.len--
	return value, true
}

// Front returns a pointer to the logical front element. ok is false when the
// deque is empty.
func (d *Deque[T, S, PS]) Front() (front *T, ok bool) {
	if d.len == 0 {
		return nil, false
	}
	return PS(&d.store).Slot(d.head), true
}

// Back returns a pointer to the logical back element. ok is false when the
// deque is empty.
func (d *Deque[T, S, PS]) Back() (back *T, ok bool) {
	if d.len == 0 {
		return nil, false
	}
	return PS(&d.store).Slot(d.physical(d.len - 1)), true
}

// At returns a pointer to the element at logical position i (0 is the
// front). It fails with an error marked container.ErrOutOfBounds when
// i >= Len().
func (d *Deque[T, S, PS]) At(i int) (*T, error) {
	if i < 0 || uint32(i) >= d.len {
		return nil, container.OutOfBoundsf("position %d out of range for length %d", i, d.len)
	}
	return PS(&d.store).Slot(d.physical(uint32(i))), nil
}

// AsSlices returns the deque contents as two slices in logical order, split
// at the physical wraparound point. The second slice is empty when the
// contents are physically contiguous. Both share the deque's storage.
func (d *Deque[T, S, PS]) AsSlices() (first, second []T) {
	st := PS(&d.store)
	if d.len == 0 {
		return nil, nil
	}
	capacity := st.Capacity()
	// head+len can exceed 2^32 at large capacities, so the wrap test and the
	// wrapped tail length are computed in uint64.
	end := uint64(d.head) + uint64(d.len)
	if end <= uint64(capacity) {
		return st.Slice(d.head, d.head+d.len), nil
	}
	return st.Slice(d.head, capacity), st.Slice(0, uint32(end-uint64(capacity)))
}

// Clear removes all elements. Capacity is unchanged.
func (d *Deque[T, S, PS]) Clear() {
	first, second := d.AsSlices()
	var zero T
	for i := range first {
		first[i] = zero
	}
	for i := range second {
		second[i] = zero
	}
	d.head = 0
	d.len = 0
}

// Clone returns a copy of the deque in fresh storage of matching capacity.
// The clone's contents start at the physical beginning of its storage.
func (d *Deque[T, S, PS]) Clone() (*Deque[T, S, PS], error) {
	c := &Deque[T, S, PS]{}
	if err := c.init(PS(&d.store).Capacity()); err != nil {
		return nil, err
	}
	first, second := d.AsSlices()
	target := PS(&c.store).Slice(0, d.len)
	copy(target[copy(target, first):], second)
	c.len = d.len
	return c, nil
}

// Release drops all elements and, for the heap variant, the backing
// allocation. The deque must not be used afterwards.
func (d *Deque[T, S, PS]) Release() {
	d.Clear()
	PS(&d.store).Release()
}

// Iter returns an iterator positioned before the front element, yielding
// elements in logical front-to-back order regardless of physical wraparound.
// The deque must not be mutated while iterating.
func (d *Deque[T, S, PS]) Iter() Iterator[T, S, PS] {
	return Iterator[T, S, PS]{d: d}
}

// SafeFormat implements redact.SafeFormatter.
func (d *Deque[T, S, PS]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("deque[len=%d cap=%d]", d.len, PS(&d.store).Capacity())
}

func (d *Deque[T, S, PS]) String() string {
	return redact.StringWithoutMarkers(d)
}

// Iterator yields a deque's elements in logical front-to-back order.
type Iterator[T any, S any, PS storage.Storage[T, S]] struct {
	d   *Deque[T, S, PS]
	pos uint32
}

// Next advances to the next element, returning false when the sequence is
// exhausted.
func (it *Iterator[T, S, PS]) Next() bool {
	if it.pos >= it.d.len {
		return false
	}
	it.pos++
	return true
}

// Cur returns the element at the iterator's position.
func (it *Iterator[T, S, PS]) Cur() T {
	return *PS(&it.d.store).Slot(it.d.physical(it.pos - 1))
}
