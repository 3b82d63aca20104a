// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package storage

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/errors"
)

// Heap is fixed-capacity, heap-allocated storage. Init performs exactly one
// allocation sized for the requested capacity; a zero capacity allocates
// nothing. Release drops that allocation.
type Heap[T any] struct {
	elements []T
}

var _ = assertStorage[int, Heap[int], *Heap[int]]

// Init allocates storage for capacity elements. It fails with an error
// marked container.ErrAllocation when the total byte size is not
// representable; in that case no allocation has occurred.
func (h *Heap[T]) Init(capacity uint32) error {
	if capacity == 0 {
		return nil
	}
	elemSize := uint64(unsafe.Sizeof(*new(T)))
	if elemSize > 0 && uint64(capacity) > uint64(math.MaxInt)/elemSize {
		return container.AllocationFailedf(
			"cannot allocate %d elements of size %d", capacity, elemSize)
	}
	h.elements = make([]T, capacity)
	return nil
}

// Capacity returns the allocated capacity.
func (h *Heap[T]) Capacity() uint32 {
	return uint32(len(h.elements))
}

// Slot returns a pointer to the slot at index.
func (h *Heap[T]) Slot(index uint32) *T {
	if index >= uint32(len(h.elements)) {
		panic(errors.AssertionFailedf(
			"slot index %d out of range for capacity %d", index, len(h.elements)))
	}
	return &h.elements[index]
}

// Slice returns the slots in [start, end).
func (h *Heap[T]) Slice(start, end uint32) []T {
	if start > end || end > uint32(len(h.elements)) {
		panic(errors.AssertionFailedf(
			"slice [%d, %d) out of range for capacity %d", start, end, len(h.elements)))
	}
	return h.elements[start:end]
}

// Release drops the single backing allocation.
func (h *Heap[T]) Release() {
	h.elements = nil
}
