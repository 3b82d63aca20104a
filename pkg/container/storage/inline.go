// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package storage

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// Inline is fixed-capacity storage embedded in the value itself. The array
// type A must be [N]T with N >= 1; the capacity is N, fixed at compile time,
// and no allocation ever occurs. Because the value is nothing but the element
// array, containers built over it have a stable, ABI-exposable layout and can
// be placed in shared memory.
//
// A zero Inline value over a correctly declared array type is ready to use.
// Declaring A as anything other than a non-empty array of T is a programming
// error, detected by Init (and therefore by the containers' NewInline
// constructors).
type Inline[T any, A any] struct {
	elements A
}

var _ = assertStorage[int, Inline[int, [4]int], *Inline[int, [4]int]]

// InlineLen returns the capacity fixed by the array type A, validating that
// A is [N]T with N >= 1. Go has no compile-time capacity parameters, so this
// is where a zero or mismatched inline capacity is rejected.
func InlineLen[T any, A any]() (uint32, error) {
	arrayType := reflect.TypeOf((*A)(nil)).Elem()
	elemType := reflect.TypeOf((*T)(nil)).Elem()
	if arrayType.Kind() != reflect.Array || arrayType.Elem() != elemType {
		return 0, errors.AssertionFailedf(
			"inline storage requires an array of %s, got %s", elemType, arrayType)
	}
	if arrayType.Len() == 0 {
		return 0, errors.AssertionFailedf(
			"inline storage capacity must be at least 1")
	}
	if elemType.Size() == 0 {
		return 0, errors.AssertionFailedf(
			"inline storage does not support zero-sized element type %s", elemType)
	}
	if arrayType.Len() > math.MaxUint32 {
		return 0, errors.AssertionFailedf(
			"inline storage capacity %d exceeds 2^32-1", arrayType.Len())
	}
	return uint32(arrayType.Len()), nil
}

// Init validates the array type and that capacity matches it. No allocation
// occurs.
func (s *Inline[T, A]) Init(capacity uint32) error {
	n, err := InlineLen[T, A]()
	if err != nil {
		return err
	}
	if capacity != n {
		return errors.AssertionFailedf(
			"requested capacity %d does not match inline capacity %d", capacity, n)
	}
	return nil
}

// Capacity returns the capacity fixed by the array type.
func (s *Inline[T, A]) Capacity() uint32 {
	elemSize := unsafe.Sizeof(*new(T))
	if elemSize == 0 {
		panic(errors.AssertionFailedf("zero-sized element type in inline storage"))
	}
	return uint32(unsafe.Sizeof(s.elements) / elemSize)
}

// Slot returns a pointer to the slot at index.
func (s *Inline[T, A]) Slot(index uint32) *T {
	capacity := s.Capacity()
	if index >= capacity {
		panic(errors.AssertionFailedf(
			"slot index %d out of range for capacity %d", index, capacity))
	}
	base := unsafe.Pointer(&s.elements)
	return (*T)(unsafe.Add(base, uintptr(index)*unsafe.Sizeof(*new(T))))
}

// Slice returns the slots in [start, end).
func (s *Inline[T, A]) Slice(start, end uint32) []T {
	capacity := s.Capacity()
	if start > end || end > capacity {
		panic(errors.AssertionFailedf(
			"slice [%d, %d) out of range for capacity %d", start, end, capacity))
	}
	all := unsafe.Slice((*T)(unsafe.Pointer(&s.elements)), capacity)
	return all[start:end]
}

// Release is a no-op: the storage lifetime is that of the enclosing value.
func (s *Inline[T, A]) Release() {}
