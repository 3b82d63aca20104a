// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package storage provides the capacity-bounded element storage that the
// bounded container packages are written against. There are exactly two
// backends: Heap, whose capacity is chosen at construction and which performs
// a single allocation, and Inline, whose capacity is fixed by an array type
// and whose elements live inside the storage value itself.
//
// Container logic is parameterized over a backend using the
// pointer-to-type-parameter idiom:
//
//	type Vector[T any, S any, PS storage.Storage[T, S]] struct {
//		len   uint32
//		store S
//	}
//
// so that the storage value is embedded in the container (no indirection for
// the inline backend) while methods are still invoked through a pointer.
package storage

// Storage constrains a storage backend by a pointer to its concrete type S.
//
// Index arguments are preconditions, not a checked API surface: containers
// maintain length bookkeeping that guarantees validity, and backends treat a
// violation as an assertion failure.
type Storage[T any, S any] interface {
	*S

	// Init prepares the storage to hold capacity elements. For the heap
	// backend this performs the single allocation; for the inline backend it
	// validates that capacity matches the array type. Init must be called at
	// most once, before any other method.
	Init(capacity uint32) error

	// Capacity returns the number of element slots.
	Capacity() uint32

	// Slot returns a pointer to the slot at index. index < Capacity() must
	// hold.
	Slot(index uint32) *T

	// Slice returns the slots in [start, end) as a slice.
	// start <= end <= Capacity() must hold.
	Slice(start, end uint32) []T

	// Release drops the backing allocation, if any. The storage must not be
	// used afterwards.
	Release()
}

// assertStorage statically checks that PS satisfies Storage. Storage embeds
// the constraint element *S, so it cannot appear in an ordinary interface
// assertion; instantiating this function checks the same thing.
func assertStorage[T any, S any, PS Storage[T, S]]() {}
