// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package container

import "github.com/cockroachdb/errors"

// Sentinel errors shared by all bounded containers. Callers should test for
// them with errors.Is; the errors actually returned carry additional context
// and are marked with these sentinels.
var (
	// ErrCapacityExceeded is returned by any mutation that would push a
	// container past its fixed capacity. The failed mutation has no effect:
	// length, capacity and all stored elements are unchanged, and the
	// container remains usable.
	ErrCapacityExceeded = errors.New("container capacity exceeded")

	// ErrAllocation is returned when heap-backed storage cannot be created.
	// Construction is atomic: on failure no container exists, nothing needs
	// to be released.
	ErrAllocation = errors.New("storage allocation failed")

	// ErrOutOfBounds is returned by checked element reads when the index is
	// not smaller than the container's current length.
	ErrOutOfBounds = errors.New("index out of bounds")
)

// CapacityExceededf returns an error marked with ErrCapacityExceeded.
func CapacityExceededf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCapacityExceeded)
}

// AllocationFailedf returns an error marked with ErrAllocation.
func AllocationFailedf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrAllocation)
}

// OutOfBoundsf returns an error marked with ErrOutOfBounds.
func OutOfBoundsf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrOutOfBounds)
}
