// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package storage

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// fill writes values through the Storage constraint, checking that both
// backends instantiate generic code written against it.
func fill[T any, S any, PS Storage[T, S]](st PS, values []T) {
	for i, v := range values {
		*st.Slot(uint32(i)) = v
	}
}

func TestBackendsSatisfyStorage(t *testing.T) {
	var h Heap[int]
	require.NoError(t, h.Init(3))
	fill[int, Heap[int]](&h, []int{1, 2, 3})
	require.Equal(t, []int{1, 2, 3}, h.Slice(0, 3))

	var s Inline[int, [3]int]
	require.NoError(t, s.Init(3))
	fill[int, Inline[int, [3]int]](&s, []int{4, 5, 6})
	require.Equal(t, []int{4, 5, 6}, s.Slice(0, 3))
}

func TestHeapInit(t *testing.T) {
	for _, capacity := range []uint32{0, 1, 2, 3, 5, 1 << 16} {
		var h Heap[uint64]
		require.NoError(t, h.Init(capacity))
		require.Equal(t, capacity, h.Capacity())
	}
}

func TestHeapZeroCapacityAllocatesNothing(t *testing.T) {
	var h Heap[uint64]
	require.NoError(t, h.Init(0))
	require.Nil(t, h.elements)
	require.Equal(t, uint32(0), h.Capacity())
}

func TestHeapInitOverflow(t *testing.T) {
	type wide struct {
		_ [1 << 32]byte
	}
	var h Heap[wide]
	err := h.Init(1 << 31)
	require.Error(t, err)
	require.True(t, errors.Is(err, container.ErrAllocation))
	require.Equal(t, uint32(0), h.Capacity())
}

func TestHeapInitAllocationCount(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		var h Heap[uint64]
		if err := h.Init(64); err != nil {
			t.Fatal(err)
		}
		h.Release()
	})
	require.Equal(t, 1.0, allocs)

	allocs = testing.AllocsPerRun(100, func() {
		var h Heap[uint64]
		if err := h.Init(0); err != nil {
			t.Fatal(err)
		}
	})
	require.Zero(t, allocs)
}

func TestHeapSlotAndSlice(t *testing.T) {
	var h Heap[int]
	require.NoError(t, h.Init(5))
	for i := uint32(0); i < 5; i++ {
		*h.Slot(i) = int(i) * 10
	}
	require.Equal(t, []int{0, 10, 20, 30, 40}, h.Slice(0, 5))
	require.Equal(t, []int{10, 20}, h.Slice(1, 3))
	require.Len(t, h.Slice(2, 2), 0)
	require.Same(t, h.Slot(3), &h.Slice(0, 5)[3])
}

func TestHeapContractViolationsPanic(t *testing.T) {
	var h Heap[int]
	require.NoError(t, h.Init(2))
	require.Panics(t, func() { h.Slot(2) })
	require.Panics(t, func() { h.Slice(0, 3) })
	require.Panics(t, func() { h.Slice(2, 1) })
}

func TestHeapRelease(t *testing.T) {
	var h Heap[int]
	require.NoError(t, h.Init(4))
	require.Equal(t, uint32(4), h.Capacity())
	h.Release()
	require.Equal(t, uint32(0), h.Capacity())
}

func TestInlineLen(t *testing.T) {
	n, err := InlineLen[int, [4]int]()
	require.NoError(t, err)
	require.Equal(t, uint32(4), n)

	n, err = InlineLen[byte, [1]byte]()
	require.NoError(t, err)
	require.Equal(t, uint32(1), n)

	// Zero capacity is the one case inline storage exists to rule out.
	_, err = InlineLen[int, [0]int]()
	require.Error(t, err)

	// Not an array at all.
	_, err = InlineLen[int, []int]()
	require.Error(t, err)
	_, err = InlineLen[int, int]()
	require.Error(t, err)

	// Array of the wrong element type.
	_, err = InlineLen[int, [4]int64]()
	require.Error(t, err)

	// Zero-sized element types cannot be addressed by slot arithmetic.
	_, err = InlineLen[struct{}, [4]struct{}]()
	require.Error(t, err)
}

func TestInlineInit(t *testing.T) {
	var s Inline[int, [4]int]
	require.NoError(t, s.Init(4))
	require.Error(t, s.Init(3))

	var bad Inline[int, [0]int]
	require.Error(t, bad.Init(0))
}

func TestInlineSlotAndSlice(t *testing.T) {
	var s Inline[uint16, [6]uint16]
	require.Equal(t, uint32(6), s.Capacity())
	for i := uint32(0); i < 6; i++ {
		*s.Slot(i) = uint16(i + 1)
	}
	require.Equal(t, [6]uint16{1, 2, 3, 4, 5, 6}, s.elements)
	require.Equal(t, []uint16{2, 3, 4}, s.Slice(1, 4))
	require.Same(t, s.Slot(0), &s.Slice(0, 6)[0])

	require.Panics(t, func() { s.Slot(6) })
	require.Panics(t, func() { s.Slice(0, 7) })
}

func TestInlineNoSeparateFootprint(t *testing.T) {
	// The storage value is nothing but the element array; this is the layout
	// contract that makes inline containers shareable across ABI boundaries.
	var s Inline[uint64, [8]uint64]
	require.Equal(t, unsafe.Sizeof([8]uint64{}), unsafe.Sizeof(s))
}
