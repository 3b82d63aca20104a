// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package hashtable provides capacity-bounded associative containers: Map
// and Set.
//
// Collision resolution is open addressing with linear probing and tombstones
// over a fixed slot array; the table never rehashes into larger storage.
// Inserting a new key when the table is at its element capacity fails with an
// error marked container.ErrCapacityExceeded and changes nothing; updating a
// present key succeeds even at capacity.
//
// The heap-backed variants size the slot array to the next power of two at or
// above 8/7 of the requested capacity, keeping the load factor at or below
// 7/8. The inline variants use the declared slot array as-is, so they can run
// at 100% load; probe sequences then degrade toward a full-table scan, which
// is the price of a fully inline footprint.
//
// Iteration order is slot order, which is implementation-defined and unrelated
// to insertion order.
package hashtable

import (
	"math"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/redact"
)

type cellState uint8

const (
	cellEmpty cellState = iota
	cellOccupied
	cellDeleted
)

// Cell is a single table slot. It is exported only so that inline tables can
// declare their slot array type, e.g. [16]hashtable.Cell[string, int].
type Cell[K comparable, V any] struct {
	state cellState
	key   K
	value V
}

// Map is a bounded hash map of K to V over the storage backend S. Use
// NewFixedMap or NewInlineMap rather than naming the type directly.
type Map[K comparable, V any, S any, PS storage.Storage[Cell[K, V], S]] struct {
	len      uint32
	capacity uint32 // element capacity; at most the slot count
	hash     func(K) uint64
	store    S
}

// slotsForCapacity returns the slot count for a heap-backed table with the
// given element capacity: the next power of two at or above capacity*8/7,
// clamped to what a uint32 can address.
func slotsForCapacity(capacity uint32) uint32 {
	if capacity == 0 {
		return 0
	}
	need := (uint64(capacity)*8 + 6) / 7
	slots := uint64(1)
	for slots < need {
		slots <<= 1
	}
	if slots > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(slots)
}

// NewFixedMap returns an empty heap-backed map holding up to capacity
// entries, hashing keys with the given function.
func NewFixedMap[K comparable, V any](
	capacity uint32, hash func(K) uint64,
) (*Map[K, V, storage.Heap[Cell[K, V]], *storage.Heap[Cell[K, V]]], error) {
	m := &Map[K, V, storage.Heap[Cell[K, V]], *storage.Heap[Cell[K, V]]]{}
	if err := m.init(capacity, slotsForCapacity(capacity), hash); err != nil {
		return nil, err
	}
	return m, nil
}

// NewInlineMap returns an empty inline map over the slot array type A, which
// must be [N]Cell[K, V] with N >= 1. Both the slot count and the element
// capacity are N.
func NewInlineMap[K comparable, V any, A any](
	hash func(K) uint64,
) (*Map[K, V, storage.Inline[Cell[K, V], A], *storage.Inline[Cell[K, V], A]], error) {
	n, err := storage.InlineLen[Cell[K, V], A]()
	if err != nil {
		return nil, err
	}
	m := &Map[K, V, storage.Inline[Cell[K, V], A], *storage.Inline[Cell[K, V], A]]{}
	if err := m.init(n, n, hash); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map[K, V, S, PS]) init(capacity, slots uint32, hash func(K) uint64) error {
	if err := PS(&m.store).Init(slots); err != nil {
		return err
	}
	m.capacity = capacity
	m.hash = hash
	return nil
}

// Len returns the current number of entries.
func (m *Map[K, V, S, PS]) Len() int {
	return int(m.len)
}

// Cap returns the fixed element capacity.
func (m *Map[K, V, S, PS]) Cap() int {
	return int(m.capacity)
}

// lookup probes for key. It returns the cell holding the key, or nil with
// the index of the first reusable (deleted or empty) slot encountered.
func (m *Map[K, V, S, PS]) lookup(key K) (found *Cell[K, V], reuse uint32, haveReuse bool) {
	st := PS(&m.store)
	slots := st.Capacity()
	if slots == 0 {
		return nil, 0, false
	}
	idx := uint32(m.hash(key) % uint64(slots))
	for probed := uint32(0); probed < slots; probed++ {
		cell := st.Slot(idx)
		switch cell.state {
		case cellEmpty:
			if !haveReuse {
				reuse, haveReuse = idx, true
			}
			return nil, reuse, haveReuse
		case cellDeleted:
			if !haveReuse {
				reuse, haveReuse = idx, true
			}
		case cellOccupied:
			if cell.key == key {
				return cell, 0, false
			}
		}
		idx++
		if idx == slots {
			idx = 0
		}
	}
	return nil, reuse, haveReuse
}

// Insert adds or updates the entry for key. Updating a present key always
// succeeds; inserting a new key fails with an error marked
// container.ErrCapacityExceeded when the map is at capacity, in which case
// the map is unchanged.
func (m *Map[K, V, S, PS]) Insert(key K, value V) error {
	cell, reuse, haveReuse := m.lookup(key)
	if cell != nil {
		cell.value = value
		return nil
	}
	if m.len >= m.capacity || !haveReuse {
		return container.CapacityExceededf("hashtable full at capacity %d", m.capacity)
	}
	target := PS(&m.store).Slot(reuse)
	target.state = cellOccupied
	target.key = key
	target.value = value
	m.len++
	return nil
}

// Get returns the value stored for key. ok is false when the key is absent.
func (m *Map[K, V, S, PS]) Get(key K) (value V, ok bool) {
	cell, _, _ := m.lookup(key)
	if cell == nil {
		return value, false
	}
	return cell.value, true
}

// Contains reports whether key is present.
func (m *Map[K, V, S, PS]) Contains(key K) bool {
	cell, _, _ := m.lookup(key)
	return cell != nil
}

// Remove deletes the entry for key, returning false when the key is absent.
// The slot is tombstoned so that probe sequences passing through it stay
// intact.
func (m *Map[K, V, S, PS]) Remove(key K) bool {
	cell, _, _ := m.lookup(key)
	if cell == nil {
		return false
	}
	*cell = Cell[K, V]{state: cellDeleted}
	m.len--
	return true
}

// Clear removes all entries, including tombstones. Capacity is unchanged.
func (m *Map[K, V, S, PS]) Clear() {
	st := PS(&m.store)
	cells := st.Slice(0, st.Capacity())
	for i := range cells {
		cells[i] = Cell[K, V]{}
	}
	m.len = 0
}

// Clone returns a copy of the map in fresh storage of matching capacity.
func (m *Map[K, V, S, PS]) Clone() (*Map[K, V, S, PS], error) {
	st := PS(&m.store)
	c := &Map[K, V, S, PS]{}
	if err := c.init(m.capacity, st.Capacity(), m.hash); err != nil {
		return nil, err
	}
	copy(PS(&c.store).Slice(0, st.Capacity()), st.Slice(0, st.Capacity()))
	c.len = m.len
	return c, nil
}

// Release drops all entries and, for the heap variant, the backing
// allocation. The map must not be used afterwards.
func (m *Map[K, V, S, PS]) Release() {
	m.Clear()
	m.len = 0
	PS(&m.store).Release()
}

// Iter returns an iterator over the entries in slot order. Slot order is
// implementation-defined and is not insertion order. The map must not be
// mutated while iterating; a fresh iterator restarts from the beginning.
func (m *Map[K, V, S, PS]) Iter() MapIterator[K, V, S, PS] {
	return MapIterator[K, V, S, PS]{m: m}
}

// SafeFormat implements redact.SafeFormatter.
func (m *Map[K, V, S, PS]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("hashtable[len=%d cap=%d slots=%d]", m.len, m.capacity, PS(&m.store).Capacity())
}

func (m *Map[K, V, S, PS]) String() string {
	return redact.StringWithoutMarkers(m)
}

// MapIterator yields a map's entries in slot order.
type MapIterator[K comparable, V any, S any, PS storage.Storage[Cell[K, V], S]] struct {
	m   *Map[K, V, S, PS]
	pos uint32
	cur *Cell[K, V]
}

// Next advances to the next occupied slot, returning false when the sequence
// is exhausted.
func (it *MapIterator[K, V, S, PS]) Next() bool {
	st := PS(&it.m.store)
	slots := st.Capacity()
	for it.pos < slots {
		cell := st.Slot(it.pos)
		it.pos++
		if cell.state == cellOccupied {
			it.cur = cell
			return true
		}
	}
	return false
}

// Cur returns the entry at the iterator's position.
func (it *MapIterator[K, V, S, PS]) Cur() (K, V) {
	return it.cur.key, it.cur.value
}
