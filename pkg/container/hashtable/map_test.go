// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package hashtable

import (
	"fmt"
	"sort"
	"testing"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/bounded/pkg/util/randutil"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapInsertGetRemove(t *testing.T) {
	m, err := NewFixedMap[string, int](8, HashString)
	require.NoError(t, err)

	require.NoError(t, m.Insert("a", 1))
	require.NoError(t, m.Insert("b", 2))
	require.Equal(t, 2, m.Len())

	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.True(t, m.Contains("b"))
	_, ok = m.Get("c")
	require.False(t, ok)

	// Update in place.
	require.NoError(t, m.Insert("a", 10))
	v, _ = m.Get("a")
	require.Equal(t, 10, v)
	require.Equal(t, 2, m.Len())

	require.True(t, m.Remove("a"))
	require.False(t, m.Remove("a"))
	require.False(t, m.Contains("a"))
	require.Equal(t, 1, m.Len())
}

func TestMapCapacityBoundary(t *testing.T) {
	const capacity = 4
	m, err := NewFixedMap[int, int](capacity, HashInt)
	require.NoError(t, err)
	for i := 0; i < capacity; i++ {
		require.NoError(t, m.Insert(i, i*100))
	}

	err = m.Insert(capacity, 0)
	require.True(t, errors.Is(err, container.ErrCapacityExceeded))
	require.Equal(t, capacity, m.Len())

	// Every existing key is intact, and updates still work at capacity.
	for i := 0; i < capacity; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		require.Equal(t, i*100, v)
	}
	require.NoError(t, m.Insert(1, -1))
	v, _ := m.Get(1)
	require.Equal(t, -1, v)
	require.Equal(t, capacity, m.Len())
}

func TestInlineSetScenario(t *testing.T) {
	s, err := NewInlineSet[string, [2]Cell[string, struct{}]](HashString)
	require.NoError(t, err)
	require.Equal(t, 2, s.Cap())

	require.NoError(t, s.Insert("a"))
	require.Equal(t, 1, s.Len())

	// Re-inserting a present key is a no-op.
	require.NoError(t, s.Insert("a"))
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Insert("b"))
	require.Equal(t, 2, s.Len())

	err = s.Insert("c")
	require.True(t, errors.Is(err, container.ErrCapacityExceeded))
	require.Equal(t, 2, s.Len())
	require.True(t, s.Contains("a"))
	require.True(t, s.Contains("b"))
	require.False(t, s.Contains("c"))
}

func TestMapTombstoneReuse(t *testing.T) {
	// An inline map runs at 100% load, so removal must tombstone (not
	// truncate) probe chains and insertion must reuse tombstones.
	m, err := NewInlineMap[int, string, [4]Cell[int, string]](HashInt)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Insert(i, fmt.Sprint(i)))
	}
	require.True(t, m.Remove(1))
	require.NoError(t, m.Insert(41, "41"))
	require.True(t, errors.Is(m.Insert(42, "42"), container.ErrCapacityExceeded))

	for _, k := range []int{0, 2, 3, 41} {
		v, ok := m.Get(k)
		require.True(t, ok, "key %d", k)
		require.Equal(t, fmt.Sprint(k), v)
	}
	require.False(t, m.Contains(1))
}

func TestMapIterSlotOrder(t *testing.T) {
	m, err := NewFixedMap[int, int](16, HashInt)
	require.NoError(t, err)
	want := map[int]int{}
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Insert(i*7, i))
		want[i*7] = i
	}

	got := map[int]int{}
	for it := m.Iter(); it.Next(); {
		k, v := it.Cur()
		got[k] = v
	}
	require.Equal(t, want, got)

	// Iteration is restartable and stable while the map is unchanged.
	var first, second []int
	for it := m.Iter(); it.Next(); {
		k, _ := it.Cur()
		first = append(first, k)
	}
	for it := m.Iter(); it.Next(); {
		k, _ := it.Cur()
		second = append(second, k)
	}
	require.Equal(t, first, second)
}

func TestMapRandomAgainstReference(t *testing.T) {
	rng, seed := randutil.NewTestRand()
	t.Logf("seed: %d", seed)

	const capacity = 32
	const keySpace = 64
	m, err := NewFixedMap[int, int](capacity, HashInt)
	require.NoError(t, err)
	ref := map[int]int{}

	for step := 0; step < 20000; step++ {
		key := rng.Intn(keySpace)
		switch rng.Intn(3) {
		case 0:
			value := rng.Int()
			_, present := ref[key]
			err := m.Insert(key, value)
			if present || len(ref) < capacity {
				require.NoError(t, err)
				ref[key] = value
			} else {
				require.True(t, errors.Is(err, container.ErrCapacityExceeded))
			}
		case 1:
			v, ok := m.Get(key)
			want, present := ref[key]
			assert.Equal(t, present, ok)
			if present {
				assert.Equal(t, want, v)
			}
		case 2:
			_, present := ref[key]
			assert.Equal(t, present, m.Remove(key))
			delete(ref, key)
		}
		require.Equal(t, len(ref), m.Len())
	}

	var keys []int
	for it := m.Iter(); it.Next(); {
		k, _ := it.Cur()
		keys = append(keys, k)
	}
	sort.Ints(keys)
	var wantKeys []int
	for k := range ref {
		wantKeys = append(wantKeys, k)
	}
	sort.Ints(wantKeys)
	require.Equal(t, wantKeys, keys)
}

func TestMapZeroCapacity(t *testing.T) {
	m, err := NewFixedMap[string, int](0, HashString)
	require.NoError(t, err)
	require.Equal(t, 0, m.Cap())
	require.True(t, errors.Is(m.Insert("a", 1), container.ErrCapacityExceeded))
	require.False(t, m.Contains("a"))
}

func TestMapClearAndClone(t *testing.T) {
	m, err := NewFixedMap[string, int](8, HashString)
	require.NoError(t, err)
	require.NoError(t, m.Insert("x", 1))
	require.NoError(t, m.Insert("y", 2))

	c, err := m.Clone()
	require.NoError(t, err)

	m.Clear()
	require.Equal(t, 0, m.Len())
	require.False(t, m.Contains("x"))
	require.NoError(t, m.Insert("z", 3))

	require.Equal(t, 2, c.Len())
	v, ok := c.Get("y")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.False(t, c.Contains("z"))
}

func TestSlotsForCapacity(t *testing.T) {
	require.Equal(t, uint32(0), slotsForCapacity(0))
	require.Equal(t, uint32(2), slotsForCapacity(1))
	require.Equal(t, uint32(8), slotsForCapacity(7))
	require.Equal(t, uint32(16), slotsForCapacity(8))
	require.Equal(t, uint32(16), slotsForCapacity(14))
	require.Equal(t, uint32(32), slotsForCapacity(15))
}

func TestSetBasics(t *testing.T) {
	s, err := NewFixedSet[string](4, HashString)
	require.NoError(t, err)
	require.NoError(t, s.Insert("a"))
	require.NoError(t, s.Insert("b"))
	require.True(t, s.Contains("a"))
	require.True(t, s.Remove("a"))
	require.False(t, s.Contains("a"))
	require.Equal(t, 1, s.Len())

	var keys []string
	for it := s.Iter(); it.Next(); {
		keys = append(keys, it.Cur())
	}
	require.Equal(t, []string{"b"}, keys)
}
