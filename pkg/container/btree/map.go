// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package btree provides capacity-bounded ordered containers: Map and Set.
//
// The tree's nodes are drawn from a pool of fixed size mapped onto bounded
// storage; no node is ever individually allocated. A mutation that would
// exceed the element capacity fails with an error marked
// container.ErrCapacityExceeded instead of growing the pool. The pool is
// sized so that any sequence of inserts up to the element capacity is
// guaranteed to find a free node for every split.
//
// Keys are ordered by a caller-supplied comparator fixed at construction;
// the comparator must not change its relative ordering while the tree holds
// elements.
package btree

import (
	"math"

	"github.com/cockroachdb/bounded/pkg/container"
	"github.com/cockroachdb/bounded/pkg/container/ordered"
	"github.com/cockroachdb/bounded/pkg/container/storage"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Map is a bounded ordered map of K to V over the storage backend S. Use
// NewFixedMap or NewInlineMap rather than naming the type directly.
type Map[K any, V any, S any, PS storage.Storage[Node[K, V], S]] struct {
	len      uint32
	capacity uint32
	root     uint32
	free     uint32 // head of the node freelist, linked through children[0]
	cmp      ordered.CompareFn[K]
	store    S
}

// nodesForCapacity returns the pool size needed to guarantee that capacity
// elements fit under any insertion order. Every non-root node carries at
// least minEntries keys, so m nodes always accommodate
// minEntries*(m-1)+1 elements; a single node accommodates maxEntries.
func nodesForCapacity(capacity uint32) uint32 {
	switch {
	case capacity == 0:
		return 0
	case capacity <= maxEntries:
		return 1
	default:
		return (capacity-2)/minEntries + 2
	}
}

// capacityForNodes is the inverse guarantee, used by the inline variant to
// derive the element capacity from the declared node array. Pools of one or
// two nodes can never split (a root split consumes two nodes), so the tree
// stays a single node holding up to maxEntries elements.
func capacityForNodes(nodes uint32) uint32 {
	switch {
	case nodes == 0:
		return 0
	case nodes <= 2:
		return maxEntries
	default:
		c := uint64(minEntries)*uint64(nodes-1) + 1
		if c > math.MaxUint32 {
			return math.MaxUint32
		}
		return uint32(c)
	}
}

// NewFixedMap returns an empty heap-backed map holding up to capacity
// entries, ordering keys with the given comparator.
func NewFixedMap[K any, V any](
	capacity uint32, cmp ordered.CompareFn[K],
) (*Map[K, V, storage.Heap[Node[K, V]], *storage.Heap[Node[K, V]]], error) {
	m := &Map[K, V, storage.Heap[Node[K, V]], *storage.Heap[Node[K, V]]]{}
	if err := m.init(capacity, nodesForCapacity(capacity), cmp); err != nil {
		return nil, err
	}
	return m, nil
}

// NewInlineMap returns an empty inline map over the node array type A, which
// must be [N]Node[K, V] with N >= 1. The element capacity is derived from N;
// see capacityForNodes.
func NewInlineMap[K any, V any, A any](
	cmp ordered.CompareFn[K],
) (*Map[K, V, storage.Inline[Node[K, V], A], *storage.Inline[Node[K, V], A]], error) {
	n, err := storage.InlineLen[Node[K, V], A]()
	if err != nil {
		return nil, err
	}
	m := &Map[K, V, storage.Inline[Node[K, V], A], *storage.Inline[Node[K, V], A]]{}
	if err := m.init(capacityForNodes(n), n, cmp); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map[K, V, S, PS]) init(capacity, nodes uint32, cmp ordered.CompareFn[K]) error {
	if err := PS(&m.store).Init(nodes); err != nil {
		return err
	}
	m.capacity = capacity
	m.cmp = cmp
	m.root = nilNode
	m.resetPool()
	return nil
}

// resetPool links every node slot into the freelist.
func (m *Map[K, V, S, PS]) resetPool() {
	st := PS(&m.store)
	nodes := st.Capacity()
	m.free = nilNode
	for i := nodes; i > 0; i-- {
		n := st.Slot(i - 1)
		*n = Node[K, V]{}
		n.children[0] = m.free
		m.free = i - 1
	}
}

func (m *Map[K, V, S, PS]) node(idx uint32) *Node[K, V] {
	return PS(&m.store).Slot(idx)
}

func (m *Map[K, V, S, PS]) allocNode(leaf bool) uint32 {
	idx := m.free
	if idx == nilNode {
		// The pool is sized so that splits below capacity always find a
		// free node; running dry means the bookkeeping is corrupt.
		panic(errors.AssertionFailedf("node pool exhausted below capacity"))
	}
	n := m.node(idx)
	m.free = n.children[0]
	*n = Node[K, V]{leaf: leaf}
	if !leaf {
		for i := range n.children {
			n.children[i] = nilNode
		}
	}
	return idx
}

func (m *Map[K, V, S, PS]) freeNode(idx uint32) {
	n := m.node(idx)
	*n = Node[K, V]{}
	n.children[0] = m.free
	m.free = idx
}

// Len returns the current number of entries.
func (m *Map[K, V, S, PS]) Len() int {
	return int(m.len)
}

// Cap returns the fixed element capacity.
func (m *Map[K, V, S, PS]) Cap() int {
	return int(m.capacity)
}

// lookup returns a pointer to the value stored for key, or nil. It never
// mutates the tree.
func (m *Map[K, V, S, PS]) lookup(key K) *V {
	idx := m.root
	for idx != nilNode {
		n := m.node(idx)
		i, found := n.find(key, m.cmp)
		if found {
			return &n.values[i]
		}
		if n.leaf {
			return nil
		}
		idx = n.children[i]
	}
	return nil
}

// Get returns the value stored for key. ok is false when the key is absent.
func (m *Map[K, V, S, PS]) Get(key K) (value V, ok bool) {
	if v := m.lookup(key); v != nil {
		return *v, true
	}
	return value, false
}

// Contains reports whether key is present.
func (m *Map[K, V, S, PS]) Contains(key K) bool {
	return m.lookup(key) != nil
}

// Insert adds or updates the entry for key. Updating a present key always
// succeeds; inserting a new key fails with an error marked
// container.ErrCapacityExceeded when the map is at capacity, in which case
// the map is unchanged.
func (m *Map[K, V, S, PS]) Insert(key K, value V) error {
	if v := m.lookup(key); v != nil {
		*v = value
		return nil
	}
	if m.len >= m.capacity {
		return container.CapacityExceededf("btree full at capacity %d", m.capacity)
	}
	if m.root == nilNode {
		m.root = m.allocNode(true /* leaf */)
	}
	if m.node(m.root).count == maxEntries {
		// Grow the tree by one level before descending.
		newRoot := m.allocNode(false /* leaf */)
		m.node(newRoot).children[0] = m.root
		m.splitChild(newRoot, 0)
		m.root = newRoot
	}
	// Descend to a leaf, splitting any full child on the way so that the
	// final insertion cannot overflow a node. The key is known to be absent.
	idx := m.root
	for {
		n := m.node(idx)
		i, _ := n.find(key, m.cmp)
		if n.leaf {
			n.insertAt(i, key, value, nilNode)
			m.len++
			return nil
		}
		if m.node(n.children[i]).count == maxEntries {
			m.splitChild(idx, i)
			// The separator promoted by the split decides which half to
			// descend into; it cannot equal the key, which is absent.
			if m.cmp(key, n.keys[i]) > 0 {
				i++
			}
		}
		idx = n.children[i]
	}
}

// splitChild splits the full child at position i of the given parent,
// promoting the child's median entry into the parent.
func (m *Map[K, V, S, PS]) splitChild(parentIdx uint32, i int) {
	parent := m.node(parentIdx)
	childIdx := parent.children[i]
	child := m.node(childIdx)

	siblingIdx := m.allocNode(child.leaf)
	sibling := m.node(siblingIdx)

	const mid = maxEntries / 2
	medianKey := child.keys[mid]
	medianValue := child.values[mid]

	copy(sibling.keys[:], child.keys[mid+1:])
	copy(sibling.values[:], child.values[mid+1:])
	if !child.leaf {
		copy(sibling.children[:], child.children[mid+1:])
	}
	sibling.count = maxEntries - mid - 1

	var zeroK K
	var zeroV V
	for j := mid; j < maxEntries; j++ {
		child.keys[j] = zeroK
		child.values[j] = zeroV
		if !child.leaf {
			child.children[j+1] = nilNode
		}
	}
	child.count = mid

	parent.insertAt(i, medianKey, medianValue, siblingIdx)
}

type removeType int

const (
	removeItem removeType = iota // removes the given key
	removeMin                    // removes the smallest key in the subtree
	removeMax                    // removes the largest key in the subtree
)

// Remove deletes the entry for key, returning its value.
// ok is false when the key is absent; the tree's contents are then
// unchanged.
func (m *Map[K, V, S, PS]) Remove(key K) (value V, ok bool) {
	if m.root == nilNode {
		return value, false
	}
	_, outV, found := m.removeFrom(m.root, key, removeItem)
	if root := m.node(m.root); root.count == 0 {
		// The root lost its last entry; shrink the tree by one level.
		old := m.root
		if root.leaf {
			m.root = nilNode
		} else {
			m.root = root.children[0]
		}
		m.freeNode(old)
	}
	if !found {
		return value, false
	}
	m.len--
	return outV, true
}

// removeFrom removes an entry from the subtree rooted at idx, having first
// rebalanced any undersized child on the descent path so that the removal
// cannot leave a node below minEntries.
func (m *Map[K, V, S, PS]) removeFrom(idx uint32, key K, typ removeType) (K, V, bool) {
	n := m.node(idx)
	var i int
	var found bool
	switch typ {
	case removeMax:
		if n.leaf {
			k, v, _ := n.removeAt(int(n.count) - 1)
			return k, v, true
		}
		i = int(n.count)
	case removeMin:
		if n.leaf {
			k, v, _ := n.removeAt(0)
			return k, v, true
		}
		i = 0
	case removeItem:
		i, found = n.find(key, m.cmp)
		if n.leaf {
			if found {
				k, v, _ := n.removeAt(i)
				return k, v, true
			}
			var zeroK K
			var zeroV V
			return zeroK, zeroV, false
		}
	}
	if m.node(n.children[i]).count <= minEntries {
		return m.growChildAndRemove(idx, i, key, typ)
	}
	if found {
		// Replace the entry with its predecessor, pulled from the left
		// child which is known to have entries to spare.
		outK := n.keys[i]
		outV := n.values[i]
		var pk K
		var pv V
		pk, pv, _ = m.removeFrom(n.children[i], key, removeMax)
		n.keys[i] = pk
		n.values[i] = pv
		return outK, outV, true
	}
	return m.removeFrom(n.children[i], key, typ)
}

// growChildAndRemove grows child i of the node at idx to above minEntries by
// stealing from a sibling or merging, then redoes the removal on the node,
// whose entries may have shifted.
func (m *Map[K, V, S, PS]) growChildAndRemove(
	idx uint32, i int, key K, typ removeType,
) (K, V, bool) {
	n := m.node(idx)
	if i > 0 && m.node(n.children[i-1]).count > minEntries {
		m.stealFromLeftChild(idx, i)
	} else if i < int(n.count) && m.node(n.children[i+1]).count > minEntries {
		m.stealFromRightChild(idx, i)
	} else {
		if i >= int(n.count) {
			i--
		}
		m.mergeWithRightChild(idx, i)
	}
	return m.removeFrom(idx, key, typ)
}

// stealFromLeftChild rotates the largest entry of child i-1 through the
// separator into child i.
func (m *Map[K, V, S, PS]) stealFromLeftChild(idx uint32, i int) {
	n := m.node(idx)
	stealTo := m.node(n.children[i])
	stealFrom := m.node(n.children[i-1])
	k, v, c := stealFrom.popBack()
	stealTo.pushFront(n.keys[i-1], n.values[i-1], c)
	n.keys[i-1] = k
	n.values[i-1] = v
}

// stealFromRightChild rotates the smallest entry of child i+1 through the
// separator into child i.
func (m *Map[K, V, S, PS]) stealFromRightChild(idx uint32, i int) {
	n := m.node(idx)
	stealTo := m.node(n.children[i])
	stealFrom := m.node(n.children[i+1])
	k, v, c := stealFrom.popFront()
	stealTo.pushBack(n.keys[i], n.values[i], c)
	n.keys[i] = k
	n.values[i] = v
}

// mergeWithRightChild merges child i, the separator at i, and child i+1 into
// a single node, returning child i+1 to the pool.
func (m *Map[K, V, S, PS]) mergeWithRightChild(idx uint32, i int) {
	n := m.node(idx)
	k, v, rightIdx := n.removeAt(i)
	child := m.node(n.children[i])
	right := m.node(rightIdx)
	if child.leaf {
		child.pushBack(k, v, nilNode)
	} else {
		child.pushBack(k, v, right.children[0])
	}
	for j := 0; j < int(right.count); j++ {
		var rc uint32 = nilNode
		if !right.leaf {
			rc = right.children[j+1]
		}
		child.pushBack(right.keys[j], right.values[j], rc)
	}
	m.freeNode(rightIdx)
}

// Clear removes all entries and returns every node to the pool. Capacity is
// unchanged.
func (m *Map[K, V, S, PS]) Clear() {
	m.root = nilNode
	m.len = 0
	m.resetPool()
}

// Clone returns a copy of the map in fresh storage of matching capacity.
// Node indices are pool-relative, so the node array copies verbatim.
func (m *Map[K, V, S, PS]) Clone() (*Map[K, V, S, PS], error) {
	st := PS(&m.store)
	c := &Map[K, V, S, PS]{}
	if err := PS(&c.store).Init(st.Capacity()); err != nil {
		return nil, err
	}
	copy(PS(&c.store).Slice(0, st.Capacity()), st.Slice(0, st.Capacity()))
	c.len = m.len
	c.capacity = m.capacity
	c.root = m.root
	c.free = m.free
	c.cmp = m.cmp
	return c, nil
}

// Release drops all entries and, for the heap variant, the backing
// allocation. The map must not be used afterwards.
func (m *Map[K, V, S, PS]) Release() {
	m.root = nilNode
	m.len = 0
	m.free = nilNode
	PS(&m.store).Release()
}

// SafeFormat implements redact.SafeFormatter.
func (m *Map[K, V, S, PS]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("btree[len=%d cap=%d nodes=%d]", m.len, m.capacity, PS(&m.store).Capacity())
}

func (m *Map[K, V, S, PS]) String() string {
	return redact.StringWithoutMarkers(m)
}
