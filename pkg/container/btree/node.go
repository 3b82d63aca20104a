// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package btree

import (
	"math"

	"github.com/cockroachdb/bounded/pkg/container/ordered"
)

const (
	degree     = 8
	maxEntries = 2*degree - 1 // 15
	minEntries = degree - 1   // 7
)

// nilNode marks an absent node reference.
const nilNode = uint32(math.MaxUint32)

// Node is a single node of a bounded B-tree, sized for the pool it is drawn
// from. Nodes reference each other by pool index rather than by pointer, so
// the whole pool maps onto one bounded storage region. The type is exported
// only so that inline trees can declare their node array type, e.g.
// [8]btree.Node[int, string].
//
// It must at all times maintain the invariant that either
//   - leaf is true and the children are unused, or
//   - children[0..count] are valid node references.
type Node[K any, V any] struct {
	count    int16
	leaf     bool
	keys     [maxEntries]K
	values   [maxEntries]V
	children [maxEntries + 1]uint32
}

// find returns the index where key should be inserted into this node.
// found is true if the key already exists in the node at the given index.
func (n *Node[K, V]) find(key K, cmp ordered.CompareFn[K]) (index int, found bool) {
	// Binary search logic copied from sort.Search, inlined for the
	// comparator.
	i, j := 0, int(n.count)
	for i < j {
		h := int(uint(i+j) >> 1) // avoid overflow when computing h
		v := cmp(key, n.keys[h])
		if v == 0 {
			return h, true
		} else if v > 0 {
			i = h + 1
		} else {
			j = h
		}
	}
	return i, false
}

// insertAt inserts a key/value at index, pushing subsequent entries forward,
// and makes child the entry's right child.
func (n *Node[K, V]) insertAt(index int, key K, value V, child uint32) {
	if index < int(n.count) {
		copy(n.keys[index+1:n.count+1], n.keys[index:n.count])
		copy(n.values[index+1:n.count+1], n.values[index:n.count])
		if !n.leaf {
			copy(n.children[index+2:n.count+2], n.children[index+1:n.count+1])
		}
	}
	n.count++
	n.keys[index] = key
	n.values[index] = value
	if !n.leaf {
		n.children[index+1] = child
	}
}

// removeAt removes the key/value at index, pulling subsequent entries back,
// and returns the removed entry along with its right child.
func (n *Node[K, V]) removeAt(index int) (K, V, uint32) {
	child := nilNode
	if !n.leaf {
		child = n.children[index+1]
		copy(n.children[index+1:n.count], n.children[index+2:n.count+1])
		n.children[n.count] = nilNode
	}
	n.count--
	outK := n.keys[index]
	outV := n.values[index]
	copy(n.keys[index:n.count], n.keys[index+1:n.count+1])
	copy(n.values[index:n.count], n.values[index+1:n.count+1])
	var zeroK K
	var zeroV V
	n.keys[n.count] = zeroK
	n.values[n.count] = zeroV
	return outK, outV, child
}

// pushBack appends an entry, with child as its right child.
func (n *Node[K, V]) pushBack(key K, value V, child uint32) {
	n.keys[n.count] = key
	n.values[n.count] = value
	if !n.leaf {
		n.children[n.count+1] = child
	}
	n.count++
}

// pushFront prepends an entry, with child as its left child.
func (n *Node[K, V]) pushFront(key K, value V, child uint32) {
	if !n.leaf {
		copy(n.children[1:n.count+2], n.children[:n.count+1])
		n.children[0] = child
	}
	copy(n.keys[1:n.count+1], n.keys[:n.count])
	copy(n.values[1:n.count+1], n.values[:n.count])
	n.keys[0] = key
	n.values[0] = value
	n.count++
}

// popBack removes and returns the last entry and its right child.
func (n *Node[K, V]) popBack() (K, V, uint32) {
	n.count--
	outK := n.keys[n.count]
	outV := n.values[n.count]
	var zeroK K
	var zeroV V
	n.keys[n.count] = zeroK
	n.values[n.count] = zeroV
	if n.leaf {
		return outK, outV, nilNode
	}
	child := n.children[n.count+1]
	n.children[n.count+1] = nilNode
	return outK, outV, child
}

// popFront removes and returns the first entry and its left child.
func (n *Node[K, V]) popFront() (K, V, uint32) {
	n.count--
	child := nilNode
	if !n.leaf {
		child = n.children[0]
		copy(n.children[:n.count+1], n.children[1:n.count+2])
		n.children[n.count+1] = nilNode
	}
	outK := n.keys[0]
	outV := n.values[0]
	copy(n.keys[:n.count], n.keys[1:n.count+1])
	copy(n.values[:n.count], n.values[1:n.count+1])
	var zeroK K
	var zeroV V
	n.keys[n.count] = zeroK
	n.values[n.count] = zeroV
	return outK, outV, child
}
