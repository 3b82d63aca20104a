// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package btree

import "github.com/cockroachdb/bounded/pkg/container/storage"

// iterStackDepth bounds the iterator's descent stack. With minEntries
// children per internal node a tree this deep holds far more entries than a
// uint32 length can count.
const iterStackDepth = 16

type iterFrame struct {
	node uint32
	pos  int16
}

// Iterator positions over the entries of a Map in ascending key order. It is
// invalidated by any mutation of the map.
//
// Usage:
//
//	for it := m.Iter(); it.Valid(); it.Next() {
//	    k, v := it.Cur()
//	    ...
//	}
type Iterator[K any, V any, S any, PS storage.Storage[Node[K, V], S]] struct {
	m     *Map[K, V, S, PS]
	stack [iterStackDepth]iterFrame
	depth int
	valid bool
}

// Iter returns an iterator positioned at the smallest key.
func (m *Map[K, V, S, PS]) Iter() Iterator[K, V, S, PS] {
	it := Iterator[K, V, S, PS]{m: m}
	it.First()
	return it
}

func (it *Iterator[K, V, S, PS]) push(node uint32) {
	it.stack[it.depth] = iterFrame{node: node, pos: 0}
	it.depth++
}

func (it *Iterator[K, V, S, PS]) top() *iterFrame {
	return &it.stack[it.depth-1]
}

// descendLeft pushes the leftmost path of the subtree rooted at node.
func (it *Iterator[K, V, S, PS]) descendLeft(node uint32) {
	for node != nilNode {
		it.push(node)
		n := it.m.node(node)
		if n.leaf {
			break
		}
		node = n.children[0]
	}
}

// First positions the iterator at the smallest key.
func (it *Iterator[K, V, S, PS]) First() {
	it.depth = 0
	it.valid = false
	if it.m.root == nilNode {
		return
	}
	it.descendLeft(it.m.root)
	it.valid = it.m.node(it.top().node).count > 0
}

// Seek positions the iterator at the smallest key >= key. The iterator is
// invalid when no such key exists.
func (it *Iterator[K, V, S, PS]) Seek(key K) {
	it.depth = 0
	it.valid = false
	node := it.m.root
	for node != nilNode {
		n := it.m.node(node)
		i, found := n.find(key, it.m.cmp)
		it.push(node)
		it.top().pos = int16(i)
		if found {
			it.valid = true
			return
		}
		if n.leaf {
			break
		}
		node = n.children[i]
	}
	// The search bottomed out in a leaf at the insertion position, which may
	// be one past the leaf's last entry. Pop exhausted frames; a surviving
	// parent frame points at the successor separator.
	for it.depth > 0 {
		f := it.top()
		if f.pos < it.m.node(f.node).count {
			it.valid = true
			return
		}
		it.depth--
	}
}

// Valid reports whether the iterator points at an entry.
func (it *Iterator[K, V, S, PS]) Valid() bool {
	return it.valid
}

// Cur returns the entry at the current position. The iterator must be valid.
func (it *Iterator[K, V, S, PS]) Cur() (K, V) {
	f := it.top()
	n := it.m.node(f.node)
	return n.keys[f.pos], n.values[f.pos]
}

// Next advances to the next entry in key order.
func (it *Iterator[K, V, S, PS]) Next() {
	if !it.valid {
		return
	}
	f := it.top()
	n := it.m.node(f.node)
	f.pos++
	if !n.leaf {
		// The subtree between the consumed entry and the next one comes
		// first.
		it.descendLeft(n.children[f.pos])
		f = it.top()
		n = it.m.node(f.node)
	}
	for f.pos >= n.count {
		it.depth--
		if it.depth == 0 {
			it.valid = false
			return
		}
		f = it.top()
		n = it.m.node(f.node)
	}
}
