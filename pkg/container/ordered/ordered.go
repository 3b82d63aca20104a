// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package ordered provides comparison functions for containers that keep
// their elements in a caller-supplied total order.
package ordered

import "golang.org/x/exp/constraints"

// CompareFn is a three-way comparison: negative if a sorts before b, zero if
// equal, positive if a sorts after b. It must define a total order that does
// not change while a container holds elements compared by it.
type CompareFn[K any] func(a, b K) int

// Compare is the natural ordering for ordered primitive types.
func Compare[K constraints.Ordered](a, b K) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
