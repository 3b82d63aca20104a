// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package container holds the error taxonomy shared by the bounded container
// packages (vector, strbuf, ring, hashtable, btree).
//
// All containers in this tree have a capacity that is fixed for their entire
// lifetime: chosen at construction for the heap-backed variants, or by the
// element array type for the inline variants. No operation ever reallocates
// or grows storage; a mutation that does not fit fails with an error marked
// ErrCapacityExceeded and leaves the container untouched.
package container
