// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package hashtable

// Magic FNV base constant as suitable for a FNV-64 hash.
const fnvBase = uint64(14695981039346656037)
const fnvPrime = 1099511628211

func fnvAdd(h uint64, c byte) uint64 {
	h *= fnvPrime
	h ^= uint64(c)
	return h
}

// HashBytes computes the FNV-64 hash of b.
func HashBytes(b []byte) uint64 {
	h := fnvBase
	for _, c := range b {
		h = fnvAdd(h, c)
	}
	return h
}

// HashString computes the FNV-64 hash of s.
func HashString(s string) uint64 {
	h := fnvBase
	for i := 0; i < len(s); i++ {
		h = fnvAdd(h, s[i])
	}
	return h
}

// HashUint64 computes the FNV-64 hash of the eight bytes of v.
func HashUint64(v uint64) uint64 {
	h := fnvBase
	for i := 0; i < 8; i++ {
		h = fnvAdd(h, byte(v>>(8*i)))
	}
	return h
}

// HashInt computes the FNV-64 hash of v.
func HashInt(v int) uint64 {
	return HashUint64(uint64(v))
}
