// Copyright 2025 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package randutil provides seeded random number generators for tests.
package randutil

import (
	"math/rand"
	"os"
	"strconv"
	"time"
)

// NewTestRand returns a pseudo-random number generator and the seed it was
// created from. The seed is taken from the BOUNDED_RANDOM_SEED environment
// variable when set, so a failing randomized test can be replayed.
func NewTestRand() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	if s, ok := os.LookupEnv("BOUNDED_RANDOM_SEED"); ok {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			seed = parsed
		}
	}
	return rand.New(rand.NewSource(seed)), seed
}
