// Package testutil provides testing utilities for hash stores.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random codes, computing exact
// threshold matches, and verifying the recall of bounded backends.
//
// # Random Code Generation
//
//	rng := testutil.NewRNG(seed)
//	population := rng.Codes64(10_000)
//	near := rng.Neighbours(population[0], 16, 4)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForce(population, query, threshold)
//
// # Recall Verification
//
//	recall := testutil.Recall(want, got.Matches)
package testutil
