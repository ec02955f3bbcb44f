// Package testutil provides testing utilities for the query engines.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG for particle generation, box predicates,
// and a recording handler that accumulates per-query visitation sets.
package testutil
