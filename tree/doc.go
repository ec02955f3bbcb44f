// Package tree provides an in-memory particle tree provider for the query
// engines.
//
// Build sorts a copy of the input particles along a Morton curve and computes
// per-node bounding-box aggregates bottom-up, producing a Static tree that
// satisfies query.Tree. The particle buffer and the two corner arrays are
// read-only after construction; queries share them without synchronization.
package tree
