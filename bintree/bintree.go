// Package bintree implements the implicit addressing scheme for near-complete
// binary particle trees.
//
// The tree is never materialized: a node is identified by its level (0 is the
// root) and its local id (left-to-right enumeration within the level), and all
// relationships are arithmetic. Particle counts that are not powers of two are
// handled by padding the tree to "effective" counts; nodes whose leaf range
// lies entirely beyond the true particle count are virtual and must be guarded
// with IsNodeUsed before any aggregate access.
//
// All functions are pure. Out-of-range levels or local ids are caller bugs,
// not runtime errors.
package bintree

import "math/bits"

// Key identifies a node in the implicit tree.
type Key struct {
	// Level is the depth of the node. The root is at level 0; particles live
	// at level EffectiveNumLevels-1.
	Level uint32

	// LocalID enumerates nodes within a level from 0, left to right.
	LocalID uint64
}

// Root returns the key of the root node.
func Root() Key { return Key{} }

// EffectiveNumLevels returns the number of levels of the padded tree holding
// numParticles leaves: ceil(log2(numParticles)) + 1. It returns 0 for an
// empty tree.
func EffectiveNumLevels(numParticles uint64) uint32 {
	if numParticles == 0 {
		return 0
	}
	return uint32(bits.Len64(numParticles-1)) + 1
}

// EffectiveNumParticles returns the padded leaf capacity of the tree holding
// numParticles leaves: the smallest power of two >= numParticles.
func EffectiveNumParticles(numParticles uint64) uint64 {
	if numParticles == 0 {
		return 0
	}
	return 1 << (EffectiveNumLevels(numParticles) - 1)
}

// NumNodes returns the number of node slots (used or virtual) at a level.
func NumNodes(level uint32) uint64 {
	return 1 << level
}

// EncodeGlobalID maps a key to its slot in the global index space of a tree
// with the given number of levels. Particles (the deepest level) occupy
// [0, 2^(levels-1)) and encode to their bare local id; internal nodes follow,
// deepest level first, so the root encodes to 2^levels - 2.
//
// Subtracting the effective particle count from an internal node's global id
// yields its index into the node aggregate arrays.
func EncodeGlobalID(k Key, levels uint32) uint64 {
	return (1 << levels) - (1 << (k.Level + 1)) + k.LocalID
}

// DecodeGlobalID is the inverse of EncodeGlobalID.
func DecodeGlobalID(globalID uint64, levels uint32) Key {
	r := (uint64(1) << levels) - globalID
	level := uint32(bits.Len64(r-1)) - 1
	return Key{
		Level:   level,
		LocalID: (1 << (level + 1)) - r,
	}
}

// ChildrenBegin returns the left child of k.
func ChildrenBegin(k Key) Key {
	return Key{Level: k.Level + 1, LocalID: k.LocalID * 2}
}

// ChildrenLast returns the right child of k.
func ChildrenLast(k Key) Key {
	return Key{Level: k.Level + 1, LocalID: k.LocalID*2 + 1}
}

// Parent returns the parent of k. The root has no parent; calling Parent on
// it is a caller bug.
func Parent(k Key) Key {
	return Key{Level: k.Level - 1, LocalID: k.LocalID / 2}
}

// IsRightChild reports whether k is the right child of its parent. The root
// is not a right child.
func IsRightChild(k Key) bool {
	return k.LocalID&1 == 1
}

// IsNodeUsed reports whether k addresses a real node of a padded tree with
// the given levels and true (unpadded) particle count: its leftmost
// descendant particle must exist. Virtual nodes carry no aggregates and must
// never be dereferenced.
func IsNodeUsed(k Key, levels uint32, numParticles uint64) bool {
	return k.LocalID<<(levels-1-k.Level) < numParticles
}

// LeavesPerNode returns the number of particle slots (real or virtual) that a
// node at the given level covers.
func LeavesPerNode(level, levels uint32) uint64 {
	return 1 << (levels - 1 - level)
}
