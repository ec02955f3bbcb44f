package query

import "github.com/hupe1980/spatialq/bintree"

// Handler is the part of the query contract shared by both engines.
//
// A handler is consulted from multiple lanes concurrently, but never for the
// same query id from two lanes at once. Any accumulation structures it owns
// and their synchronization discipline are its responsibility.
type Handler interface {
	// QueryCount returns the number of independent queries to launch.
	QueryCount() int

	// AppendDispatchArgs lets the handler append its own invocation
	// parameters to the outgoing dispatch descriptor. A non-nil error
	// aborts the run as a dispatch failure before any query starts.
	AppendDispatchArgs(d *DispatchDescriptor) error

	// InitQuery is called before query qid starts traversing.
	InitQuery(qid int)

	// ExitQuery is called after query qid finishes, even if the traversal
	// ended early with an empty working set.
	ExitQuery(qid int)
}

// BFSHandler is the handler contract of the BFS engine. Selection is batched:
// the engine consults the handler once per level with all live candidates.
type BFSHandler[P, N any] interface {
	Handler

	// SelectNodes marks which of the candidate nodes at the given level
	// warrant further exploration by setting selected[i] to true. All four
	// slices have equal length, bounded by twice the configured capacity;
	// nodeIdx carries the candidates' node array indices and v0/v1 their
	// aggregates. selected arrives cleared.
	SelectNodes(qid int, level uint32, nodeIdx []uint64, v0, v1 []N, selected []bool)

	// SelectParticles is the final batched pass over the candidate
	// particles of the surviving working set. particleIdx carries particle
	// indices, particles the particle data; selected arrives cleared.
	SelectParticles(qid int, particleIdx []uint64, particles []P, selected []bool)
}

// DFSHandler is the handler contract of the DFS engine. Selection is
// per-candidate: the engine consults the handler once per visited node or
// particle.
type DFSHandler[P, N any] interface {
	Handler

	// SelectNode reports whether the subtree below the node warrants
	// exploration. nodeIdx is the node's aggregate array index.
	SelectNode(qid int, node bintree.Key, nodeIdx uint64, v0, v1 N) bool

	// SelectParticle reports whether the particle is accepted.
	SelectParticle(qid int, particleIdx uint64, p P) bool
}

// NodeDiscarder is an optional extension of DFSHandler. If implemented, the
// DFS engine notifies it once for every rejected node, whose whole subtree is
// then counted as covered without being visited.
type NodeDiscarder[N any] interface {
	DiscardNode(qid int, nodeIdx uint64, v0, v1 N)
}
