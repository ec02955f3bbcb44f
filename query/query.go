package query

import "context"

// Tree exposes the read-only buffers and geometry of a built particle tree.
//
// Particles are sorted so that a particle's index equals its local id at the
// deepest tree level. The two node value arrays carry one aggregate each
// (e.g. bounding-box min and max corners) and are indexed by an internal
// node's global id minus the effective particle count.
type Tree[P, N any] interface {
	// Particles returns the spatially sorted particle buffer.
	Particles() []P

	// NodeValues0 returns the first node aggregate array.
	NodeValues0() []N

	// NodeValues1 returns the second node aggregate array.
	NodeValues1() []N

	// NumParticles returns the true particle count.
	NumParticles() uint64

	// EffectiveNumParticles returns the padded leaf capacity.
	EffectiveNumParticles() uint64

	// EffectiveNumLevels returns the padded level count.
	EffectiveNumLevels() uint32
}

// Engine runs a batch of independent queries against a tree.
type Engine[P, N any] interface {
	// Name identifies the engine (e.g. for logs and metrics).
	Name() string

	// Run launches one logical query per handler query id and blocks until
	// all queries complete. The returned error is the single completion
	// status: nil on success, an ErrDispatch-wrapped error on dispatch
	// failure. The handler must satisfy the engine's handler contract.
	Run(ctx context.Context, t Tree[P, N], h Handler) error

	// Stats returns counters accumulated across runs.
	Stats() EngineStats
}

// EngineStats carries counters accumulated by an engine across runs.
type EngineStats struct {
	// Queries is the total number of completed queries.
	Queries int64

	// Truncations counts BFS node selections dropped because the working
	// set was already at capacity. Always zero for DFS.
	Truncations int64
}
