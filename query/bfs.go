package query

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/spatialq/bintree"
)

// BFSOptions contains configuration options for the BFS engine.
type BFSOptions struct {
	// MaxSelectedNodes is the working-set capacity C: the maximum number of
	// live node candidates a query keeps per level. Node selections beyond
	// C are silently dropped, never reported at runtime; size C against the
	// handler's selectivity. Truncations are counted in Stats.
	MaxSelectedNodes int

	// TaskWidth is the number of lanes queries are dispatched across.
	// If <= 0, runtime.GOMAXPROCS(0) lanes are used.
	TaskWidth int

	// Dispatcher runs the lanes. If nil, a per-run goroutine fan-out is
	// used; see WorkerPool for a pooled alternative.
	Dispatcher Dispatcher

	// DebugChecks enables addressing precondition assertions inside the
	// traversal loop. Violations panic; disabled they cost nothing.
	DebugChecks bool
}

// DefaultBFSOptions contains the default configuration options for the BFS
// engine.
var DefaultBFSOptions = BFSOptions{
	MaxSelectedNodes: 32,
}

// Compile-time check against a representative instantiation.
var _ Engine[struct{}, struct{}] = (*BFS[struct{}, struct{}])(nil)

// BFS is the breadth-first query engine. Each query keeps a bounded set of
// live node candidates, descends level by level and consults the handler once
// per level with all candidates, ending in one batched particle pass.
//
// The working set is a fixed arena sized at construction; it never grows.
type BFS[P, N any] struct {
	opts BFSOptions

	queries     atomic.Int64
	truncations atomic.Int64
}

// NewBFS creates a BFS engine.
func NewBFS[P, N any](optFns ...func(o *BFSOptions)) *BFS[P, N] {
	opts := DefaultBFSOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxSelectedNodes <= 0 {
		opts.MaxSelectedNodes = DefaultBFSOptions.MaxSelectedNodes
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = groupDispatcher{}
	}

	return &BFS[P, N]{opts: opts}
}

// Name implements Engine.
func (*BFS[P, N]) Name() string { return "BFS" }

// Stats implements Engine.
func (e *BFS[P, N]) Stats() EngineStats {
	return EngineStats{
		Queries:     e.queries.Load(),
		Truncations: e.truncations.Load(),
	}
}

// Run implements Engine. The handler must implement BFSHandler[P, N].
func (e *BFS[P, N]) Run(ctx context.Context, t Tree[P, N], h Handler) error {
	if t == nil {
		return ErrNilTree
	}
	if h == nil {
		return ErrNilHandler
	}

	bh, ok := h.(BFSHandler[P, N])
	if !ok {
		return &ErrHandlerContract{Engine: e.Name(), Want: "BFSHandler", Got: h}
	}

	var (
		particles = t.Particles()
		values0   = t.NodeValues0()
		values1   = t.NodeValues1()
		n         = t.NumParticles()
		effN      = t.EffectiveNumParticles()
		levels    = t.EffectiveNumLevels()
	)

	queries := bh.QueryCount()

	task := func(ctx context.Context, lane, width int) error {
		s := newBFSScratch[P, N](e.opts.MaxSelectedNodes)
		for qid := lane; qid < queries; qid += width {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.runQuery(qid, bh, particles, values0, values1, n, effN, levels, s)
			e.queries.Add(1)
		}
		return nil
	}

	return launch(ctx, e.opts.Dispatcher, e.opts.TaskWidth, h, task)
}

// bfsScratch is the task-local transient state of a BFS lane, reused across
// the queries the lane serves. All slices are allocated once and never grown.
type bfsScratch[P, N any] struct {
	// parents holds the local node ids of the live working set; next is the
	// compaction target. Both are capped at the capacity C.
	parents []uint64
	next    []uint64

	// Candidate buffers for the batched handler calls, capped at 2C.
	nodeIdx  []uint64
	values0  []N
	values1  []N
	selected []bool

	particleIdx []uint64
	particles   []P
}

func newBFSScratch[P, N any](capacity int) *bfsScratch[P, N] {
	return &bfsScratch[P, N]{
		parents:     make([]uint64, capacity),
		next:        make([]uint64, capacity),
		nodeIdx:     make([]uint64, 2*capacity),
		values0:     make([]N, 2*capacity),
		values1:     make([]N, 2*capacity),
		selected:    make([]bool, 2*capacity),
		particleIdx: make([]uint64, 2*capacity),
		particles:   make([]P, 2*capacity),
	}
}

// childLocalID maps a candidate slot to the local node id of the child it
// denotes: slot i is the left (i even) or right (i odd) child of parents[i/2].
func childLocalID(parents []uint64, i int) uint64 {
	return parents[i>>1]*2 + uint64(i&1)
}

func (e *BFS[P, N]) runQuery(qid int, h BFSHandler[P, N], particles []P, values0, values1 []N, n, effN uint64, levels uint32, s *bfsScratch[P, N]) {
	h.InitQuery(qid)

	// A single-particle tree has no internal nodes; process the particle
	// directly.
	if levels == 1 {
		s.particleIdx[0] = 0
		s.particles[0] = particles[0]
		s.selected[0] = false
		h.SelectParticles(qid, s.particleIdx[:1], s.particles[:1], s.selected[:1])
		h.ExitQuery(qid)
		return
	}

	capacity := len(s.parents)
	count := 1
	s.parents[0] = 0

	// The deepest level holds particles, not nodes, and is handled by the
	// final particle pass below.
	for level := uint32(1); level+1 < levels; level++ {
		if count == 0 {
			break
		}

		// Typically twice the live parents; if the level is underpopulated
		// the rightmost child may not exist. The existence test always uses
		// the true particle count.
		candidates := 2 * count
		last := bintree.ChildrenLast(bintree.Key{Level: level - 1, LocalID: s.parents[count-1]})
		if !bintree.IsNodeUsed(last, levels, n) {
			candidates--
		}

		for i := 0; i < candidates; i++ {
			lnid := childLocalID(s.parents, i)
			idx := bintree.EncodeGlobalID(bintree.Key{Level: level, LocalID: lnid}, levels)

			if e.opts.DebugChecks {
				assertf(lnid < bintree.NumNodes(level), "bfs: local node id %d out of range at level %d", lnid, level)
				assertf(idx >= effN, "bfs: node %d encoded into particle index space", idx)
				assertf(idx-effN < effN-1, "bfs: node index %d out of bounds", idx-effN)
			}

			idx -= effN
			s.nodeIdx[i] = idx
			s.values0[i] = values0[idx]
			s.values1[i] = values1[idx]
			s.selected[i] = false
		}

		h.SelectNodes(qid, level, s.nodeIdx[:candidates], s.values0[:candidates], s.values1[:candidates], s.selected[:candidates])

		// Compact selected candidates into the new working set. The ids go
		// through a second buffer because a selected child overwrites the
		// parent entry it is derived from. Selections beyond capacity are
		// dropped.
		next := 0
		for i := 0; i < candidates; i++ {
			if !s.selected[i] {
				continue
			}
			if next == capacity {
				e.truncations.Add(1)
				continue
			}
			s.next[next] = childLocalID(s.parents, i)
			next++
		}
		copy(s.parents[:next], s.next[:next])
		count = next
	}

	if count > 0 {
		// For particles the local node id is the particle index, so the
		// rightmost-existence correction compares against n directly.
		numCandidates := 2 * count
		if childLocalID(s.parents, numCandidates-1) >= n {
			numCandidates--
		}

		for i := 0; i < numCandidates; i++ {
			idx := childLocalID(s.parents, i)
			if e.opts.DebugChecks {
				assertf(idx < n, "bfs: particle index %d out of range", idx)
			}
			s.particleIdx[i] = idx
			s.particles[i] = particles[idx]
			s.selected[i] = false
		}

		h.SelectParticles(qid, s.particleIdx[:numCandidates], s.particles[:numCandidates], s.selected[:numCandidates])
	}

	h.ExitQuery(qid)
}
