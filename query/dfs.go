package query

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/spatialq/bintree"
)

// IterationStrategy selects how the DFS engine backtracks after rejecting a
// subtree.
type IterationStrategy int

const (
	// IterationStrict climbs to the nearest ancestor that is a left child
	// and steps to that ancestor's right sibling, producing strict
	// left-to-right visitation order.
	IterationStrict IterationStrategy = iota

	// IterationRelaxed steps to the immediate parent's next slot without
	// climbing past right-child ancestors. Chained through repeated
	// rejections it reaches the same nodes as IterationStrict with fewer
	// steps per rejection.
	IterationRelaxed
)

// String returns a string representation of the IterationStrategy.
func (s IterationStrategy) String() string {
	switch s {
	case IterationStrict:
		return "Strict"
	case IterationRelaxed:
		return "Relaxed"
	default:
		return "Unknown"
	}
}

// nextParentFunc is the abstract backtracking operation: the node whose right
// neighbor continues the traversal after the cursor's subtree is covered.
type nextParentFunc func(bintree.Key) bintree.Key

func strictNextParent(k bintree.Key) bintree.Key {
	p := bintree.Parent(k)
	for bintree.IsRightChild(p) {
		p = bintree.Parent(p)
	}
	return p
}

func relaxedNextParent(k bintree.Key) bintree.Key {
	return bintree.Parent(k)
}

func newNextParentFunc(s IterationStrategy) nextParentFunc {
	switch s {
	case IterationStrict:
		return strictNextParent
	case IterationRelaxed:
		return relaxedNextParent
	default:
		return nil
	}
}

// DFSOptions contains configuration options for the DFS engine.
type DFSOptions struct {
	// Strategy selects the backtracking strategy. Both strategies produce
	// identical selection sets for deterministic handlers; they differ only
	// in the number of backtracking steps.
	Strategy IterationStrategy

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

// DefaultDFSOptions contains the default configuration options for the DFS
// engine.
var DefaultDFSOptions = DFSOptions{
	Strategy: IterationStrict,
}

// Compile-time check against a representative instantiation.
var _ Engine[struct{}, struct{}] = (*DFS[struct{}, struct{}])(nil)

// DFS is the depth-first query engine. Each query holds a single traversal
// cursor, descending on acceptance and backtracking on rejection, and
// terminates once the covered particle slots account for every real
// particle: each particle is either visited individually or subsumed by
// exactly one pruning decision.
type DFS[P, N any] struct {
	opts       DFSOptions
	nextParent nextParentFunc

	queries atomic.Int64
}

// NewDFS creates a DFS engine.
func NewDFS[P, N any](optFns ...func(o *DFSOptions)) *DFS[P, N] {
	opts := DefaultDFSOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dispatcher == nil {
		opts.Dispatcher = groupDispatcher{}
	}

	return &DFS[P, N]{
		opts:       opts,
		nextParent: newNextParentFunc(opts.Strategy),
	}
}

// Name implements Engine.
func (e *DFS[P, N]) Name() string { return "DFS" }

// Stats implements Engine.
func (e *DFS[P, N]) Stats() EngineStats {
	return EngineStats{Queries: e.queries.Load()}
}

// Run implements Engine. The handler must implement DFSHandler[P, N]; if it
// also implements NodeDiscarder[N] it is notified of every pruned subtree.
func (e *DFS[P, N]) Run(ctx context.Context, t Tree[P, N], h Handler) error {
	if t == nil {
		return ErrNilTree
	}
	if h == nil {
		return ErrNilHandler
	}
	if e.nextParent == nil {
		return &ErrInvalidIterationStrategy{Strategy: e.opts.Strategy}
	}

	dh, ok := h.(DFSHandler[P, N])
	if !ok {
		return &ErrHandlerContract{Engine: e.Name(), Want: "DFSHandler", Got: h}
	}
	discarder, _ := h.(NodeDiscarder[N])

	var (
		particles = t.Particles()
		values0   = t.NodeValues0()
		values1   = t.NodeValues1()
		n         = t.NumParticles()
		effN      = t.EffectiveNumParticles()
		levels    = t.EffectiveNumLevels()
	)

	queries := dh.QueryCount()

	task := func(ctx context.Context, lane, width int) error {
		for qid := lane; qid < queries; qid += width {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.runQuery(qid, dh, discarder, particles, values0, values1, n, effN, levels)
			e.queries.Add(1)
		}
		return nil
	}

	return launch(ctx, e.opts.Dispatcher, e.opts.TaskWidth, h, task)
}

func (e *DFS[P, N]) runQuery(qid int, h DFSHandler[P, N], discarder NodeDiscarder[N], particles []P, values0, values1 []N, n, effN uint64, levels uint32) {
	h.InitQuery(qid)

	var (
		cursor  = bintree.Root()
		covered = uint64(0)
		deepest = levels - 1
	)

	for covered < n {
		if cursor.Level == deepest {
			// The deepest level holds particles; the cursor's local id is
			// the particle index.
			idx := cursor.LocalID
			if e.opts.DebugChecks {
				assertf(idx < n, "dfs: particle index %d out of range", idx)
			}

			if h.SelectParticle(qid, idx, particles[idx]) {
				cursor.LocalID++
			} else {
				cursor = e.backtrack(cursor)
			}
			covered++

			continue
		}

		idx := bintree.EncodeGlobalID(cursor, levels)
		if e.opts.DebugChecks {
			assertf(idx >= effN, "dfs: node %d encoded into particle index space", idx)
			assertf(idx-effN < effN-1, "dfs: node index %d out of bounds", idx-effN)
			assertf(bintree.IsNodeUsed(cursor, levels, n), "dfs: cursor reached virtual node (level %d, local id %d)", cursor.Level, cursor.LocalID)
		}
		idx -= effN

		v0, v1 := values0[idx], values1[idx]
		if h.SelectNode(qid, cursor, idx, v0, v1) {
			cursor = bintree.ChildrenBegin(cursor)
			continue
		}

		if discarder != nil {
			discarder.DiscardNode(qid, idx, v0, v1)
		}

		// The whole pruned subtree is covered without being visited. The
		// count includes virtual slots; the loop condition compares against
		// the true particle count, so overshooting past n is fine.
		covered += bintree.LeavesPerNode(cursor.Level, levels)
		cursor = e.backtrack(cursor)
	}

	h.ExitQuery(qid)
}

// backtrack moves the cursor to the next node in left-to-right depth-first
// order after the cursor's subtree: right children climb per the configured
// strategy first, then the cursor advances by one slot.
func (e *DFS[P, N]) backtrack(cursor bintree.Key) bintree.Key {
	if bintree.IsRightChild(cursor) {
		cursor = e.nextParent(cursor)
	}
	cursor.LocalID++
	return cursor
}
