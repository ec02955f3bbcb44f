package testutil

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/spatialq/bintree"
	"github.com/hupe1980/spatialq/query"
	"github.com/hupe1980/spatialq/tree"
)

// Compile-time checks that the recording handler satisfies both engine
// contracts over Point trees.
var (
	_ query.BFSHandler[tree.Point, tree.Point] = (*RecordingHandler)(nil)
	_ query.DFSHandler[tree.Point, tree.Point] = (*RecordingHandler)(nil)
	_ query.NodeDiscarder[tree.Point]          = (*RecordingHandler)(nil)
)

// NodePredicate decides whether a node with the given corner aggregates
// warrants exploration.
type NodePredicate func(qid int, lo, hi tree.Point) bool

// ParticlePredicate decides whether a particle is accepted.
type ParticlePredicate func(qid int, p tree.Point) bool

// RecordingHandlerOptions contains configuration options for the recording
// handler.
type RecordingHandlerOptions struct {
	// SelectNode decides node exploration; nil selects every node.
	SelectNode NodePredicate

	// SelectParticle decides particle acceptance; nil accepts every
	// particle.
	SelectParticle ParticlePredicate

	// DispatchErr, if non-nil, is returned from AppendDispatchArgs to
	// simulate a dispatch failure.
	DispatchErr error
}

// RecordingHandler is a query handler that records, per query, the offered
// and selected particle index sets and the visited node array indices in
// roaring bitmaps. It satisfies both the BFS and the DFS handler contracts;
// the default predicates select everything, turning a run into an exhaustive
// traversal.
//
// Per-query state is only ever touched by the lane serving that query, so no
// locking is needed.
type RecordingHandler struct {
	opts    RecordingHandlerOptions
	queries int

	offered  []*roaring.Bitmap // particle indices presented to the particle selector
	selected []*roaring.Bitmap // particle indices accepted
	nodes    []*roaring.Bitmap // node array indices presented to the node selector
	discards []int
	inits    []int
	exits    []int

	// Dispatch geometry recorded by AppendDispatchArgs.
	DescQueryCount int
	DescWidth      int
}

// NewRecordingHandler creates a recording handler for the given number of
// independent queries.
func NewRecordingHandler(queries int, optFns ...func(o *RecordingHandlerOptions)) *RecordingHandler {
	opts := RecordingHandlerOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	h := &RecordingHandler{
		opts:     opts,
		queries:  queries,
		offered:  make([]*roaring.Bitmap, queries),
		selected: make([]*roaring.Bitmap, queries),
		nodes:    make([]*roaring.Bitmap, queries),
		discards: make([]int, queries),
		inits:    make([]int, queries),
		exits:    make([]int, queries),
	}
	for i := 0; i < queries; i++ {
		h.offered[i] = roaring.New()
		h.selected[i] = roaring.New()
		h.nodes[i] = roaring.New()
	}

	return h
}

// QueryCount implements query.Handler.
func (h *RecordingHandler) QueryCount() int { return h.queries }

// AppendDispatchArgs implements query.Handler.
func (h *RecordingHandler) AppendDispatchArgs(d *query.DispatchDescriptor) error {
	if h.opts.DispatchErr != nil {
		return h.opts.DispatchErr
	}
	h.DescQueryCount = d.QueryCount
	h.DescWidth = d.Width
	d.AppendArg(h)
	return nil
}

// InitQuery implements query.Handler.
func (h *RecordingHandler) InitQuery(qid int) { h.inits[qid]++ }

// ExitQuery implements query.Handler.
func (h *RecordingHandler) ExitQuery(qid int) { h.exits[qid]++ }

func (h *RecordingHandler) selectNode(qid int, lo, hi tree.Point) bool {
	if h.opts.SelectNode == nil {
		return true
	}
	return h.opts.SelectNode(qid, lo, hi)
}

func (h *RecordingHandler) selectParticle(qid int, p tree.Point) bool {
	if h.opts.SelectParticle == nil {
		return true
	}
	return h.opts.SelectParticle(qid, p)
}

// SelectNodes implements query.BFSHandler.
func (h *RecordingHandler) SelectNodes(qid int, level uint32, nodeIdx []uint64, v0, v1 []tree.Point, selected []bool) {
	for i := range nodeIdx {
		h.nodes[qid].Add(uint32(nodeIdx[i]))
		selected[i] = h.selectNode(qid, v0[i], v1[i])
	}
}

// SelectParticles implements query.BFSHandler.
func (h *RecordingHandler) SelectParticles(qid int, particleIdx []uint64, particles []tree.Point, selected []bool) {
	for i := range particleIdx {
		h.offered[qid].Add(uint32(particleIdx[i]))
		if h.selectParticle(qid, particles[i]) {
			h.selected[qid].Add(uint32(particleIdx[i]))
			selected[i] = true
		}
	}
}

// SelectNode implements query.DFSHandler.
func (h *RecordingHandler) SelectNode(qid int, node bintree.Key, nodeIdx uint64, v0, v1 tree.Point) bool {
	h.nodes[qid].Add(uint32(nodeIdx))
	return h.selectNode(qid, v0, v1)
}

// SelectParticle implements query.DFSHandler.
func (h *RecordingHandler) SelectParticle(qid int, particleIdx uint64, p tree.Point) bool {
	h.offered[qid].Add(uint32(particleIdx))
	if h.selectParticle(qid, p) {
		h.selected[qid].Add(uint32(particleIdx))
		return true
	}
	return false
}

// DiscardNode implements query.NodeDiscarder.
func (h *RecordingHandler) DiscardNode(qid int, nodeIdx uint64, v0, v1 tree.Point) {
	h.discards[qid]++
}

// OfferedParticles returns the particle indices presented to query qid.
func (h *RecordingHandler) OfferedParticles(qid int) *roaring.Bitmap { return h.offered[qid] }

// SelectedParticles returns the particle indices accepted by query qid.
func (h *RecordingHandler) SelectedParticles(qid int) *roaring.Bitmap { return h.selected[qid] }

// VisitedNodes returns the node array indices presented to query qid.
func (h *RecordingHandler) VisitedNodes(qid int) *roaring.Bitmap { return h.nodes[qid] }

// Discards returns the number of discard notifications for query qid.
func (h *RecordingHandler) Discards(qid int) int { return h.discards[qid] }

// Inits returns how often query qid was initialized.
func (h *RecordingHandler) Inits(qid int) int { return h.inits[qid] }

// Exits returns how often query qid was exited.
func (h *RecordingHandler) Exits(qid int) int { return h.exits[qid] }
