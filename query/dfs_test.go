package query_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialq/query"
	"github.com/hupe1980/spatialq/testutil"
	"github.com/hupe1980/spatialq/tree"
)

func TestDFSFullVisitation(t *testing.T) {
	for _, strategy := range []query.IterationStrategy{query.IterationStrict, query.IterationRelaxed} {
		for _, n := range []int{1, 5, 6, 1000} {
			t.Run(fmt.Sprintf("%s/N=%d", strategy, n), func(t *testing.T) {
				tr := buildTree(t, n)

				const queries = 3
				h := testutil.NewRecordingHandler(queries)

				e := query.NewDFS[tree.Point, tree.Point](func(o *query.DFSOptions) {
					o.Strategy = strategy
					o.DebugChecks = true
				})
				require.NoError(t, e.Run(context.Background(), tr, h))

				for qid := 0; qid < queries; qid++ {
					requireFullVisitation(t, h, qid, n)
					requireNoVirtualNodes(t, h, tr, qid)
					assert.Equal(t, 1, h.Inits(qid))
					assert.Equal(t, 1, h.Exits(qid))
					// Nothing is pruned when everything is selected.
					assert.Equal(t, 0, h.Discards(qid))
				}

				assert.Equal(t, int64(queries), e.Stats().Queries)
			})
		}
	}
}

// queryBox returns a distinct axis-aligned box per query id.
func queryBox(qid int) (lo, hi tree.Point) {
	base := float32(qid) * 0.15
	return tree.Point{X: base, Y: base, Z: base},
		tree.Point{X: base + 0.3, Y: base + 0.3, Z: base + 0.3}
}

func newBoxHandler(queries int) *testutil.RecordingHandler {
	return testutil.NewRecordingHandler(queries, func(o *testutil.RecordingHandlerOptions) {
		o.SelectNode = func(qid int, nodeLo, nodeHi tree.Point) bool {
			lo, hi := queryBox(qid)
			return testutil.BoxOverlap(nodeLo, nodeHi, lo, hi)
		}
		o.SelectParticle = func(qid int, p tree.Point) bool {
			lo, hi := queryBox(qid)
			return testutil.BoxContains(lo, hi, p)
		}
	})
}

// bruteForceBox computes the expected result set directly over the sorted
// particle buffer.
func bruteForceBox(tr *tree.Static, qid int) *roaring.Bitmap {
	lo, hi := queryBox(qid)
	expected := roaring.New()
	for i, p := range tr.Particles() {
		if testutil.BoxContains(lo, hi, p) {
			expected.Add(uint32(i))
		}
	}
	return expected
}

func TestDFSRangeQuery(t *testing.T) {
	const (
		n       = 500
		queries = 4
	)

	tr := buildTree(t, n)

	run := func(strategy query.IterationStrategy) *testutil.RecordingHandler {
		h := newBoxHandler(queries)
		e := query.NewDFS[tree.Point, tree.Point](func(o *query.DFSOptions) {
			o.Strategy = strategy
			o.DebugChecks = true
		})
		require.NoError(t, e.Run(context.Background(), tr, h))
		return h
	}

	strict := run(query.IterationStrict)
	relaxed := run(query.IterationRelaxed)

	for qid := 0; qid < queries; qid++ {
		expected := bruteForceBox(tr, qid)

		assert.True(t, expected.Equals(strict.SelectedParticles(qid)),
			"strict qid=%d: got %v, want %v", qid, strict.SelectedParticles(qid).ToArray(), expected.ToArray())

		// Both strategies produce identical particle result sets; they
		// differ in which intermediate nodes they step through.
		assert.True(t, strict.SelectedParticles(qid).Equals(relaxed.SelectedParticles(qid)), "qid=%d", qid)

		// A small box over uniform points prunes most of the tree.
		assert.Positive(t, strict.Discards(qid))
	}
}

func TestEngineEquivalence(t *testing.T) {
	// BFS and DFS answer the same range query with the same particle set.
	const (
		n       = 500
		queries = 4
	)

	tr := buildTree(t, n)

	dfsHandler := newBoxHandler(queries)
	dfs := query.NewDFS[tree.Point, tree.Point](func(o *query.DFSOptions) {
		o.DebugChecks = true
	})
	require.NoError(t, dfs.Run(context.Background(), tr, dfsHandler))

	bfsHandler := newBoxHandler(queries)
	bfs := query.NewBFS[tree.Point, tree.Point](func(o *query.BFSOptions) {
		o.MaxSelectedNodes = 512
		o.DebugChecks = true
	})
	require.NoError(t, bfs.Run(context.Background(), tr, bfsHandler))

	require.Equal(t, int64(0), bfs.Stats().Truncations)

	for qid := 0; qid < queries; qid++ {
		assert.True(t, dfsHandler.SelectedParticles(qid).Equals(bfsHandler.SelectedParticles(qid)), "qid=%d", qid)
	}
}

func TestDFSInvalidStrategy(t *testing.T) {
	tr := buildTree(t, 10)

	e := query.NewDFS[tree.Point, tree.Point](func(o *query.DFSOptions) {
		o.Strategy = query.IterationStrategy(99)
	})

	err := e.Run(context.Background(), tr, testutil.NewRecordingHandler(1))
	var strategyErr *query.ErrInvalidIterationStrategy
	require.ErrorAs(t, err, &strategyErr)
	assert.Equal(t, query.IterationStrategy(99), strategyErr.Strategy)
}

func TestDFSContextCancellation(t *testing.T) {
	tr := buildTree(t, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := query.NewDFS[tree.Point, tree.Point]()
	err := e.Run(ctx, tr, testutil.NewRecordingHandler(16))

	assert.ErrorIs(t, err, query.ErrDispatch)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIterationStrategyString(t *testing.T) {
	assert.Equal(t, "Strict", query.IterationStrict.String())
	assert.Equal(t, "Relaxed", query.IterationRelaxed.String())
	assert.Equal(t, "Unknown", query.IterationStrategy(99).String())
}
