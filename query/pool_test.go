package query_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialq/query"
	"github.com/hupe1980/spatialq/testutil"
	"github.com/hupe1980/spatialq/tree"
)

func TestWorkerPoolDispatch(t *testing.T) {
	wp := query.NewWorkerPool(2)
	defer wp.Close()

	t.Run("RunsAllLanes", func(t *testing.T) {
		var lanes atomic.Int32

		err := wp.Dispatch(context.Background(), 8, func(ctx context.Context, lane, width int) error {
			assert.Equal(t, 8, width)
			lanes.Add(1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(8), lanes.Load())
	})

	t.Run("DrivesEngine", func(t *testing.T) {
		tr := buildTree(t, 200)
		h := testutil.NewRecordingHandler(5)

		e := query.NewDFS[tree.Point, tree.Point](func(o *query.DFSOptions) {
			o.Dispatcher = wp
			o.TaskWidth = 4
		})
		require.NoError(t, e.Run(context.Background(), tr, h))

		for qid := 0; qid < 5; qid++ {
			requireFullVisitation(t, h, qid, 200)
		}
	})
}

func TestWorkerPoolClose(t *testing.T) {
	wp := query.NewWorkerPool(1)
	wp.Close()
	wp.Close() // idempotent

	err := wp.Dispatch(context.Background(), 1, func(ctx context.Context, lane, width int) error {
		return nil
	})
	assert.ErrorIs(t, err, query.ErrPoolClosed)

	// An engine configured with a closed pool surfaces a dispatch failure.
	e := query.NewBFS[tree.Point, tree.Point](func(o *query.BFSOptions) {
		o.Dispatcher = wp
	})
	runErr := e.Run(context.Background(), buildTree(t, 10), testutil.NewRecordingHandler(1))
	assert.ErrorIs(t, runErr, query.ErrDispatch)
	assert.ErrorIs(t, runErr, query.ErrPoolClosed)
}
