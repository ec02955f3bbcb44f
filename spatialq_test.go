package spatialq_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/spatialq"
	"github.com/hupe1980/spatialq/query"
	"github.com/hupe1980/spatialq/testutil"
	"github.com/hupe1980/spatialq/tree"
)

func TestNewRunner(t *testing.T) {
	t.Run("NilEngine", func(t *testing.T) {
		_, err := spatialq.NewRunner[tree.Point, tree.Point](nil)
		assert.ErrorIs(t, err, spatialq.ErrNilEngine)
	})

	t.Run("Defaults", func(t *testing.T) {
		engine := query.NewDFS[tree.Point, tree.Point]()
		runner, err := spatialq.NewRunner(engine)
		require.NoError(t, err)
		assert.Same(t, engine, runner.Engine())
	})
}

func TestRunnerRun(t *testing.T) {
	rng := testutil.NewRNG(7)
	tr, err := tree.Build(rng.UniformPoints(128))
	require.NoError(t, err)

	t.Run("RecordsMetrics", func(t *testing.T) {
		metrics := &spatialq.BasicMetricsCollector{}

		runner, err := spatialq.NewRunner(
			query.NewBFS[tree.Point, tree.Point](),
			spatialq.WithMetricsCollector(metrics),
		)
		require.NoError(t, err)

		h := testutil.NewRecordingHandler(4)
		require.NoError(t, runner.Run(context.Background(), tr, h))

		assert.Equal(t, int64(1), metrics.RunCount.Load())
		assert.Equal(t, int64(4), metrics.QueryCount.Load())
		assert.Equal(t, int64(0), metrics.RunErrors.Load())
	})

	t.Run("RecordsTruncations", func(t *testing.T) {
		metrics := &spatialq.BasicMetricsCollector{}

		runner, err := spatialq.NewRunner(
			query.NewBFS[tree.Point, tree.Point](func(o *query.BFSOptions) {
				o.MaxSelectedNodes = 1
			}),
			spatialq.WithMetricsCollector(metrics),
		)
		require.NoError(t, err)

		require.NoError(t, runner.Run(context.Background(), tr, testutil.NewRecordingHandler(1)))
		assert.Positive(t, metrics.Truncations.Load())
	})

	t.Run("RecordsErrors", func(t *testing.T) {
		metrics := &spatialq.BasicMetricsCollector{}

		runner, err := spatialq.NewRunner(
			query.NewDFS[tree.Point, tree.Point](),
			spatialq.WithMetricsCollector(metrics),
		)
		require.NoError(t, err)

		runErr := runner.Run(context.Background(), nil, testutil.NewRecordingHandler(1))
		assert.ErrorIs(t, runErr, query.ErrNilTree)
		assert.Equal(t, int64(1), metrics.RunErrors.Load())
	})
}
