package spatialq

import (
	"context"
	"time"

	"github.com/hupe1980/spatialq/query"
)

// Runner pairs a query engine with logging and metrics.
type Runner[P, N any] struct {
	engine  query.Engine[P, N]
	logger  *Logger
	metrics MetricsCollector
}

// NewRunner creates a Runner around the given engine.
func NewRunner[P, N any](engine query.Engine[P, N], optFns ...Option) (*Runner[P, N], error) {
	if engine == nil {
		return nil, ErrNilEngine
	}

	o := applyOptions(optFns)

	return &Runner[P, N]{
		engine:  engine,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

// Engine returns the wrapped engine.
func (r *Runner[P, N]) Engine() query.Engine[P, N] { return r.engine }

// Run launches the handler's query batch against the tree and blocks until
// completion, recording duration, query count and capacity truncations.
func (r *Runner[P, N]) Run(ctx context.Context, t query.Tree[P, N], h query.Handler) error {
	queries := 0
	if h != nil {
		queries = h.QueryCount()
	}

	before := r.engine.Stats().Truncations
	start := time.Now()

	err := r.engine.Run(ctx, t, h)

	duration := time.Since(start)
	truncations := r.engine.Stats().Truncations - before

	r.metrics.RecordRun(r.engine.Name(), queries, truncations, duration, err)
	r.logger.LogRun(ctx, r.engine.Name(), queries, duration, err)

	return err
}
