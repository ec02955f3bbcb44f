package spatialq

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordRun is called after each query batch. engine names the engine,
	// queries is the number of independent queries launched, truncations the
	// number of BFS capacity truncations observed during the run, duration
	// the total time taken; err is nil on success.
	RecordRun(engine string, queries int, truncations int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(string, int, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RunCount      atomic.Int64
	RunErrors     atomic.Int64
	RunTotalNanos atomic.Int64
	QueryCount    atomic.Int64
	Truncations   atomic.Int64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(engine string, queries int, truncations int64, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	b.QueryCount.Add(int64(queries))
	b.Truncations.Add(truncations)
	if err != nil {
		b.RunErrors.Add(1)
	}
}
