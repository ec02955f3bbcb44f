package query

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTree is returned when Run is called without a tree.
	ErrNilTree = errors.New("tree must not be nil")

	// ErrNilHandler is returned when Run is called without a handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrDispatch wraps every failure to dispatch a query batch. The
	// engines never retry; the caller decides whether to resubmit the
	// whole batch.
	ErrDispatch = errors.New("query dispatch failed")

	// ErrPoolClosed is returned when work is submitted to a closed
	// WorkerPool.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// ErrHandlerContract indicates that a handler does not implement the
// interface an engine requires.
type ErrHandlerContract struct {
	Engine string
	Want   string
	Got    any
}

func (e *ErrHandlerContract) Error() string {
	return fmt.Sprintf("%s engine requires a %s, got %T", e.Engine, e.Want, e.Got)
}

// ErrInvalidIterationStrategy indicates an unknown DFS iteration strategy.
type ErrInvalidIterationStrategy struct {
	Strategy IterationStrategy
}

func (e *ErrInvalidIterationStrategy) Error() string {
	return fmt.Sprintf("invalid iteration strategy: %d", e.Strategy)
}
