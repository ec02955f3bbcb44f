package query

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DispatchDescriptor describes one outgoing query batch. The engine fills in
// the geometry; the handler may append its own invocation parameters via
// AppendDispatchArgs before any query starts.
type DispatchDescriptor struct {
	// QueryCount is the number of independent queries in the batch.
	QueryCount int

	// Width is the number of lanes the batch is dispatched across.
	Width int

	args []any
}

// AppendArg appends an invocation parameter to the descriptor.
func (d *DispatchDescriptor) AppendArg(v any) {
	d.args = append(d.args, v)
}

// Args returns the parameters appended so far.
func (d *DispatchDescriptor) Args() []any {
	return d.args
}

// Task is one lane of a dispatched batch. The lane id identifies the stride
// start and width the stride; implementations must only consult ctx between
// queries, never mid-traversal.
type Task func(ctx context.Context, lane, width int) error

// Dispatcher runs the lanes of a query batch. Dispatch blocks until every
// lane has completed; its error return is the completion signal.
type Dispatcher interface {
	Dispatch(ctx context.Context, width int, task Task) error
}

func defaultWidth() int {
	return runtime.GOMAXPROCS(0)
}

// groupDispatcher is the default Dispatcher: a one-shot errgroup fan-out.
type groupDispatcher struct{}

func (groupDispatcher) Dispatch(ctx context.Context, width int, task Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for lane := 0; lane < width; lane++ {
		lane := lane
		g.Go(func() error {
			return task(gctx, lane, width)
		})
	}
	return g.Wait()
}

// launch validates the batch, builds the dispatch descriptor, lets the
// handler append its parameters and dispatches the lanes.
func launch(ctx context.Context, d Dispatcher, taskWidth int, h Handler, task Task) error {
	queries := h.QueryCount()
	if queries <= 0 {
		return nil
	}

	width := taskWidth
	if width <= 0 {
		width = defaultWidth()
	}
	if width > queries {
		width = queries
	}

	desc := &DispatchDescriptor{QueryCount: queries, Width: width}
	if err := h.AppendDispatchArgs(desc); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	if err := d.Dispatch(ctx, width, task); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatch, err)
	}

	return nil
}
