package query

import (
	"context"
	"sync"
	"sync/atomic"
)

// Compile-time check that the pool can drive query dispatch.
var _ Dispatcher = (*WorkerPool)(nil)

// WorkerPool is a Dispatcher backed by a fixed pool of goroutines. The
// default dispatcher spawns one goroutine per lane per Run; callers issuing
// many small batches can share a pool instead to avoid the per-batch
// goroutine churn.
type WorkerPool struct {
	numWorkers int
	workCh     chan func()
	stopCh     chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
	submitMu   sync.RWMutex
}

// NewWorkerPool creates a worker pool with numWorkers goroutines. If
// numWorkers <= 0, runtime.GOMAXPROCS(0) workers are started.
//
// A batch dispatched with a width larger than the pool still completes: the
// lanes queue up and the pool works through them.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = defaultWidth()
	}

	wp := &WorkerPool{
		numWorkers: numWorkers,
		workCh:     make(chan func(), numWorkers*2),
		stopCh:     make(chan struct{}),
	}

	wp.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.stopCh:
			// Drain remaining work before exiting.
			for {
				select {
				case workFunc, ok := <-wp.workCh:
					if !ok {
						return
					}
					workFunc()
				default:
					return
				}
			}
		case workFunc, ok := <-wp.workCh:
			if !ok {
				return
			}
			workFunc()
		}
	}
}

// Dispatch implements Dispatcher. It enqueues one closure per lane and blocks
// until every lane has completed. The first lane error (or submission
// failure) becomes the completion status; remaining lanes observe a
// cancelled context between queries.
func (wp *WorkerPool) Dispatch(ctx context.Context, width int, task Task) error {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for lane := 0; lane < width; lane++ {
		lane := lane
		wg.Add(1)
		err := wp.submit(ctx, func() {
			defer wg.Done()
			if err := task(lctx, lane, width); err != nil {
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}

	wg.Wait()

	errMu.Lock()
	defer errMu.Unlock()
	return firstErr
}

func (wp *WorkerPool) submit(ctx context.Context, workFunc func()) error {
	wp.submitMu.RLock()
	defer wp.submitMu.RUnlock()

	if wp.closed.Load() {
		return ErrPoolClosed
	}

	select {
	case wp.workCh <- workFunc:
		return nil
	case <-wp.stopCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the worker pool gracefully. It is idempotent.
func (wp *WorkerPool) Close() {
	if !wp.closed.CompareAndSwap(false, true) {
		return
	}

	wp.submitMu.Lock()
	close(wp.stopCh)
	close(wp.workCh)
	wp.submitMu.Unlock()

	wp.wg.Wait()
}
