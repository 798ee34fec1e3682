package utils

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns perCPU workers for every available CPU, at least 1.
func DefaultWorkers(perCPU int) int {
	n := runtime.NumCPU() * perCPU
	if n < 1 {
		return 1
	}
	return n
}

// WorkerPool runs submitted jobs on a bounded number of goroutines. The
// first job to fail cancels the pool context so queued jobs never start and
// running ones can stop early.
type WorkerPool struct {
	group *errgroup.Group
	ctx   context.Context
}

// NewWorkerPool creates a WorkerPool bound to ctx running at most
// maxWorkers jobs at once.
func NewWorkerPool(ctx context.Context, maxWorkers int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	return &WorkerPool{group: g, ctx: gctx}
}

// Submit enqueues a job, blocking while all workers are busy. Jobs submitted
// after a failure are skipped.
func (wp *WorkerPool) Submit(job func(ctx context.Context) error) {
	wp.group.Go(func() error {
		if err := wp.ctx.Err(); err != nil {
			return err
		}
		return job(wp.ctx)
	})
}

// Wait blocks until all submitted jobs have completed and returns the first
// error any of them returned.
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}
