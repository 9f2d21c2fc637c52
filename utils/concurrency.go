package utils

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs jobs on a fixed number of goroutines with optional rate limiting.
// The first job error cancels the pool context; jobs still queued are skipped.
type WorkerPool struct {
	rateLimitMs int
	group       *errgroup.Group
	ctx         context.Context
	mu          sync.Mutex
	lastRequest time.Time
}

// NewWorkerPool creates a WorkerPool bound to ctx with the given concurrency and rate limit.
// maxWorkers <= 0 means no limit.
func NewWorkerPool(ctx context.Context, maxWorkers, rateLimitMs int) *WorkerPool {
	g, gctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}
	return &WorkerPool{
		rateLimitMs: rateLimitMs,
		group:       g,
		ctx:         gctx,
		lastRequest: time.Now().Add(-time.Duration(rateLimitMs) * time.Millisecond),
	}
}

// Context returns the pool context. It is cancelled once any job fails.
func (wp *WorkerPool) Context() context.Context {
	return wp.ctx
}

// Submit enqueues a job for execution in the pool. It blocks while all workers are busy.
func (wp *WorkerPool) Submit(job func(ctx context.Context) error) {
	wp.group.Go(func() error {
		if err := wp.ctx.Err(); err != nil {
			return err
		}
		wp.enforceRateLimit()
		return job(wp.ctx)
	})
}

// Wait blocks until all submitted jobs have completed and returns the first error.
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}

func (wp *WorkerPool) enforceRateLimit() {
	if wp.rateLimitMs <= 0 {
		return
	}
	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastRequest)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastRequest = time.Now()
}
