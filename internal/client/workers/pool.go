// Package workers runs I/O off the controller loops on a bounded number of
// goroutines.
package workers

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultSize is used when a pool is created with a non-positive size.
const DefaultSize = 4

type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Submit schedules fn without blocking the caller. fn runs once a slot is
// free; if ctx ends first fn is dropped.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		fn(ctx)
	}()
}

// Wait blocks until every submitted task has returned or been dropped.
func (p *Pool) Wait() {
	p.wg.Wait()
}
