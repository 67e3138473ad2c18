// Package screens holds the screen state controllers. Each controller owns
// one Loop: a goroutine that applies every state change in order. I/O runs
// on a shared worker pool and its results are posted back to the loop
// before they touch state.
package screens

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/logging"
)

var ErrClosed = errors.New("controller closed")

const inboxSize = 64

type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan func(ctx context.Context)
	done   chan struct{}
	pool   *workers.Pool
	log    logging.Logger

	bg        sync.WaitGroup
	closeOnce sync.Once
}

// NewLoop starts a loop bound to parent. Cancelling parent has the same
// effect as Close.
func NewLoop(parent context.Context, pool *workers.Pool, log logging.Logger) *Loop {
	ctx, cancel := context.WithCancel(parent)
	l := &Loop{
		ctx:    ctx,
		cancel: cancel,
		inbox:  make(chan func(ctx context.Context), inboxSize),
		done:   make(chan struct{}),
		pool:   pool,
		log:    log,
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.inbox:
			l.exec(fn)
		case <-l.ctx.Done():
			return
		}
	}
}

func (l *Loop) exec(fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error(l.ctx, "controller task panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn(l.ctx)
}

// Context is cancelled when the loop closes.
func (l *Loop) Context() context.Context {
	return l.ctx
}

// Post queues fn to run on the loop goroutine.
func (l *Loop) Post(fn func(ctx context.Context)) error {
	if l.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case l.inbox <- fn:
		return nil
	case <-l.ctx.Done():
		return ErrClosed
	}
}

// Flush waits until every task posted before it has run.
func (l *Loop) Flush(ctx context.Context) error {
	ran := make(chan struct{})
	if err := l.Post(func(context.Context) { close(ran) }); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the loop and waits for the running task and the loop's
// background goroutines to return. Results of work still in flight are
// discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.cancel()
		<-l.done
		l.bg.Wait()
	})
}

// spawn runs fn on a goroutine that lives until the loop closes.
func (l *Loop) spawn(fn func(ctx context.Context)) {
	l.bg.Add(1)
	go func() {
		defer l.bg.Done()
		fn(l.ctx)
	}()
}

// Go runs work on the pool and hands its result to then on the loop.
func Go[T any](l *Loop, work func(ctx context.Context) (T, error), then func(ctx context.Context, v T, err error)) {
	l.pool.Submit(l.ctx, func(ctx context.Context) {
		v, err := work(ctx)
		if ctx.Err() != nil {
			return
		}
		_ = l.Post(func(ctx context.Context) { then(ctx, v, err) })
	})
}
