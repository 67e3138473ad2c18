package screens

import (
	"context"
	"sync"

	"github.com/snaplet/snaplet/internal/client/flow"
)

// Emitter hands one-shot events from a loop to its consumer without
// blocking the loop. Events keep their order in an unbounded queue that a
// goroutine owned by the loop forwards to the sink; whatever is still queued
// when the loop closes is dropped.
type Emitter[T any] struct {
	mu    sync.Mutex
	queue []T
	wake  chan struct{}
}

func NewEmitter[T any](l *Loop, sink *flow.Events[T]) *Emitter[T] {
	e := &Emitter[T]{wake: make(chan struct{}, 1)}
	l.spawn(func(ctx context.Context) { e.forward(ctx, sink) })
	return e
}

// Emit never blocks.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	e.queue = append(e.queue, v)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Pending reports how many events are waiting for the consumer.
func (e *Emitter[T]) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Emitter[T]) forward(ctx context.Context, sink *flow.Events[T]) {
	for {
		select {
		case <-e.wake:
		case <-ctx.Done():
			return
		}
		for {
			v, ok := e.pop()
			if !ok {
				break
			}
			if err := sink.Send(ctx, v); err != nil {
				return
			}
		}
	}
}

func (e *Emitter[T]) pop() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	if len(e.queue) == 0 {
		return zero, false
	}
	v := e.queue[0]
	e.queue[0] = zero
	e.queue = e.queue[1:]
	return v, true
}
