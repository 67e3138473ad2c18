package flow

import "context"

// Events is a single-consumer queue for one-shot UI events. It buffers one
// event; Send blocks while the buffer is full.
type Events[T any] struct {
	ch chan T
}

func NewEvents[T any]() *Events[T] {
	return &Events[T]{ch: make(chan T, 1)}
}

func (e *Events[T]) Send(ctx context.Context, v T) error {
	select {
	case e.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// C is the receive side. Exactly one consumer should read it.
func (e *Events[T]) C() <-chan T {
	return e.ch
}
