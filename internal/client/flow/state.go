// Package flow holds the two observable primitives controllers publish
// through: State, a latest-value holder, and Events, a one-shot queue.
package flow

import (
	"context"
	"sync"
)

// State holds the latest value of T. Watchers are conflated: a slow watcher
// skips intermediate values and only sees the newest one.
type State[T any] struct {
	mu      sync.Mutex
	value   T
	changed chan struct{}
}

func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial, changed: make(chan struct{})}
}

func (s *State[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *State[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// Update applies fn to the current value atomically and returns the result.
func (s *State[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	s.value = fn(s.value)
	v := s.value
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
	return v
}

func (s *State[T]) snapshot() (T, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.changed
}

// Watch delivers the current value and then every newer one until ctx is
// done. The channel is closed when the watch ends.
func (s *State[T]) Watch(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		v, changed := s.snapshot()
		for {
			select {
			case out <- v:
				select {
				case <-changed:
					v, changed = s.snapshot()
				case <-ctx.Done():
					return
				}
			case <-changed:
				v, changed = s.snapshot()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
