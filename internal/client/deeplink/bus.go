// Package deeplink routes events produced by incoming deep links to the
// parts of the client that react to them.
//
// The Bus replays the most recent event to every new subscriber and buffers
// one more. An emitter blocks only while the buffer is full and some
// subscriber has not yet taken the oldest event. With no subscribers
// emission never blocks and only the newest event is kept.
package deeplink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/logging"
)

var ErrClosed = errors.New("deep link bus closed")

const (
	replayDepth = 1
	extraBuffer = 1
	capacity    = replayDepth + extraBuffer
)

type Bus struct {
	log logging.Logger

	mu      sync.Mutex
	buf     []models.DeepLinkEvent
	head    uint64 // sequence number of buf[0]
	subs    map[*Subscription]struct{}
	changed chan struct{}
	closed  bool
}

func NewBus(log logging.Logger) *Bus {
	return &Bus{
		log:     log.With("module", "deeplink"),
		subs:    make(map[*Subscription]struct{}),
		changed: make(chan struct{}),
	}
}

// Emit appends ev, waiting for room when the buffer is full.
func (b *Bus) Emit(ctx context.Context, ev models.DeepLinkEvent) error {
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return ErrClosed
		}

		b.trimLocked()
		if len(b.buf) < capacity {
			b.buf = append(b.buf, ev)
			b.trimLocked()
			b.notifyLocked()
			b.mu.Unlock()
			return nil
		}

		wait := b.changed
		b.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Subscribe starts a subscription at the most recent event.
func (b *Bus) Subscribe() *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscription{bus: b, ctx: ctx, cancel: cancel}

	b.mu.Lock()
	defer b.mu.Unlock()

	s.next = b.head + uint64(len(b.buf))
	if len(b.buf) > 0 {
		s.next -= replayDepth
	}
	if b.closed {
		s.closed = true
		cancel()
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Close ends the bus. Waiting emitters and subscribers get ErrClosed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.cancel()
	}
	b.notifyLocked()
}

// trimLocked drops the oldest event once it is past the replay window and
// every subscriber has taken it.
func (b *Bus) trimLocked() {
	for len(b.buf) > replayDepth {
		for s := range b.subs {
			if s.next <= b.head {
				return
			}
		}
		b.buf[0] = nil
		b.buf = b.buf[1:]
		b.head++
	}
}

func (b *Bus) notifyLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}

type Subscription struct {
	bus    *Bus
	ctx    context.Context
	cancel context.CancelFunc
	next   uint64 // guarded by bus.mu
	closed bool   // guarded by bus.mu

	pumpOnce sync.Once
	ch       chan models.DeepLinkEvent
}

// Next returns the next event, waiting until one is emitted.
func (s *Subscription) Next(ctx context.Context) (models.DeepLinkEvent, error) {
	b := s.bus
	for {
		b.mu.Lock()
		if s.closed || b.closed {
			b.mu.Unlock()
			return nil, ErrClosed
		}

		if idx := s.next - b.head; idx < uint64(len(b.buf)) {
			ev := b.buf[idx]
			s.next++
			b.trimLocked()
			b.notifyLocked()
			b.mu.Unlock()
			return ev, nil
		}

		wait := b.changed
		b.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.ctx.Done():
			return nil, ErrClosed
		}
	}
}

// C delivers events on a channel that is closed when the subscription or
// the bus closes.
func (s *Subscription) C() <-chan models.DeepLinkEvent {
	s.pumpOnce.Do(func() {
		s.ch = make(chan models.DeepLinkEvent)
		go s.pump()
	})
	return s.ch
}

func (s *Subscription) pump() {
	defer close(s.ch)
	for {
		ev, err := s.Next(s.ctx)
		if err != nil {
			return
		}
		select {
		case s.ch <- ev:
		case <-s.ctx.Done():
			return
		}
	}
}

// Close unsubscribes. Emitters waiting on this subscriber are released.
func (s *Subscription) Close() {
	b := s.bus
	b.mu.Lock()
	if !s.closed {
		s.closed = true
		delete(b.subs, s)
		b.trimLocked()
		b.notifyLocked()
	}
	b.mu.Unlock()
	s.cancel()
}

// Listen calls fn for every event of sub until ctx ends or the subscription
// closes. A panicking fn is logged and does not stop the loop.
func Listen(ctx context.Context, sub *Subscription, fn func(ctx context.Context, ev models.DeepLinkEvent)) error {
	for {
		ev, err := sub.Next(ctx)
		if err != nil {
			return err
		}
		sub.deliver(ctx, ev, fn)
	}
}

func (s *Subscription) deliver(ctx context.Context, ev models.DeepLinkEvent, fn func(context.Context, models.DeepLinkEvent)) {
	defer func() {
		if r := recover(); r != nil {
			s.bus.log.Error(ctx, "deep link handler panicked", "event", fmt.Sprintf("%T", ev), "panic", fmt.Sprint(r))
		}
	}()
	fn(ctx, ev)
}
