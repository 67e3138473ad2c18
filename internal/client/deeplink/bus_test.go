package deeplink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/logging"
)

func fr(name string) models.DeepLinkEvent { return models.FriendRequest{UserName: name} }

func next(t *testing.T, s *Subscription) models.DeepLinkEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := s.Next(ctx)
	require.NoError(t, err)
	return ev
}

func requireNoEvent(t *testing.T, s *Subscription) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBus_EmitWithoutSubscribersNeverBlocksAndKeepsLatest(t *testing.T) {
	b := NewBus(logging.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, n := range []string{"a", "b", "c", "d"} {
		require.NoError(t, b.Emit(ctx, fr(n)))
	}

	s := b.Subscribe()
	defer s.Close()
	assert.Equal(t, fr("d"), next(t, s))
	requireNoEvent(t, s)
}

func TestBus_NewSubscriberOnEmptyBusWaits(t *testing.T) {
	b := NewBus(logging.Nop())
	s := b.Subscribe()
	defer s.Close()

	requireNoEvent(t, s)
	require.NoError(t, b.Emit(context.Background(), fr("alice")))
	assert.Equal(t, fr("alice"), next(t, s))
}

func TestBus_DeliversInOrderToEverySubscriber(t *testing.T) {
	b := NewBus(logging.Nop())
	s1 := b.Subscribe()
	s2 := b.Subscribe()
	defer s1.Close()
	defer s2.Close()

	names := []string{"a", "b", "c", "d", "e"}
	var got1, got2 []models.DeepLinkEvent
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range names {
			got1 = append(got1, next(t, s1))
		}
	}()
	go func() {
		defer wg.Done()
		for range names {
			got2 = append(got2, next(t, s2))
		}
	}()

	for _, n := range names {
		require.NoError(t, b.Emit(context.Background(), fr(n)))
	}
	wg.Wait()

	want := []models.DeepLinkEvent{fr("a"), fr("b"), fr("c"), fr("d"), fr("e")}
	assert.Equal(t, want, got1)
	assert.Equal(t, want, got2)
}

func TestBus_EmitSuspendsWhenSlowSubscriberFillsBuffer(t *testing.T) {
	b := NewBus(logging.Nop())
	s := b.Subscribe()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, b.Emit(ctx, fr("a")))
	require.NoError(t, b.Emit(ctx, fr("b")))

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, b.Emit(short, fr("c")), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- b.Emit(ctx, fr("c")) }()

	assert.Equal(t, fr("a"), next(t, s))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("emitter not released after consumption")
	}
	assert.Equal(t, fr("b"), next(t, s))
	assert.Equal(t, fr("c"), next(t, s))
}

func TestBus_ClosingSlowSubscriberReleasesEmitter(t *testing.T) {
	b := NewBus(logging.Nop())
	s := b.Subscribe()
	ctx := context.Background()

	require.NoError(t, b.Emit(ctx, fr("a")))
	require.NoError(t, b.Emit(ctx, fr("b")))

	done := make(chan error, 1)
	go func() { done <- b.Emit(ctx, fr("c")) }()
	time.Sleep(10 * time.Millisecond)
	s.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("emitter not released by unsubscribe")
	}

	_, err := s.Next(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestBus_LateSubscriberGetsReplayOnly(t *testing.T) {
	b := NewBus(logging.Nop())
	slow := b.Subscribe()
	defer slow.Close()
	ctx := context.Background()

	require.NoError(t, b.Emit(ctx, fr("a")))
	require.NoError(t, b.Emit(ctx, fr("b")))

	late := b.Subscribe()
	defer late.Close()
	assert.Equal(t, fr("b"), next(t, late))
	requireNoEvent(t, late)

	assert.Equal(t, fr("a"), next(t, slow))
	assert.Equal(t, fr("b"), next(t, slow))
}

func TestBus_CloseReleasesEveryone(t *testing.T) {
	b := NewBus(logging.Nop())
	s := b.Subscribe()
	ctx := context.Background()
	require.NoError(t, b.Emit(ctx, fr("a")))
	require.NoError(t, b.Emit(ctx, fr("b")))

	emitDone := make(chan error, 1)
	go func() { emitDone <- b.Emit(ctx, fr("c")) }()

	other := b.Subscribe()
	assert.Equal(t, fr("b"), next(t, other))
	nextDone := make(chan error, 1)
	go func() {
		_, err := other.Next(ctx)
		nextDone <- err
	}()

	time.Sleep(10 * time.Millisecond)
	b.Close()
	b.Close()

	require.ErrorIs(t, <-emitDone, ErrClosed)
	require.ErrorIs(t, <-nextDone, ErrClosed)
	require.ErrorIs(t, b.Emit(ctx, fr("d")), ErrClosed)

	_, err := s.Next(ctx)
	require.ErrorIs(t, err, ErrClosed)
	_, err = b.Subscribe().Next(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestSubscription_C(t *testing.T) {
	b := NewBus(logging.Nop())
	s := b.Subscribe()
	ctx := context.Background()

	require.NoError(t, b.Emit(ctx, fr("a")))
	select {
	case ev := <-s.C():
		assert.Equal(t, fr("a"), ev)
	case <-time.After(2 * time.Second):
		t.Fatal("no event on C")
	}

	s.Close()
	select {
	case _, ok := <-s.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("C not closed")
	}
}

func TestListen_IsolatesPanickingHandler(t *testing.T) {
	b := NewBus(logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bad := b.Subscribe()
	good := b.Subscribe()

	var mu sync.Mutex
	var seen []string
	goodDone := make(chan struct{})
	go func() {
		_ = Listen(ctx, good, func(ctx context.Context, ev models.DeepLinkEvent) {
			mu.Lock()
			seen = append(seen, ev.(models.FriendRequest).UserName)
			n := len(seen)
			mu.Unlock()
			if n == 2 {
				close(goodDone)
			}
		})
	}()

	var badCalls int
	badDone := make(chan struct{})
	go func() {
		_ = Listen(ctx, bad, func(ctx context.Context, ev models.DeepLinkEvent) {
			badCalls++
			if badCalls == 2 {
				close(badDone)
			}
			panic("handler bug")
		})
	}()

	require.NoError(t, b.Emit(ctx, fr("a")))
	require.NoError(t, b.Emit(ctx, fr("b")))

	for _, ch := range []chan struct{}{goodDone, badDone} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("listener stalled")
		}
	}
	mu.Lock()
	assert.Equal(t, []string{"a", "b"}, seen)
	mu.Unlock()
}

func TestListen_ReturnsOnClose(t *testing.T) {
	b := NewBus(logging.Nop())
	s := b.Subscribe()
	done := make(chan error, 1)
	go func() {
		done <- Listen(context.Background(), s, func(context.Context, models.DeepLinkEvent) {})
	}()
	s.Close()
	require.ErrorIs(t, <-done, ErrClosed)
}
