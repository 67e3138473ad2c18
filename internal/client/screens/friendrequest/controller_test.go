package friendrequest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplet/snaplet/internal/client/api"
	"github.com/snaplet/snaplet/internal/client/deeplink"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/logging"
)

type result[T any] struct {
	v   T
	err error
}

// fakeUsers answers each call from a channel so tests control timing.
type fakeUsers struct {
	mu       sync.Mutex
	profiles chan result[models.UserProfile]
	sends    chan result[models.Relationship]
	asked    []string
	sentTo   []string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		profiles: make(chan result[models.UserProfile], 4),
		sends:    make(chan result[models.Relationship], 4),
	}
}

func (f *fakeUsers) GetUserProfile(ctx context.Context, userName string) (models.UserProfile, error) {
	f.mu.Lock()
	f.asked = append(f.asked, userName)
	f.mu.Unlock()
	select {
	case r := <-f.profiles:
		return r.v, r.err
	case <-ctx.Done():
		return models.UserProfile{}, ctx.Err()
	}
}

func (f *fakeUsers) SendFriendRequest(ctx context.Context, id string) (models.Relationship, error) {
	f.mu.Lock()
	f.sentTo = append(f.sentTo, id)
	f.mu.Unlock()
	select {
	case r := <-f.sends:
		return r.v, r.err
	case <-ctx.Done():
		return models.Relationship{}, ctx.Err()
	}
}

func (f *fakeUsers) askedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.asked)
}

func (f *fakeUsers) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sentTo)
}

var alice = models.UserProfile{ID: "u-alice", UserName: "alice", DisplayName: "Alice Smith"}

type fixture struct {
	bus   *deeplink.Bus
	users *fakeUsers
	c     *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := deeplink.NewBus(logging.Nop())
	users := newFakeUsers()
	c := New(context.Background(), bus, users, workers.New(2), logging.Nop())
	t.Cleanup(func() {
		c.Close()
		bus.Close()
	})
	return &fixture{bus: bus, users: users, c: c}
}

func (f *fixture) emit(t *testing.T, name string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.bus.Emit(ctx, models.FriendRequest{UserName: name}))
}

func waitFor(t *testing.T, c *Controller, want UiState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, c.State())
	}, 2*time.Second, 5*time.Millisecond, "want %s, have %s", Describe(want), Describe(c.State()))
}

func flush(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Flush(ctx))
}

func TestController_HiddenLoadingVisible(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, Hidden{}, f.c.State())

	f.emit(t, "alice")
	waitFor(t, f.c, Loading{UserName: "alice"})

	f.users.profiles <- result[models.UserProfile]{v: alice}
	waitFor(t, f.c, Visible{Profile: alice})
}

func TestController_FetchFailureShowsError(t *testing.T) {
	f := newFixture(t)

	f.emit(t, "zed")
	waitFor(t, f.c, Loading{UserName: "zed"})
	f.users.profiles <- result[models.UserProfile]{err: &api.StatusError{HTTPStatus: 404, Code: 404, Message: "User not found: zed"}}

	waitFor(t, f.c, Error{Message: "User not found: zed"})

	// no automatic retry or reset
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Error{Message: "User not found: zed"}, f.c.State())
	assert.Equal(t, 1, f.users.askedCount())
}

func TestController_IgnoresEventsUnlessHidden(t *testing.T) {
	f := newFixture(t)

	f.emit(t, "alice")
	waitFor(t, f.c, Loading{UserName: "alice"})

	f.emit(t, "bob")
	flush(t, f.c)
	time.Sleep(20 * time.Millisecond)
	flush(t, f.c)
	assert.Equal(t, Loading{UserName: "alice"}, f.c.State())

	f.users.profiles <- result[models.UserProfile]{v: alice}
	waitFor(t, f.c, Visible{Profile: alice})

	f.emit(t, "emma")
	time.Sleep(20 * time.Millisecond)
	flush(t, f.c)
	assert.Equal(t, Visible{Profile: alice}, f.c.State())
	assert.Equal(t, 1, f.users.askedCount())
}

func TestController_IgnoresEventsInError(t *testing.T) {
	f := newFixture(t)

	f.emit(t, "zed")
	waitFor(t, f.c, Loading{UserName: "zed"})
	f.users.profiles <- result[models.UserProfile]{err: &api.StatusError{Code: 500, Message: "boom"}}
	waitFor(t, f.c, Error{Message: "boom"})

	f.emit(t, "alice")
	time.Sleep(20 * time.Millisecond)
	flush(t, f.c)
	assert.Equal(t, Error{Message: "boom"}, f.c.State())

	f.c.OnDismiss()
	waitFor(t, f.c, Hidden{})
}

func TestController_SendSuccessHides(t *testing.T) {
	f := newFixture(t)
	f.emit(t, "alice")
	f.users.profiles <- result[models.UserProfile]{v: alice}
	waitFor(t, f.c, Visible{Profile: alice})

	f.c.OnSendFriendRequest()
	waitFor(t, f.c, Visible{Profile: alice, IsLoading: true})

	f.c.OnSendFriendRequest()
	flush(t, f.c)
	assert.Equal(t, 1, f.users.sentCount(), "second send while loading must be ignored")

	f.users.sends <- result[models.Relationship]{v: models.Relationship{ID: "rel-1", Status: models.RelationshipPending}}
	waitFor(t, f.c, Hidden{})
}

func TestController_SendFailureReturnsToVisible(t *testing.T) {
	f := newFixture(t)
	f.emit(t, "alice")
	f.users.profiles <- result[models.UserProfile]{v: alice}
	waitFor(t, f.c, Visible{Profile: alice})

	f.c.OnSendFriendRequest()
	waitFor(t, f.c, Visible{Profile: alice, IsLoading: true})
	f.users.sends <- result[models.Relationship]{err: &api.StatusError{Code: 409, Message: "Friend request already sent"}}

	waitFor(t, f.c, Visible{Profile: alice})
}

func TestController_SendOutsideVisibleIsNoop(t *testing.T) {
	f := newFixture(t)

	f.c.OnSendFriendRequest()
	flush(t, f.c)
	assert.Equal(t, Hidden{}, f.c.State())

	f.emit(t, "alice")
	waitFor(t, f.c, Loading{UserName: "alice"})
	f.c.OnSendFriendRequest()
	flush(t, f.c)
	assert.Equal(t, Loading{UserName: "alice"}, f.c.State())
	assert.Equal(t, 0, f.users.sentCount())
}

func TestController_DismissIsIdempotent(t *testing.T) {
	f := newFixture(t)

	f.c.OnDismiss()
	f.c.OnDismiss()
	flush(t, f.c)
	assert.Equal(t, Hidden{}, f.c.State())

	f.emit(t, "alice")
	f.users.profiles <- result[models.UserProfile]{v: alice}
	waitFor(t, f.c, Visible{Profile: alice})

	f.c.OnDismiss()
	f.c.OnDismiss()
	flush(t, f.c)
	assert.Equal(t, Hidden{}, f.c.State())
}

func TestController_DismissDuringLoadingDropsLateResult(t *testing.T) {
	f := newFixture(t)

	f.emit(t, "alice")
	waitFor(t, f.c, Loading{UserName: "alice"})
	f.c.OnDismiss()
	waitFor(t, f.c, Hidden{})

	f.users.profiles <- result[models.UserProfile]{v: alice}
	time.Sleep(30 * time.Millisecond)
	flush(t, f.c)
	assert.Equal(t, Hidden{}, f.c.State())
}

func TestController_ReplaysEventEmittedBeforeStart(t *testing.T) {
	bus := deeplink.NewBus(logging.Nop())
	defer bus.Close()
	require.NoError(t, bus.Emit(context.Background(), models.FriendRequest{UserName: "david"}))

	users := newFakeUsers()
	c := New(context.Background(), bus, users, workers.New(1), logging.Nop())
	defer c.Close()

	waitFor(t, c, Loading{UserName: "david"})
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "hidden", Describe(Hidden{}))
	assert.Equal(t, "loading bob", Describe(Loading{UserName: "bob"}))
	assert.Equal(t, "visible alice (sending)", Describe(Visible{Profile: alice, IsLoading: true}))
	assert.Equal(t, "error: nope", Describe(Error{Message: "nope"}))
	assert.Panics(t, func() { Describe(nil) })
}
