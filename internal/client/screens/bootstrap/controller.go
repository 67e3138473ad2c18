// Package bootstrap decides the start destination once the persisted
// session has been loaded, and routes back to the auth flow on logout.
package bootstrap

import (
	"context"

	"github.com/snaplet/snaplet/internal/client/flow"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/screens"
	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/logging"
)

// Destination is a navigation graph route.
type Destination string

const (
	None      Destination = ""
	HomeGraph Destination = "home_graph"
	AuthGraph Destination = "auth_graph"
)

type UiState struct {
	IsLoading        bool
	StartDestination Destination
}

// Session signals when persisted tokens have been loaded.
type Session interface {
	Ready() <-chan struct{}
}

// Auth is the part of auth.Coordinator bootstrap needs.
type Auth interface {
	IsAuthenticated(ctx context.Context) bool
	Watch(ctx context.Context) <-chan models.AuthState
}

type Controller struct {
	loop  *screens.Loop
	state *flow.State[UiState]
	log   logging.Logger
}

func New(ctx context.Context, session Session, auth Auth, pool *workers.Pool, log logging.Logger) *Controller {
	log = log.With("screen", "bootstrap")
	c := &Controller{
		loop:  screens.NewLoop(ctx, pool, log),
		state: flow.NewState(UiState{IsLoading: true}),
		log:   log,
	}

	_ = c.loop.Post(func(context.Context) {
		screens.Go(c.loop, func(ctx context.Context) (bool, error) {
			select {
			case <-session.Ready():
			case <-ctx.Done():
				return false, ctx.Err()
			}
			if err := ctx.Err(); err != nil {
				return false, err
			}
			return auth.IsAuthenticated(ctx), nil
		}, func(ctx context.Context, ok bool, _ error) {
			dest := AuthGraph
			if ok {
				dest = HomeGraph
			}
			c.log.Info(ctx, "start destination", "destination", string(dest))
			c.state.Set(UiState{StartDestination: dest})
			go c.follow(auth)
		})
	})
	return c
}

// follow routes to the auth flow whenever the state drops to
// Unauthenticated after start.
func (c *Controller) follow(auth Auth) {
	ctx := c.loop.Context()
	for st := range auth.Watch(ctx) {
		if st != models.Unauthenticated {
			continue
		}
		_ = c.loop.Post(func(ctx context.Context) {
			if c.state.Get().StartDestination == AuthGraph {
				return
			}
			c.log.Info(ctx, "signed out, returning to auth")
			c.state.Set(UiState{StartDestination: AuthGraph})
		})
	}
}

// OnLoggedIn moves to the home graph after a login from the auth flow.
func (c *Controller) OnLoggedIn() {
	_ = c.loop.Post(func(context.Context) {
		c.state.Set(UiState{StartDestination: HomeGraph})
	})
}

func (c *Controller) State() UiState {
	return c.state.Get()
}

func (c *Controller) Watch(ctx context.Context) <-chan UiState {
	return c.state.Watch(ctx)
}

func (c *Controller) Flush(ctx context.Context) error {
	return c.loop.Flush(ctx)
}

func (c *Controller) Close() {
	c.loop.Close()
}
