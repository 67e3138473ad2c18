// Package friendrequest drives the friend-request overlay shown when a
// friend-request deep link arrives.
package friendrequest

import (
	"context"

	"github.com/snaplet/snaplet/internal/client/api"
	"github.com/snaplet/snaplet/internal/client/deeplink"
	"github.com/snaplet/snaplet/internal/client/flow"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/screens"
	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/logging"
)

// Users is the part of the remote service the overlay needs.
type Users interface {
	GetUserProfile(ctx context.Context, userName string) (models.UserProfile, error)
	SendFriendRequest(ctx context.Context, targetUserID string) (models.Relationship, error)
}

type Controller struct {
	loop  *screens.Loop
	users Users
	state *flow.State[UiState]
	sub   *deeplink.Subscription
	log   logging.Logger

	// cycle counts overlay openings; results of an older cycle are dropped.
	// Owned by the loop goroutine.
	cycle uint64
}

// New subscribes to bus and starts the controller.
func New(ctx context.Context, bus *deeplink.Bus, users Users, pool *workers.Pool, log logging.Logger) *Controller {
	log = log.With("screen", "friend_request")
	c := &Controller{
		loop:  screens.NewLoop(ctx, pool, log),
		users: users,
		state: flow.NewState[UiState](Hidden{}),
		sub:   bus.Subscribe(),
		log:   log,
	}

	go func() {
		_ = deeplink.Listen(c.loop.Context(), c.sub, func(ctx context.Context, ev models.DeepLinkEvent) {
			_ = c.loop.Post(func(ctx context.Context) { c.handleEvent(ctx, ev) })
		})
	}()
	return c
}

func (c *Controller) State() UiState {
	return c.state.Get()
}

func (c *Controller) Watch(ctx context.Context) <-chan UiState {
	return c.state.Watch(ctx)
}

func (c *Controller) handleEvent(ctx context.Context, ev models.DeepLinkEvent) {
	req, ok := ev.(models.FriendRequest)
	if !ok {
		return
	}
	if _, hidden := c.state.Get().(Hidden); !hidden {
		c.log.Debug(ctx, "overlay busy, dropping event", "user", req.UserName)
		return
	}

	c.cycle++
	cycle := c.cycle
	c.state.Set(Loading{UserName: req.UserName})

	screens.Go(c.loop, func(ctx context.Context) (models.UserProfile, error) {
		return c.users.GetUserProfile(ctx, req.UserName)
	}, func(ctx context.Context, p models.UserProfile, err error) {
		if cycle != c.cycle {
			return
		}
		if _, loading := c.state.Get().(Loading); !loading {
			return
		}
		if err != nil {
			msg := api.Message(err)
			c.log.Warn(ctx, "load profile failed", "user", req.UserName, "error", msg)
			c.state.Set(Error{Message: msg})
			return
		}
		c.state.Set(Visible{Profile: p})
	})
}

// OnSendFriendRequest sends the request for the visible profile. It does
// nothing unless the overlay is Visible and idle.
func (c *Controller) OnSendFriendRequest() {
	_ = c.loop.Post(func(ctx context.Context) {
		cur, ok := c.state.Get().(Visible)
		if !ok || cur.IsLoading {
			return
		}

		cycle := c.cycle
		c.state.Set(Visible{Profile: cur.Profile, IsLoading: true})

		screens.Go(c.loop, func(ctx context.Context) (models.Relationship, error) {
			return c.users.SendFriendRequest(ctx, cur.Profile.ID)
		}, func(ctx context.Context, rel models.Relationship, err error) {
			if cycle != c.cycle {
				return
			}
			if v, ok := c.state.Get().(Visible); !ok || !v.IsLoading {
				return
			}
			if err != nil {
				c.log.Warn(ctx, "send friend request failed", "user", cur.Profile.UserName, "error", api.Message(err))
				c.state.Set(Visible{Profile: cur.Profile})
				return
			}
			c.log.Info(ctx, "friend request sent", "relationship", rel.ID, "status", string(rel.Status))
			c.state.Set(Hidden{})
		})
	})
}

// OnDismiss hides the overlay from any state.
func (c *Controller) OnDismiss() {
	_ = c.loop.Post(func(ctx context.Context) {
		if _, hidden := c.state.Get().(Hidden); hidden {
			return
		}
		c.cycle++
		c.state.Set(Hidden{})
	})
}

// Flush waits until previously posted actions have been applied.
func (c *Controller) Flush(ctx context.Context) error {
	return c.loop.Flush(ctx)
}

func (c *Controller) Close() {
	c.sub.Close()
	c.loop.Close()
}
