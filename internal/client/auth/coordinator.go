// Package auth coordinates login, logout and the observable authentication
// state on top of the remote service and the session store.
package auth

import (
	"context"
	"fmt"

	"github.com/snaplet/snaplet/internal/client/flow"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/logging"
)

// Remote is the part of the remote service the coordinator needs.
type Remote interface {
	Login(ctx context.Context, email, password string) (models.LoginResult, error)
}

// SessionStore is the part of session.Store the coordinator needs.
type SessionStore interface {
	AccessToken() string
	RefreshToken() string
	UserProfile(ctx context.Context) (*models.UserProfile, error)
	SaveSession(ctx context.Context, access, refresh string, p models.UserProfile) error
	ClearSession(ctx context.Context) error
}

type Coordinator struct {
	remote Remote
	store  SessionStore
	state  *flow.State[models.AuthState]
	log    logging.Logger
}

func NewCoordinator(remote Remote, store SessionStore, log logging.Logger) *Coordinator {
	return &Coordinator{
		remote: remote,
		store:  store,
		state:  flow.NewState(models.Unauthenticated),
		log:    log.With("module", "auth"),
	}
}

// Login authenticates and persists the session. On any failure the auth
// state is left as it was.
func (c *Coordinator) Login(ctx context.Context, email, password string) (models.UserProfile, error) {
	res, err := c.remote.Login(ctx, email, password)
	if err != nil {
		c.log.Info(ctx, "login failed", "error", err)
		return models.UserProfile{}, err
	}

	if err := c.store.SaveSession(ctx, res.Token.AccessToken, res.Token.RefreshToken, res.User); err != nil {
		c.log.Error(ctx, "persist session", "error", err)
		return models.UserProfile{}, fmt.Errorf("login: %w", err)
	}

	c.state.Set(models.Authenticated)
	c.log.Info(ctx, "logged in", "user", res.User.UserName)
	return res.User, nil
}

// Logout clears the tokens and always ends Unauthenticated.
func (c *Coordinator) Logout(ctx context.Context) {
	if err := c.store.ClearSession(ctx); err != nil {
		c.log.Error(ctx, "clear session", "error", err)
	}
	c.state.Set(models.Unauthenticated)
	c.log.Info(ctx, "logged out")
}

// IsAuthenticated reports whether both tokens and the cached profile are
// present. It also publishes the result as the current auth state.
func (c *Coordinator) IsAuthenticated(ctx context.Context) bool {
	ok := c.store.AccessToken() != "" && c.store.RefreshToken() != ""
	if ok {
		p, err := c.store.UserProfile(ctx)
		if err != nil {
			c.log.Warn(ctx, "read cached profile", "error", err)
		}
		ok = err == nil && p != nil
	}

	if ok {
		c.state.Set(models.Authenticated)
	} else {
		c.state.Set(models.Unauthenticated)
	}
	return ok
}

func (c *Coordinator) State() models.AuthState {
	return c.state.Get()
}

func (c *Coordinator) Watch(ctx context.Context) <-chan models.AuthState {
	return c.state.Watch(ctx)
}

// Claims decodes the current access token without verifying it.
func (c *Coordinator) Claims() (Claims, error) {
	return ParseClaims(c.store.AccessToken())
}
