// Package login drives the two-step email and password form.
package login

import (
	"context"

	"github.com/snaplet/snaplet/internal/client/api"
	"github.com/snaplet/snaplet/internal/client/flow"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/screens"
	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/common"
	"github.com/snaplet/snaplet/internal/logging"
)

// MsgLoginFailed is shown when a login failure carries no message.
const MsgLoginFailed = "An error occurred during login"

// Auth is the part of auth.Coordinator the form needs.
type Auth interface {
	Login(ctx context.Context, email, password string) (models.UserProfile, error)
}

// Profiles reads the cached profile used to pre-fill the email.
type Profiles interface {
	UserProfile(ctx context.Context) (*models.UserProfile, error)
}

type Controller struct {
	loop   *screens.Loop
	auth   Auth
	state  *flow.State[UiState]
	events *flow.Events[Event]
	out    *screens.Emitter[Event]
	log    logging.Logger
}

func New(ctx context.Context, auth Auth, profiles Profiles, pool *workers.Pool, log logging.Logger) *Controller {
	log = log.With("screen", "login")
	c := &Controller{
		loop:   screens.NewLoop(ctx, pool, log),
		auth:   auth,
		state:  flow.NewState(UiState{}),
		events: flow.NewEvents[Event](),
		log:    log,
	}
	c.out = screens.NewEmitter(c.loop, c.events)

	_ = c.loop.Post(func(context.Context) {
		screens.Go(c.loop, profiles.UserProfile, c.prefill)
	})
	return c
}

// prefill copies the cached email into the form unless the user typed one.
func (c *Controller) prefill(ctx context.Context, p *models.UserProfile, err error) {
	if err != nil {
		c.log.Warn(ctx, "read cached profile", "error", err)
		return
	}
	if p == nil || p.Email == "" {
		return
	}
	c.state.Update(func(s UiState) UiState {
		if s.Email == "" {
			s.Email = p.Email
		}
		return s
	})
}

func (c *Controller) State() UiState {
	return c.state.Get()
}

func (c *Controller) Watch(ctx context.Context) <-chan UiState {
	return c.state.Watch(ctx)
}

// Events must be drained by exactly one consumer.
func (c *Controller) Events() <-chan Event {
	return c.events.C()
}

func (c *Controller) update(fn func(UiState) UiState) {
	_ = c.loop.Post(func(context.Context) { c.state.Update(fn) })
}

func (c *Controller) OnEmailChange(email string) {
	c.update(func(s UiState) UiState {
		s.Email = email
		s.EmailError = ""
		s.ErrorMessage = ""
		return s
	})
}

func (c *Controller) OnPasswordChange(password string) {
	c.update(func(s UiState) UiState {
		s.Password = password
		s.PasswordError = ""
		s.ErrorMessage = ""
		return s
	})
}

func (c *Controller) OnPasswordVisibilityToggle() {
	c.update(func(s UiState) UiState {
		s.IsPasswordVisible = !s.IsPasswordVisible
		return s
	})
}

// OnBackToEmailStep returns to the first step and forgets the password.
func (c *Controller) OnBackToEmailStep() {
	c.update(func(s UiState) UiState {
		s.Step = StepEmail
		s.Password = ""
		s.PasswordError = ""
		s.ErrorMessage = ""
		return s
	})
}

func (c *Controller) OnContinueFromEmail() {
	_ = c.loop.Post(func(ctx context.Context) {
		s := c.state.Get()
		if msg := validateEmail(s.Email); msg != "" {
			c.state.Update(func(s UiState) UiState {
				s.EmailError = msg
				return s
			})
			return
		}
		c.log.Debug(ctx, "email accepted")
		c.state.Update(func(s UiState) UiState {
			s.Step = StepPassword
			s.EmailError = ""
			s.ErrorMessage = ""
			return s
		})
	})
}

// OnLogin validates the password and submits the form. It is ignored while
// a login is in flight.
func (c *Controller) OnLogin() {
	_ = c.loop.Post(func(ctx context.Context) {
		s := c.state.Get()
		if s.IsLoading {
			return
		}
		if msg := validatePassword(s.Password); msg != "" {
			c.state.Update(func(s UiState) UiState {
				s.PasswordError = msg
				return s
			})
			return
		}

		c.state.Update(func(s UiState) UiState {
			s.IsLoading = true
			s.ErrorMessage = ""
			return s
		})

		email, password := s.Email, s.Password
		screens.Go(c.loop, func(ctx context.Context) (models.UserProfile, error) {
			return c.auth.Login(ctx, email, password)
		}, func(ctx context.Context, p models.UserProfile, err error) {
			if err != nil {
				msg := failureMessage(err)
				c.log.Info(ctx, "login failed", "error", msg)
				c.state.Update(func(s UiState) UiState {
					s.IsLoading = false
					s.ErrorMessage = msg
					return s
				})
				return
			}

			c.state.Update(func(s UiState) UiState {
				s.IsLoading = false
				return s
			})
			c.out.Emit(LoggedIn{Profile: p})
		})
	})
}

func failureMessage(err error) string {
	if msg := api.Message(err); msg != common.UnknownErrorMessage {
		return msg
	}
	return MsgLoginFailed
}

func (c *Controller) Flush(ctx context.Context) error {
	return c.loop.Flush(ctx)
}

func (c *Controller) Close() {
	c.loop.Close()
}
