package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/snaplet/snaplet/internal/client/camera"
	"github.com/snaplet/snaplet/internal/client/deeplink"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/screens/friendrequest"
	"github.com/snaplet/snaplet/internal/client/screens/login"
	"github.com/snaplet/snaplet/internal/common"
)

// Login walks the two-step form: email first, then password.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in.")
		return nil
	}

	prompt := "Enter email"
	prefill := a.login.State().Email
	if prefill != "" {
		prompt = fmt.Sprintf("Enter email [%s]", prefill)
	}
	email, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if email != "" {
		a.login.OnEmailChange(email)
	}
	a.login.OnContinueFromEmail()
	if err := a.login.Flush(ctx); err != nil {
		return err
	}
	if s := a.login.State(); s.Step != login.StepPassword {
		printlnFn(s.EmailError)
		return nil
	}

	pw, err := a.password()
	if err != nil {
		a.login.OnBackToEmailStep()
		return err
	}
	a.login.OnPasswordChange(string(pw))
	common.WipeByteArray(pw)
	a.login.OnLogin()
	if err := a.login.Flush(ctx); err != nil {
		return err
	}

	s, err := waitLogin(ctx, a.login)
	if err != nil {
		return err
	}
	switch {
	case s.PasswordError != "":
		printlnFn(s.PasswordError)
	case s.ErrorMessage != "":
		printlnFn(s.ErrorMessage)
	default:
		return nil
	}
	a.login.OnBackToEmailStep()
	return nil
}

// waitLogin blocks until no login is in flight.
func waitLogin(ctx context.Context, c *login.Controller) (login.UiState, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for s := range c.Watch(ctx) {
		if !s.IsLoading {
			return s, nil
		}
	}
	return login.UiState{}, ctx.Err()
}

func (a *App) Logout(ctx context.Context) error {
	if a.auth.State() != models.Authenticated {
		printlnFn("Not logged in.")
		return nil
	}
	a.auth.Logout(ctx)
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	if a.auth.State() != models.Authenticated {
		printlnFn("Not logged in.")
		return nil
	}
	p, err := a.store.UserProfile(ctx)
	if err != nil {
		return err
	}
	if p != nil {
		printlnFn(fmt.Sprintf("%s (@%s) <%s>", p.Name(), p.UserName, p.Email))
	}
	if c, err := a.auth.Claims(); err == nil && !c.ExpiresAt.IsZero() {
		state := "valid"
		if c.Expired(time.Now()) {
			state = "expired"
		}
		printlnFn(fmt.Sprintf("access token %s until %s", state, c.ExpiresAt.Local().Format(time.DateTime)))
	}
	return nil
}

// Feed prints the currently loaded feed page.
func (a *App) Feed(ctx context.Context) error {
	h := a.currentHome()
	if h == nil {
		return ErrNotLoggedIn
	}
	if err := h.Flush(ctx); err != nil {
		return err
	}
	s := h.State()
	if s.IsLoadingMedia {
		printlnFn("Loading feed...")
	}
	if s.Error != "" {
		printlnFn("Feed error:", s.Error)
	}
	if len(s.MediaItems) == 0 && !s.IsLoadingMedia {
		printlnFn("No photos yet.")
	}
	for _, p := range s.MediaItems {
		owner := "@" + p.Username
		if p.IsOwnPost {
			owner = "you"
		}
		line := fmt.Sprintf("%s  %-10s %s", p.Timestamp().Local().Format(time.DateTime), owner, p.ImageURL)
		if p.Caption != "" {
			line += "  " + p.Caption
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	h := a.currentHome()
	if h == nil {
		return ErrNotLoggedIn
	}
	h.RefreshMedia()
	return nil
}

// Permission records the user's answer to the camera permission request.
func (a *App) Permission(ctx context.Context, answer string) error {
	granted := answer == "grant"
	a.grants.Set(camera.PermissionCamera, granted)
	if h := a.currentHome(); h != nil {
		h.OnPermissionResult(granted)
	}
	if granted {
		printlnFn("Camera permission granted.")
	}
	return nil
}

// Camera binds the built-in still camera as the capture device.
func (a *App) Camera(ctx context.Context) error {
	h := a.currentHome()
	if h == nil {
		return ErrNotLoggedIn
	}
	h.SetCaptureDevice(a.still)
	h.SetPreviewSnapshot(a.still.Frame())
	printlnFn("Camera ready.")
	return nil
}

func (a *App) Capture(ctx context.Context) error {
	h := a.currentHome()
	if h == nil {
		return ErrNotLoggedIn
	}
	h.OnCapturePhoto()
	return nil
}

// Open delivers uri as a view intent.
func (a *App) Open(ctx context.Context, uri string) error {
	ok, err := a.links.HandleIntent(ctx, deeplink.Intent{Action: deeplink.ActionView, Data: uri})
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Link ignored.")
	}
	return nil
}

func (a *App) Send(ctx context.Context) error {
	f := a.currentFriend()
	if f == nil {
		return ErrNotLoggedIn
	}
	f.OnSendFriendRequest()
	return nil
}

func (a *App) Dismiss(ctx context.Context) error {
	f := a.currentFriend()
	if f == nil {
		return ErrNotLoggedIn
	}
	f.OnDismiss()
	return nil
}

func (a *App) Status(ctx context.Context) error {
	b := a.boot.State()
	printlnFn("destination:", string(b.StartDestination), "loading:", b.IsLoading)
	printlnFn("auth:", a.auth.State().String())

	h, f := a.currentHome(), a.currentFriend()
	if h == nil {
		return nil
	}
	cs := h.State().Camera
	printlnFn(fmt.Sprintf("camera: permission=%t active=%t capturing=%t last=%q",
		cs.HasCameraPermission, cs.IsCameraActive, cs.IsCapturing, cs.LastCapturePath))
	printlnFn("friend request:", friendrequest.Describe(f.State()))
	return nil
}
