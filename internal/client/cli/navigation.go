package cli

import (
	"context"

	"github.com/snaplet/snaplet/internal/client/screens/bootstrap"
	"github.com/snaplet/snaplet/internal/client/screens/friendrequest"
	"github.com/snaplet/snaplet/internal/client/screens/home"
	"github.com/snaplet/snaplet/internal/client/screens/login"
)

// navigate follows the bootstrap destination, opening the home screen on
// home_graph and tearing it down on auth_graph.
func (a *App) navigate() {
	for s := range a.boot.Watch(a.ctx) {
		if s.IsLoading {
			continue
		}
		switch s.StartDestination {
		case bootstrap.HomeGraph:
			a.enterHome()
		case bootstrap.AuthGraph:
			if a.leaveHome() {
				printlnFn("Signed out.")
			} else {
				printlnFn("Not logged in. Type 'login' to sign in.")
			}
		}
	}
}

func (a *App) enterHome() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.home != nil {
		return
	}

	ctx, cancel := context.WithCancel(a.ctx)
	a.homeCancel = cancel
	a.home = home.New(ctx, a.api, a.grants, a.pool, home.Options{
		PageSize: a.cfg.FeedPageSize,
		CacheDir: a.captures,
	}, a.log)
	a.friend = friendrequest.New(ctx, a.bus, a.api, a.pool, a.log)

	h, f := a.home, a.friend
	a.background(func() { pumpHome(ctx, h) })
	a.background(func() { watchOverlay(ctx, f) })
	h.OnScreenInitialized()
}

// leaveHome closes the home screen and reports whether one was open.
func (a *App) leaveHome() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.home == nil {
		return false
	}
	a.friend.Close()
	a.home.Close()
	a.homeCancel()
	a.home, a.friend, a.homeCancel = nil, nil, nil
	return true
}

func pumpHome(ctx context.Context, h *home.Controller) {
	for {
		select {
		case ev := <-h.Events():
			printlnFn(home.DescribeEvent(ev))
			if _, ok := ev.(home.RequestPermission); ok {
				printlnFn("Answer with 'permission grant' or 'permission deny'.")
			}
		case <-ctx.Done():
			return
		}
	}
}

func watchOverlay(ctx context.Context, f *friendrequest.Controller) {
	last := friendrequest.Describe(friendrequest.Hidden{})
	for s := range f.Watch(ctx) {
		if d := friendrequest.Describe(s); d != last {
			last = d
			printlnFn("friend request:", d)
		}
	}
}

func (a *App) pumpLogin() {
	for {
		select {
		case ev := <-a.login.Events():
			if in, ok := ev.(login.LoggedIn); ok {
				printlnFn("Logged in as", in.Profile.Name())
				a.boot.OnLoggedIn()
			}
		case <-a.ctx.Done():
			return
		}
	}
}
