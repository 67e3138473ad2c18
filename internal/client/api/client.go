package api

import (
	"context"

	"github.com/snaplet/snaplet/internal/client/models"
)

// Client is the remote service used by the auth coordinator and the screen
// controllers.
type Client interface {
	Login(ctx context.Context, email, password string) (models.LoginResult, error)
	GetUserProfile(ctx context.Context, userName string) (models.UserProfile, error)
	GetMediaFeed(ctx context.Context, limit, offset int) (models.FeedPage, error)
	SendFriendRequest(ctx context.Context, targetUserID string) (models.Relationship, error)
}

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
}

type TokenSourceFunc func() string

func (f TokenSourceFunc) AccessToken() string { return f() }
