package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no access token")

// Claims is what the client can read from its own access token. The
// signature is not checked; the values are informational only.
type Claims struct {
	UserID    string
	UserName  string
	ExpiresAt time.Time
}

// Expired reports whether the token expiry is before now. Tokens without an
// expiry never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserName string `json:"username"`
}

func ParseClaims(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrNoToken
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("decode access token: %w", err)
	}

	out := Claims{UserID: tc.Subject, UserName: tc.UserName}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time
	}
	return out, nil
}
