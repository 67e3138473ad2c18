package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/snaplet/snaplet/internal/common"
	"github.com/snaplet/snaplet/internal/logging"
	"github.com/snaplet/snaplet/internal/mockapi"
)

type tokenBox struct {
	mu    sync.Mutex
	token string
}

func (b *tokenBox) AccessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *tokenBox) set(tok string) {
	b.mu.Lock()
	b.token = tok
	b.mu.Unlock()
}

func newMockBackend(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &mockapi.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	srv, err := mockapi.NewServer(cfg, logging.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, baseURL string, tokens TokenSource) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(Options{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Tokens:  tokens,
		Logger:  logging.Nop(),
	})
	require.NoError(t, err)
	return c
}

func TestHTTPClient_AgainstMockBackend(t *testing.T) {
	ts := newMockBackend(t)
	tokens := &tokenBox{}
	c := newClient(t, ts.URL+mockapi.APIPrefix, tokens)
	ctx := context.Background()

	res, err := c.Login(ctx, "alice@snaplet.dev", mockapi.FixturePassword)
	require.NoError(t, err)
	assert.Equal(t, "alice", res.User.UserName)
	require.NotEmpty(t, res.Token.AccessToken)
	tokens.set(res.Token.AccessToken)

	profile, err := c.GetUserProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob Johnson", profile.DisplayName)

	page, err := c.GetMediaFeed(ctx, 5, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 5, page.Pagination.Limit)

	rel, err := c.SendFriendRequest(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, rel.User2ID)
	assert.Equal(t, res.User.ID, rel.Initiator)
}

func TestHTTPClient_ServerMessagesSurface(t *testing.T) {
	ts := newMockBackend(t)
	tokens := &tokenBox{}
	c := newClient(t, ts.URL+mockapi.APIPrefix+"/", tokens)
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@snaplet.dev", "wrong-password")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Your session has expired. Please log in again", Message(err))

	res, err := c.Login(ctx, "john@snaplet.dev", mockapi.FixturePassword)
	require.NoError(t, err)
	tokens.set(res.Token.AccessToken)

	_, err = c.GetUserProfile(ctx, "zed")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "User not found: zed", Message(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.HTTPStatus)
}

func TestHTTPClient_SendsHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/api/v1/posts/feed", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"status":{"code":200,"message":"OK"},"data":{"data":[],"pagination":{"offset":20,"limit":10}}}`))
	}))
	defer ts.Close()

	old := newRequestID
	newRequestID = func() string { return "req-1" }
	t.Cleanup(func() { newRequestID = old })

	c := newClient(t, ts.URL+"/api/v1", TokenSourceFunc(func() string { return "tok" }))
	page, err := c.GetMediaFeed(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	assert.Equal(t, "Bearer tok", got.Get(common.AuthorizationHeaderName))
	assert.Equal(t, "req-1", got.Get(common.RequestIDHeaderName))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestHTTPClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"status":{"code":200,"message":"OK"},"data":{"id":"1","userName":"alice"}}`))
	}))
	defer ts.Close()

	c := newClient(t, ts.URL, nil)
	_, err := c.GetUserProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, got.Get(common.AuthorizationHeaderName))
}

func TestHTTPClient_ResponseClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "envelope failure inside 200",
			status:  http.StatusOK,
			body:    `{"status":{"code":500,"message":"Feed temporarily unavailable"},"data":null}`,
			wantMsg: "Feed temporarily unavailable",
		},
		{
			name:    "table message wins over body",
			status:  http.StatusInternalServerError,
			body:    `{"status":{"code":500,"message":"db down"}}`,
			wantMsg: "Server error. Please try again later",
		},
		{
			name:    "body message for unmapped status",
			status:  http.StatusConflict,
			body:    `{"status":{"code":409,"message":"Friend request already sent"}}`,
			wantMsg: "Friend request already sent",
		},
		{
			name:    "default for unmapped status without message",
			status:  http.StatusForbidden,
			body:    `<html>forbidden</html>`,
			wantMsg: common.UnknownErrorMessage,
		},
		{
			name:    "empty body",
			status:  http.StatusOK,
			body:    "",
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `{"status":`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "null data",
			status:  http.StatusOK,
			body:    `{"status":{"code":200,"message":"OK"},"data":null}`,
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := newClient(t, ts.URL, nil)
			_, err := c.GetMediaFeed(context.Background(), 10, 0)
			require.Error(t, err)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, Message(err))
			}
		})
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := newClient(t, url, nil)
	_, err := c.GetUserProfile(context.Background(), "alice")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.NotEmpty(t, Message(err))
	assert.NotEqual(t, common.UnknownErrorMessage, Message(err))
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newClient(t, ts.URL, nil)
	_, err := c.GetMediaFeed(ctx, 1, 0)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestNewHTTPClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewHTTPClient(Options{BaseURL: "ftp://example.com"})
	require.Error(t, err)

	_, err = NewHTTPClient(Options{BaseURL: "://bad"})
	require.Error(t, err)
}
