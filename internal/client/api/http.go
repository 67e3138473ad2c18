package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/common"
	"github.com/snaplet/snaplet/internal/logging"
)

const maxBodyBytes = 4 << 20

// newRequestID is replaced in tests.
var newRequestID = uuid.NewString

type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Tokens            TokenSource
	Logger            logging.Logger
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}
	if base.Path == "" || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = TokenSourceFunc(func() string { return "" })
	}

	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	return &HTTPClient{
		base:    base,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		tokens:  tokens,
		log:     log.With("component", "api"),
	}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "login", nil, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return models.LoginResult{}, err
	}
	return decode[models.LoginResult](raw)
}

func (c *HTTPClient) GetUserProfile(ctx context.Context, userName string) (models.UserProfile, error) {
	raw, err := c.do(ctx, http.MethodGet, "users/profile/"+url.PathEscape(userName), nil, nil)
	if err != nil {
		return models.UserProfile{}, err
	}
	return decode[models.UserProfile](raw)
}

func (c *HTTPClient) GetMediaFeed(ctx context.Context, limit, offset int) (models.FeedPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	raw, err := c.do(ctx, http.MethodGet, "posts/feed", q, nil)
	if err != nil {
		return models.FeedPage{}, err
	}
	return decode[models.FeedPage](raw)
}

func (c *HTTPClient) SendFriendRequest(ctx context.Context, targetUserID string) (models.Relationship, error) {
	raw, err := c.do(ctx, http.MethodPost, "relationships", nil, models.FriendRequestBody{TargetUserID: targetUserID})
	if err != nil {
		return models.Relationship{}, err
	}
	return decode[models.Relationship](raw)
}

// do sends one request and returns the body of a 2xx response.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(method, path, err)
	}

	u := c.base.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, transportError(method, path, err)
	}

	reqID := newRequestID()
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	log := c.log.With("request_id", reqID, "method", method, "path", u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return nil, transportError(method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn(ctx, "read body failed", "status", resp.StatusCode, "error", err)
		return nil, transportError(method, path, err)
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := normalize(resp.StatusCode, raw)
		log.Info(ctx, "request rejected", "status", resp.StatusCode, "message", se.Message)
		return nil, se
	}

	return raw, nil
}

// decode unwraps a 2xx envelope into T.
func decode[T any](raw []byte) (T, error) {
	var zero T

	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, ErrEmptyResponse
	}

	var env models.Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}

	if !env.OK() {
		return zero, &StatusError{HTTPStatus: http.StatusOK, Code: env.Status.Code, Message: env.Status.Message}
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return zero, ErrEmptyResponse
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrEmptyResponse, err)
	}
	return out, nil
}
