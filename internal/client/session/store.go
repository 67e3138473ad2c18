// Package session keeps the signed-in user's credentials: an in-memory token
// cache for synchronous reads backed by the durable preference store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/repositories/prefs"
	"github.com/snaplet/snaplet/internal/logging"
)

// Durable keys.
const (
	KeyAccessToken  = "session_access_token"
	KeyRefreshToken = "session_refresh_token"
	KeyUserProfile  = "user_profile"
)

type tokens struct {
	access  string
	refresh string
}

// Store is safe for concurrent use. Writes are serialized; reads of the
// token cache never block.
type Store struct {
	prefs prefs.Repository
	log   logging.Logger

	cache atomic.Pointer[tokens]
	mu    sync.Mutex

	startOnce sync.Once
	ready     chan struct{}
}

func NewStore(repo prefs.Repository, log logging.Logger) *Store {
	s := &Store{
		prefs: repo,
		log:   log.With("module", "session"),
		ready: make(chan struct{}),
	}
	s.cache.Store(&tokens{})
	return s
}

// Start rehydrates the token cache in the background. The returned channel
// is closed once rehydration finished, successfully or not. A save that
// happens while rehydration is running wins over the stored values.
func (s *Store) Start(ctx context.Context) <-chan struct{} {
	s.startOnce.Do(func() {
		s.mu.Lock()
		initial := s.cache.Load()
		s.mu.Unlock()
		go func() {
			defer close(s.ready)
			s.rehydrate(ctx, initial)
		}()
	})
	return s.ready
}

// Ready is closed when rehydration started by Start has finished.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) rehydrate(ctx context.Context, initial *tokens) {
	access, err := s.readString(ctx, KeyAccessToken)
	if err != nil {
		s.log.Warn(ctx, "rehydrate access token", "error", err)
		return
	}
	refresh, err := s.readString(ctx, KeyRefreshToken)
	if err != nil {
		s.log.Warn(ctx, "rehydrate refresh token", "error", err)
		return
	}

	if !s.cache.CompareAndSwap(initial, &tokens{access: access, refresh: refresh}) {
		s.log.Debug(ctx, "rehydrate skipped, session written meanwhile")
		return
	}
	s.log.Debug(ctx, "session rehydrated", "has_access", access != "", "has_refresh", refresh != "")
}

func (s *Store) AccessToken() string {
	return s.cache.Load().access
}

func (s *Store) RefreshToken() string {
	return s.cache.Load().refresh
}

// SaveAccessToken replaces the access token and keeps the refresh token.
func (s *Store) SaveAccessToken(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cache.Load()
	s.cache.Store(&tokens{access: access, refresh: cur.refresh})

	if err := s.prefs.Set(ctx, KeyAccessToken, []byte(access)); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	return nil
}

func (s *Store) SaveTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Store(&tokens{access: access, refresh: refresh})

	err := s.prefs.SetMany(ctx, map[string][]byte{
		KeyAccessToken:  []byte(access),
		KeyRefreshToken: []byte(refresh),
	})
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

func (s *Store) SaveUserProfile(ctx context.Context, p models.UserProfile) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prefs.Set(ctx, KeyUserProfile, blob); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// SaveSession persists both tokens and the profile in one batch. The token
// cache is swapped only after the batch is stored, so a failed save leaves
// the previous session untouched.
func (s *Store) SaveSession(ctx context.Context, access, refresh string, p models.UserProfile) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.prefs.SetMany(ctx, map[string][]byte{
		KeyAccessToken:  []byte(access),
		KeyRefreshToken: []byte(refresh),
		KeyUserProfile:  blob,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.cache.Store(&tokens{access: access, refresh: refresh})
	return nil
}

// UserProfile returns the cached profile or nil. A blob that cannot be
// decoded reads as absent.
func (s *Store) UserProfile(ctx context.Context) (*models.UserProfile, error) {
	blob, err := s.prefs.Get(ctx, KeyUserProfile)
	if errors.Is(err, prefs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var p models.UserProfile
	if err := json.Unmarshal(blob, &p); err != nil {
		s.log.Warn(ctx, "discarding undecodable profile", "error", err)
		return nil, nil
	}
	return &p, nil
}

// ClearSession forgets both tokens. The cached profile is kept.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.clear(ctx, true, KeyAccessToken, KeyRefreshToken)
}

func (s *Store) ClearUserProfile(ctx context.Context) error {
	return s.clear(ctx, false, KeyUserProfile)
}

func (s *Store) ClearAll(ctx context.Context) error {
	return s.clear(ctx, true, KeyAccessToken, KeyRefreshToken, KeyUserProfile)
}

func (s *Store) clear(ctx context.Context, dropTokens bool, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dropTokens {
		s.cache.Store(&tokens{})
	}
	if err := s.prefs.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("clear %v: %w", keys, err)
	}
	return nil
}

// Snapshot returns the current session. Tokens come from the cache, the
// profile from durable storage.
func (s *Store) Snapshot(ctx context.Context) (models.Session, error) {
	t := s.cache.Load()
	p, err := s.UserProfile(ctx)
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{AccessToken: t.access, RefreshToken: t.refresh, UserProfile: p}, nil
}

func (s *Store) readString(ctx context.Context, key string) (string, error) {
	v, err := s.prefs.Get(ctx, key)
	if errors.Is(err, prefs.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}
