package prefs

import (
	"context"
	"fmt"

	"github.com/snaplet/snaplet/internal/cryptox"
)

// Sealed encrypts every value before handing it to the wrapped repository.
// The preference key is bound as additional data.
type Sealed struct {
	inner  Repository
	sealer *cryptox.Sealer
}

func NewSealed(inner Repository, sealer *cryptox.Sealer) *Sealed {
	return &Sealed{inner: inner, sealer: sealer}
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	box, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.sealer.Open(box, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open pref[%s]: %w", key, err)
	}
	return plain, nil
}

func (s *Sealed) Set(ctx context.Context, key string, value []byte) error {
	box, err := s.sealer.Seal(value, []byte(key))
	if err != nil {
		return fmt.Errorf("seal pref[%s]: %w", key, err)
	}
	return s.inner.Set(ctx, key, box)
}

func (s *Sealed) SetMany(ctx context.Context, values map[string][]byte) error {
	sealed := make(map[string][]byte, len(values))
	for k, v := range values {
		box, err := s.sealer.Seal(v, []byte(k))
		if err != nil {
			return fmt.Errorf("seal pref[%s]: %w", k, err)
		}
		sealed[k] = box
	}
	return s.inner.SetMany(ctx, sealed)
}

func (s *Sealed) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}

func (s *Sealed) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}
