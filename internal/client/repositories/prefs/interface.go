// Package prefs stores string-keyed preferences in the local SQLite
// database. Values are opaque bytes; the Sealed wrapper encrypts them at
// rest.
package prefs

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("preference not found")

type Repository interface {
	// Get returns ErrNotFound when key has never been set or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes all pairs atomically.
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
