package prefs

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaplet/snaplet/internal/client/localdb"
	"github.com/snaplet/snaplet/internal/cryptox"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := localdb.Open(context.Background(), filepath.Join(t.TempDir(), localdb.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteRepository_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))

	_, err := repo.Get(ctx, "session_access_token")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set(ctx, "session_access_token", []byte("a1")))
	require.NoError(t, repo.Set(ctx, "session_access_token", []byte("a2")))

	got, err := repo.Get(ctx, "session_access_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), got)
}

func TestSQLiteRepository_SetManyAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))

	require.NoError(t, repo.SetMany(ctx, map[string][]byte{
		"session_access_token":  []byte("a"),
		"session_refresh_token": []byte("r"),
		"user_profile":          []byte(`{"id":"1"}`),
	}))

	require.NoError(t, repo.Delete(ctx, "session_access_token", "session_refresh_token"))

	_, err := repo.Get(ctx, "session_access_token")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Get(ctx, "session_refresh_token")
	require.ErrorIs(t, err, ErrNotFound)

	profile, err := repo.Get(ctx, "user_profile")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(profile))
}

func TestSQLiteRepository_DeleteMissingIsNoop(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	require.NoError(t, repo.Delete(context.Background(), "nope"))
}

func TestSQLiteRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(openTestDB(t))

	require.NoError(t, repo.Set(ctx, "k1", []byte("v1")))
	require.NoError(t, repo.Set(ctx, "k2", []byte("v2")))
	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Get(ctx, "k1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepository_ErrorsAfterClose(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLiteRepository(db)
	require.NoError(t, db.Close())

	_, err := repo.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Error(t, repo.Set(ctx, "k", []byte("v")))
	require.Error(t, repo.SetMany(ctx, map[string][]byte{"k": []byte("v")}))
	require.Error(t, repo.Clear(ctx))
}

func newSealed(t *testing.T, db *sql.DB) *Sealed {
	t.Helper()
	key, err := cryptox.GenerateKey()
	require.NoError(t, err)
	s, err := cryptox.NewSealer(key)
	require.NoError(t, err)
	return NewSealed(NewSQLiteRepository(db), s)
}

func TestSealed_StoresCiphertext(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sealed := newSealed(t, db)

	require.NoError(t, sealed.Set(ctx, "session_access_token", []byte("secret-token")))

	raw, err := NewSQLiteRepository(db).Get(ctx, "session_access_token")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	got, err := sealed.Get(ctx, "session_access_token")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", string(got))
}

func TestSealed_SetManyRoundTrip(t *testing.T) {
	ctx := context.Background()
	sealed := newSealed(t, openTestDB(t))

	require.NoError(t, sealed.SetMany(ctx, map[string][]byte{
		"session_access_token":  []byte("a"),
		"session_refresh_token": []byte("r"),
	}))

	a, err := sealed.Get(ctx, "session_access_token")
	require.NoError(t, err)
	r, err := sealed.Get(ctx, "session_refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "a", string(a))
	assert.Equal(t, "r", string(r))
}

func TestSealed_RejectsSwappedValues(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	sealed := newSealed(t, db)
	raw := NewSQLiteRepository(db)

	require.NoError(t, sealed.Set(ctx, "session_access_token", []byte("a")))
	box, err := raw.Get(ctx, "session_access_token")
	require.NoError(t, err)
	require.NoError(t, raw.Set(ctx, "session_refresh_token", box))

	_, err = sealed.Get(ctx, "session_refresh_token")
	require.Error(t, err)
}

func TestSealed_PassesThroughNotFoundAndDeletes(t *testing.T) {
	ctx := context.Background()
	sealed := newSealed(t, openTestDB(t))

	_, err := sealed.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sealed.Set(ctx, "k", []byte("v")))
	require.NoError(t, sealed.Delete(ctx, "k"))
	_, err = sealed.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sealed.Set(ctx, "k", []byte("v")))
	require.NoError(t, sealed.Clear(ctx))
	_, err = sealed.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}
