package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestSealer_RoundTrip(t *testing.T) {
	s := newTestSealer(t)

	box, err := s.Seal([]byte("access-token"), []byte("session_access_token"))
	require.NoError(t, err)
	assert.NotContains(t, string(box), "access-token")

	got, err := s.Open(box, []byte("session_access_token"))
	require.NoError(t, err)
	assert.Equal(t, "access-token", string(got))
}

func TestSealer_NonceIsRandom(t *testing.T) {
	s := newTestSealer(t)

	a, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	b, err := s.Seal([]byte("same"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_OpenRejectsWrongAdditionalData(t *testing.T) {
	s := newTestSealer(t)

	box, err := s.Seal([]byte("v"), []byte("session_access_token"))
	require.NoError(t, err)

	_, err = s.Open(box, []byte("session_refresh_token"))
	require.Error(t, err)
}

func TestSealer_OpenRejectsTamperedAndShortInput(t *testing.T) {
	s := newTestSealer(t)

	box, err := s.Seal([]byte("value"), nil)
	require.NoError(t, err)
	box[len(box)-1] ^= 0xff
	_, err = s.Open(box, nil)
	require.Error(t, err)

	_, err = s.Open([]byte("short"), nil)
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestNewSealer_RejectsBadKeyLength(t *testing.T) {
	_, err := NewSealer([]byte("too-short"))
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestLoadOrCreateKey_CreatesThenReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.key")

	first, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	require.Len(t, first, KeySize)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	second, err := LoadOrCreateKey(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoadOrCreateKey_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.key")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, err := LoadOrCreateKey(path)
	require.ErrorIs(t, err, ErrInvalidKey)
}
