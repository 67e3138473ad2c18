package camera

import (
	"context"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrants(t *testing.T) {
	g := NewGrants()
	assert.False(t, g.HasPermission(PermissionCamera))

	g.Set(PermissionCamera, true)
	assert.True(t, g.HasPermission(PermissionCamera))

	g.Set(PermissionCamera, false)
	assert.False(t, g.HasPermission(PermissionCamera))
}

func TestStillCamera_WritesDecodableJPEG(t *testing.T) {
	c := &StillCamera{Width: 32, Height: 24, Quality: 80}
	path := filepath.Join(t.TempDir(), "shot.jpg")

	require.NoError(t, c.Capture(context.Background(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestStillCamera_RefusesToOverwrite(t *testing.T) {
	c := &StillCamera{Width: 4, Height: 4, Quality: 50}
	path := filepath.Join(t.TempDir(), "shot.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.Error(t, c.Capture(context.Background(), path))
}

func TestStillCamera_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStillCamera().Capture(ctx, filepath.Join(t.TempDir(), "x.jpg"))
	require.ErrorIs(t, err, context.Canceled)
}
