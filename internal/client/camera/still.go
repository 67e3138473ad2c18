package camera

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"sync/atomic"
)

// StillCamera is a Device that renders a generated test pattern. It stands
// in for real hardware when the client runs headless.
type StillCamera struct {
	Width, Height int
	Quality       int

	shots atomic.Int64
}

func NewStillCamera() *StillCamera {
	return &StillCamera{Width: 640, Height: 480, Quality: jpeg.DefaultQuality}
}

// Frame renders the current frame, usable as a preview snapshot.
func (c *StillCamera) Frame() image.Image {
	shot := uint8(c.shots.Load())
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / max(c.Width-1, 1)),
				G: uint8(y * 255 / max(c.Height-1, 1)),
				B: shot * 37,
				A: 255,
			})
		}
	}
	return img
}

func (c *StillCamera) Capture(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := jpeg.Encode(f, c.Frame(), &jpeg.Options{Quality: c.Quality}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	c.shots.Add(1)
	return nil
}
