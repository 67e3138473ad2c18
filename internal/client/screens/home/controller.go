// Package home drives the home screen: the camera page and the media feed.
package home

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"slices"
	"time"

	"github.com/snaplet/snaplet/internal/client/api"
	"github.com/snaplet/snaplet/internal/client/camera"
	"github.com/snaplet/snaplet/internal/client/flow"
	"github.com/snaplet/snaplet/internal/client/models"
	"github.com/snaplet/snaplet/internal/client/screens"
	"github.com/snaplet/snaplet/internal/client/workers"
	"github.com/snaplet/snaplet/internal/logging"
)

// User-facing messages.
const (
	MsgPermissionRequired = "Camera permission is required"
	MsgCameraNotReady     = "Camera is not ready"
	MsgPhotoSaved         = "Photo saved successfully"
	MsgCaptureFailed      = "Failed to capture photo"
)

const DefaultPageSize = 10

// Media is the part of the remote service the feed needs.
type Media interface {
	GetMediaFeed(ctx context.Context, limit, offset int) (models.FeedPage, error)
}

type Options struct {
	PageSize int
	// CacheDir receives captured photos.
	CacheDir string
	Now      func() time.Time
}

type Controller struct {
	loop   *screens.Loop
	media  Media
	perms  camera.Permissions
	state  *flow.State[UiState]
	events *flow.Events[Event]
	out    *screens.Emitter[Event]
	opts   Options
	log    logging.Logger

	// owned by the loop goroutine
	device  camera.Device
	loadSeq uint64
}

// New starts the controller and the initial feed load.
func New(ctx context.Context, media Media, perms camera.Permissions, pool *workers.Pool, opts Options, log logging.Logger) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	log = log.With("screen", "home")
	c := &Controller{
		loop:   screens.NewLoop(ctx, pool, log),
		media:  media,
		perms:  perms,
		state:  flow.NewState(UiState{Camera: CameraState{HasCameraPermission: perms.HasPermission(camera.PermissionCamera)}}),
		events: flow.NewEvents[Event](),
		opts:   opts,
		log:    log,
	}
	c.out = screens.NewEmitter(c.loop, c.events)

	_ = c.loop.Post(c.loadMedia)
	return c
}

func (c *Controller) State() UiState {
	return c.state.Get()
}

func (c *Controller) Watch(ctx context.Context) <-chan UiState {
	return c.state.Watch(ctx)
}

// Events must be drained by exactly one consumer.
func (c *Controller) Events() <-chan Event {
	return c.events.C()
}

// emit queues ev for the consumer. It never blocks the loop, so a consumer
// that is slow to handle one event does not hold up later actions.
func (c *Controller) emit(ctx context.Context, ev Event) {
	c.log.Debug(ctx, "event", "event", DescribeEvent(ev))
	c.out.Emit(ev)
}

func (c *Controller) updateCamera(fn func(CameraState) CameraState) {
	c.state.Update(func(s UiState) UiState {
		s.Camera = fn(s.Camera)
		return s
	})
}

// OnScreenInitialized re-reads the permission and asks for it if missing.
func (c *Controller) OnScreenInitialized() {
	_ = c.loop.Post(func(ctx context.Context) {
		granted := c.perms.HasPermission(camera.PermissionCamera)
		c.updateCamera(func(cs CameraState) CameraState {
			cs.HasCameraPermission = granted
			return cs
		})
		if !granted {
			c.emit(ctx, RequestPermission{Permission: camera.PermissionCamera})
		}
	})
}

func (c *Controller) OnPermissionResult(granted bool) {
	_ = c.loop.Post(func(ctx context.Context) {
		c.updateCamera(func(cs CameraState) CameraState {
			cs.HasCameraPermission = granted
			return cs
		})
		c.log.Debug(ctx, "permission result", "granted", granted)
		if !granted {
			c.emit(ctx, ShowError{Message: MsgPermissionRequired})
		}
	})
}

// SetCaptureDevice binds the device and marks the camera active.
func (c *Controller) SetCaptureDevice(d camera.Device) {
	_ = c.loop.Post(func(ctx context.Context) {
		c.device = d
		c.updateCamera(func(cs CameraState) CameraState {
			cs.IsCameraActive = d != nil
			return cs
		})
		c.log.Debug(ctx, "camera ready", "active", d != nil)
	})
}

func (c *Controller) SetPreviewSnapshot(img image.Image) {
	_ = c.loop.Post(func(ctx context.Context) {
		c.updateCamera(func(cs CameraState) CameraState {
			cs.LastPreviewSnapshot = img
			return cs
		})
	})
}

// OnCapturePhoto takes a photo into the cache directory.
func (c *Controller) OnCapturePhoto() {
	_ = c.loop.Post(func(ctx context.Context) {
		cs := c.state.Get().Camera
		if !cs.HasCameraPermission {
			c.emit(ctx, RequestPermission{Permission: camera.PermissionCamera})
			return
		}
		if !cs.IsCameraActive || c.device == nil {
			c.log.Warn(ctx, "capture requested before camera ready")
			c.emit(ctx, ShowError{Message: MsgCameraNotReady})
			return
		}
		if cs.IsCapturing {
			return
		}

		device := c.device
		path := filepath.Join(c.opts.CacheDir, captureName(c.opts.Now()))
		c.updateCamera(func(cs CameraState) CameraState {
			cs.IsCapturing = true
			return cs
		})

		screens.Go(c.loop, func(ctx context.Context) (string, error) {
			return path, device.Capture(ctx, path)
		}, func(ctx context.Context, path string, err error) {
			c.updateCamera(func(cs CameraState) CameraState {
				cs.IsCapturing = false
				if err == nil {
					cs.LastCapturePath = path
				}
				return cs
			})
			if err != nil {
				c.log.Error(ctx, "photo capture failed", "error", err)
				c.emit(ctx, ShowError{Message: MsgCaptureFailed})
				return
			}
			c.log.Info(ctx, "photo saved", "path", path)
			c.emit(ctx, ShowSuccess{Message: MsgPhotoSaved})
		})
	})
}

// captureName is yyyy-MM-dd-HH-mm-ss-SSS.jpg.
func captureName(t time.Time) string {
	return fmt.Sprintf("%s-%03d.jpg", t.Format("2006-01-02-15-04-05"), t.Nanosecond()/int(time.Millisecond))
}

// RefreshMedia reloads the first feed page.
func (c *Controller) RefreshMedia() {
	_ = c.loop.Post(c.loadMedia)
}

func (c *Controller) loadMedia(ctx context.Context) {
	c.loadSeq++
	seq := c.loadSeq
	c.state.Update(func(s UiState) UiState {
		s.IsLoadingMedia = true
		return s
	})

	limit := c.opts.PageSize
	screens.Go(c.loop, func(ctx context.Context) (models.FeedPage, error) {
		return c.media.GetMediaFeed(ctx, limit, 0)
	}, func(ctx context.Context, page models.FeedPage, err error) {
		if seq != c.loadSeq {
			return
		}
		if err != nil {
			msg := api.Message(err)
			c.log.Warn(ctx, "load media failed", "error", msg)
			c.state.Update(func(s UiState) UiState {
				s.IsLoadingMedia = false
				s.Error = msg
				return s
			})
			c.emit(ctx, ShowError{Message: msg})
			return
		}

		c.log.Debug(ctx, "media loaded", "items", len(page.Items))
		c.state.Update(func(s UiState) UiState {
			s.MediaItems = slices.Clone(page.Items)
			s.IsLoadingMedia = false
			s.Error = ""
			return s
		})
	})
}

func (c *Controller) Flush(ctx context.Context) error {
	return c.loop.Flush(ctx)
}

func (c *Controller) Close() {
	c.loop.Close()
}
