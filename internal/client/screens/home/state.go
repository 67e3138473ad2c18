package home

import (
	"fmt"
	"image"

	"github.com/snaplet/snaplet/internal/client/camera"
	"github.com/snaplet/snaplet/internal/client/models"
)

type CameraState struct {
	HasCameraPermission bool
	IsCameraActive      bool
	IsCapturing         bool
	LastPreviewSnapshot image.Image
	LastCapturePath     string
}

type UiState struct {
	Camera         CameraState
	MediaItems     []models.Photo
	IsLoadingMedia bool
	// Error is the message of the last failed feed load, empty otherwise.
	Error string
}

// Event is a one-shot instruction for the rendering layer.
type Event interface {
	homeEvent()
}

type RequestPermission struct {
	Permission camera.Permission
}

type ShowError struct {
	Message string
}

type ShowSuccess struct {
	Message string
}

func (RequestPermission) homeEvent() {}
func (ShowError) homeEvent()         {}
func (ShowSuccess) homeEvent()       {}

// DescribeEvent renders ev for logs and the shell.
func DescribeEvent(ev Event) string {
	switch ev := ev.(type) {
	case RequestPermission:
		return fmt.Sprintf("permission requested: %s", ev.Permission)
	case ShowError:
		return "error: " + ev.Message
	case ShowSuccess:
		return ev.Message
	default:
		panic(fmt.Sprintf("home: unknown event %T", ev))
	}
}
