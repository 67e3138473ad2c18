// Package camera models the capture side of the home screen: the runtime
// permission and the capture device bound by the rendering layer.
package camera

import (
	"context"
	"sync"
)

type Permission string

const PermissionCamera Permission = "camera"

// Permissions answers whether a runtime permission is granted.
type Permissions interface {
	HasPermission(p Permission) bool
}

// Grants is an in-memory Permissions whose answers are set by the host.
type Grants struct {
	mu      sync.RWMutex
	granted map[Permission]bool
}

func NewGrants() *Grants {
	return &Grants{granted: make(map[Permission]bool)}
}

func (g *Grants) HasPermission(p Permission) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.granted[p]
}

func (g *Grants) Set(p Permission, granted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.granted[p] = granted
}

// Device captures one still image into path.
type Device interface {
	Capture(ctx context.Context, path string) error
}
