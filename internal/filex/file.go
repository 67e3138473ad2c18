// Package filex holds filesystem helpers for the client's data directory.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) with owner-only permissions and
// returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// EnsureSubDir creates name under parent and returns its absolute path.
func EnsureSubDir(parent, name string) (string, error) {
	return EnsureDir(filepath.Join(parent, name))
}
