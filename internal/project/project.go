// Package project locates the directory that anchors fonts, data and output.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultMarker is the file whose presence marks the project root.
const DefaultMarker = "go.mod"

var ErrRootNotFound = errors.New("project root not found")

// FindRoot walks from start up to the filesystem root and returns the first
// directory containing marker.
func FindRoot(start, marker string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
