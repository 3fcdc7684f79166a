// Package checker locates and runs the Flow executable.
package checker

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultCommand is resolved through PATH when nothing better is found.
const DefaultCommand = "flow"

// LocalBin is where a project-local install of the checker lives.
var LocalBin = filepath.Join("node_modules", ".bin", "flow")

// ConfigMarker is the file that marks a Flow project root.
const ConfigMarker = ".flowconfig"

// Locate picks the executable to run for files under startDir: the
// configured path if set, then a project-local install found searching
// upward, then DefaultCommand.
func Locate(configured, startDir string) string {
	if p := strings.TrimSpace(configured); p != "" {
		return p
	}
	if startDir != "" {
		if local := FindUp(startDir, LocalBin); local != "" {
			return local
		}
	}
	return DefaultCommand
}

// FindUp searches dir and its parents for rel and returns the first
// existing path, or "" if none exists.
func FindUp(dir, rel string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ProjectRoot returns the nearest directory at or above dir containing
// ConfigMarker.
func ProjectRoot(dir string) (string, bool) {
	marker := FindUp(dir, ConfigMarker)
	if marker == "" {
		return "", false
	}
	return filepath.Dir(marker), true
}
