// Package utils provides internal helpers shared by the tracelog
// packages, currently path validation for user-supplied trace file
// locations.
package utils

import (
	"path/filepath"
	"strings"

	"github.com/hyp3rd/ewrap"
)

// SecureTracePath validates and normalizes a user-supplied trace file
// path. It rejects empty paths and directory traversal sequences, and
// resolves relative paths against the working directory so the caller
// always receives an absolute path.
//
// Trace files regularly live in caller-chosen directories (a project's
// .cache dir, a temp dir chosen by the editor plugin), so absolute
// paths are allowed; only traversal out of the stated location is not.
func SecureTracePath(path string) (string, error) {
	if path == "" {
		return "", ewrap.New("trace file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return "", ewrap.New("trace file path contains directory traversal sequence").
			WithMetadata("path", path)
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", ewrap.Wrap(err, "resolving trace file path").
			WithMetadata("path", path)
	}

	return absPath, nil
}
