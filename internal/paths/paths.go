// Package paths validates target paths and derives the location of the
// Zone.Identifier marker stream for a file.
package paths

import (
	"fmt"
	"strings"
)

// MarkerStream is the name of the alternate data stream Windows attaches to
// files downloaded from untrusted sources.
const MarkerStream = "Zone.Identifier"

// InvalidPathError reports a path that failed validation.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// Validate checks a user supplied path before it is used for any file system
// access. It rejects empty paths, traversal sequences, characters that cannot
// occur in a valid path and, on Windows, relative paths.
func Validate(path string) error {
	if path == "" {
		return &InvalidPathError{Path: path, Reason: "path is empty"}
	}
	if strings.Contains(path, "..") {
		return &InvalidPathError{Path: path, Reason: "path contains directory traversal sequences"}
	}
	if strings.ContainsAny(path, "<>|\x00") {
		return &InvalidPathError{Path: path, Reason: "path contains invalid characters"}
	}
	return validatePlatform(path)
}

// MarkerPath returns the path of the Zone.Identifier stream for file. The
// file path is validated first.
func MarkerPath(file string) (string, error) {
	if err := Validate(file); err != nil {
		return "", err
	}
	return file + ":" + MarkerStream, nil
}

// ExceedsLegacyLimit reports whether path is longer than the 260 character
// limit of older Windows APIs. Such paths are still processed, callers may
// want to warn about them.
func ExceedsLegacyLimit(path string) bool {
	return legacyPathLimit > 0 && len(path) > legacyPathLimit
}
