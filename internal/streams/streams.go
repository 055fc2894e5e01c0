// Package streams enumerates the alternate data streams (ADS) attached to a
// file. On Windows these are real NTFS streams. Elsewhere a stream is
// represented by a sibling file named "<base>:<stream>", which is also how
// downloaded-file markers appear on non-NTFS volumes.
package streams

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/unblocker/unblocker/internal/feature"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/paths"
)

// List returns the names of the streams attached to the file at path,
// without the ":$DATA" type suffix and without the unnamed default stream. A
// file without streams yields an empty list.
func List(path string) ([]string, error) {
	if feature.Flag.Enabled(feature.ExplicitStreamEnumeration) {
		return enumerate(path)
	}
	return probeMarker(path)
}

// probeMarker checks for the one stream this tool removes. It is the
// fallback for volumes where stream enumeration is not supported.
func probeMarker(path string) ([]string, error) {
	if _, err := fs.Lstat(path + ":" + paths.MarkerStream); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return []string{paths.MarkerStream}, nil
}

// IsStreamPath checks whether path names a stream rather than a file. Only
// stream names can contain ":" in a Windows file name.
func IsStreamPath(path string) bool {
	return strings.Contains(filepath.Base(path), ":")
}

// TrimStream removes the stream part from path and returns the name of the
// file the stream is attached to.
func TrimStream(path string) string {
	dir, filename := filepath.Split(path)
	if !strings.Contains(filename, ":") {
		return path
	}
	return filepath.Join(dir, strings.SplitN(filename, ":", 2)[0])
}
