//go:build !windows

package elevation

import (
	"os"

	"github.com/unblocker/unblocker/internal/errors"
)

// RelaunchSupported is true where an elevated relaunch can be requested.
const RelaunchSupported = false

// IsElevated reports whether the process runs as root.
func IsElevated() bool {
	return os.Geteuid() == 0
}

// Relaunch is not available here, users re-run the tool with sudo instead.
func Relaunch(_ []string) error {
	return errors.Wrap(ErrElevationFailed, "not supported on this platform")
}
