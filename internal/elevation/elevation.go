// Package elevation checks for administrator rights and relaunches the
// current process elevated. Relaunching is only available on Windows, where
// it goes through the UAC prompt.
package elevation

import (
	"github.com/unblocker/unblocker/internal/errors"
)

// ErrElevationFailed indicates that the elevated relaunch could not be
// started or was declined by the user.
var ErrElevationFailed = errors.New("elevation request failed")
