package elevation

import (
	"os"

	"golang.org/x/sys/windows"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/errors"
)

// RelaunchSupported is true where an elevated relaunch can be requested.
const RelaunchSupported = true

// IsElevated reports whether the current process runs with an elevated
// token.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// Relaunch starts the current executable again with the given arguments,
// requesting elevation via the "runas" verb. The UAC prompt is the user's
// chance to decline, a declined prompt is returned as ErrElevationFailed.
// The caller is expected to exit once Relaunch returns nil, the work
// continues in the child.
func Relaunch(args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "locate executable")
	}

	verb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	params, err := windows.UTF16PtrFromString(joinArgs(args))
	if err != nil {
		return err
	}

	debug.Log("relaunching %v elevated with args %q", exe, joinArgs(args))

	if err := windows.ShellExecute(0, verb, file, params, nil, windows.SW_SHOWNORMAL); err != nil {
		return errors.Wrapf(ErrElevationFailed, "ShellExecute: %v", err)
	}
	return nil
}
