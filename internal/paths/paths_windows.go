//go:build windows
// +build windows

package paths

import (
	"path/filepath"
)

const legacyPathLimit = 260

// The marker stream can only be addressed reliably through an absolute path.
func validatePlatform(path string) error {
	if !filepath.IsAbs(path) {
		return &InvalidPathError{Path: path, Reason: "path must be absolute on Windows"}
	}
	return nil
}

func defaultDenylist() []string {
	return []string{
		`C:\Windows\System32`,
		`C:\Windows\SysWOW64`,
		`C:\Program Files\Windows`,
	}
}
