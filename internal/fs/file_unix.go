//go:build !windows
// +build !windows

package fs

// fixpath returns an absolute path, this is a no-op on non-Windows systems.
func fixpath(name string) string {
	return name
}
