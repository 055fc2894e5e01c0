//go:build !windows
// +build !windows

package paths

const legacyPathLimit = 0

func validatePlatform(string) error {
	return nil
}

func defaultDenylist() []string {
	return nil
}
