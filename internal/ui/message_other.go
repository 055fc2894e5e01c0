//go:build !windows

package ui

// There are no message boxes here, messages always go to the console.
func popupPreferred() bool {
	return false
}

func messageBox(_, _ string, _ boxStyle) bool {
	return false
}
