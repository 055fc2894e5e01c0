package ui

import (
	"golang.org/x/sys/windows"
)

// MessageBoxW styles, see winuser.h.
const (
	mbOK            = 0x00000000
	mbIconError     = 0x00000010
	mbIconWarning   = 0x00000030
	mbSetForeground = 0x00010000
)

// popupPreferred reports whether messages should be shown in a message box.
// That is the case when stderr is not connected to a terminal, which happens
// when the tool is started from the Explorer context menu or as an elevated
// child.
func popupPreferred() bool {
	return !StderrIsTerminal()
}

func messageBox(title, text string, style boxStyle) bool {
	flags := uint32(mbOK | mbSetForeground)
	switch style {
	case boxWarning:
		flags |= mbIconWarning
	case boxError:
		flags |= mbIconError
	}

	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return false
	}
	body, err := windows.UTF16PtrFromString(text)
	if err != nil {
		return false
	}

	ret, _ := windows.MessageBox(0, body, caption, flags)
	return ret != 0
}
