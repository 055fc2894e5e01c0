package ui

import (
	"os"

	"golang.org/x/term"
)

// StdoutIsTerminal returns true when stdout is connected to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// StderrIsTerminal returns true when stderr is connected to a terminal.
func StderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
