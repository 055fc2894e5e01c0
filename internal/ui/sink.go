// Package ui delivers messages to the user and maintains the activity log.
// The log file is shared between a parent process and the elevated child it
// spawns, a session id ties their lines together.
package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/fs"
)

// TimeFormat is the format used for timestamps in the activity log.
const TimeFormat = "2006-01-02 15:04:05"

// messageTitle is the caption of message boxes shown when no console is
// attached.
const messageTitle = "File Unblocker"

// boxStyle selects the icon of a message box.
type boxStyle int

const (
	boxWarning boxStyle = iota
	boxError
)

// SinkOptions control where messages and log lines are delivered.
type SinkOptions struct {
	// LogFile appends log lines to the given file. Empty disables the file
	// log.
	LogFile string
	// Verbosity is the console verbosity, 0 (quiet) to 3 (debug). Log lines
	// are echoed to stdout at verbosity 2 and up.
	Verbosity uint
	// Session ties the log lines of this process to those of the process
	// that spawned it. Empty starts a new session.
	Session string
	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Sink writes user messages and activity log lines. It is safe for
// concurrent use.
type Sink struct {
	mu        sync.Mutex
	logFile   *os.File
	verbosity uint
	stdout    io.Writer
	stderr    io.Writer
	popup     bool
	session   string
}

// NewSink opens the log file (if any) and returns a ready to use Sink. The
// log file is opened exactly once, an unwritable file is reported here and
// not in the middle of a run.
func NewSink(opts SinkOptions) (*Sink, error) {
	s := &Sink{
		verbosity: opts.Verbosity,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		session:   opts.Session,
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	// message boxes replace stderr only, never an injected writer
	s.popup = s.stderr == io.Writer(os.Stderr) && popupPreferred()
	if s.session == "" {
		s.session = uuid.NewString()
	}

	if opts.LogFile != "" {
		if err := fs.MkdirAll(filepath.Dir(opts.LogFile), 0700); err != nil {
			return nil, errors.Wrapf(err, "unable to create log directory for %v", opts.LogFile)
		}
		f, err := fs.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to open log file %v", opts.LogFile)
		}
		s.logFile = f

		if err := s.Log(fmt.Sprintf("Session %v started", s.session)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return s, nil
}

// Session returns the session id, to be handed to a relaunched child.
func (s *Sink) Session() string {
	return s.session
}

// Enabled reports whether Log lines go anywhere at all.
func (s *Sink) Enabled() bool {
	return s.verbosity >= 2 || s.logFile != nil
}

// Log appends a timestamped line to the activity log. Without a log file and
// below verbosity 2 it does nothing. A failed write to the log file is
// returned as an error.
func (s *Sink) Log(msg string) error {
	if !s.Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("[%s UTC] %s", time.Now().UTC().Format(TimeFormat), msg)
	if s.verbosity >= 2 {
		fmt.Fprintln(s.stdout, line)
	}

	if s.logFile == nil {
		return nil
	}

	if _, err := fmt.Fprintln(s.logFile, line); err != nil {
		return errors.Wrapf(err, "unable to write log file")
	}
	return nil
}

// Warnf reports a non-fatal problem. When the process has no console, for
// example when started from the Explorer context menu, the message is shown
// in a message box instead.
func (s *Sink) Warnf(msg string, args ...interface{}) {
	text := fmt.Sprintf(msg, args...)
	if s.popup && messageBox(messageTitle, text, boxWarning) {
		return
	}
	fmt.Fprintf(s.stderr, "warning: %v\n", text)
}

// Errorf reports an error to the user, following the same console or message
// box rules as Warnf.
func (s *Sink) Errorf(msg string, args ...interface{}) {
	text := fmt.Sprintf(msg, args...)
	if s.popup && messageBox(messageTitle, text, boxError) {
		return
	}
	fmt.Fprintf(s.stderr, "error: %v\n", text)
}

// Close closes the log file.
func (s *Sink) Close() error {
	if s.logFile == nil {
		return nil
	}
	return s.logFile.Close()
}
