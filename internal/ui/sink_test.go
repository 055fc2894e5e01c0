package ui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	rtest "github.com/unblocker/unblocker/internal/test"
	"github.com/unblocker/unblocker/internal/ui"
)

func TestSinkDisabled(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sink, err := ui.NewSink(ui.SinkOptions{Stdout: &stdout, Stderr: &stderr})
	rtest.OK(t, err)
	defer func() { rtest.OK(t, sink.Close()) }()

	rtest.Assert(t, !sink.Enabled(), "sink without log file and verbosity 0 must be disabled")
	rtest.OK(t, sink.Log("this line goes nowhere"))
	rtest.Equals(t, "", stdout.String())
}

func TestSinkLogFile(t *testing.T) {
	dir := rtest.TempDir(t)
	logFile := filepath.Join(dir, "activity.log")

	var stdout, stderr bytes.Buffer
	sink, err := ui.NewSink(ui.SinkOptions{
		LogFile: logFile,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	rtest.OK(t, err)

	rtest.OK(t, sink.Log("Unblocked: /tmp/report.docx"))
	rtest.OK(t, sink.Close())

	data, err := os.ReadFile(logFile)
	rtest.OK(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	rtest.Equals(t, 2, len(lines))
	rtest.Assert(t, strings.Contains(lines[0], "Session "+sink.Session()),
		"missing session header in %q", lines[0])

	format := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC\] Unblocked: /tmp/report\.docx$`)
	rtest.Assert(t, format.MatchString(lines[1]), "unexpected log line %q", lines[1])

	// nothing is echoed to the console at verbosity 0
	rtest.Equals(t, "", stdout.String())
}

func TestSinkLogFileAppend(t *testing.T) {
	dir := rtest.TempDir(t)
	logFile := filepath.Join(dir, "activity.log")

	first, err := ui.NewSink(ui.SinkOptions{LogFile: logFile})
	rtest.OK(t, err)
	rtest.OK(t, first.Log("parent line"))
	rtest.OK(t, first.Close())

	// a relaunched child reuses the session and appends to the same file
	second, err := ui.NewSink(ui.SinkOptions{LogFile: logFile, Session: first.Session()})
	rtest.OK(t, err)
	rtest.Equals(t, first.Session(), second.Session())
	rtest.OK(t, second.Log("child line"))
	rtest.OK(t, second.Close())

	data, err := os.ReadFile(logFile)
	rtest.OK(t, err)
	rtest.Assert(t, strings.Contains(string(data), "parent line"), "missing parent line")
	rtest.Assert(t, strings.Contains(string(data), "child line"), "missing child line")
}

func TestSinkConsoleEcho(t *testing.T) {
	var stdout bytes.Buffer
	sink, err := ui.NewSink(ui.SinkOptions{Verbosity: 2, Stdout: &stdout})
	rtest.OK(t, err)
	defer func() { rtest.OK(t, sink.Close()) }()

	rtest.Assert(t, sink.Enabled(), "sink at verbosity 2 must be enabled")
	rtest.OK(t, sink.Log("No ADS found: /tmp/clean.txt"))

	out := stdout.String()
	rtest.Assert(t, strings.Contains(out, " UTC] No ADS found: /tmp/clean.txt"),
		"unexpected console echo %q", out)
}

func TestSinkWarnf(t *testing.T) {
	var stderr bytes.Buffer
	sink, err := ui.NewSink(ui.SinkOptions{Verbosity: 1, Stderr: &stderr})
	rtest.OK(t, err)
	defer func() { rtest.OK(t, sink.Close()) }()

	sink.Warnf("skipping system directory %v", "/usr/lib")
	rtest.Equals(t, "warning: skipping system directory /usr/lib\n", stderr.String())

	stderr.Reset()
	sink.Errorf("path not found: %v", "/tmp/missing")
	rtest.Equals(t, "error: path not found: /tmp/missing\n", stderr.String())
}

func TestSinkSession(t *testing.T) {
	a, err := ui.NewSink(ui.SinkOptions{})
	rtest.OK(t, err)
	b, err := ui.NewSink(ui.SinkOptions{})
	rtest.OK(t, err)

	rtest.Assert(t, a.Session() != "", "empty session id")
	rtest.Assert(t, a.Session() != b.Session(), "session ids must differ")

	c, err := ui.NewSink(ui.SinkOptions{Session: "11111111-2222-3333-4444-555555555555"})
	rtest.OK(t, err)
	rtest.Equals(t, "11111111-2222-3333-4444-555555555555", c.Session())
}
