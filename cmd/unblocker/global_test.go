package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unblocker/unblocker/internal/config"
	rtest "github.com/unblocker/unblocker/internal/test"
)

func TestPreRunVerbosity(t *testing.T) {
	var tests = []struct {
		quiet   bool
		verbose int
		want    uint
	}{
		{false, 0, 1},
		{true, 0, 0},
		{false, 1, 2},
		{false, 2, 3},
		{false, 4, 3},
	}

	for _, test := range tests {
		opts := GlobalOptions{Quiet: test.quiet, Verbose: test.verbose}
		rtest.OK(t, opts.PreRun(false))
		rtest.Equals(t, test.want, opts.verbosity)
	}

	opts := GlobalOptions{Quiet: true, Verbose: 1}
	err := opts.PreRun(false)
	rtest.Assert(t, err != nil && strings.Contains(err.Error(), "cannot be specified at the same time"),
		"unexpected error for conflicting flags: %v", err)
}

func TestPreRunLoadsConfigAndOpensSink(t *testing.T) {
	dir := rtest.TempDir(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	logPath := filepath.Join(dir, "activity.log")
	rtest.OK(t, os.WriteFile(cfgPath, []byte("log_file: "+logPath+"\nexcludes:\n  - '*.iso'\n"), 0644))

	opts := GlobalOptions{ConfigFile: cfgPath, stdout: io.Discard, stderr: io.Discard}
	rtest.OK(t, opts.PreRun(true))

	rtest.Equals(t, []string{"*.iso"}, opts.fileCfg.Excludes)
	rtest.Assert(t, opts.sink != nil, "PreRun did not install a sink")

	rtest.OK(t, opts.sink.Log("Unblocked: report.docx"))
	rtest.OK(t, opts.sink.Close())

	data, err := os.ReadFile(logPath)
	rtest.OK(t, err)
	rtest.Assert(t, strings.Contains(string(data), "Session "+opts.sink.Session()),
		"log file lacks the session header: %q", data)
	rtest.Assert(t, strings.Contains(string(data), "Unblocked: report.docx"),
		"log file lacks the logged line: %q", data)
}

func TestPreRunMissingExplicitConfig(t *testing.T) {
	dir := rtest.TempDir(t)

	opts := GlobalOptions{ConfigFile: filepath.Join(dir, "missing.yaml")}
	err := opts.PreRun(true)
	rtest.Assert(t, err != nil && strings.Contains(err.Error(), "does not exist"),
		"unexpected error for missing config file: %v", err)
}

func TestPreRunMissingDefaultConfig(t *testing.T) {
	dir := rtest.TempDir(t)
	t.Setenv("UNBLOCKER_CONFIG", filepath.Join(dir, "nope.yaml"))

	opts := GlobalOptions{stdout: io.Discard, stderr: io.Discard}
	rtest.OK(t, opts.PreRun(true))
	defer func() {
		rtest.OK(t, opts.sink.Close())
	}()

	rtest.Equals(t, &config.File{}, opts.fileCfg)
}

func TestPrintFunctionsRespectGlobalStdout(t *testing.T) {
	testSetupGlobals(t)

	for _, p := range []func(){
		func() { Printf("%s\n", "message") },
		func() { Verbosef("%s\n", "message") },
	} {
		buf, err := withCaptureStdout(func(_ GlobalOptions) error {
			p()
			return nil
		})
		rtest.OK(t, err)
		rtest.Equals(t, "message\n", buf.String())
	}

	globalOptions.verbosity = 0
	buf, err := withCaptureStdout(func(_ GlobalOptions) error {
		Verbosef("%s\n", "message")
		return nil
	})
	rtest.OK(t, err)
	rtest.Equals(t, "", buf.String())
}

func TestWarnfRespectsGlobalStderr(t *testing.T) {
	testSetupGlobals(t)

	buf := bytes.NewBuffer(nil)
	globalOptions.stderr = buf

	Warnf("careful: %v\n", "stuff")
	rtest.Equals(t, "careful: stuff\n", buf.String())
}
