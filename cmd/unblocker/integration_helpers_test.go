package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/unblocker/unblocker/internal/config"
	"github.com/unblocker/unblocker/internal/paths"
	rtest "github.com/unblocker/unblocker/internal/test"
	"github.com/unblocker/unblocker/internal/ui"
)

// testSetupGlobals points the package level options at harmless destinations
// and installs a sink, the way PreRun does before a real run.
func testSetupGlobals(t testing.TB) {
	sink, err := ui.NewSink(ui.SinkOptions{Stdout: io.Discard, Stderr: io.Discard})
	rtest.OK(t, err)

	prev := globalOptions
	globalOptions.verbosity = 1
	globalOptions.stderr = io.Discard
	globalOptions.sink = sink
	globalOptions.fileCfg = &config.File{}
	t.Cleanup(func() { globalOptions = prev })
}

func withCaptureStdout(inner func(gopts GlobalOptions) error) (*bytes.Buffer, error) {
	buf := bytes.NewBuffer(nil)

	prev := globalOptions.stdout
	globalOptions.stdout = buf
	defer func() {
		globalOptions.stdout = prev
	}()

	err := inner(globalOptions)
	return buf, err
}

func createMarkedFile(t testing.TB, path string) {
	t.Helper()
	rtest.OK(t, os.WriteFile(path, []byte("payload"), 0644))
	rtest.OK(t, os.WriteFile(path+":"+paths.MarkerStream, []byte("[ZoneTransfer]\r\nZoneId=3\r\n"), 0644))
}

func markerExists(path string) bool {
	_, err := os.Lstat(path + ":" + paths.MarkerStream)
	return err == nil
}
