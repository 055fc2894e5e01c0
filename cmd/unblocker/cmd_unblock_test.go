package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/unblocker/unblocker/internal/config"
	"github.com/unblocker/unblocker/internal/elevation"
	"github.com/unblocker/unblocker/internal/errors"
	rtest "github.com/unblocker/unblocker/internal/test"
	"github.com/unblocker/unblocker/internal/ui"
	"github.com/unblocker/unblocker/internal/unblock"
)

func TestRunUnblockFile(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	file := filepath.Join(dir, "report.docx")
	createMarkedFile(t, file)

	buf, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{file})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "Processed 1 files: 1 unblocked, 0 had no ADS, 0 failed (0 permission errors)\n", buf.String())
	rtest.Assert(t, !markerExists(file), "marker still present after unblock")
}

func TestRunUnblockPlainFile(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	file := filepath.Join(dir, "notes.txt")
	rtest.OK(t, os.WriteFile(file, []byte("already fine"), 0644))

	buf, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{file})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "Processed 1 files: 0 unblocked, 1 had no ADS, 0 failed (0 permission errors)\n", buf.String())
}

func TestRunUnblockDirectory(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	marked := filepath.Join(dir, "download.pdf")
	createMarkedFile(t, marked)
	rtest.OK(t, os.WriteFile(filepath.Join(dir, "clean.txt"), []byte("clean"), 0644))

	buf, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{dir})
	})
	rtest.OK(t, err)
	rtest.Assert(t, strings.HasPrefix(buf.String(), "Processed "), "missing summary: %q", buf.String())
	rtest.Assert(t, strings.Contains(buf.String(), " 1 unblocked, "), "unexpected summary: %q", buf.String())
	rtest.Assert(t, !markerExists(marked), "marker still present after unblock")
}

func TestRunUnblockDryRun(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	file := filepath.Join(dir, "setup.exe")
	createMarkedFile(t, file)

	buf, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{DryRun: true}, gopts, []string{file})
	})
	rtest.OK(t, err)
	rtest.Assert(t, markerExists(file), "dry run removed the marker")
	rtest.Assert(t, strings.Contains(buf.String(), " 1 unblocked, "), "unexpected summary: %q", buf.String())
}

func TestRunUnblockJSON(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	file := filepath.Join(dir, "setup.exe")
	createMarkedFile(t, file)

	buf, err := withCaptureStdout(func(gopts GlobalOptions) error {
		gopts.JSON = true
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{file})
	})
	rtest.OK(t, err)

	var sum unblockSummary
	rtest.OK(t, json.Unmarshal(buf.Bytes(), &sum))
	rtest.Equals(t, "summary", sum.MessageType)
	rtest.Equals(t, uint(1), sum.FilesProcessed)
	rtest.Equals(t, uint(1), sum.FilesUnblocked)
	rtest.Equals(t, uint(0), sum.FilesFailed)
	rtest.Assert(t, !sum.RequiresElevation, "unexpected requires_elevation in %q", buf.String())
}

func TestRunUnblockExcludes(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	iso := filepath.Join(dir, "image.iso")
	createMarkedFile(t, iso)
	doc := filepath.Join(dir, "paper.docx")
	createMarkedFile(t, doc)

	opts := UnblockOptions{}
	opts.Excludes = []string{"*.iso"}
	_, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), opts, gopts, []string{dir})
	})
	rtest.OK(t, err)
	rtest.Assert(t, markerExists(iso), "excluded file was unblocked")
	rtest.Assert(t, !markerExists(doc), "marker of included file still present")
}

func TestRunUnblockConfigExcludes(t *testing.T) {
	testSetupGlobals(t)
	globalOptions.fileCfg = &config.File{Excludes: []string{"*.iso"}}
	dir := rtest.TempDir(t)
	iso := filepath.Join(dir, "backup.iso")
	createMarkedFile(t, iso)

	_, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{dir})
	})
	rtest.OK(t, err)
	rtest.Assert(t, markerExists(iso), "file excluded via config file was unblocked")
}

func TestRunUnblockRelativeTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relative targets are rejected on Windows")
	}
	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	file := filepath.Join(dir, "local.dat")
	createMarkedFile(t, file)
	defer rtest.Chdir(t, dir)()

	_, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{"local.dat"})
	})
	rtest.OK(t, err)
	rtest.Assert(t, !markerExists(file), "marker still present after unblock")
}

func TestRunUnblockQuiet(t *testing.T) {
	testSetupGlobals(t)
	globalOptions.verbosity = 0
	dir := rtest.TempDir(t)
	file := filepath.Join(dir, "quiet.bin")
	createMarkedFile(t, file)

	buf, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{file})
	})
	rtest.OK(t, err)
	rtest.Equals(t, "", buf.String())
	rtest.Assert(t, !markerExists(file), "marker still present after unblock")
}

func TestRunUnblockMissingTarget(t *testing.T) {
	testSetupGlobals(t)
	dir := rtest.TempDir(t)

	_, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{filepath.Join(dir, "gone.txt")})
	})
	rtest.Assert(t, errors.Is(err, unblock.ErrTargetNotFound), "expected ErrTargetNotFound, got %v", err)
}

func TestRunUnblockNoTarget(t *testing.T) {
	testSetupGlobals(t)

	_, err := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, nil)
	})
	rtest.Assert(t, err != nil && strings.Contains(err.Error(), "expects a single file or directory"),
		"unexpected error for missing argument: %v", err)
}

func TestRunUnblockPermissionEpilogue(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("an elevated relaunch would show a UAC prompt")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, permissions are not enforced")
	}

	testSetupGlobals(t)
	dir := rtest.TempDir(t)
	locked := filepath.Join(dir, "locked")
	rtest.OK(t, os.Mkdir(locked, 0o755))
	file := filepath.Join(locked, "report.docx")
	createMarkedFile(t, file)

	rtest.OK(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var stderr bytes.Buffer
	sink, err := ui.NewSink(ui.SinkOptions{Stdout: io.Discard, Stderr: &stderr})
	rtest.OK(t, err)
	globalOptions.sink = sink

	buf, runErr := withCaptureStdout(func(gopts GlobalOptions) error {
		return runUnblock(context.Background(), UnblockOptions{}, gopts, []string{locked})
	})

	// with no way to relaunch here, the permission problem surfaces as an
	// elevation failure, after the summary was printed
	rtest.Assert(t, errors.Is(runErr, elevation.ErrElevationFailed),
		"want ErrElevationFailed, got %v", runErr)
	rtest.Equals(t, "Processed 2 files: 0 unblocked, 1 had no ADS, 1 failed (1 permission errors)\n",
		buf.String())
	rtest.Assert(t, strings.Contains(stderr.String(), "Run as administrator"),
		"missing elevation hint in %q", stderr.String())
	rtest.Assert(t, markerExists(file), "marker removed despite missing permissions")
}
