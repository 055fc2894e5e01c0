package unblock_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/feature"
	rtest "github.com/unblocker/unblocker/internal/test"
	"github.com/unblocker/unblocker/internal/unblock"
)

func TestWalkCounts(t *testing.T) {
	dir := rtest.TempDir(t)
	createMarked(t, filepath.Join(dir, "a.txt"))
	createFile(t, filepath.Join(dir, "b.txt"))
	rtest.OK(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	createMarked(t, filepath.Join(dir, "sub", "c.txt"))

	// the marker files are ordinary directory entries here and are visited
	// themselves, on Windows the streams are invisible to the walk
	want := unblock.Stats{FilesProcessed: 5, FilesUnblocked: 2, FilesNoMarker: 3}
	if runtime.GOOS == "windows" {
		want = unblock.Stats{FilesProcessed: 3, FilesUnblocked: 2, FilesNoMarker: 1}
	} else {
		// symlinks are not followed and not counted
		rtest.OK(t, os.Symlink(filepath.Join(dir, "b.txt"), filepath.Join(dir, "link.txt")))
	}

	sink := &testSink{}
	stats, err := unblock.Walk(context.Background(), &unblock.Config{Sink: sink}, dir)
	rtest.OK(t, err)

	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("wrong statistics (-want +got):\n%s", diff)
	}

	rtest.Assert(t, !markerExists(t, filepath.Join(dir, "a.txt")), "marker of a.txt still present")
	rtest.Assert(t, !markerExists(t, filepath.Join(dir, "sub", "c.txt")), "marker of c.txt still present")

	rtest.Equals(t, "Processing directory: "+dir, sink.lines[0])
	rtest.Equals(t, stats.Summary(), sink.lines[len(sink.lines)-1])
}

func TestWalkEmptyDirectory(t *testing.T) {
	dir := rtest.TempDir(t)

	sink := &testSink{}
	stats, err := unblock.Walk(context.Background(), &unblock.Config{Sink: sink}, dir)
	rtest.OK(t, err)
	rtest.Equals(t, unblock.Stats{}, stats)
	rtest.Equals(t, "Processed 0 files: 0 unblocked, 0 had no ADS, 0 failed (0 permission errors)",
		sink.lines[len(sink.lines)-1])
}

func TestWalkInaccessibleSubdir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("chmod does not revoke directory access")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, permissions are not enforced")
	}

	dir := rtest.TempDir(t)
	locked := filepath.Join(dir, "locked")
	rtest.OK(t, os.Mkdir(locked, 0o755))
	createFile(t, filepath.Join(locked, "hidden.txt"))
	createFile(t, filepath.Join(dir, "ok.txt"))

	rtest.OK(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	sink := &testSink{}
	cfg := &unblock.Config{Sink: sink}
	stats, err := unblock.Walk(context.Background(), cfg, dir)
	rtest.OK(t, err)

	// the unreadable directory is absorbed into the counters, the remaining
	// files are still processed
	want := unblock.Stats{
		FilesProcessed:   1,
		FilesNoMarker:    1,
		FilesFailed:      1,
		PermissionErrors: 1,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("wrong statistics (-want +got):\n%s", diff)
	}
	rtest.Assert(t, cfg.RequiresElevation(), "RequiresElevation not set")

	found := false
	for _, line := range sink.lines {
		if line == "Access denied to directory: "+locked {
			found = true
		}
	}
	rtest.Assert(t, found, "missing access denied log line in %v", sink.lines)
}

func TestWalkLogFailureAborts(t *testing.T) {
	dir := rtest.TempDir(t)
	createFile(t, filepath.Join(dir, "a.txt"))

	sinkErr := errors.New("log destination gone")
	stats, err := unblock.Walk(context.Background(), &unblock.Config{Sink: &testSink{logErr: sinkErr}}, dir)

	rtest.Assert(t, errors.Is(err, sinkErr), "want the log failure, got %v", err)
	rtest.Equals(t, unblock.Stats{}, stats)
}

func TestWalkLogFailureDecoupled(t *testing.T) {
	defer feature.TestSetFlag(t, feature.Flag, feature.DecoupleLogErrors, true)()

	dir := rtest.TempDir(t)
	createFile(t, filepath.Join(dir, "a.txt"))

	sink := &testSink{logErr: errors.New("log destination gone")}
	stats, err := unblock.Walk(context.Background(), &unblock.Config{Sink: sink}, dir)

	rtest.OK(t, err)
	rtest.Equals(t, uint(1), stats.FilesProcessed)
	rtest.Assert(t, len(sink.warnings) > 0, "log failures were not reported as warnings")
}

func TestWalkCancel(t *testing.T) {
	dir := rtest.TempDir(t)
	createFile(t, filepath.Join(dir, "a.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := unblock.Walk(ctx, &unblock.Config{Sink: &testSink{}}, dir)
	rtest.Assert(t, errors.Is(err, context.Canceled), "want context.Canceled, got %v", err)
}

func TestWalkInvalidDir(t *testing.T) {
	_, err := unblock.Walk(context.Background(), &unblock.Config{}, filepath.Join("..", "secret"))
	rtest.Assert(t, err != nil, "traversal path was accepted")
}
