package unblock

import (
	"fmt"
	"os"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/paths"
)

// Outcome classifies what happened to a single file.
type Outcome uint8

const (
	// OutcomeUnblocked means the marker stream was removed.
	OutcomeUnblocked Outcome = iota
	// OutcomeNoMarker means the file carried no marker.
	OutcomeNoMarker
	// OutcomeSkipped means a denylisted or excluded file was left alone.
	OutcomeSkipped
	// OutcomePermissionDenied means removing the marker was not permitted.
	OutcomePermissionDenied
	// OutcomeFailed covers every other failure.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnblocked:
		return "unblocked"
	case OutcomeNoMarker:
		return "no marker"
	case OutcomeSkipped:
		return "skipped"
	case OutcomePermissionDenied:
		return "permission denied"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Unblock removes the marker stream from the file at path. The path is
// validated before the filesystem is touched. An error accompanies
// OutcomePermissionDenied and OutcomeFailed, and can accompany a successful
// outcome when writing the activity log failed.
func Unblock(c *Config, path string) (Outcome, error) {
	marker, err := paths.MarkerPath(path)
	if err != nil {
		return OutcomeFailed, err
	}
	if paths.ExceedsLegacyLimit(path) {
		c.sink().Warnf("Path length exceeds 260 characters, may cause issues on older Windows versions")
	}

	if c.policy().Denylisted(path) {
		c.sink().Warnf("Skipping potentially dangerous system path: %v", path)
		return OutcomeSkipped, nil
	}
	if c.rejected(path) {
		debug.Log("skipping %v, matches an exclude pattern", path)
		return OutcomeSkipped, nil
	}

	if c.DryRun {
		return probe(c, marker, path)
	}

	switch err := fs.Remove(marker); {
	case err == nil:
		return OutcomeUnblocked, c.log("Unblocked: " + path)
	case os.IsNotExist(err):
		return OutcomeNoMarker, c.log("No ADS found: " + path)
	case os.IsPermission(err):
		c.SetRequiresElevation()
		c.logBestEffort("Access denied, requires elevation: " + path)
		return OutcomePermissionDenied, errors.Wrapf(err, "unblock %v", path)
	default:
		c.logBestEffort(fmt.Sprintf("Failed to unblock: %v: %v", path, err))
		return OutcomeFailed, errors.Wrapf(err, "unblock %v", path)
	}
}

// probe implements dry runs, it reports what removing the marker would do.
func probe(c *Config, marker, path string) (Outcome, error) {
	switch _, err := fs.Lstat(marker); {
	case err == nil:
		return OutcomeUnblocked, c.log("Would unblock: " + path)
	case os.IsNotExist(err):
		return OutcomeNoMarker, c.log("No ADS found: " + path)
	case os.IsPermission(err):
		c.SetRequiresElevation()
		c.logBestEffort("Access denied, requires elevation: " + path)
		return OutcomePermissionDenied, errors.Wrapf(err, "probe %v", path)
	default:
		c.logBestEffort(fmt.Sprintf("Failed to probe: %v: %v", path, err))
		return OutcomeFailed, errors.Wrapf(err, "probe %v", path)
	}
}
