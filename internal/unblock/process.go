package unblock

import (
	"context"
	"os"

	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/paths"
)

// ErrTargetNotFound is returned by Process when the target exists neither as
// a file nor as a directory.
var ErrTargetNotFound = errors.New("target not found")

// Process unblocks the given target. A regular file is handled as a one
// element run, a directory is walked recursively. The target is validated
// before the filesystem is touched at all, a traversal attempt never reaches
// a single system call.
//
// For a file target a permission problem is absorbed into the statistics and
// the RequiresElevation flag. Any other per-file failure is stricter than in
// the directory case and is returned along with the statistics collected so
// far.
func Process(ctx context.Context, c *Config, target string) (Stats, error) {
	var stats Stats

	if err := paths.Validate(target); err != nil {
		return stats, err
	}

	fi, err := fs.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, errors.Wrapf(ErrTargetNotFound, "%v", target)
		}
		return stats, errors.Wrapf(err, "stat %v", target)
	}

	switch {
	case fs.IsRegularFile(fi):
		outcome, err := Unblock(c, target)
		stats.Record(outcome, err)
		if err != nil && outcome != OutcomePermissionDenied {
			return stats, err
		}
		return stats, nil
	case fi.IsDir():
		return Walk(ctx, c, target)
	default:
		return stats, errors.Wrapf(ErrTargetNotFound, "%v is not a file or directory", target)
	}
}
