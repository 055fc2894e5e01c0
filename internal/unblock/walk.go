package unblock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/paths"
)

// Walk unblocks every regular file below dir. Enumeration problems are
// absorbed into the returned statistics and the walk continues with the
// remaining entries. Walk fails hard when dir is invalid, when the activity
// log cannot be written, or when ctx is canceled, abandoning the statistics
// collected so far.
func Walk(ctx context.Context, c *Config, dir string) (Stats, error) {
	var stats Stats

	if err := paths.Validate(dir); err != nil {
		return stats, err
	}

	if err := c.log("Processing directory: " + dir); err != nil {
		return stats, err
	}

	if err := walk(ctx, c, dir, &stats); err != nil {
		return stats, err
	}

	if err := c.log(stats.Summary()); err != nil {
		return stats, err
	}
	return stats, nil
}

func walk(ctx context.Context, c *Config, dir string, stats *Stats) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) {
			c.SetRequiresElevation()
			if lerr := c.log("Access denied to directory: " + dir); lerr != nil {
				return lerr
			}
			stats.PermissionErrors++
		} else {
			if lerr := c.log(fmt.Sprintf("Failed to enumerate directory: %v: %v", dir, err)); lerr != nil {
				return lerr
			}
		}
		stats.FilesFailed++
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if err := walk(ctx, c, path, stats); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			outcome, err := Unblock(c, path)
			if err != nil && outcome != OutcomePermissionDenied {
				if lerr := c.log(fmt.Sprintf("Error processing %v: %v", path, err)); lerr != nil {
					return lerr
				}
			}
			stats.Record(outcome, err)
		default:
			// symlinks and special files are not followed
			debug.Log("ignoring non-regular entry %v", path)
		}
	}
	return nil
}
