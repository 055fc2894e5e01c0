package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unblocker/unblocker/internal/elevation"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/filter"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/paths"
	"github.com/unblocker/unblocker/internal/ui"
	"github.com/unblocker/unblocker/internal/unblock"
	"github.com/unblocker/unblocker/internal/watcher"
)

func newWatchCommand() *cobra.Command {
	var opts WatchOptions

	cmd := &cobra.Command{
		Use:   "watch [flags] directory",
		Short: "Watch a directory and unblock files as they appear",
		Long: `
The "watch" command stays resident and removes the Zone.Identifier marker
from files as they show up below the given directory, for example in a
download folder. It stops when interrupted with Ctrl-C and prints a summary
of everything it processed.

Files that could not be unblocked because they need administrator rights are
reported at shutdown, watch never relaunches itself elevated.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 10 if the directory does not exist.
Exit status is 130 if the command was interrupted.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), opts, globalOptions, args)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

// WatchOptions bundles all options for the watch command.
type WatchOptions struct {
	Initial bool
	Settle  time.Duration
	filter.ExcludePatternOptions
}

func (opts *WatchOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVar(&opts.Initial, "initial", false, "process the whole tree once before waiting for changes")
	f.DurationVar(&opts.Settle, "settle", 0, "wait this `duration` after the last write before a file is processed (default: 500ms)")
	opts.ExcludePatternOptions.Add(f)
}

type watchChange struct {
	MessageType string `json:"message_type"` // "change"
	Path        string `json:"path"`
	Outcome     string `json:"outcome"`
}

func runWatch(ctx context.Context, opts WatchOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("the watch command expects a single directory as argument")
	}
	dir := args[0]

	if err := paths.Validate(dir); err != nil {
		return err
	}
	fi, err := fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(unblock.ErrTargetNotFound, "%v", dir)
		}
		return errors.Wrapf(err, "stat %v", dir)
	}
	if !fi.IsDir() {
		return errors.Fatalf("%v is not a directory", dir)
	}

	cfg, err := newRunConfig(opts.ExcludePatternOptions, false, gopts)
	if err != nil {
		return err
	}

	wopts := watcher.Options{
		Initial: opts.Initial,
		Settle:  opts.Settle,
	}
	if gopts.JSON {
		enc := json.NewEncoder(gopts.stdout)
		wopts.OnChange = func(path string, outcome unblock.Outcome) {
			err := enc.Encode(watchChange{MessageType: "change", Path: path, Outcome: outcome.String()})
			if err != nil {
				Warnf("JSON encode failed: %v\n", err)
			}
		}
	} else {
		wopts.OnChange = func(path string, outcome unblock.Outcome) {
			Verbosef("%v: %v\n", outcome, path)
		}
	}

	if ui.StdoutIsTerminal() {
		Verbosef("watching %v, press Ctrl-C to stop\n", dir)
	} else {
		Verbosef("watching %v\n", dir)
	}
	stats, err := watcher.New(cfg, dir, wopts).Run(ctx)

	if gopts.JSON {
		encErr := json.NewEncoder(gopts.stdout).Encode(unblockSummary{
			MessageType:       "summary",
			RequiresElevation: cfg.RequiresElevation(),
			Stats:             stats,
		})
		if encErr != nil {
			Warnf("JSON encode failed: %v\n", encErr)
		}
	} else {
		Verbosef("%s\n", stats.Summary())
	}

	if cfg.RequiresElevation() && !elevation.IsElevated() {
		gopts.sink.Warnf("Some files could not be unblocked due to permission issues. Run as administrator to unblock all files.")
	}

	return err
}
