package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/elevation"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/filter"
	"github.com/unblocker/unblocker/internal/unblock"
)

func newUnblockCommand() *cobra.Command {
	var opts UnblockOptions

	cmd := &cobra.Command{
		Use:   "unblock [flags] target",
		Short: "Remove the Zone.Identifier marker from a file or directory tree",
		Long: `
The "unblock" command removes the Zone.Identifier alternate data stream from
the given file. When the target is a directory, every file below it is
unblocked and a summary is printed at the end.

When some files could not be unblocked because they need administrator
rights, the command relaunches itself elevated and processes the whole target
again. Use --no-relaunch to only report those files instead.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 10 if the target does not exist.
Exit status is 12 if elevation was required but failed or was declined.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnblock(cmd.Context(), opts, globalOptions, args)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

// UnblockOptions bundles all options for the unblock command.
type UnblockOptions struct {
	DryRun bool
	filter.ExcludePatternOptions
}

func (opts *UnblockOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.DryRun, "dry-run", "n", false, "do not remove anything, just report what would be done")
	opts.ExcludePatternOptions.Add(f)
}

// unblockSummary is the JSON rendering of the statistics of one run.
type unblockSummary struct {
	MessageType       string `json:"message_type"` // "summary"
	DryRun            bool   `json:"dry_run,omitempty"`
	RequiresElevation bool   `json:"requires_elevation"`
	unblock.Stats
}

func runUnblock(ctx context.Context, opts UnblockOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("the unblock command expects a single file or directory as argument")
	}
	target := args[0]

	cfg, err := newRunConfig(opts.ExcludePatternOptions, opts.DryRun, gopts)
	if err != nil {
		return err
	}

	stats, err := unblock.Process(ctx, cfg, target)
	if err != nil {
		return err
	}

	if gopts.JSON {
		err := json.NewEncoder(gopts.stdout).Encode(unblockSummary{
			MessageType:       "summary",
			DryRun:            opts.DryRun,
			RequiresElevation: cfg.RequiresElevation(),
			Stats:             stats,
		})
		if err != nil {
			Warnf("JSON encode failed: %v\n", err)
		}
	} else {
		Verbosef("%s\n", stats.Summary())
	}

	return maybeRelaunchElevated(cfg, gopts)
}

// maybeRelaunchElevated implements the all-or-nothing retry: when the run saw
// permission errors and the process is not elevated yet, the whole command is
// run again with administrator rights and this process terminates.
func maybeRelaunchElevated(cfg *unblock.Config, gopts GlobalOptions) error {
	if !cfg.RequiresElevation() {
		return nil
	}

	if elevation.IsElevated() {
		// nothing left to escalate to, the counters already show the failures
		gopts.sink.Warnf("Some files could not be unblocked even with administrator rights.")
		return nil
	}

	if !elevation.RelaunchSupported || gopts.NoRelaunch || gopts.fileCfg.NoRelaunch {
		gopts.sink.Warnf("Some files could not be unblocked due to permission issues. Run as administrator to unblock all files.")
		return errors.Wrap(elevation.ErrElevationFailed, "not retrying elevated")
	}

	args := append([]string{}, os.Args[1:]...)
	args = append(args, "--session", gopts.sink.Session())

	Verbosef("requesting administrator rights to unblock the remaining files\n")
	if err := elevation.Relaunch(args); err != nil {
		return err
	}

	debug.Log("elevated process spawned, terminating this one")
	return ErrOK
}
