package main

import (
	"context"
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/filter"
	"github.com/unblocker/unblocker/internal/fs"
	"github.com/unblocker/unblocker/internal/paths"
	"github.com/unblocker/unblocker/internal/streams"
	"github.com/unblocker/unblocker/internal/ui/table"
	"github.com/unblocker/unblocker/internal/unblock"
)

func newScanCommand() *cobra.Command {
	var opts ScanOptions

	cmd := &cobra.Command{
		Use:   "scan [flags] target",
		Short: "List files that carry alternate data streams",
		Long: `
The "scan" command reports which files below the target carry alternate data
streams, without changing anything. Files marked by a download carry the
Zone.Identifier stream.

EXIT STATUS
===========

Exit status is 0 if the command was successful.
Exit status is 1 if there was any error.
Exit status is 10 if the target does not exist.
`,
		GroupID:           cmdGroupDefault,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), opts, globalOptions, args)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

// ScanOptions bundles all options for the scan command.
type ScanOptions struct {
	filter.ExcludePatternOptions
}

func (opts *ScanOptions) AddFlags(f *pflag.FlagSet) {
	opts.ExcludePatternOptions.Add(f)
}

type scanStream struct {
	MessageType string   `json:"message_type"` // "stream"
	Path        string   `json:"path"`
	Streams     []string `json:"streams"`
}

type scanSummary struct {
	MessageType      string `json:"message_type"` // "summary"
	FilesScanned     uint   `json:"files_scanned"`
	FilesWithStreams uint   `json:"files_with_streams"`
}

func runScan(ctx context.Context, opts ScanOptions, gopts GlobalOptions, args []string) error {
	if len(args) != 1 {
		return errors.Fatal("the scan command expects a single file or directory as argument")
	}
	target := args[0]

	cfg, err := newRunConfig(opts.ExcludePatternOptions, false, gopts)
	if err != nil {
		return err
	}

	if err := paths.Validate(target); err != nil {
		return err
	}
	fi, err := fs.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(unblock.ErrTargetNotFound, "%v", target)
		}
		return errors.Wrapf(err, "stat %v", target)
	}

	var scanned uint
	var hits []scanStream

	check := func(path string) {
		names, err := streams.List(path)
		if err != nil {
			Warnf("unable to list streams of %v: %v\n", path, err)
			return
		}
		scanned++
		if len(names) > 0 {
			hits = append(hits, scanStream{MessageType: "stream", Path: path, Streams: names})
		}
	}

	if fi.IsDir() {
		err = scanTree(ctx, cfg, target, check)
	} else {
		check(target)
	}
	if err != nil {
		return err
	}

	if gopts.JSON {
		return printScanJSON(gopts, scanned, hits)
	}
	printScanTable(gopts, scanned, hits)
	return nil
}

// scanTree visits every regular file below dir, in enumeration order. Stream
// entries and denylisted or excluded paths are not visited, unreadable
// directories are reported and skipped.
func scanTree(ctx context.Context, cfg *unblock.Config, dir string, check func(path string)) error {
	return filepath.WalkDir(dir, func(path string, d iofs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			Warnf("unable to read %v: %v\n", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.Policy.Denylisted(path) {
			debug.Log("not scanning %v", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() || streams.IsStreamPath(path) {
			return nil
		}
		for _, reject := range cfg.Rejects {
			if reject(path) {
				return nil
			}
		}
		check(path)
		return nil
	})
}

func printScanTable(gopts GlobalOptions, scanned uint, hits []scanStream) {
	if gopts.verbosity < 1 {
		return
	}
	if len(hits) == 0 {
		Printf("scanned %d files, no alternate data streams found\n", scanned)
		return
	}

	type row struct {
		Path    string
		Streams string
	}

	tab := table.New()
	tab.AddColumn("File", "{{ .Path }}")
	tab.AddColumn("Streams", "{{ .Streams }}")
	for _, hit := range hits {
		tab.AddRow(row{Path: hit.Path, Streams: strings.Join(hit.Streams, ", ")})
	}
	tab.AddFooter(fmt.Sprintf("%d of %d scanned files carry streams", len(hits), scanned))

	if err := tab.Write(gopts.stdout); err != nil {
		Warnf("unable to write table: %v\n", err)
	}
}

func printScanJSON(gopts GlobalOptions, scanned uint, hits []scanStream) error {
	enc := json.NewEncoder(gopts.stdout)
	for _, hit := range hits {
		if err := enc.Encode(hit); err != nil {
			return err
		}
	}
	return enc.Encode(scanSummary{
		MessageType:      "summary",
		FilesScanned:     scanned,
		FilesWithStreams: uint(len(hits)),
	})
}
