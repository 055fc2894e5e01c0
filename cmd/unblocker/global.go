package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/unblocker/unblocker/internal/config"
	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/filter"
	"github.com/unblocker/unblocker/internal/paths"
	"github.com/unblocker/unblocker/internal/ui"
	"github.com/unblocker/unblocker/internal/unblock"
)

var version = "0.4.0-dev (compiled manually)"

// GlobalOptions hold all global options for unblocker.
type GlobalOptions struct {
	Quiet      bool
	Verbose    int
	JSON       bool
	LogFile    string
	ConfigFile string
	NoRelaunch bool
	Session    string

	stdout io.Writer
	stderr io.Writer

	sink    *ui.Sink
	fileCfg *config.File

	// verbosity is set as follows:
	//  0 means: don't print any messages except errors, this is used when --quiet is specified
	//  1 is the default: print essential messages
	//  2 means: print more messages, report minor things, this is used when --verbose is specified
	//  3 means: print very detailed debug messages, this is used when --verbose=2 is specified
	verbosity uint
}

var globalOptions = GlobalOptions{
	stdout: os.Stdout,
	stderr: os.Stderr,
}

func (opts *GlobalOptions) AddFlags(f *pflag.FlagSet) {
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "do not print the summary or the per-file report")
	// use empty parameter name as `-v, --verbose n` instead of the correct `--verbose=n` is confusing
	f.CountVarP(&opts.Verbose, "verbose", "v", "be verbose (specify multiple times or a level using --verbose=n``, max level/times is 2)")
	f.BoolVarP(&opts.JSON, "json", "", false, "set output mode to JSON for commands that support it")
	f.StringVar(&opts.LogFile, "log-file", "", "append a timestamped activity log to `file` (default: $UNBLOCKER_LOG_FILE)")
	f.StringVar(&opts.ConfigFile, "config", "", "load the configuration from `file` (default: $UNBLOCKER_CONFIG or the user config directory)")
	f.BoolVar(&opts.NoRelaunch, "no-relaunch", false, "never relaunch elevated, report files that need administrator rights instead")
	f.StringVar(&opts.Session, "session", "", "log `session` to continue, set on the relaunched elevated process")
	_ = f.MarkHidden("session")

	opts.LogFile = os.Getenv("UNBLOCKER_LOG_FILE")
}

// PreRun resolves the verbosity and, for commands that touch the target
// filesystem, loads the config file and opens the activity log.
func (opts *GlobalOptions) PreRun(needsSetup bool) error {
	// set verbosity, default is one
	opts.verbosity = 1
	if opts.Quiet && opts.Verbose > 0 {
		return errors.Fatal("--quiet and --verbose cannot be specified at the same time")
	}

	switch {
	case opts.Verbose >= 2:
		opts.verbosity = 3
	case opts.Verbose > 0:
		opts.verbosity = 2
	case opts.Quiet:
		opts.verbosity = 0
	}

	if !needsSetup {
		return nil
	}

	fileCfg, err := loadConfigFile(opts.ConfigFile)
	if err != nil {
		return err
	}
	opts.fileCfg = fileCfg

	logFile := opts.LogFile
	if logFile == "" {
		logFile = fileCfg.LogFile
	}

	sink, err := ui.NewSink(ui.SinkOptions{
		LogFile:   logFile,
		Verbosity: opts.verbosity,
		Session:   opts.Session,
		Stdout:    opts.stdout,
		Stderr:    opts.stderr,
	})
	if err != nil {
		return errors.Fatal(err.Error())
	}
	opts.sink = sink

	return nil
}

// loadConfigFile reads the configuration file. A missing file is only an
// error when --config named it explicitly.
func loadConfigFile(flagPath string) (*config.File, error) {
	path := flagPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			debug.Log("no default config location: %v", err)
			return &config.File{}, nil
		}
	}

	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		if flagPath != "" {
			return nil, errors.Fatalf("config file %v does not exist", flagPath)
		}
		debug.Log("no config file at %v", path)
		return &config.File{}, nil
	}
	if err != nil {
		return nil, err
	}

	debug.Log("loaded config file %v", path)
	return cfg, nil
}

// newRunConfig assembles the run configuration shared by the unblock, scan
// and watch commands from the command line and the config file.
func newRunConfig(excludes filter.ExcludePatternOptions, dryRun bool, gopts GlobalOptions) (*unblock.Config, error) {
	rejects, err := excludes.CollectPatterns(Warnf)
	if err != nil {
		return nil, err
	}

	fileExcludes := filter.ExcludePatternOptions{Excludes: gopts.fileCfg.Excludes}
	fileRejects, err := fileExcludes.CollectPatterns(Warnf)
	if err != nil {
		return nil, err
	}
	rejects = append(rejects, fileRejects...)

	policy := paths.DefaultPolicy()
	policy.Extend(gopts.fileCfg.Denylist)

	return &unblock.Config{
		DryRun:  dryRun,
		Sink:    gopts.sink,
		Rejects: rejects,
		Policy:  policy,
	}, nil
}

// Printf writes the message to the configured stdout stream.
func Printf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(globalOptions.stdout, format, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write to stdout: %v\n", err)
		Exit(100)
	}
}

// Verbosef calls Printf to write the message unless --quiet was specified.
func Verbosef(format string, args ...interface{}) {
	if globalOptions.verbosity < 1 {
		return
	}

	Printf(format, args...)
}

// Warnf writes the message to the configured stderr stream.
func Warnf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(globalOptions.stderr, format, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write to stderr: %v\n", err)
		Exit(100)
	}
}
