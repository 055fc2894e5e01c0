package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"

	"github.com/unblocker/unblocker/internal/errors"
)

func newGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate [flags]",
		Short: "Generate manual pages and auto-completion files (bash, fish, zsh, powershell)",
		Long: `
The "generate" command writes automatically generated files (like the man
pages and the auto-completion files for bash, fish, zsh and powershell).

The output files are written to the given file names, where "-" selects
stdout.

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		GroupID:           cmdGroupAdvanced,
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

type generateOptions struct {
	ManDir                   string
	BashCompletionFile       string
	FishCompletionFile       string
	ZSHCompletionFile        string
	PowerShellCompletionFile string
}

func (opts *generateOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.ManDir, "man", "", "write man pages to `directory`")
	f.StringVar(&opts.BashCompletionFile, "bash-completion", "", "write bash completion `file` (`-` for stdout)")
	f.StringVar(&opts.FishCompletionFile, "fish-completion", "", "write fish completion `file` (`-` for stdout)")
	f.StringVar(&opts.ZSHCompletionFile, "zsh-completion", "", "write zsh completion `file` (`-` for stdout)")
	f.StringVar(&opts.PowerShellCompletionFile, "powershell-completion", "", "write powershell completion `file` (`-` for stdout)")
}

func writeManpages(root *cobra.Command, dir string) error {
	// use a fixed date for the man pages so that generating them is deterministic
	date, err := time.Parse("Jan 2006", "Jan 2017")
	if err != nil {
		return err
	}

	header := &doc.GenManHeader{
		Title:   "unblocker",
		Section: "1",
		Source:  "generated by `unblocker generate`",
		Date:    &date,
	}

	Verbosef("writing man pages to directory %v\n", dir)
	return doc.GenManTree(root, header, dir)
}

func writeCompletion(filename, shell string, generate func(w io.Writer) error) (err error) {
	if filename == "-" {
		return generate(globalOptions.stdout)
	}

	Verbosef("writing %s completion file to %v\n", shell, filename)
	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := outFile.Close()
		if err == nil {
			err = closeErr
		}
	}()

	return generate(outFile)
}

func runGenerate(cmd *cobra.Command, opts generateOptions, args []string) error {
	if len(args) > 0 {
		return errors.Fatal("the generate command expects no arguments, only options - please see `unblocker help generate` for usage and flags")
	}
	var empty generateOptions
	if opts == empty {
		return errors.Fatal("nothing to do, please specify at least one output option")
	}

	stdoutTargets := 0
	for _, file := range []string{opts.BashCompletionFile, opts.FishCompletionFile, opts.ZSHCompletionFile, opts.PowerShellCompletionFile} {
		if file == "-" {
			stdoutTargets++
		}
	}
	if stdoutTargets > 1 {
		return errors.Fatal("the generate command can generate shell completions to stdout for single shell only")
	}

	root := cmd.Root()

	if opts.ManDir != "" {
		if err := writeManpages(root, opts.ManDir); err != nil {
			return err
		}
	}

	if opts.BashCompletionFile != "" {
		err := writeCompletion(opts.BashCompletionFile, "bash", func(w io.Writer) error {
			return root.GenBashCompletion(w)
		})
		if err != nil {
			return err
		}
	}

	if opts.FishCompletionFile != "" {
		err := writeCompletion(opts.FishCompletionFile, "fish", func(w io.Writer) error {
			return root.GenFishCompletion(w, true)
		})
		if err != nil {
			return err
		}
	}

	if opts.ZSHCompletionFile != "" {
		err := writeCompletion(opts.ZSHCompletionFile, "zsh", func(w io.Writer) error {
			return root.GenZshCompletion(w)
		})
		if err != nil {
			return err
		}
	}

	if opts.PowerShellCompletionFile != "" {
		err := writeCompletion(opts.PowerShellCompletionFile, "powershell", func(w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		})
		if err != nil {
			return err
		}
	}

	return nil
}
