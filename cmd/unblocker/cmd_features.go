package main

import (
	"github.com/spf13/cobra"

	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/feature"
	"github.com/unblocker/unblocker/internal/ui/table"
)

func newFeaturesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print list of feature flags",
		Long: `
The "features" command prints a list of supported feature flags.

To pass feature flags to unblocker, set the UNBLOCKER_FEATURES environment
variable to "flag1=value,flag2=value". Valid values are true (enabled) or
false (disabled).

EXIT STATUS
===========

Exit status is 0 if the command was successful, and non-zero if there was any error.
`,
		Hidden:            true,
		DisableAutoGenTag: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.Fatal("the features command expects no arguments")
			}

			Printf("All Feature Flags:\n")
			flags := feature.Flag.List()

			tab := table.New()
			tab.AddColumn("Name", "{{ .Name }}")
			tab.AddColumn("Type", "{{ .Type }}")
			tab.AddColumn("Default", "{{ .Default }}")
			tab.AddColumn("Description", "{{ .Description }}")

			for _, flag := range flags {
				tab.AddRow(flag)
			}
			return tab.Write(globalOptions.stdout)
		},
	}
	return cmd
}
