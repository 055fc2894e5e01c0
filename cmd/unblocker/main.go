package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/unblocker/unblocker/internal/debug"
	"github.com/unblocker/unblocker/internal/elevation"
	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/feature"
	"github.com/unblocker/unblocker/internal/unblock"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

var ErrOK = errors.New("ok")

var cmdGroupDefault = "default"
var cmdGroupAdvanced = "advanced"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unblocker",
		Short: "Remove the mark of the web from downloaded files",
		Long: `
unblocker removes the Zone.Identifier alternate data stream that Windows
attaches to every file downloaded from the internet. Without that marker the
files open right away instead of being held back by the "this file came from
another computer" prompt.

It works on single files or on whole directory trees and can relaunch itself
with administrator rights when some files require them.
`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,

		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return globalOptions.PreRun(needsRunSetup(c.Name()))
		},
	}

	cmd.AddGroup(
		&cobra.Group{
			ID:    cmdGroupDefault,
			Title: "Available Commands:",
		},
		&cobra.Group{
			ID:    cmdGroupAdvanced,
			Title: "Advanced Options:",
		},
	)

	globalOptions.AddFlags(cmd.PersistentFlags())

	// Use our "generate" command instead of the cobra provided "completion" command
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newFeaturesCommand(),
		newGenerateCommand(),
		newScanCommand(),
		newUnblockCommand(),
		newVersionCommand(),
		newWatchCommand(),
	)

	registerProfiling(cmd)

	return cmd
}

// Distinguish commands that inspect or modify files from those that only
// print static information, so the config file and the activity log are not
// set up for the latter.
func needsRunSetup(cmd string) bool {
	switch cmd {
	case "features", "generate", "help", "version", "__complete":
		return false
	default:
		return true
	}
}

func printExitError(code int, message string) {
	if globalOptions.JSON {
		type jsonExitError struct {
			MessageType string `json:"message_type"` // exit_error
			Code        int    `json:"code"`
			Message     string `json:"message"`
		}

		jsonS := jsonExitError{
			MessageType: "exit_error",
			Code:        code,
			Message:     message,
		}

		err := json.NewEncoder(globalOptions.stderr).Encode(jsonS)
		if err != nil {
			Warnf("JSON encode failed: %v\n", err)
		}
		return
	}

	if globalOptions.sink != nil {
		// shows a message box instead when the process has no console
		globalOptions.sink.Errorf("%s", message)
		return
	}
	_, _ = fmt.Fprintf(globalOptions.stderr, "%v\n", message)
}

func main() {
	// install custom global logger into a buffer, if an error occurs
	// we can show the logs
	logBuffer := bytes.NewBuffer(nil)
	log.SetOutput(logBuffer)

	err := feature.Flag.Apply(os.Getenv("UNBLOCKER_FEATURES"), func(s string) {
		_, _ = fmt.Fprintln(os.Stderr, s)
	})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		Exit(1)
	}

	debug.Log("main %#v", os.Args)
	debug.Log("unblocker %s compiled with %v on %v/%v",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	ctx := createGlobalContext()
	err = newRootCommand().ExecuteContext(ctx)

	if err == nil {
		err = ctx.Err()
	} else if err == ErrOK {
		// ErrOK overwrites context cancellation errors
		err = nil
	}

	var exitMessage string
	switch {
	case errors.IsFatal(err):
		exitMessage = err.Error()
	case errors.Is(err, unblock.ErrTargetNotFound):
		exitMessage = fmt.Sprintf("Fatal: %v", err)
	case errors.Is(err, elevation.ErrElevationFailed):
		exitMessage = fmt.Sprintf("Fatal: %v", err)
	case err != nil:
		exitMessage = fmt.Sprintf("%+v", err)

		if logBuffer.Len() > 0 {
			exitMessage += "also, the following messages were logged by a library:\n"
			sc := bufio.NewScanner(logBuffer)
			for sc.Scan() {
				exitMessage += fmt.Sprintln(sc.Text())
			}
		}
	}

	var exitCode int
	switch {
	case err == nil:
		exitCode = 0
	case errors.Is(err, unblock.ErrTargetNotFound):
		exitCode = 10
	case errors.Is(err, elevation.ErrElevationFailed):
		exitCode = 12
	case errors.Is(err, context.Canceled):
		exitCode = 130
	default:
		exitCode = 1
	}

	if exitCode != 0 {
		printExitError(exitCode, exitMessage)
	}
	if globalOptions.sink != nil {
		_ = globalOptions.sink.Close()
	}
	Exit(exitCode)
}
