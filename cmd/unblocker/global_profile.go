//go:build debug || profile

package main

import (
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/unblocker/unblocker/internal/errors"
)

type profiler struct {
	memProfilePath string
	cpuProfilePath string

	prof interface {
		Stop()
	}
}

func (p *profiler) Start() error {
	if p.memProfilePath != "" && p.cpuProfilePath != "" {
		return errors.Fatal("only one profile (memory or CPU) may be activated at the same time")
	}

	if p.memProfilePath != "" {
		p.prof = profile.Start(profile.Quiet, profile.NoShutdownHook, profile.MemProfile, profile.ProfilePath(p.memProfilePath))
	} else if p.cpuProfilePath != "" {
		p.prof = profile.Start(profile.Quiet, profile.NoShutdownHook, profile.CPUProfile, profile.ProfilePath(p.cpuProfilePath))
	}

	return nil
}

func (p *profiler) Stop() {
	if p.prof != nil {
		p.prof.Stop()
	}
}

func registerProfiling(cmd *cobra.Command) {
	var prof profiler

	f := cmd.PersistentFlags()
	f.StringVar(&prof.memProfilePath, "mem-profile", "", "write memory profile to `dir`")
	f.StringVar(&prof.cpuProfilePath, "cpu-profile", "", "write cpu profile to `dir`")

	origPreRun := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := prof.Start(); err != nil {
			return err
		}
		if origPreRun != nil {
			return origPreRun(c, args)
		}
		return nil
	}

	origPostRun := cmd.PersistentPostRunE
	cmd.PersistentPostRunE = func(c *cobra.Command, args []string) error {
		prof.Stop()
		if origPostRun != nil {
			return origPostRun(c, args)
		}
		return nil
	}
}
