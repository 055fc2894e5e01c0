// Package unblock removes the downloaded-file marker stream from single
// files and from directory trees, counting what happened along the way.
package unblock

import (
	"sync/atomic"

	"github.com/unblocker/unblocker/internal/feature"
	"github.com/unblocker/unblocker/internal/filter"
	"github.com/unblocker/unblocker/internal/paths"
)

// Sink receives the activity log lines and user warnings of a run.
type Sink interface {
	// Log appends one line to the activity log. The error reports a failed
	// write to the log destination.
	Log(msg string) error
	// Warnf reports a non-fatal problem directly to the user.
	Warnf(msg string, args ...interface{})
}

// Config carries the settings shared by all operations of one run. The zero
// value is usable, it logs nowhere and applies the platform default policy.
// A Config must not be copied once in use.
type Config struct {
	// DryRun reports what would be done without removing anything.
	DryRun bool
	// Sink receives log lines and warnings, nil discards both.
	Sink Sink
	// Rejects holds the exclude patterns, matching files are skipped.
	Rejects []filter.RejectByNameFunc
	// Policy lists directories that are never touched, nil selects the
	// platform default.
	Policy *paths.Policy

	requiresElevation atomic.Bool
}

// RequiresElevation reports whether a permission denied condition was
// observed at any point of the run.
func (c *Config) RequiresElevation() bool {
	return c.requiresElevation.Load()
}

// SetRequiresElevation marks the run as needing elevated rights. The flag is
// monotonic, nothing resets it for the lifetime of the run.
func (c *Config) SetRequiresElevation() {
	c.requiresElevation.Store(true)
}

func (c *Config) sink() Sink {
	if c.Sink == nil {
		return noopSink{}
	}
	return c.Sink
}

func (c *Config) policy() *paths.Policy {
	if c.Policy == nil {
		return paths.DefaultPolicy()
	}
	return c.Policy
}

func (c *Config) rejected(path string) bool {
	for _, reject := range c.Rejects {
		if reject(path) {
			return true
		}
	}
	return false
}

// log writes one line to the activity log. The write error becomes the
// caller's error, unless the decouple-log-errors feature downgrades it to a
// warning.
func (c *Config) log(msg string) error {
	err := c.sink().Log(msg)
	if err == nil {
		return nil
	}
	if feature.Flag.Enabled(feature.DecoupleLogErrors) {
		c.sink().Warnf("activity log: %v", err)
		return nil
	}
	return err
}

// logBestEffort is used on failure paths, where a log problem must not mask
// the primary error.
func (c *Config) logBestEffort(msg string) {
	if err := c.sink().Log(msg); err != nil {
		c.sink().Warnf("activity log: %v", err)
	}
}

type noopSink struct{}

func (noopSink) Log(string) error             { return nil }
func (noopSink) Warnf(string, ...interface{}) {}
