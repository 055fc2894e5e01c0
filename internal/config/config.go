// Package config loads the optional configuration file. All settings have
// command line equivalents, the file only provides defaults for them.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/unblocker/unblocker/internal/errors"
	"github.com/unblocker/unblocker/internal/textfile"
)

// File holds the settings read from a configuration file.
type File struct {
	// LogFile is the default target for --log-file.
	LogFile string `yaml:"log_file,omitempty"`
	// Excludes lists additional exclude patterns applied to every run.
	Excludes []string `yaml:"excludes,omitempty"`
	// Denylist extends the built-in list of directories that are never
	// touched.
	Denylist []string `yaml:"denylist,omitempty"`
	// NoRelaunch disables the elevated relaunch prompt on Windows.
	NoRelaunch bool `yaml:"no_relaunch,omitempty"`
}

// DefaultPath returns the location of the configuration file that is used
// when --config is not given. The UNBLOCKER_CONFIG environment variable
// overrides the platform default.
func DefaultPath() (string, error) {
	if path := os.Getenv("UNBLOCKER_CONFIG"); path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locate user config dir")
	}

	return filepath.Join(dir, "unblocker", "config.yaml"), nil
}

// Load reads and parses the configuration file at path. A missing file is
// reported via os.ErrNotExist so that callers can decide whether that is
// fatal.
func Load(path string) (*File, error) {
	data, err := textfile.Read(path)
	if err != nil {
		return nil, err
	}

	cfg := &File{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %v", path)
	}

	return cfg, nil
}
