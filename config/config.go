// Package config loads reporter options from .nyan.yaml.
//
// The file mirrors the host runner's reporter block:
//
//	nyanReporter:
//	  suppressErrorReport: true
//	  maxLogLineWidth: 120
//	  animate: false
//
// Keys that are absent keep their defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up by Find.
const FileName = ".nyan.yaml"

// Config holds the reporter options.
type Config struct {
	// SuppressErrorReport stops failing specs from being collected. The
	// animation still runs but the final failure tree stays empty.
	SuppressErrorReport bool `yaml:"suppressErrorReport"`

	// MaxLogLineWidth clips browser log messages to this many columns in the
	// final report. 0 disables clipping.
	MaxLogLineWidth int `yaml:"maxLogLineWidth"`

	// Animate draws the progress animation. When false only the final
	// report is printed.
	Animate bool `yaml:"animate"`
}

type file struct {
	NyanReporter Config `yaml:"nyanReporter"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SuppressErrorReport: false,
		MaxLogLineWidth:     0,
		Animate:             true,
	}
}

// Load reads the config file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the command line
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	f := file{NyanReporter: *Default()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	cfg := &f.NyanReporter
	if cfg.MaxLogLineWidth < 0 {
		return nil, errors.Errorf("maxLogLineWidth must be >= 0, got %d", cfg.MaxLogLineWidth)
	}
	return cfg, nil
}

// Find looks for FileName in dir and its parents and returns its path, or ""
// if there is none.
func Find(dir string) string {
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
