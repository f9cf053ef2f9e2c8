// Package config holds the barcode run options, their defaults and the
// optional TOML or YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRate      = 1
	DefaultBatches   = 100
	DefaultWorkers   = 5
	DefaultVerbose   = false
	DefaultTransform = false
	DefaultOutput    = "barcode.png"
	DefaultLogFormat = "text"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config maintains all barcode options.
type Config struct {
	File      string `toml:"file" yaml:"file"`
	Rate      int    `toml:"rate" yaml:"rate"`
	Batches   int    `toml:"batches" yaml:"batches"`
	Workers   int    `toml:"workers" yaml:"workers"`
	Verbose   bool   `toml:"verbose" yaml:"verbose"`
	Transform bool   `toml:"transform" yaml:"transform"`
	Output    string `toml:"output" yaml:"output"`

	Report    string `toml:"report" yaml:"report"`
	Progress  bool   `toml:"progress" yaml:"progress"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// Default returns a Config with every option at its default.
func Default() Config {
	return Config{
		Rate:      DefaultRate,
		Batches:   DefaultBatches,
		Workers:   DefaultWorkers,
		Verbose:   DefaultVerbose,
		Transform: DefaultTransform,
		Output:    DefaultOutput,
		LogFormat: DefaultLogFormat,
	}
}

// LoadFile overlays the options present in path onto cfg. The format is
// chosen by extension: .toml, .yaml or .yml.
func LoadFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("load config %s: unsupported config format", path)
	}
	return nil
}

// Validate checks the options that do not depend on the movie itself.
func (c Config) Validate() error {
	if c.File == "" {
		return fmt.Errorf("%w: a movie file is required", ErrInvalidConfig)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("%w: sampling rate must be greater than 0", ErrInvalidConfig)
	}
	if c.Batches <= 0 {
		return fmt.Errorf("%w: number of batches must be greater than 0", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: number of workers must be greater than 0", ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: an output file is required", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
