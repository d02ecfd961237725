// Package config loads driver settings from an optional YAML file and the
// environment. Command-line flags are applied on top by the binaries.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-attacktree/pkg/validation"
)

// Environment variables read by Load
const (
	EnvRuns     = "ATTACKTREE_RUNS"
	EnvWorkers  = "ATTACKTREE_WORKERS"
	EnvSeed     = "ATTACKTREE_SEED"
	EnvLogLevel = "LOG_LEVEL"
)

// Default configuration values
const (
	DefaultRuns     = 10000
	DefaultWorkers  = 1
	DefaultLogLevel = "info"
	DefaultFormat   = "table"
	DefaultMode     = "auto"

	// MaxWorkers bounds the campaign worker count
	MaxWorkers = 1024
)

// Modes accepted by the command-line driver
var Modes = []string{"auto", "prob", "run", "print", "convert"}

// Formats accepted for simulation reports
var Formats = []string{"csv", "table"}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Config holds driver settings
type Config struct {
	// Runs is the number of walks per campaign. RunsSet records that it was
	// given explicitly rather than defaulted.
	Runs    int  `yaml:"runs"`
	RunsSet bool `yaml:"-"`

	// Workers is the number of parallel walkers; 1 keeps a campaign
	// reproducible walk by walk
	Workers int `yaml:"workers"`

	// Seed feeds the campaign random streams. Only meaningful when SeedSet.
	Seed    uint64 `yaml:"seed"`
	SeedSet bool   `yaml:"-"`

	LogLevel string `yaml:"log_level"`
	Format   string `yaml:"format"`
	Mode     string `yaml:"mode"`
}

// Default returns a configuration with every field at its default
func Default() *Config {
	return &Config{
		Runs:     DefaultRuns,
		Workers:  DefaultWorkers,
		LogLevel: DefaultLogLevel,
		Format:   DefaultFormat,
		Mode:     DefaultMode,
	}
}

// Load builds a configuration from defaults, then the YAML file at path (if
// path is not empty), then the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv builds a configuration from defaults and the environment
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) decode(data []byte) error {
	// presence is tracked separately so "seed: 0" is honored
	var probe struct {
		Runs *int    `yaml:"runs"`
		Seed *uint64 `yaml:"seed"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c.RunsSet = c.RunsSet || probe.Runs != nil
	c.SeedSet = c.SeedSet || probe.Seed != nil
	return nil
}

// envOverlay holds the settings that may come from the environment
type envOverlay struct {
	Runs     int    `env:"ATTACKTREE_RUNS"`
	Workers  int    `env:"ATTACKTREE_WORKERS"`
	Seed     uint64 `env:"ATTACKTREE_SEED"`
	LogLevel string `env:"LOG_LEVEL"`
}

// applyEnv overrides only the fields whose variables are set, so file
// values survive.
func (c *Config) applyEnv() error {
	var o envOverlay
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if isSet(EnvRuns) {
		c.SetRuns(o.Runs)
	}
	if isSet(EnvWorkers) {
		c.Workers = o.Workers
	}
	if isSet(EnvSeed) {
		c.SetSeed(o.Seed)
	}
	if isSet(EnvLogLevel) {
		c.LogLevel = strings.ToLower(o.LogLevel)
	}
	return nil
}

func isSet(key string) bool {
	return os.Getenv(key) != ""
}

// SetRuns fixes the campaign size
func (c *Config) SetRuns(runs int) {
	c.Runs = runs
	c.RunsSet = true
}

// SetSeed fixes the campaign seed
func (c *Config) SetSeed(seed uint64) {
	c.Seed = seed
	c.SeedSet = true
}

func (c *Config) checkLogLevel() error {
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("unknown level %q, want one of %v", c.LogLevel, logLevels)
	}
	return nil
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Positive("Runs", c.Runs).
		RangeInt("Workers", c.Workers, 1, MaxWorkers).
		OneOf("Mode", c.Mode, Modes).
		OneOf("Format", c.Format, Formats).
		Custom("LogLevel", c.checkLogLevel).
		Validate()
}
