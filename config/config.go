// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config loads taskport settings from a YAML file and the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, TASKPORT_*
// environment variables, then command-line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfig      = "TASKPORT_CONFIG"
	EnvMethod      = "TASKPORT_METHOD"
	EnvOutput      = "TASKPORT_OUTPUT"
	EnvDebug       = "TASKPORT_DEBUG"
	EnvLogFormat   = "TASKPORT_LOG_FORMAT"
	EnvLogLevel    = "TASKPORT_LOG_LEVEL"
	EnvMetricsFile = "TASKPORT_METRICS_FILE"
	EnvNoColor     = "NO_COLOR"
)

// Config holds the settings for one run.
type Config struct {
	// Method is the acquisition strategy name. It is validated by the dispatcher.
	Method      string `yaml:"method"`
	Output      string `yaml:"output"`
	Debug       bool   `yaml:"debug"`
	LogFormat   string `yaml:"log_format"`
	LogLevel    string `yaml:"log_level"`
	MetricsFile string `yaml:"metrics_file"`
	NoColor     bool   `yaml:"no_color"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Method:    "direct",
		Output:    "default",
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads path (or $TASKPORT_CONFIG when path is empty) over the defaults
// and applies environment overrides. With no file configured only the
// defaults and the environment are used.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()

	if path == "" {
		path, _ = lookup(EnvConfig)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := checkPermissions(f); err != nil {
		return err
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from TASKPORT_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if v, ok := lookup(EnvMethod); ok && v != "" {
		c.Method = v
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvMetricsFile); ok && v != "" {
		c.MetricsFile = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		c.Debug = b
	}
	// NO_COLOR disables color when set to any non-empty value.
	if v, ok := lookup(EnvNoColor); ok && v != "" {
		c.NoColor = true
	}
	return nil
}

// Validate checks the output format and the log settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Output) {
	case "", "default", "json":
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", c.Output)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (valid options: text, json)", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (valid options: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}
