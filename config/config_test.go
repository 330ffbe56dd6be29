// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithEnv("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, "method: enumerate\noutput: json\ndebug: true\nmetrics_file: /tmp/taskport.prom\n")

	cfg, err := LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "enumerate", cfg.Method)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/taskport.prom", cfg.MetricsFile)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep defaults")
}

func TestLoad_FileFromEnv(t *testing.T) {
	path := writeConfig(t, "method: wrapper\n")

	cfg, err := LoadWithEnv("", env(map[string]string{EnvConfig: path}))
	require.NoError(t, err)
	assert.Equal(t, "wrapper", cfg.Method)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := LoadWithEnv(writeConfig(t, ""), env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "method: enumerate\ndebug: true\n")

	cfg, err := LoadWithEnv(path, env(map[string]string{
		EnvMethod:    "direct",
		EnvDebug:     "false",
		EnvLogFormat: "json",
		EnvNoColor:   "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "direct", cfg.Method)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.NoColor)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml"), nil},
		{"unknown key", writeConfig(t, "methd: direct\n"), nil},
		{"bad yaml", writeConfig(t, "method: [\n"), nil},
		{"bad debug", "", map[string]string{EnvDebug: "maybe"}},
		{"bad output", "", map[string]string{EnvOutput: "xml"}},
		{"bad log format", writeConfig(t, "log_format: logfmt\n"), nil},
		{"bad log level", "", map[string]string{EnvLogLevel: "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithEnv(tt.path, env(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoad_InsecurePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}

	path := writeConfig(t, "method: enumerate\n")
	require.NoError(t, os.Chmod(path, 0o666))

	_, err := LoadWithEnv(path, env(nil))
	assert.ErrorIs(t, err, ErrInsecurePermissions)

	require.NoError(t, os.Chmod(path, 0o644))
	cfg, err := LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "enumerate", cfg.Method)
}

func TestLoad_LogLevel(t *testing.T) {
	path := writeConfig(t, "log_level: warn\n")

	cfg, err := LoadWithEnv(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg, err = LoadWithEnv(path, env(map[string]string{EnvLogLevel: "error"}))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}
