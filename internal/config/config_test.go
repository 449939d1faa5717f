package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL:     "postgres://localhost:5432/whenworks",
		ListenAddr:      ":9090",
		DaysPerPage:     7,
		GridStartHour:   9,
		DefaultTimezone: "Europe/London",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost:5432/whenworks",
	}
	applyDefaults(cfg)

	err := Validate(cfg)
	assert.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 7, cfg.DaysPerPage)
	assert.Equal(t, "UTC", cfg.DefaultTimezone)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{
		ListenAddr: ":8080",
	}
	applyDefaults(cfg)
	cfg.DatabaseURL = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_GridStartHourOutOfRange(t *testing.T) {
	cfg := &Config{
		DatabaseURL:     "postgres://localhost:5432/whenworks",
		GridStartHour:   24,
		DefaultTimezone: "UTC",
	}

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := &Config{
		DatabaseURL:     "postgres://localhost:5432/whenworks",
		DefaultTimezone: "Nowhere/Void",
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "defaultTimezone")
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whenworks_config.yaml")

	content := `databaseURL: postgres://localhost:5432/whenworks
listenAddr: ":9090"
daysPerPage: 5
gridStartHour: 8
defaultTimezone: America/New_York
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/whenworks", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.DaysPerPage)
	assert.Equal(t, 8, cfg.GridStartHour)
	assert.Equal(t, "America/New_York", cfg.DefaultTimezone)
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whenworks_config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("databaseURL: postgres://localhost/whenworks\n"), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 7, cfg.DaysPerPage)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromPath_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whenworks_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("databaseURL: [unclosed\n"), 0o644))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}
