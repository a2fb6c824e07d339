package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"calendar-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadWithLoader_FileOverlay verifies base.yaml and {environment}.yaml
// overlay the env-var defaults in priority order.
func TestLoadWithLoader_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: 7000\n")
	writeFile(t, dir, "development.yaml", "domain:\n  max_title_length: 55\n")

	os.Setenv("ENVIRONMENT", "development")
	defer os.Unsetenv("ENVIRONMENT")

	cfg, err := config.LoadWithLoader(dir)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 55, cfg.Domain.MaxTitleLength)
	assert.Contains(t, cfg.LoadedFrom, filepath.Join(dir, "base.yaml"))
	assert.Contains(t, cfg.LoadedFrom, filepath.Join(dir, "development.yaml"))
}

// TestLoadWithLoader_EnvOverridesFile verifies an explicit environment
// variable always wins over a file value, since it is re-applied last.
func TestLoadWithLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: 7000\n")

	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("SERVER_PORT", "9999")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("SERVER_PORT")
	}()

	cfg, err := config.LoadWithLoader(dir)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
}

// TestLoadWithLoader_NoFiles falls back cleanly to env-var defaults when
// no configuration files exist under basePath. SERVER_PORT must be set away
// from the 8080 default since validateEnvironmentRules rejects the default
// port in production.
func TestLoadWithLoader_NoFiles(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	os.Setenv("SERVER_PORT", "8443")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("SERVER_PORT")
	}()

	cfg, err := config.LoadWithLoader(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, config.Production, cfg.Environment)
	assert.Equal(t, 8443, cfg.Server.Port)
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}
