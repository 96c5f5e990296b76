package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tryout-config-test-")
	if err != nil {
		panic(err)
	}

	if err := os.Setenv(CONFIG_DIR_ENV_KEY, dir); err != nil {
		panic(err)
	}

	initConfig()

	code := m.Run()

	_ = os.Unsetenv(CONFIG_DIR_ENV_KEY)
	_ = os.RemoveAll(dir)

	os.Exit(code)
}

// withConfigDir points the config package at a fresh directory and reloads.
func withConfigDir(t *testing.T) string {
	t.Helper()

	// Cleanups run in reverse order, reload after the environment is restored
	t.Cleanup(initConfig)

	dir := t.TempDir()
	t.Setenv(CONFIG_DIR_ENV_KEY, dir)

	return dir
}

func TestLoad_DefaultsOnly(t *testing.T) {
	withConfigDir(t)
	initConfig()

	cfg := Get()
	assert.Equal(t, "npm run", cfg.Config.CommandPrefix)
	assert.Equal(t, []string{"npm", "run"}, cfg.CommandPrefix())
	assert.Equal(t, "test", cfg.Config.DefaultCommand)
	assert.Equal(t, DEFAULT_CATALOG_PATH, cfg.Config.CatalogPath)
	assert.Equal(t, 7, cfg.Config.EventLogRetentionDays)
	assert.False(t, cfg.Config.SkipEventLogging)
	assert.False(t, cfg.Config.DisableAnalytics)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, cfg.ProjectDir)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := withConfigDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte(`
command_prefix: "pnpm run"
event_log_retention_days: 30
disable_analytics: true
`), 0o644))

	initConfig()

	cfg := Get()
	assert.Equal(t, "pnpm run", cfg.Config.CommandPrefix)
	assert.Equal(t, 30, cfg.Config.EventLogRetentionDays)
	assert.True(t, cfg.Config.DisableAnalytics)

	// Keys missing from the file keep their defaults
	assert.Equal(t, "test", cfg.Config.DefaultCommand)
	assert.Equal(t, DEFAULT_CATALOG_PATH, cfg.Config.CatalogPath)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	dir := withConfigDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte(`
default_command: ci
`), 0o644))

	t.Setenv("TRYOUT_DEFAULT_COMMAND", "verify")
	t.Setenv("TRYOUT_COMMAND_PREFIX", "")
	t.Setenv("TRYOUT_SKIP_EVENT_LOGGING", "true")

	initConfig()

	cfg := Get()
	assert.Equal(t, "verify", cfg.Config.DefaultCommand)
	assert.Empty(t, cfg.CommandPrefix())
	assert.True(t, cfg.Config.SkipEventLogging)
}

func TestApplyFlags(t *testing.T) {
	withConfigDir(t)
	initConfig()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	applyFlags(fs)

	require.NoError(t, fs.Parse([]string{"--cwd", "/work/app", "--config-path", "scenarios.yml", "--command-prefix", "yarn"}))

	cfg := Get()
	assert.Equal(t, "/work/app", cfg.ProjectDir)
	assert.Equal(t, []string{"yarn"}, cfg.CommandPrefix())
	assert.Equal(t, filepath.Join("/work/app", "scenarios.yml"), cfg.CatalogFilePath())
}

func TestCatalogFilePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectDir = "/work/app"

	assert.Equal(t, filepath.Join("/work/app", "config", "tryout.yml"), cfg.CatalogFilePath())

	abs := filepath.Join(t.TempDir(), "catalog.yml")
	cfg.Config.CatalogPath = abs
	assert.Equal(t, abs, cfg.CatalogFilePath())
}

func TestConfigPaths_WithEnv(t *testing.T) {
	dir := withConfigDir(t)
	initConfig()

	configDir, err := ConfigDir()
	assert.NoError(t, err)
	assert.Equal(t, dir, configDir)

	assert.Equal(t, filepath.Join(dir, CONFIG_FILE_NAME), Get().ConfigFilePath())
	assert.NotEmpty(t, Get().EventLogDir())
}

func TestWriteTemplateConfig(t *testing.T) {
	dir := filepath.Join(withConfigDir(t), "nested")
	t.Setenv(CONFIG_DIR_ENV_KEY, dir)

	require.NoError(t, WriteTemplateConfig())

	data, err := os.ReadFile(filepath.Join(dir, CONFIG_FILE_NAME))
	require.NoError(t, err)
	assert.Equal(t, templateConfig, string(data))

	// An existing config file is never overwritten
	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE_NAME), []byte("default_command: ci\n"), 0o644))
	require.NoError(t, WriteTemplateConfig())

	data, err = os.ReadFile(filepath.Join(dir, CONFIG_FILE_NAME))
	require.NoError(t, err)
	assert.Equal(t, "default_command: ci\n", string(data))
}
