package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "embed"
)

const (
	// Allow overriding the config path from the environment
	CONFIG_DIR_ENV_KEY = "TRYOUT_CONFIG_DIR"

	// Config path is computed as the user config directory + the default relative path
	// when not overridden by the environment variable
	CONFIG_DEFAULT_HOME_RELATIVE_PATH = "safedep/tryout"

	// Default log directory is relative to the config directory.
	CONFIG_DEFAULT_LOG_DIR = "logs"

	// Config file name.
	// Important: The config file path and the schema should be backward compatible. In case of breaking config
	// changes, we must introduce a new file name and a migration path.
	CONFIG_FILE_NAME = "config.yml"

	DEFAULT_CATALOG_PATH = "config/tryout.yml"
)

//go:embed config.template.yml
var templateConfig string

// Config is the global configuration for tryout that can be persisted or loaded from a given source.
type Config struct {
	// CommandPrefix is prepended to scenario command names. Empty runs the
	// command name as a command line.
	CommandPrefix string `mapstructure:"command_prefix"`

	// DefaultCommand is run when neither the CLI nor the catalog name one.
	DefaultCommand string `mapstructure:"default_command"`

	// CatalogPath is the scenario catalog, relative to the project directory
	// unless absolute.
	CatalogPath string `mapstructure:"catalog_path"`

	// SkipEventLogging allows for skipping event logging.
	SkipEventLogging bool `mapstructure:"skip_event_logging"`

	// EventLogRetentionDays is the number of days to retain event logs.
	EventLogRetentionDays int `mapstructure:"event_log_retention_days"`

	DisableAnalytics bool `mapstructure:"disable_analytics"`
}

// RuntimeConfig is the configuration that is used at runtime. It contains static configuration
// that can be loaded from a source and, if allowed, overridden by the user at runtime.
type RuntimeConfig struct {
	Config Config

	// ProjectDir is the project the scenarios run against. Defaults to the
	// working directory.
	ProjectDir string

	// Internal config values computed at runtime and must be accessed via. API
	configDir      string
	configFilePath string
	eventLogDir    string
}

// ConfigFilePath returns the path to the config file.
func (r *RuntimeConfig) ConfigFilePath() string {
	return r.configFilePath
}

// ConfigDir returns the directory holding the config file and the event logs.
func (r *RuntimeConfig) ConfigDir() string {
	return r.configDir
}

// EventLogDir returns the path to the event log directory.
func (r *RuntimeConfig) EventLogDir() string {
	return r.eventLogDir
}

// CommandPrefix splits the configured command prefix into arguments.
func (r *RuntimeConfig) CommandPrefix() []string {
	return strings.Fields(r.Config.CommandPrefix)
}

// CatalogFilePath resolves the catalog path against the project directory.
func (r *RuntimeConfig) CatalogFilePath() string {
	if filepath.IsAbs(r.Config.CatalogPath) {
		return r.Config.CatalogPath
	}

	return filepath.Join(r.ProjectDir, r.Config.CatalogPath)
}

// DefaultConfig is a fail safe contract for the runtime configuration.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Config: Config{
			CommandPrefix:         "npm run",
			DefaultCommand:        "test",
			CatalogPath:           DEFAULT_CATALOG_PATH,
			SkipEventLogging:      false,
			EventLogRetentionDays: 7,
			DisableAnalytics:      false,
		},
		ProjectDir: ".",
	}
}

// globalConfig is the global configuration for tryout.
var globalConfig *RuntimeConfig

func init() {
	initConfig()
}

// initConfig should be idempotent and can be called multiple times.
// This is required for testing purposes.
func initConfig() {
	defaultConfig := DefaultConfig()
	globalConfig = &defaultConfig

	if wd, err := os.Getwd(); err == nil {
		globalConfig.ProjectDir = wd
	}

	configDir, err := ConfigDir()
	if err != nil {
		panic(fmt.Errorf("failed to get config directory: %w", err))
	}

	configFilePath, err := ConfigFilePath()
	if err != nil {
		panic(fmt.Errorf("failed to get config file path: %w", err))
	}

	eventLogDir, err := eventLogDir()
	if err != nil {
		panic(fmt.Errorf("failed to get event log directory: %w", err))
	}

	globalConfig.configDir = configDir
	globalConfig.configFilePath = configFilePath
	globalConfig.eventLogDir = eventLogDir

	loadConfig()
}

// loadConfig loads the configuration from the config file and the environment.
// All loader functions should be safe with reasonable defaults and panic only
// in case of system errors.
func loadConfig() {
	loadViperConfig()
}

// Get returns the global configuration.
// This is the public API for the configuration package. This package should guarantee
// that this function will never return nil.
func Get() *RuntimeConfig {
	return globalConfig
}

// WriteTemplateConfig writes the template configuration file to disk if it doesn't already exist.
func WriteTemplateConfig() error {
	configDir, err := createConfigDir()
	if err != nil {
		return err
	}

	configFilePath := filepath.Join(configDir, CONFIG_FILE_NAME)

	// Do not overwrite the config file if it already exists
	if _, err := os.Stat(configFilePath); err == nil {
		return nil
	}

	if err := os.WriteFile(configFilePath, []byte(templateConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write template config: %w", err)
	}

	return nil
}
