package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// loadViperConfig loads the configuration using Viper. Values missing from the
// config file keep their defaults and every key can be overridden from the
// environment, e.g. TRYOUT_COMMAND_PREFIX.
// This function will panic for system errors since it is part of the init path.
func loadViperConfig() {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix("TRYOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	defaults := globalConfig.Config
	v.SetDefault("command_prefix", defaults.CommandPrefix)
	v.SetDefault("default_command", defaults.DefaultCommand)
	v.SetDefault("catalog_path", defaults.CatalogPath)
	v.SetDefault("skip_event_logging", defaults.SkipEventLogging)
	v.SetDefault("event_log_retention_days", defaults.EventLogRetentionDays)
	v.SetDefault("disable_analytics", defaults.DisableAnalytics)

	configPath := globalConfig.configFilePath

	// If the config file doesn't exist, only defaults and the environment apply
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)

		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("failed to read config file %s: %w", configPath, err))
		}
	}

	loadedConfig := defaults
	if err := v.Unmarshal(&loadedConfig); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %w", err))
	}

	globalConfig.Config = loadedConfig
}
