package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ApplyCobraFlags applies the cobra flags to the command.
// These flags are local concern of the config package. This helper function is used
// to bind them to the Cobra command.
func ApplyCobraFlags(cmd *cobra.Command) {
	applyFlags(cmd.PersistentFlags())
}

func applyFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&globalConfig.ProjectDir, "cwd", "C", globalConfig.ProjectDir,
		"Project directory to run scenarios in")
	fs.StringVar(&globalConfig.Config.CatalogPath, "config-path", globalConfig.Config.CatalogPath,
		"Scenario catalog, relative to the project directory")
	fs.StringVar(&globalConfig.Config.CommandPrefix, "command-prefix", globalConfig.Config.CommandPrefix,
		"Prefix of scenario command names, empty to run commands directly")
}
