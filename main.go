package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/safedep/dry/log"
	"github.com/safedep/tryout/cmd/list"
	"github.com/safedep/tryout/cmd/restore"
	"github.com/safedep/tryout/cmd/try"
	"github.com/safedep/tryout/cmd/version"
	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/analytics"
	"github.com/safedep/tryout/internal/eventlog"
	"github.com/safedep/tryout/internal/flows"
	"github.com/safedep/tryout/internal/ui"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	silent  bool
	verbose bool
)

func main() {
	cmd := &cobra.Command{
		Use:              "tryout",
		Short:            "Run project commands against alternative dependency versions",
		TraverseChildren: true,
		SilenceUsage:     true,
		SilenceErrors:    true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				os.Setenv("APP_LOG_LEVEL", "debug")
			}

			log.InitZapLogger("tryout", "")

			switch {
			case silent:
				ui.SetVerbosityLevel(ui.VerbosityLevelSilent)
			case verbose:
				ui.SetVerbosityLevel(ui.VerbosityLevelVerbose)
			}

			if err := config.WriteTemplateConfig(); err != nil {
				log.Debugf("failed to write template config: %v", err)
			}

			cfg := config.Get()

			flows.InitEventLog(cfg)
			analytics.Init(cfg.ConfigDir(), cfg.Config.DisableAnalytics)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}

			return fmt.Errorf("tryout: %s is not a valid command", args[0])
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, "Only report failed scenarios")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show run details in the report")

	config.ApplyCobraFlags(cmd)

	cmd.AddCommand(try.NewTryCommand())
	cmd.AddCommand(list.NewListCommand())
	cmd.AddCommand(restore.NewRestoreCommand())
	cmd.AddCommand(version.NewVersionCommand())

	// Interrupts cancel the run, the executor restores before exiting
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.ExecuteContext(ctx)

	stop()
	analytics.Close()
	eventlog.Close()

	if err == nil {
		return
	}

	var exitCode try.ExitCode
	if errors.As(err, &exitCode) {
		os.Exit(int(exitCode))
	}

	fmt.Fprintln(os.Stderr, ui.Colors.Red(fmt.Sprintf("Error: %s", err)))
	os.Exit(1)
}
