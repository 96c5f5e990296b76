package try

import (
	"context"
	"fmt"

	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/analytics"
	"github.com/safedep/tryout/internal/flows"
	"github.com/safedep/tryout/internal/ui"
	"github.com/spf13/cobra"
)

// ExitCode is returned by the command when the scenario failed. The process
// should exit with it after deferred work is done.
type ExitCode int

func (e ExitCode) Error() string {
	return fmt.Sprintf("scenario failed with exit code %d", int(e))
}

func NewTryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "try <scenario> [command]",
		Short: "Run a command against the dependencies of a scenario",
		Long: `Backs up the project dependencies, installs the dependency overrides of the
scenario, runs the command and restores the original dependencies.

The command defaults to the command of the scenario, then of the catalog,
then of the configuration. It is prefixed with the configured command
prefix, "npm run" unless changed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := ""
			if len(args) > 1 {
				command = args[1]
			}

			code, err := executeTryFlow(cmd.Context(), args[0], command)
			if err != nil {
				ui.ErrorExit(err)
			}

			if code != 0 {
				return ExitCode(code)
			}

			return nil
		},
	}
}

func executeTryFlow(ctx context.Context, name, command string) (int, error) {
	analytics.TrackCommandTry()

	flow, err := flows.Try(config.Get())
	if err != nil {
		ui.Fatalf("Failed to create scenario flow: %s", err)
	}

	return flow.Run(ctx, name, command)
}
