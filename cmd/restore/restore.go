package restore

import (
	"fmt"
	"os"
	"strings"

	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/analytics"
	"github.com/safedep/tryout/internal/flows"
	"github.com/safedep/tryout/internal/ui"
	"github.com/spf13/cobra"
)

func NewRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [ecosystem...]",
		Short: "Restore dependencies left behind by an interrupted run",
		Long: `Restores the manifest and installed packages from the backups of a run that
could not restore them, then reinstalls. Without arguments the ecosystems
of the scenario catalog are restored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandRestore()

			flow, err := flows.Restore(config.Get())
			if err != nil {
				ui.Fatalf("Failed to create restore flow: %s", err)
			}

			restored, err := flow.Run(cmd.Context(), args)
			if err != nil {
				ui.ErrorExit(err)
			}

			if len(restored) == 0 {
				fmt.Fprintln(os.Stdout, ui.Colors.Dim("Nothing to restore"))
				return nil
			}

			fmt.Fprintf(os.Stdout, "%s %s\n", ui.Colors.Green("✓"),
				fmt.Sprintf("Restored %s dependencies", strings.Join(restored, ", ")))

			return nil
		},
	}
}
