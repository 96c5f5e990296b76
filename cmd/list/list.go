package list

import (
	"github.com/safedep/tryout/catalog"
	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/analytics"
	"github.com/safedep/tryout/internal/ui"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scenarios of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandList()

			cat, err := catalog.Load(config.Get().CatalogFilePath())
			if err != nil {
				ui.ErrorExit(err)
			}

			ui.PrintScenarioList(cat)
			return nil
		},
	}
}
