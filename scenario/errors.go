package scenario

import (
	"github.com/safedep/tryout/usefulerror"
)

var (
	ErrScenarioNotFound = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeScenarioNotFound).
				WithHumanError("Scenario not found in the catalog.").
				WithHelp("Run `tryout list` to see the available scenarios.").
				Msg("scenario not found")

	ErrUnknownEcosystem = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeInvalidArgument).
				WithHumanError("The scenario uses an unsupported package ecosystem.").
				WithHelp("Supported ecosystems are npm, pnpm, yarn, bun and pip.").
				Msg("unknown ecosystem")

	ErrInvalidCatalog = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeCatalogInvalid).
				WithHumanError("The scenario catalog is invalid.").
				WithHelp("Every scenario needs a unique name.").
				Msg("invalid catalog")

	ErrNoCommand = usefulerror.Useful().
			WithCode(usefulerror.ErrCodeInvalidArgument).
			WithHumanError("No command to run for the scenario.").
			WithHelp("Pass a command name or set a default command in the catalog or the configuration.").
			Msg("no command")
)
