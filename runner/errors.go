package runner

import "github.com/safedep/tryout/usefulerror"

var ErrSpawnFailed = usefulerror.Useful().
	WithCode(usefulerror.ErrCodeSpawnFailed).
	WithHumanError("The command could not be started.").
	WithHelp("Check that the executable is installed and available in your PATH.").
	Msg("failed to start command")
