package packagemanager

import (
	"github.com/safedep/tryout/usefulerror"
)

var (
	ErrBackupFailed = usefulerror.Useful().
			WithCode(usefulerror.ErrCodeBackupFailed).
			WithHumanError("Failed to back up the project dependencies.").
			WithHelp("Make sure the manifest and the installed packages directory exist. Install the project dependencies before trying scenarios.").
			Msg("failed to back up dependencies")

	ErrStaleBackup = usefulerror.Useful().
			WithCode(usefulerror.ErrCodeBackupFailed).
			WithHumanError("A backup from a previous run still exists.").
			WithHelp("A previous run was interrupted before it could restore the project. Run `tryout restore` to restore it.").
			Msg("backup already exists")

	ErrInstallFailed = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeInstallFailed).
				WithHumanError("Failed to install the scenario dependencies.").
				WithHelp("Check the package manager output above. The version ranges of the scenario may not be resolvable.").
				Msg("failed to install dependencies")

	ErrRestoreFailed = usefulerror.Useful().
				WithCode(usefulerror.ErrCodeRestoreFailed).
				WithHumanError("Failed to restore the original project dependencies.").
				WithHelp("The backups were kept next to the originals. Run `tryout restore` or copy them back manually.").
				Msg("failed to restore dependencies")
)
