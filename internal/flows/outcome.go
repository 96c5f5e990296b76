package flows

import (
	"errors"

	"github.com/safedep/tryout/internal/ui"
	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/scenario"
)

// inferOutcome determines the outcome of a scenario run.
//
// Outcome precedence:
//  1. Restore failure
//  2. Interruption
//  3. Install failure
//  4. Non-zero exit of the command, including spawn failures
//  5. Success (default)
func inferOutcome(result *scenario.Result) ui.ExecutionOutcome {
	if result.RestoreFailed() {
		return ui.OutcomeRestoreFailed
	}

	if result.Interrupted {
		return ui.OutcomeInterrupted
	}

	for _, err := range result.Errors {
		if errors.Is(err, packagemanager.ErrInstallFailed) {
			return ui.OutcomeInstallFailed
		}
	}

	if result.ExitCode != 0 {
		return ui.OutcomeCommandFailed
	}

	return ui.OutcomeSuccess
}

// exitCode is the process exit code of `tryout try`. A run that left the
// project unrestored never exits with zero.
func exitCode(result *scenario.Result) int {
	if result.Interrupted {
		return scenario.ExitCodeInterrupted
	}

	if result.ExitCode == 0 && result.RestoreFailed() {
		return 1
	}

	return result.ExitCode
}

// restoreFailures returns the errors of a run that left an ecosystem
// unrestored.
func restoreFailures(result *scenario.Result) []error {
	var errs []error
	for _, err := range result.Errors {
		if errors.Is(err, packagemanager.ErrRestoreFailed) {
			errs = append(errs, err)
		}
	}

	return errs
}
