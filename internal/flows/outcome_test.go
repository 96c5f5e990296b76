package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/safedep/tryout/internal/ui"
	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/runner"
	"github.com/safedep/tryout/scenario"
	"github.com/stretchr/testify/assert"
)

func TestInferOutcome(t *testing.T) {
	restoreErr := packagemanager.ErrRestoreFailed.Wrap(errors.New("npm: disk full"))
	installErr := packagemanager.ErrInstallFailed.Wrap(errors.New("npm install exited with code 1"))
	spawnErr := runner.ErrSpawnFailed.Wrap(errors.New("npm: executable file not found"))

	tests := []struct {
		name             string
		result           scenario.Result
		expectedOutcome  ui.ExecutionOutcome
		expectedExitCode int
	}{
		{
			name:             "success",
			result:           scenario.Result{},
			expectedOutcome:  ui.OutcomeSuccess,
			expectedExitCode: 0,
		},
		{
			name:             "command failed",
			result:           scenario.Result{ExitCode: 3},
			expectedOutcome:  ui.OutcomeCommandFailed,
			expectedExitCode: 3,
		},
		{
			name: "spawn failure is a command failure",
			result: scenario.Result{
				ExitCode: scenario.ExitCodeSpawnFailed,
				Errors:   []error{spawnErr},
			},
			expectedOutcome:  ui.OutcomeCommandFailed,
			expectedExitCode: scenario.ExitCodeSpawnFailed,
		},
		{
			name: "install failed",
			result: scenario.Result{
				ExitCode: scenario.ExitCodeInstallFailed,
				Errors:   []error{installErr},
			},
			expectedOutcome:  ui.OutcomeInstallFailed,
			expectedExitCode: scenario.ExitCodeInstallFailed,
		},
		{
			name: "interrupted takes precedence over install failure",
			result: scenario.Result{
				ExitCode:    scenario.ExitCodeInstallFailed,
				Errors:      []error{installErr, context.Canceled},
				Interrupted: true,
			},
			expectedOutcome:  ui.OutcomeInterrupted,
			expectedExitCode: scenario.ExitCodeInterrupted,
		},
		{
			name: "interrupted after the command exited",
			result: scenario.Result{
				ExitCode:    0,
				Interrupted: true,
			},
			expectedOutcome:  ui.OutcomeInterrupted,
			expectedExitCode: scenario.ExitCodeInterrupted,
		},
		{
			name: "restore failure after success never exits with zero",
			result: scenario.Result{
				Errors: []error{restoreErr},
			},
			expectedOutcome:  ui.OutcomeRestoreFailed,
			expectedExitCode: 1,
		},
		{
			name: "restore failure keeps the command exit code",
			result: scenario.Result{
				ExitCode: 3,
				Errors:   []error{restoreErr},
			},
			expectedOutcome:  ui.OutcomeRestoreFailed,
			expectedExitCode: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedOutcome, inferOutcome(&tt.result))
			assert.Equal(t, tt.expectedExitCode, exitCode(&tt.result))
		})
	}
}

func TestRestoreFailures(t *testing.T) {
	restoreErr := packagemanager.ErrRestoreFailed.Wrap(errors.New("npm: disk full"))
	installErr := packagemanager.ErrInstallFailed.Wrap(errors.New("npm install exited with code 1"))
	joined := errors.Join(restoreErr, installErr)

	tests := []struct {
		name     string
		errs     []error
		expected []error
	}{
		{"no errors", nil, nil},
		{"install failure only", []error{installErr}, nil},
		{"install and restore failures", []error{installErr, restoreErr}, []error{restoreErr}},
		{"restore failure joined with reinstall failure", []error{joined}, []error{joined}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, restoreFailures(&scenario.Result{Errors: tt.errs}))
		})
	}
}
