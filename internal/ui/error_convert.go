package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"github.com/safedep/tryout/usefulerror"
)

// errorMatcher defines how to detect and convert a specific error type
type errorMatcher struct {
	match   func(err error) bool
	convert func(err error) usefulerror.UsefulError
}

// errorMatchers is an ordered list of error matchers
// Order matters - more specific matchers should come first
var errorMatchers = []errorMatcher{
	// Executable not found, checked before file errors since exec.ErrNotFound
	// is also reported for missing paths
	{
		match: func(err error) bool {
			return errors.Is(err, exec.ErrNotFound)
		},
		convert: func(err error) usefulerror.UsefulError {
			humanError := "Command not found"

			var execErr *exec.Error
			if errors.As(err, &execErr) {
				humanError = fmt.Sprintf("Command not found: %s", execErr.Name)
			}

			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeSpawnFailed).
				WithHumanError(humanError).
				WithHelp("Make sure the package manager is installed and available in PATH").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, os.ErrNotExist)
		},
		convert: func(err error) usefulerror.UsefulError {
			path := extractPathFromError(err)
			humanError := "File or directory not found"
			if path != "" {
				humanError = fmt.Sprintf("File or directory not found: %s", path)
			}

			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeNotFound).
				WithHumanError(humanError).
				WithHelp("Check if the path exists").
				WithAdditionalHelp("Use --cwd to run against another project directory").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, os.ErrPermission)
		},
		convert: func(err error) usefulerror.UsefulError {
			path := extractPathFromError(err)
			humanError := "Permission denied"
			if path != "" {
				humanError = fmt.Sprintf("Permission denied: %s", path)
			}

			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodePermissionDenied).
				WithHumanError(humanError).
				WithHelp("Check the permissions of the project directory").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			var exitErr *exec.ExitError
			return errors.As(err, &exitErr)
		},
		convert: func(err error) usefulerror.UsefulError {
			var exitErr *exec.ExitError
			errors.As(err, &exitErr)

			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeSpawnFailed).
				WithHumanError(fmt.Sprintf("Command failed with exit code %d", exitErr.ExitCode())).
				WithHelp("Check command output above").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, context.DeadlineExceeded)
		},
		convert: func(err error) usefulerror.UsefulError {
			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeTimeout).
				WithHumanError("Operation timed out").
				WithHelp("Try again").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		convert: func(err error) usefulerror.UsefulError {
			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeCanceled).
				WithHumanError("Operation was canceled").
				Wrap(err)
		},
	},
}

// convertToUsefulError converts a regular error to a UsefulError by looking
// for known error types in the chain. Unknown errors are reported with their
// root cause.
func convertToUsefulError(err error) usefulerror.UsefulError {
	if err == nil {
		return nil
	}

	if ue, ok := usefulerror.AsUsefulError(err); ok {
		return ue
	}

	for _, matcher := range errorMatchers {
		if matcher.match(err) {
			return matcher.convert(err)
		}
	}

	return usefulerror.Useful().
		WithCode(usefulerror.ErrCodeUnknown).
		WithHumanError(extractRootCause(err)).
		WithHelp("An unexpected error occurred.").
		Wrap(err)
}

// extractRootCause returns the innermost error message of the chain
func extractRootCause(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}

		err = unwrapped
	}
}

func extractPathFromError(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Old
	}

	return ""
}
