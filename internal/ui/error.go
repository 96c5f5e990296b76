package ui

import (
	"fmt"
	"os"

	"github.com/safedep/tryout/usefulerror"
)

const bugReportURL = "https://github.com/safedep/tryout/issues/new?assignees=&labels=bug"

// ErrorExit prints the error message and exits the program with a non-zero status code.
func ErrorExit(err error) {
	usefulErr := convertToUsefulError(err)
	if usefulErr == nil {
		return
	}

	ClearStatus()

	fmt.Fprintln(os.Stderr, Colors.Red(fmt.Sprintf("Error occurred: %s", usefulErr.HumanError())))

	if help := usefulErr.Help(); help != "" {
		fmt.Fprintln(os.Stderr, Colors.Yellow(termWidthFormatText(help, defaultTextWidth)))
	}

	additionalHelp := usefulErr.AdditionalHelp()
	if usefulErr.Code() == usefulerror.ErrCodeUnknown {
		additionalHelp = fmt.Sprintf("If you believe this is a bug, please report it at: %s", bugReportURL)
	}

	fmt.Fprintln(os.Stderr, Colors.Dim(additionalHelp))

	os.Exit(1)
}

// Fatalf prints a formatted message and exits with a non-zero status code
func Fatalf(format string, args ...any) {
	ClearStatus()

	fmt.Fprintln(os.Stderr, Colors.Red(fmt.Sprintf(format, args...)))
	os.Exit(1)
}
