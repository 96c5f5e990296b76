package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// The UI is internal to tryout and opinionated for the CLI.

type VerbosityLevel int

const (
	// Only errors and failed scenarios are shown
	VerbosityLevelSilent VerbosityLevel = iota

	// Show status updates and the dependency table
	VerbosityLevelNormal

	// Additionally show run details such as the run id, timing and errors
	VerbosityLevelVerbose
)

const defaultTextWidth = 80

var verbosityLevel VerbosityLevel = VerbosityLevelNormal

func SetVerbosityLevel(level VerbosityLevel) {
	verbosityLevel = level
}

func ClearStatus() {
	StopSpinner()
}

func SetStatus(status string) {
	if verbosityLevel == VerbosityLevelSilent {
		return
	}

	StopSpinner()
	StartSpinnerWithColor(status, Colors.Green)
}

// ShowWarning is shown at every verbosity level.
func ShowWarning(message string) {
	StopSpinner()
	renderWarning(os.Stderr, message)
}

func renderWarning(w io.Writer, message string) {
	fmt.Fprintln(w, Colors.Yellow(fmt.Sprintf("⚠️  %s", termWidthFormatText(message, defaultTextWidth))))
}

// termWidthFormatText wraps text at word boundaries so that no line is
// longer than maxWidth, unless a single word is. Whitespace is collapsed.
func termWidthFormatText(text string, maxWidth int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0

	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > maxWidth {
				sb.WriteString("\n")
				lineLen = 0
			} else {
				sb.WriteString(" ")
				lineLen++
			}
		}

		sb.WriteString(word)
		lineLen += len(word)
	}

	return sb.String()
}
