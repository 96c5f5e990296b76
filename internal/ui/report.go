package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/safedep/dry/utils"
	"github.com/safedep/tryout/packagemanager"
)

// ExecutionOutcome represents the final result of a scenario run
type ExecutionOutcome int

const (
	OutcomeSuccess ExecutionOutcome = iota
	OutcomeCommandFailed
	OutcomeInstallFailed
	OutcomeInterrupted
	OutcomeRestoreFailed
)

func (o ExecutionOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeCommandFailed:
		return "command_failed"
	case OutcomeInstallFailed:
		return "install_failed"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeRestoreFailed:
		return "restore_failed"
	default:
		return "unknown"
	}
}

// ReportData captures what is shown after a scenario run.
// This is a pure data model with no rendering logic.
type ReportData struct {
	RunID    string
	Scenario string
	Command  string
	ExitCode int

	StartTime time.Time
	Duration  time.Duration

	Dependencies []packagemanager.DependencyResult
	Errors       []error

	Outcome ExecutionOutcome
}

// HasMismatches returns true if any overridden package is missing, has
// another version or could not be checked
func (r *ReportData) HasMismatches() bool {
	for _, dep := range r.Dependencies {
		if dep.Status() != packagemanager.DependencyStatusMatch {
			return true
		}
	}

	return false
}

func (r *ReportData) WasSuccessful() bool {
	return r.Outcome == OutcomeSuccess
}

// Report renders the run report to stdout based on the verbosity level
func Report(data *ReportData) {
	RenderReport(os.Stdout, data, verbosityLevel)
}

func RenderReport(w io.Writer, data *ReportData, level VerbosityLevel) {
	switch level {
	case VerbosityLevelSilent:
		reportSilent(w, data)
	case VerbosityLevelNormal:
		reportNormal(w, data)
	case VerbosityLevelVerbose:
		reportVerbose(w, data)
	}
}

// reportSilent only reports failed runs
func reportSilent(w io.Writer, data *ReportData) {
	if data.WasSuccessful() {
		return
	}

	printOutcomeLine(w, data)
}

func reportNormal(w io.Writer, data *ReportData) {
	fmt.Fprintln(w)

	if len(data.Dependencies) > 0 {
		renderDependencyTable(w, data.Dependencies)
		fmt.Fprintln(w)
	}

	printOutcomeLine(w, data)
}

func reportVerbose(w io.Writer, data *ReportData) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Colors.Cyan("Scenario Report"))
	fmt.Fprintln(w, Colors.Normal("────────────────────────────────────────"))

	fmt.Fprintf(w, "  %s %s\n", Colors.Bold("Scenario:"), data.Scenario)
	fmt.Fprintf(w, "  %s %s\n", Colors.Bold("Command:"), data.Command)
	fmt.Fprintf(w, "  %s %s\n", Colors.Bold("Run:"), data.RunID)
	fmt.Fprintf(w, "  %s %s\n", Colors.Bold("Duration:"), formatDuration(data.Duration))

	fmt.Fprintln(w)
	if len(data.Dependencies) > 0 {
		renderDependencyTable(w, data.Dependencies)
	} else {
		fmt.Fprintf(w, "  %s\n", Colors.Dim("No dependency overrides"))
	}

	if len(data.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, Colors.Red("  Errors:"))
		for _, err := range data.Errors {
			fmt.Fprintf(w, "    - %s\n", err)
		}
	}

	fmt.Fprintln(w)
	printOutcomeLine(w, data)
}

func renderDependencyTable(w io.Writer, deps []packagemanager.DependencyResult) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"Ecosystem", "Package", "Expected", "Locked", "Installed", "Status"})

	for _, dep := range deps {
		status := string(dep.Status())

		installed := utils.SafelyGetValue(dep.VersionSeen)
		if dep.IsMissing() {
			installed = "-"
		}

		locked := utils.SafelyGetValue(dep.VersionLocked)
		if locked == "" {
			locked = "-"
		}

		tbl.AppendRow(table.Row{
			dep.Ecosystem,
			dep.Name,
			dep.VersionExpected,
			locked,
			installed,
			statusColor(status)("%s", status),
		})
	}

	tbl.Render()
}

func printOutcomeLine(w io.Writer, data *ReportData) {
	switch data.Outcome {
	case OutcomeSuccess:
		fmt.Fprintf(w, "%s %s\n", Colors.Green("✓"),
			Colors.Green(fmt.Sprintf("Scenario %s passed", data.Scenario)))
	case OutcomeCommandFailed:
		fmt.Fprintf(w, "%s %s\n", Colors.Red("✗"),
			Colors.Red(fmt.Sprintf("Scenario %s failed: %s exited with code %d", data.Scenario, data.Command, data.ExitCode)))
	case OutcomeInstallFailed:
		fmt.Fprintf(w, "%s %s\n", Colors.Red("✗"),
			Colors.Red(fmt.Sprintf("Scenario %s failed: dependencies could not be installed", data.Scenario)))
	case OutcomeInterrupted:
		fmt.Fprintf(w, "%s %s\n", Colors.Yellow("✗"),
			Colors.Yellow(fmt.Sprintf("Scenario %s interrupted", data.Scenario)))
	case OutcomeRestoreFailed:
		fmt.Fprintf(w, "%s %s\n", Colors.Red("⚠"),
			Colors.Red("Original dependencies could not be restored, run `tryout restore`"))
	}

	if data.Outcome != OutcomeRestoreFailed && data.HasMismatches() {
		fmt.Fprintf(w, "%s %s\n", Colors.Yellow("!"),
			Colors.Dim("Some packages could not be verified against their expected version"))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	return fmt.Sprintf("%.1fs", d.Seconds())
}
