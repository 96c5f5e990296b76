package analytics

const (
	eventCommandTry     = "tryout_command_try"
	eventCommandList    = "tryout_command_list"
	eventCommandRestore = "tryout_command_restore"
	eventScenarioResult = "tryout_scenario_result"
)

func TrackCommandTry() {
	TrackEvent(eventCommandTry)
}

func TrackCommandList() {
	TrackEvent(eventCommandList)
}

func TrackCommandRestore() {
	TrackEvent(eventCommandRestore)
}

// TrackScenarioResult records the outcome of a run. Scenario and package
// names are never sent.
func TrackScenarioResult(ecosystems []string, exitCode int, interrupted, restoreFailed bool) {
	TrackEventWithProperties(eventScenarioResult, map[string]any{
		"ecosystems":     ecosystems,
		"exit_code":      exitCode,
		"interrupted":    interrupted,
		"restore_failed": restoreFailed,
	})
}
