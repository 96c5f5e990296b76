package flows

import (
	"context"
	"fmt"

	"github.com/safedep/dry/log"
	"github.com/safedep/tryout/catalog"
	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/analytics"
	"github.com/safedep/tryout/internal/eventlog"
	"github.com/safedep/tryout/internal/ui"
	"github.com/safedep/tryout/scenario"
)

type tryFlow struct {
	flowDependencies
}

// Try creates the flow that runs one scenario of the project catalog
func Try(cfg *config.RuntimeConfig) (*tryFlow, error) {
	deps, err := newFlowDependencies(cfg)
	if err != nil {
		return nil, err
	}

	return &tryFlow{flowDependencies: deps}, nil
}

// Run executes the named scenario and returns the exit code of the process.
// An error means the scenario never started and nothing was changed.
func (f *tryFlow) Run(ctx context.Context, name, command string) (int, error) {
	cat, err := catalog.Load(f.config.CatalogFilePath())
	if err != nil {
		return 1, err
	}

	registry, err := f.registry()
	if err != nil {
		return 1, fmt.Errorf("failed to create package manager adapters: %w", err)
	}

	executorConfig := scenario.DefaultExecutorConfig()
	executorConfig.CommandPrefix = f.config.CommandPrefix()
	executorConfig.DefaultCommand = f.config.Config.DefaultCommand
	executorConfig.Dir = f.config.ProjectDir

	var runID string
	interaction := scenario.ExecutorInteraction{
		OnRunStarted: func(id, scenarioName, cmd string) {
			runID = id
			eventlog.LogScenarioStarted(id, scenarioName, cmd)
		},
		OnStateChange: func(state scenario.State) {
			log.Debugf("Scenario %s entered state %s", name, state)
		},
		OnDependencyResults: func(ecosystem string, results []scenario.DependencyResult) {
			for _, result := range results {
				eventlog.LogDependencyResolved(runID, name, result)
			}
		},
		SetStatus:   ui.SetStatus,
		ClearStatus: ui.ClearStatus,
	}

	executor, err := scenario.NewExecutor(executorConfig, registry, f.runner, interaction)
	if err != nil {
		return 1, err
	}

	result, err := executor.Run(ctx, cat, name, command)
	ui.ClearStatus()

	if err != nil {
		eventlog.LogError(fmt.Sprintf("Scenario %s did not start", name), err)
		return 1, err
	}

	f.record(cat, result)

	ui.Report(&ui.ReportData{
		RunID:        result.RunID,
		Scenario:     result.Scenario,
		Command:      result.Command,
		ExitCode:     result.ExitCode,
		StartTime:    result.StartTime,
		Duration:     result.Duration,
		Dependencies: result.Dependencies,
		Errors:       result.Errors,
		Outcome:      inferOutcome(result),
	})

	if result.RestoreFailed() {
		ui.ShowWarning("The project was not fully restored, backups were kept. Run `tryout restore` to restore it.")
	}

	return exitCode(result), nil
}

func (f *tryFlow) record(cat *scenario.Catalog, result *scenario.Result) {
	for _, err := range restoreFailures(result) {
		eventlog.LogRestoreFailed(result.RunID, result.Scenario, err)
	}

	eventlog.LogScenarioFinished(result.RunID, result.Scenario, result.ExitCode, result.Duration, result.Interrupted)

	var ecosystems []string
	if sc, err := cat.FindByName(result.Scenario); err == nil {
		ecosystems = sc.Ecosystems()
	}

	analytics.TrackScenarioResult(ecosystems, result.ExitCode, result.Interrupted, result.RestoreFailed())
}
