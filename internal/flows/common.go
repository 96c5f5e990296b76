package flows

import (
	"github.com/safedep/dry/log"
	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/eventlog"
	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/runner"
)

// Dependencies shared by the flows. Tests replace the runner to avoid
// spawning package managers.
type flowDependencies struct {
	config *config.RuntimeConfig
	runner runner.CommandRunner
}

func newFlowDependencies(cfg *config.RuntimeConfig) (flowDependencies, error) {
	cmdRunner, err := runner.NewExecRunner(runner.DefaultExecRunnerConfig())
	if err != nil {
		return flowDependencies{}, err
	}

	return flowDependencies{config: cfg, runner: cmdRunner}, nil
}

func (d flowDependencies) registry() (*packagemanager.Registry, error) {
	return packagemanager.NewDefaultRegistry(d.config.ProjectDir, d.runner)
}

// InitEventLog opens the event log unless it is disabled. Failures are
// logged and never stop a run.
func InitEventLog(cfg *config.RuntimeConfig) {
	if cfg.Config.SkipEventLogging {
		log.Debugf("Event logging disabled")
		return
	}

	if err := eventlog.InitializeWithDir(cfg.EventLogDir(), cfg.Config.EventLogRetentionDays); err != nil {
		log.Warnf("Failed to initialize event log: %v", err)
	}
}
