package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safedep/dry/log"
	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/runner"
)

const (
	// DefaultCommand is run when neither the caller, the scenario nor the
	// catalog name a command.
	DefaultCommand = "test"

	ExitCodeInstallFailed = 1
	ExitCodeSpawnFailed   = 127
	ExitCodeInterrupted   = 130
)

// AdapterProvider looks up the adapter of an ecosystem key.
type AdapterProvider interface {
	Get(name string) (packagemanager.PackageManagerAdapter, bool)
}

type ExecutorInteraction struct {
	// OnRunStarted is called once the scenario and its command are resolved,
	// before anything is backed up
	OnRunStarted func(runID, scenario, command string)

	// OnStateChange is called whenever the executor enters a new state
	OnStateChange func(state State)

	// OnDependencyResults is called after the dependency set of an ecosystem
	// was installed
	OnDependencyResults func(ecosystem string, results []DependencyResult)

	// SetStatus is called to set the status of the run in the UI
	SetStatus func(status string)

	// ClearStatus is called before the scenario command takes over the terminal
	ClearStatus func()
}

type ExecutorConfig struct {
	// CommandPrefix is prepended to command names, e.g. "npm run". An empty
	// prefix runs the command line as is.
	CommandPrefix []string

	DefaultCommand string

	// Dir is the working directory of the scenario command
	Dir string

	Env []string
}

func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CommandPrefix:  []string{"npm", "run"},
		DefaultCommand: DefaultCommand,
	}
}

// Result is the outcome of one scenario run.
type Result struct {
	RunID    string
	Scenario string
	Command  string

	// ExitCode is the exit code of the scenario command, or one of the
	// ExitCode* constants when the command could not run.
	ExitCode int

	Dependencies []DependencyResult

	// Errors holds install, spawn and restore failures. They never abort
	// restoration.
	Errors []error

	Interrupted bool

	StartTime time.Time
	Duration  time.Duration
}

func (r *Result) Success() bool {
	return r.ExitCode == 0 && !r.Interrupted
}

// RestoreFailed is true when the project could not be put back in its
// original state.
func (r *Result) RestoreFailed() bool {
	for _, err := range r.Errors {
		if errors.Is(err, packagemanager.ErrRestoreFailed) {
			return true
		}
	}

	return false
}

// Executor runs scenarios against one project directory: it backs up every
// ecosystem referenced by the scenario, applies the overrides, runs the
// command and restores the original state.
//
// Runs are strictly sequential. An Executor is not safe for concurrent use
// and running two executors against the same project is not supported.
type Executor struct {
	config      ExecutorConfig
	adapters    AdapterProvider
	runner      runner.CommandRunner
	interaction ExecutorInteraction
	state       State
}

func NewExecutor(config ExecutorConfig, adapters AdapterProvider,
	cmdRunner runner.CommandRunner, interaction ExecutorInteraction) (*Executor, error) {
	if adapters == nil || cmdRunner == nil {
		return nil, fmt.Errorf("executor requires adapters and a command runner")
	}

	return &Executor{
		config:      config,
		adapters:    adapters,
		runner:      cmdRunner,
		interaction: interaction,
		state:       StateIdle,
	}, nil
}

func (e *Executor) State() State {
	return e.state
}

// Run executes the named scenario. command may be empty to use the default
// command of the scenario, the catalog or the configuration, in that order.
//
// Only lookup, configuration and backup failures are returned as errors, in
// which case nothing was changed. Everything that goes wrong after the backup
// is reported in Result.Errors and the project is always restored before Run
// returns, also when ctx is cancelled.
func (e *Executor) Run(ctx context.Context, catalog *Catalog, name, command string) (*Result, error) {
	if catalog == nil {
		return nil, ErrInvalidCatalog.Wrap(fmt.Errorf("no catalog"))
	}

	sc, err := catalog.FindByName(name)
	if err != nil {
		return nil, err
	}

	if err := sc.validate(); err != nil {
		return nil, err
	}

	adapters, err := e.adaptersFor(sc)
	if err != nil {
		return nil, err
	}

	cmd, err := e.resolveCommand(catalog, sc, command)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:        uuid.New().String(),
		Scenario:     sc.Name,
		Command:      cmd.String(),
		Dependencies: []DependencyResult{},
		StartTime:    time.Now(),
	}

	log.Debugf("Running scenario %s (run %s) with command: %s", sc.Name, result.RunID, result.Command)

	if e.interaction.OnRunStarted != nil {
		e.interaction.OnRunStarted(result.RunID, result.Scenario, result.Command)
	}

	var setUp []packagemanager.PackageManagerAdapter
	defer func() {
		// Restore even when the run was interrupted
		e.cleanup(context.WithoutCancel(ctx), setUp, result)
		result.Duration = time.Since(result.StartTime)
		e.setState(StateIdle)
	}()

	for _, adapter := range adapters {
		e.setStatus(fmt.Sprintf("Backing up %s dependencies", adapter.Name()))

		if err := adapter.Setup(ctx); err != nil {
			log.Errorf("Failed to back up %s dependencies: %v", adapter.Name(), err)
			return nil, err
		}

		setUp = append(setUp, adapter)
	}

	e.setState(StateBackedUp)
	e.setState(StateApplying)

	for _, adapter := range adapters {
		if ctx.Err() != nil {
			e.interrupted(result, ctx.Err())
			return result, nil
		}

		e.setStatus(fmt.Sprintf("Installing %s scenario dependencies", adapter.Name()))

		results, err := adapter.ChangeToDependencySet(ctx, sc.DependencySets[adapter.Name()])
		result.Dependencies = append(result.Dependencies, results...)
		e.notifyDependencyResults(adapter.Name(), results)

		if err != nil {
			log.Warnf("Scenario %s failed to install %s dependencies: %v", sc.Name, adapter.Name(), err)

			result.Errors = append(result.Errors, err)
			result.ExitCode = ExitCodeInstallFailed

			if ctx.Err() != nil {
				result.Interrupted = true
			}

			return result, nil
		}
	}

	e.setState(StateRunning)
	e.clearStatus()

	res, err := e.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			e.interrupted(result, err)
			return result, nil
		}

		log.Errorf("Failed to run %s: %v", result.Command, err)

		result.Errors = append(result.Errors, err)
		result.ExitCode = ExitCodeSpawnFailed

		return result, nil
	}

	result.ExitCode = res.ExitCode
	if ctx.Err() != nil {
		result.Interrupted = true
	}

	log.Debugf("Scenario %s command exited with code %d", sc.Name, result.ExitCode)

	return result, nil
}

// adaptersFor resolves the adapters of the scenario in sorted ecosystem
// order. Unknown ecosystems fail before anything is backed up.
func (e *Executor) adaptersFor(sc *Scenario) ([]packagemanager.PackageManagerAdapter, error) {
	adapters := make([]packagemanager.PackageManagerAdapter, 0, len(sc.DependencySets))
	for _, name := range sc.Ecosystems() {
		adapter, ok := e.adapters.Get(name)
		if !ok {
			return nil, ErrUnknownEcosystem.Wrap(fmt.Errorf("scenario %q uses ecosystem %q", sc.Name, name))
		}

		adapters = append(adapters, adapter)
	}

	return adapters, nil
}

func (e *Executor) resolveCommand(catalog *Catalog, sc *Scenario, command string) (runner.Command, error) {
	name := firstNonEmpty(command, sc.Command, catalog.Command, e.config.DefaultCommand)

	fields := append(slices.Clone(e.config.CommandPrefix), strings.Fields(name)...)
	if len(fields) == 0 {
		return runner.Command{}, ErrNoCommand.Wrap(fmt.Errorf("scenario %q", sc.Name))
	}

	return runner.Command{
		Exe:  fields[0],
		Args: fields[1:],
		Dir:  e.config.Dir,
		Env:  e.config.Env,
	}, nil
}

// cleanup restores adapters in reverse setup order. Failures are attached
// to the result and never stop the remaining adapters.
func (e *Executor) cleanup(ctx context.Context, adapters []packagemanager.PackageManagerAdapter, result *Result) {
	if len(adapters) == 0 {
		return
	}

	e.setState(StateRestoring)

	for _, adapter := range slices.Backward(adapters) {
		e.setStatus(fmt.Sprintf("Restoring %s dependencies", adapter.Name()))

		if err := adapter.Cleanup(ctx); err != nil {
			log.Errorf("Failed to clean up %s: %v", adapter.Name(), err)
			result.Errors = append(result.Errors, err)
		}
	}

	e.clearStatus()
}

func (e *Executor) interrupted(result *Result, err error) {
	log.Warnf("Scenario %s interrupted: %v", result.Scenario, err)

	result.Interrupted = true
	result.ExitCode = ExitCodeInterrupted
	result.Errors = append(result.Errors, err)
}

func (e *Executor) setState(state State) {
	e.state = state

	if e.interaction.OnStateChange != nil {
		e.interaction.OnStateChange(state)
	}
}

func (e *Executor) notifyDependencyResults(ecosystem string, results []DependencyResult) {
	if e.interaction.OnDependencyResults == nil {
		return
	}

	e.interaction.OnDependencyResults(ecosystem, results)
}

func (e *Executor) setStatus(status string) {
	if e.interaction.SetStatus == nil {
		return
	}

	e.interaction.SetStatus(status)
}

func (e *Executor) clearStatus() {
	if e.interaction.ClearStatus == nil {
		return
	}

	e.interaction.ClearStatus()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
