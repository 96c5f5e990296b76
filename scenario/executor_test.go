package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAdapter records the calls made by the executor.
type recordingAdapter struct {
	name  string
	calls *[]string

	setupErr   error
	installErr error
	results    []DependencyResult

	// cleanupCtxErr is the context error seen by Cleanup
	cleanupCtxErr error
	backup        bool
}

func (a *recordingAdapter) Name() string {
	return a.name
}

func (a *recordingAdapter) Setup(ctx context.Context) error {
	*a.calls = append(*a.calls, a.name+".setup")
	if a.setupErr != nil {
		return a.setupErr
	}

	a.backup = true
	return nil
}

func (a *recordingAdapter) ChangeToDependencySet(ctx context.Context, depSet DependencySet) ([]DependencyResult, error) {
	*a.calls = append(*a.calls, a.name+".change")
	return a.results, a.installErr
}

func (a *recordingAdapter) Cleanup(ctx context.Context) error {
	*a.calls = append(*a.calls, a.name+".cleanup")
	a.cleanupCtxErr = ctx.Err()
	a.backup = false
	return nil
}

func (a *recordingAdapter) HasBackup() bool {
	return a.backup
}

type fakeRunner struct {
	commands []runner.Command
	run      func(ctx context.Context, c runner.Command) (*runner.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, c runner.Command) (*runner.Result, error) {
	f.commands = append(f.commands, c)
	if f.run != nil {
		return f.run(ctx, c)
	}

	return &runner.Result{}, nil
}

func newRecordingRegistry(adapters ...*recordingAdapter) *packagemanager.Registry {
	registry := packagemanager.NewRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}

	return registry
}

func testCatalog() *Catalog {
	return &Catalog{
		Scenarios: []Scenario{
			{
				Name: "old",
				DependencySets: map[string]DependencySet{
					"npm": {Dependencies: map[string]string{"widget": "1.0.0"}},
					"pip": {Dependencies: map[string]string{"requests": "2.28.0"}},
				},
			},
			{
				Name:    "verify-only",
				Command: "verify",
			},
		},
	}
}

func TestExecutorRunOrder(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}
	pip := &recordingAdapter{name: "pip", calls: &calls}

	r := &fakeRunner{run: func(ctx context.Context, c runner.Command) (*runner.Result, error) {
		calls = append(calls, "run")
		return &runner.Result{}, nil
	}}

	var states []State
	var startedRunID, startedCommand string
	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm, pip), r, ExecutorInteraction{
		OnRunStarted: func(runID, scenario, command string) {
			startedRunID = runID
			startedCommand = command
			calls = append(calls, "started:"+scenario)
		},
		OnStateChange: func(state State) { states = append(states, state) },
	})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), testCatalog(), "old", "")
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, "npm run test", result.Command)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{
		"started:old",
		"npm.setup", "pip.setup",
		"npm.change", "pip.change",
		"run",
		"pip.cleanup", "npm.cleanup",
	}, calls)
	assert.Equal(t, result.RunID, startedRunID)
	assert.Equal(t, result.Command, startedCommand)
	assert.Equal(t, []State{StateBackedUp, StateApplying, StateRunning, StateRestoring, StateIdle}, states)
	assert.Equal(t, StateIdle, executor.State())
}

func TestExecutorScenarioNotFound(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}
	r := &fakeRunner{}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm), r, ExecutorInteraction{})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), testCatalog(), "missing", "")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
	assert.Nil(t, result)
	assert.Empty(t, calls)
	assert.Empty(t, r.commands)
}

func TestExecutorUnknownEcosystem(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm), &fakeRunner{}, ExecutorInteraction{})
	require.NoError(t, err)

	_, err = executor.Run(context.Background(), testCatalog(), "old", "")
	assert.ErrorIs(t, err, ErrUnknownEcosystem)
	assert.Empty(t, calls)
}

func TestExecutorRejectsSharedNodeModules(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}
	yarn := &recordingAdapter{name: "yarn", calls: &calls}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm, yarn), &fakeRunner{}, ExecutorInteraction{})
	require.NoError(t, err)

	catalog := &Catalog{Scenarios: []Scenario{{
		Name: "mixed",
		DependencySets: map[string]DependencySet{
			"npm":  {Dependencies: map[string]string{"widget": "1.0.0"}},
			"yarn": {Dependencies: map[string]string{"gadget": "1.0.0"}},
		},
	}}}

	result, err := executor.Run(context.Background(), catalog, "mixed", "")
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.NotErrorIs(t, err, packagemanager.ErrStaleBackup)
	assert.Nil(t, result)
	assert.Empty(t, calls)
}

func TestExecutorNilCatalog(t *testing.T) {
	executor, err := NewExecutor(DefaultExecutorConfig(), packagemanager.NewRegistry(), &fakeRunner{}, ExecutorInteraction{})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), nil, "old", "")
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	assert.Nil(t, result)
}

func TestExecutorBackupFailureCleansUpEarlierAdapters(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}
	pip := &recordingAdapter{name: "pip", calls: &calls, setupErr: packagemanager.ErrBackupFailed}
	r := &fakeRunner{}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm, pip), r, ExecutorInteraction{})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), testCatalog(), "old", "")
	assert.ErrorIs(t, err, packagemanager.ErrBackupFailed)
	assert.Nil(t, result)
	assert.Equal(t, []string{"npm.setup", "pip.setup", "npm.cleanup"}, calls)
	assert.Empty(t, r.commands)
}

func TestExecutorInstallFailureSkipsCommand(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{
		name:       "npm",
		calls:      &calls,
		installErr: packagemanager.ErrInstallFailed,
		results:    []DependencyResult{{Name: "widget", VersionExpected: "1.0.0", Ecosystem: "npm"}},
	}
	pip := &recordingAdapter{name: "pip", calls: &calls}
	r := &fakeRunner{}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm, pip), r, ExecutorInteraction{})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), testCatalog(), "old", "")
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.Equal(t, ExitCodeInstallFailed, result.ExitCode)
	assert.Len(t, result.Dependencies, 1)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], packagemanager.ErrInstallFailed)
	assert.Empty(t, r.commands)
	assert.Equal(t, []string{"npm.setup", "pip.setup", "npm.change", "pip.cleanup", "npm.cleanup"}, calls)
}

func TestExecutorCommandFailure(t *testing.T) {
	cases := []struct {
		name        string
		run         func(ctx context.Context, c runner.Command) (*runner.Result, error)
		exitCode    int
		expectedErr error
	}{
		{
			name: "non zero exit",
			run: func(ctx context.Context, c runner.Command) (*runner.Result, error) {
				return &runner.Result{ExitCode: 3}, nil
			},
			exitCode: 3,
		},
		{
			name: "spawn failure",
			run: func(ctx context.Context, c runner.Command) (*runner.Result, error) {
				return nil, runner.ErrSpawnFailed.Wrap(errors.New("not found"))
			},
			exitCode:    ExitCodeSpawnFailed,
			expectedErr: runner.ErrSpawnFailed,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			var calls []string
			npm := &recordingAdapter{name: "npm", calls: &calls}
			pip := &recordingAdapter{name: "pip", calls: &calls}

			executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm, pip),
				&fakeRunner{run: test.run}, ExecutorInteraction{})
			require.NoError(t, err)

			result, err := executor.Run(context.Background(), testCatalog(), "old", "")
			require.NoError(t, err)

			assert.False(t, result.Success())
			assert.Equal(t, test.exitCode, result.ExitCode)
			if test.expectedErr != nil {
				require.Len(t, result.Errors, 1)
				assert.ErrorIs(t, result.Errors[0], test.expectedErr)
			}

			assert.Contains(t, calls, "npm.cleanup")
			assert.Contains(t, calls, "pip.cleanup")
		})
	}
}

func TestExecutorRestoresAfterCancellation(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &fakeRunner{run: func(ctx context.Context, c runner.Command) (*runner.Result, error) {
		cancel()
		return &runner.Result{ExitCode: ExitCodeInterrupted}, nil
	}}

	catalog := &Catalog{Scenarios: []Scenario{
		{Name: "old", DependencySets: map[string]DependencySet{"npm": {Dependencies: map[string]string{"widget": "1.0.0"}}}},
	}}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm), r, ExecutorInteraction{})
	require.NoError(t, err)

	result, err := executor.Run(ctx, catalog, "old", "")
	require.NoError(t, err)

	assert.True(t, result.Interrupted)
	assert.False(t, result.Success())
	assert.Contains(t, calls, "npm.cleanup")
	assert.NoError(t, npm.cleanupCtxErr)
	assert.False(t, npm.HasBackup())
}

func TestExecutorCancelledBeforeApply(t *testing.T) {
	var calls []string
	npm := &recordingAdapter{name: "npm", calls: &calls}
	r := &fakeRunner{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	catalog := &Catalog{Scenarios: []Scenario{
		{Name: "old", DependencySets: map[string]DependencySet{"npm": {Dependencies: map[string]string{"widget": "1.0.0"}}}},
	}}

	executor, err := NewExecutor(DefaultExecutorConfig(), newRecordingRegistry(npm), r, ExecutorInteraction{})
	require.NoError(t, err)

	result, err := executor.Run(ctx, catalog, "old", "")
	require.NoError(t, err)

	assert.True(t, result.Interrupted)
	assert.Equal(t, ExitCodeInterrupted, result.ExitCode)
	assert.Equal(t, []string{"npm.setup", "npm.cleanup"}, calls)
	assert.Empty(t, r.commands)
}

func TestExecutorResolveCommand(t *testing.T) {
	cases := []struct {
		name     string
		config   ExecutorConfig
		catalog  *Catalog
		scenario string
		command  string
		expected string
		wantErr  bool
	}{
		{
			name:     "default command",
			config:   DefaultExecutorConfig(),
			catalog:  &Catalog{Scenarios: []Scenario{{Name: "plain"}}},
			scenario: "plain",
			expected: "npm run test",
		},
		{
			name:     "explicit command wins",
			config:   DefaultExecutorConfig(),
			catalog:  testCatalog(),
			scenario: "verify-only",
			command:  "lint",
			expected: "npm run lint",
		},
		{
			name:     "scenario command",
			config:   DefaultExecutorConfig(),
			catalog:  testCatalog(),
			scenario: "verify-only",
			expected: "npm run verify",
		},
		{
			name:   "catalog command",
			config: DefaultExecutorConfig(),
			catalog: &Catalog{
				Command:   "ci",
				Scenarios: []Scenario{{Name: "plain"}},
			},
			scenario: "plain",
			expected: "npm run ci",
		},
		{
			name:     "empty prefix runs command line",
			config:   ExecutorConfig{DefaultCommand: "pytest -x tests"},
			catalog:  &Catalog{Scenarios: []Scenario{{Name: "plain"}}},
			scenario: "plain",
			expected: "pytest -x tests",
		},
		{
			name:     "nothing to run",
			config:   ExecutorConfig{},
			catalog:  &Catalog{Scenarios: []Scenario{{Name: "plain"}}},
			scenario: "plain",
			wantErr:  true,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			r := &fakeRunner{}
			executor, err := NewExecutor(test.config, packagemanager.NewRegistry(), r, ExecutorInteraction{})
			require.NoError(t, err)

			result, err := executor.Run(context.Background(), test.catalog, test.scenario, test.command)
			if test.wantErr {
				assert.ErrorIs(t, err, ErrNoCommand)
				assert.Empty(t, r.commands)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, result.Command)
			require.Len(t, r.commands, 1)
			assert.Equal(t, test.expected, r.commands[0].String())
		})
	}
}

// npmProjectRunner simulates npm against a project directory. Installs write
// node_modules from package.json, "npm run verify" checks the installed
// widget version.
type npmProjectRunner struct {
	dir         string
	seenWidget  string
	verifyCode  int
	installFail bool
}

func (r *npmProjectRunner) Run(ctx context.Context, c runner.Command) (*runner.Result, error) {
	switch {
	case c.Exe == "npm" && len(c.Args) > 0 && c.Args[0] == "install":
		if r.installFail {
			return &runner.Result{ExitCode: 1}, nil
		}

		data, err := os.ReadFile(filepath.Join(c.Dir, "package.json"))
		if err != nil {
			return nil, err
		}

		var manifest struct {
			Dependencies map[string]string `json:"dependencies"`
		}

		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, err
		}

		for name, version := range manifest.Dependencies {
			writeInstalledPackage(filepath.Join(c.Dir, "node_modules"), name, strings.TrimLeft(version, "^~"))
		}

		return &runner.Result{}, nil
	case c.Exe == "npm" && len(c.Args) > 1 && c.Args[0] == "run" && c.Args[1] == "verify":
		data, err := os.ReadFile(filepath.Join(r.dir, "node_modules", "widget", "package.json"))
		if err != nil {
			return nil, err
		}

		var pkg struct {
			Version string `json:"version"`
		}

		if err := json.Unmarshal(data, &pkg); err != nil {
			return nil, err
		}

		r.seenWidget = pkg.Version
		return &runner.Result{ExitCode: r.verifyCode}, nil
	default:
		return &runner.Result{}, nil
	}
}

func writeInstalledPackage(modulesDir, name, version string) {
	pkgDir := filepath.Join(modulesDir, name)
	_ = os.MkdirAll(pkgDir, 0o755)

	data, _ := json.Marshal(map[string]string{"name": name, "version": version})
	_ = os.WriteFile(filepath.Join(pkgDir, "package.json"), data, 0o644)
}

const projectManifest = `{
  "name": "app",
  "dependencies": {
    "widget": "^2.0.0"
  }
}
`

func newNpmProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(projectManifest), 0o644))
	writeInstalledPackage(filepath.Join(dir, "node_modules"), "widget", "2.0.0")

	return dir
}

func snapshotDir(t *testing.T, dir string) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		files[rel] = string(data)
		return nil
	})

	require.NoError(t, err)
	return files
}

func newProjectExecutor(t *testing.T, dir string, r runner.CommandRunner) *Executor {
	t.Helper()

	registry, err := packagemanager.NewDefaultRegistry(dir, r)
	require.NoError(t, err)

	config := DefaultExecutorConfig()
	config.Dir = dir

	executor, err := NewExecutor(config, registry, r, ExecutorInteraction{})
	require.NoError(t, err)

	return executor
}

func TestExecutorEndToEnd(t *testing.T) {
	cases := []struct {
		name        string
		runner      func(dir string) *npmProjectRunner
		exitCode    int
		seenWidget  string
		wantResults bool
	}{
		{
			name:        "verify passes",
			runner:      func(dir string) *npmProjectRunner { return &npmProjectRunner{dir: dir} },
			exitCode:    0,
			seenWidget:  "1.0.0",
			wantResults: true,
		},
		{
			name:        "verify fails",
			runner:      func(dir string) *npmProjectRunner { return &npmProjectRunner{dir: dir, verifyCode: 2} },
			exitCode:    2,
			seenWidget:  "1.0.0",
			wantResults: true,
		},
		{
			name:     "install fails",
			runner:   func(dir string) *npmProjectRunner { return &npmProjectRunner{dir: dir, installFail: true} },
			exitCode: ExitCodeInstallFailed,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			dir := newNpmProject(t)
			before := snapshotDir(t, dir)

			r := test.runner(dir)
			executor := newProjectExecutor(t, dir, r)

			catalog := &Catalog{Scenarios: []Scenario{
				{Name: "old", DependencySets: map[string]DependencySet{"npm": {Dependencies: map[string]string{"widget": "1.0.0"}}}},
			}}

			result, err := executor.Run(context.Background(), catalog, "old", "verify")
			require.NoError(t, err)

			assert.Equal(t, test.exitCode, result.ExitCode)
			assert.Equal(t, test.seenWidget, r.seenWidget)

			if test.wantResults {
				require.Len(t, result.Dependencies, 1)
				dep := result.Dependencies[0]
				assert.Equal(t, "widget", dep.Name)
				assert.Equal(t, "1.0.0", dep.VersionExpected)
				assert.Equal(t, "npm", dep.Ecosystem)
				if assert.NotNil(t, dep.VersionSeen) {
					assert.Equal(t, "1.0.0", *dep.VersionSeen)
				}
			}

			assert.Equal(t, before, snapshotDir(t, dir))
		})
	}
}

func TestExecutorScenarioNotFoundWritesNothing(t *testing.T) {
	dir := newNpmProject(t)
	before := snapshotDir(t, dir)

	r := &npmProjectRunner{dir: dir}
	executor := newProjectExecutor(t, dir, r)

	_, err := executor.Run(context.Background(), testCatalog(), "nope", "verify")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
	assert.Equal(t, before, snapshotDir(t, dir))
}

func TestExecutorScenariosStartFromPristineState(t *testing.T) {
	dir := newNpmProject(t)
	r := &npmProjectRunner{dir: dir}
	executor := newProjectExecutor(t, dir, r)

	catalog := &Catalog{Scenarios: []Scenario{
		{Name: "a", DependencySets: map[string]DependencySet{"npm": {Dependencies: map[string]string{"widget": "1.0.0"}}}},
		{Name: "b", DependencySets: map[string]DependencySet{"npm": {Dependencies: map[string]string{"gadget": "3.0.0"}}}},
	}}

	_, err := executor.Run(context.Background(), catalog, "a", "verify")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", r.seenWidget)

	_, err = executor.Run(context.Background(), catalog, "b", "verify")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", r.seenWidget)
}
