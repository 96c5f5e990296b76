package packagemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/safedep/dry/log"
	"github.com/safedep/dry/utils"
	"github.com/safedep/tryout/runner"
)

// ManifestOverlayFunc returns a new manifest with the overrides of the
// dependency set applied on top of the given manifest content.
type ManifestOverlayFunc func(manifest []byte, depSet DependencySet) ([]byte, error)

// AdapterConfig describes one package ecosystem. The Default*AdapterConfig
// functions return the configuration of the supported ecosystems.
type AdapterConfig struct {
	// Name is the ecosystem key used in scenario catalogs
	Name string

	// ManifestFile and PackagesDir are relative to the project directory
	ManifestFile string
	PackagesDir  string

	// InstallCommands run in order in the project directory. The first one
	// installs, the following ones prune.
	InstallCommands []runner.Command

	ManifestOverlay ManifestOverlayFunc

	NewVersionProbe func(packagesDir string) VersionProbe

	// NewLockfileProbe is optional
	NewLockfileProbe func(projectDir string) LockfileProbe
}

type adapter struct {
	config   AdapterConfig
	state    adapterState
	runner   runner.CommandRunner
	probe    VersionProbe
	lockfile LockfileProbe

	// setUp is true between a successful Setup and Cleanup, applied once a
	// dependency set was written to the manifest.
	setUp   bool
	applied bool
}

var _ PackageManagerAdapter = (*adapter)(nil)

// NewAdapter binds an ecosystem configuration to a project directory.
func NewAdapter(config AdapterConfig, projectDir string, cmdRunner runner.CommandRunner) (*adapter, error) {
	if config.Name == "" || config.ManifestFile == "" || config.PackagesDir == "" {
		return nil, fmt.Errorf("adapter config requires a name, manifest file and packages directory")
	}

	if config.ManifestOverlay == nil || config.NewVersionProbe == nil {
		return nil, fmt.Errorf("adapter %s requires a manifest overlay and a version probe", config.Name)
	}

	if cmdRunner == nil {
		return nil, fmt.Errorf("adapter %s requires a command runner", config.Name)
	}

	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	state := newAdapterState(projectDir, config.ManifestFile, config.PackagesDir)

	a := &adapter{
		config: config,
		state:  state,
		runner: cmdRunner,
		probe:  config.NewVersionProbe(state.packagesDir),
	}

	if config.NewLockfileProbe != nil {
		a.lockfile = config.NewLockfileProbe(projectDir)
	}

	return a, nil
}

func (a *adapter) Name() string {
	return a.config.Name
}

func (a *adapter) HasBackup() bool {
	return a.state.hasBackup()
}

func (a *adapter) Setup(ctx context.Context) error {
	if a.HasBackup() {
		return ErrStaleBackup.Wrap(fmt.Errorf("%s: found %s or %s", a.Name(),
			a.state.manifestBackupPath, a.state.packagesBackupDir))
	}

	log.Debugf("[%s] Backing up %s and %s", a.Name(), a.state.manifestPath, a.state.packagesDir)

	if err := a.state.backup(); err != nil {
		return ErrBackupFailed.Wrap(fmt.Errorf("%s: %w", a.Name(), err))
	}

	a.setUp = true
	a.applied = false

	return nil
}

func (a *adapter) ChangeToDependencySet(ctx context.Context, depSet DependencySet) ([]DependencyResult, error) {
	if depSet.IsEmpty() {
		return []DependencyResult{}, nil
	}

	// Always start from the pristine manifest so that scenarios never see
	// overrides of a previous scenario.
	pristine, err := os.ReadFile(a.state.manifestBackupPath)
	if err != nil {
		return nil, ErrBackupFailed.Wrap(fmt.Errorf("%s: no backup manifest, setup must run first: %w", a.Name(), err))
	}

	manifest, err := a.config.ManifestOverlay(pristine, depSet)
	if err != nil {
		return nil, ErrInstallFailed.Wrap(fmt.Errorf("%s: failed to apply dependency set: %w", a.Name(), err))
	}

	info, err := os.Stat(a.state.manifestBackupPath)
	if err != nil {
		return nil, ErrInstallFailed.Wrap(err)
	}

	a.applied = true

	if err := os.WriteFile(a.state.manifestPath, manifest, info.Mode().Perm()); err != nil {
		return nil, ErrInstallFailed.Wrap(fmt.Errorf("%s: failed to write manifest: %w", a.Name(), err))
	}

	log.Debugf("[%s] Wrote %s with %d overrides", a.Name(), a.state.manifestPath, len(depSet.Overrides()))

	installErr := a.install(ctx)
	if installErr != nil {
		log.Warnf("[%s] Install failed: %v", a.Name(), installErr)
	}

	return a.dependencyResults(ctx, depSet), installErr
}

func (a *adapter) Cleanup(ctx context.Context) error {
	if !a.HasBackup() {
		log.Debugf("[%s] No backup found, nothing to restore", a.Name())

		a.setUp = false
		a.applied = false

		return nil
	}

	// A backup without a Setup in this process is left over from an
	// interrupted run and the live state is unknown.
	reinstall := a.applied || !a.setUp

	var restoreErr error
	if err := a.state.restore(); err != nil {
		log.Errorf("[%s] Failed to restore dependencies: %v", a.Name(), err)
		restoreErr = ErrRestoreFailed.Wrap(fmt.Errorf("%s: %w", a.Name(), err))
	} else if err := a.state.discardBackup(); err != nil {
		log.Errorf("[%s] Failed to remove backup: %v", a.Name(), err)
		restoreErr = ErrRestoreFailed.Wrap(fmt.Errorf("%s: failed to remove backup: %w", a.Name(), err))
	}

	a.setUp = false
	a.applied = false

	if !reinstall {
		return restoreErr
	}

	// Reinstall regardless of the restore outcome to resynchronize lock state
	if err := a.install(ctx); err != nil {
		log.Errorf("[%s] Failed to reinstall after restore: %v", a.Name(), err)
		return errors.Join(restoreErr, err)
	}

	return restoreErr
}

func (a *adapter) install(ctx context.Context) error {
	for _, c := range a.config.InstallCommands {
		c.Dir = a.state.projectDir

		res, err := a.runner.Run(ctx, c)
		if err != nil {
			return ErrInstallFailed.Wrap(fmt.Errorf("%s: %s: %w", a.Name(), c.String(), err))
		}

		if !res.Success() {
			return ErrInstallFailed.Wrap(fmt.Errorf("%s: %s exited with code %d", a.Name(), c.String(), res.ExitCode))
		}
	}

	return nil
}

func (a *adapter) dependencyResults(ctx context.Context, depSet DependencySet) []DependencyResult {
	overrides := depSet.Overrides()
	locked := a.lockedVersions(ctx)

	results := make([]DependencyResult, 0, len(overrides))
	for _, name := range depSet.PackageNames() {
		seen, err := a.probe.Probe(name)
		if err != nil {
			log.Warnf("[%s] Failed to read installed version of %s: %v", a.Name(), name, err)
			seen = nil
		}

		if seen == nil {
			log.Debugf("[%s] Package %s is not installed", a.Name(), name)
		}

		result := DependencyResult{
			Name:            name,
			VersionExpected: overrides[name],
			VersionSeen:     seen,
			Ecosystem:       a.Name(),
		}

		if version, ok := locked[name]; ok {
			result.VersionLocked = utils.PtrTo(version)
		}

		results = append(results, result)
	}

	return results
}

func (a *adapter) lockedVersions(ctx context.Context) map[string]string {
	if a.lockfile == nil {
		return nil
	}

	versions, err := a.lockfile.LockedVersions(ctx)
	if err != nil {
		log.Debugf("[%s] Failed to read lockfile: %v", a.Name(), err)
		return nil
	}

	return versions
}
