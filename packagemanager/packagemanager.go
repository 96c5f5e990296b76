package packagemanager

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/safedep/dry/utils"
)

// DependencySet is the override mapping of package name to version range
// for one ecosystem within a scenario.
type DependencySet struct {
	Dependencies    map[string]string `yaml:"dependencies" json:"dependencies,omitempty"`
	DevDependencies map[string]string `yaml:"devDependencies" json:"devDependencies,omitempty"`
}

// IsEmpty is true when the set overrides nothing.
func (d DependencySet) IsEmpty() bool {
	return len(d.Dependencies) == 0 && len(d.DevDependencies) == 0
}

// Overrides merges dependencies and dev dependencies. A package present in
// both reports its dev dependency range.
func (d DependencySet) Overrides() map[string]string {
	merged := make(map[string]string, len(d.Dependencies)+len(d.DevDependencies))
	maps.Copy(merged, d.Dependencies)
	maps.Copy(merged, d.DevDependencies)

	return merged
}

// PackageNames returns the overridden package names in sorted order.
func (d DependencySet) PackageNames() []string {
	return slices.Sorted(maps.Keys(d.Overrides()))
}

type DependencyStatus string

const (
	DependencyStatusMatch    DependencyStatus = "match"
	DependencyStatusMismatch DependencyStatus = "mismatch"
	DependencyStatusMissing  DependencyStatus = "missing"
	DependencyStatusUnknown  DependencyStatus = "unknown"
)

// DependencyResult is the resolution of one overridden package after its
// dependency set was installed.
type DependencyResult struct {
	Name            string `json:"name"`
	VersionExpected string `json:"version_expected"`

	// VersionSeen is nil when the package could not be found on disk.
	VersionSeen *string `json:"version_seen"`

	// VersionLocked is the version recorded in the ecosystem lockfile, when
	// the ecosystem has one and it lists the package.
	VersionLocked *string `json:"version_locked,omitempty"`

	Ecosystem string `json:"ecosystem"`
}

// IsMissing is true when the package directory was not found after install.
func (r DependencyResult) IsMissing() bool {
	return r.VersionSeen == nil
}

// Status checks the installed version against the expected range. Ranges that
// are not semver constraints, such as dist tags and urls, are unknown.
func (r DependencyResult) Status() DependencyStatus {
	if r.IsMissing() {
		return DependencyStatusMissing
	}

	expected := strings.TrimSpace(r.VersionExpected)
	expected = strings.TrimPrefix(expected, "==")
	expected = pipConvertCompatibleRelease(expected)

	constraint, err := semver.NewConstraint(expected)
	if err != nil {
		return DependencyStatusUnknown
	}

	version, err := semver.NewVersion(utils.SafelyGetValue(r.VersionSeen))
	if err != nil {
		return DependencyStatusUnknown
	}

	if constraint.Check(version) {
		return DependencyStatusMatch
	}

	return DependencyStatusMismatch
}

// PackageManagerAdapter is the contract for driving one package ecosystem
// through the backup, apply, restore cycle of a scenario run.
//
// Adapters own the manifest and installed package tree of their ecosystem
// for the duration of a run. They are not safe for concurrent use and two
// adapters must never operate on the same project directory concurrently.
type PackageManagerAdapter interface {
	// Name is the ecosystem key used in scenario catalogs
	Name() string

	// Setup copies the manifest and installed package directory to their
	// backup locations. Nothing is mutated when Setup fails.
	Setup(ctx context.Context) error

	// ChangeToDependencySet rewrites the manifest from the backup with the
	// overrides applied, installs and reports the resolved version of every
	// overridden package. On install failure the results gathered so far are
	// returned along with the error.
	ChangeToDependencySet(ctx context.Context, depSet DependencySet) ([]DependencyResult, error)

	// Cleanup restores the manifest and installed package directory from the
	// backups, removes the backups and reinstalls. It is best effort and
	// idempotent.
	Cleanup(ctx context.Context) error

	// HasBackup reports whether backup artifacts exist on disk, which is the
	// case between Setup and Cleanup or after an interrupted run.
	HasBackup() bool
}

// VersionProbe reads the metadata of an installed package.
type VersionProbe interface {
	// Probe returns nil without error when the package is not installed.
	Probe(name string) (*string, error)
}

// LockfileProbe reads resolved versions from an ecosystem lockfile.
type LockfileProbe interface {
	// LockedVersions returns nil without error when there is no lockfile.
	LockedVersions(ctx context.Context) (map[string]string, error)
}
