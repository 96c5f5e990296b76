package packagemanager

import (
	"context"

	"github.com/safedep/tryout/extractor"
)

type lockfileProbe struct {
	projectDir string
	lockfile   string
}

// NewLockfileProbe reads locked versions from one of the lockfiles listed
// by extractor.SupportedLockfiles.
func NewLockfileProbe(projectDir, lockfile string) LockfileProbe {
	return &lockfileProbe{projectDir: projectDir, lockfile: lockfile}
}

func (p *lockfileProbe) LockedVersions(ctx context.Context) (map[string]string, error) {
	packages, err := extractor.ExtractLockfile(ctx, p.projectDir, p.lockfile)
	if err != nil {
		return nil, err
	}

	if packages == nil {
		return nil, nil
	}

	return extractor.VersionsByName(packages), nil
}
