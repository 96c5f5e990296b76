package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/osv-scalibr/extractor/filesystem"
	scalibrfs "github.com/google/osv-scalibr/fs"
	"github.com/safedep/dry/log"
)

// Package is one resolved package entry of a lockfile.
type Package struct {
	Name    string
	Version string
}

// ExtractLockfile reads the packages resolved by a lockfile in the project
// directory. A missing lockfile yields no packages and no error.
func ExtractLockfile(ctx context.Context, projectDir, lockfile string) ([]Package, error) {
	extractor, err := getExtractorForFile(lockfile)
	if err != nil {
		return nil, err
	}

	lockfilePath := filepath.Join(projectDir, lockfile)

	file, err := os.Open(lockfilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("Lockfile %s not found", lockfilePath)
			return nil, nil
		}

		return nil, fmt.Errorf("failed to open lockfile: %w", err)
	}
	defer file.Close()

	inputConfig := &filesystem.ScanInput{
		FS:     scalibrfs.DirFS(projectDir),
		Path:   lockfile,
		Reader: file,
	}

	inventory, err := extractor.Extract(ctx, inputConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to extract packages from %s: %w", lockfile, err)
	}

	packages := make([]Package, 0, len(inventory.Packages))
	for _, invPkg := range inventory.Packages {
		packages = append(packages, Package{
			Name:    invPkg.Name,
			Version: invPkg.Version,
		})
	}

	return packages, nil
}

// VersionsByName indexes packages by name. Lockfiles may resolve a package
// more than once for nested dependants; the first entry wins.
func VersionsByName(packages []Package) map[string]string {
	versions := make(map[string]string, len(packages))
	for _, pkg := range packages {
		if _, ok := versions[pkg.Name]; ok {
			continue
		}

		versions[pkg.Name] = pkg.Version
	}

	return versions
}
