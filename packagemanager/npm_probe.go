package packagemanager

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type nodeModulesVersionProbe struct {
	packagesDir string
}

// NewNodeModulesVersionProbe reads versions from the package.json of each
// package installed under a node_modules directory.
func NewNodeModulesVersionProbe(packagesDir string) VersionProbe {
	return &nodeModulesVersionProbe{packagesDir: packagesDir}
}

func (p *nodeModulesVersionProbe) Probe(name string) (*string, error) {
	if err := validateNpmPackageName(name); err != nil {
		return nil, err
	}

	metadataPath := filepath.Join(p.packagesDir, filepath.FromSlash(name), npmManifestFile)

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var metadata struct {
		Version string `json:"version"`
	}

	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", metadataPath, err)
	}

	if metadata.Version == "" {
		return nil, nil
	}

	return &metadata.Version, nil
}

// Scoped names such as @types/node are the only names allowed to contain
// a path separator.
func validateNpmPackageName(name string) error {
	if name == "" {
		return fmt.Errorf("empty package name")
	}

	parts := strings.Split(name, "/")
	if len(parts) > 2 || (len(parts) == 2 && !strings.HasPrefix(parts[0], "@")) {
		return fmt.Errorf("invalid package name: %s", name)
	}

	for _, part := range parts {
		if part == "" || part == "." || part == ".." || strings.ContainsRune(part, '\\') {
			return fmt.Errorf("invalid package name: %s", name)
		}
	}

	return nil
}
