package packagemanager

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const distInfoSuffix = ".dist-info"

type distInfoVersionProbe struct {
	packagesDir string
}

// NewDistInfoVersionProbe reads versions from the <name>-<version>.dist-info
// metadata directories pip writes next to installed packages.
func NewDistInfoVersionProbe(packagesDir string) VersionProbe {
	return &distInfoVersionProbe{packagesDir: packagesDir}
}

func (p *distInfoVersionProbe) Probe(name string) (*string, error) {
	entries, err := os.ReadDir(p.packagesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	wanted := pipNormalizeName(name)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), distInfoSuffix) {
			continue
		}

		base := strings.TrimSuffix(entry.Name(), distInfoSuffix)

		idx := strings.LastIndex(base, "-")
		if idx <= 0 {
			continue
		}

		if pipNormalizeName(base[:idx]) != wanted {
			continue
		}

		version := base[idx+1:]

		metadataVersion, err := readDistInfoVersion(filepath.Join(p.packagesDir, entry.Name(), "METADATA"))
		if err == nil && metadataVersion != "" {
			version = metadataVersion
		}

		if version == "" {
			return nil, nil
		}

		return &version, nil
	}

	return nil, nil
}

func readDistInfoVersion(metadataPath string) (string, error) {
	file, err := os.Open(metadataPath)
	if err != nil {
		return "", err
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		// Headers end at the first blank line
		if line == "" {
			break
		}

		if version, found := strings.CutPrefix(line, "Version:"); found {
			return strings.TrimSpace(version), nil
		}
	}

	return "", scanner.Err()
}
