package packagemanager

import (
	"slices"

	"github.com/safedep/tryout/extractor"
	"github.com/safedep/tryout/runner"
)

const (
	npmManifestFile = "package.json"
	npmPackagesDir  = "node_modules"
)

var npmFamily = []string{"npm", "pnpm", "yarn", "bun"}

// IsNpmFamily reports whether the ecosystem is one of the node package
// managers sharing package.json and node_modules.
func IsNpmFamily(name string) bool {
	return slices.Contains(npmFamily, name)
}

func DefaultNpmAdapterConfig() AdapterConfig {
	config := npmFamilyAdapterConfig("npm", []runner.Command{
		{Exe: "npm", Args: []string{"install"}},
		{Exe: "npm", Args: []string{"prune"}},
	})

	config.NewLockfileProbe = func(projectDir string) LockfileProbe {
		return NewLockfileProbe(projectDir, extractor.NpmLockfile)
	}

	return config
}

func DefaultPnpmAdapterConfig() AdapterConfig {
	config := npmFamilyAdapterConfig("pnpm", []runner.Command{
		{Exe: "pnpm", Args: []string{"install"}},
		{Exe: "pnpm", Args: []string{"prune"}},
	})

	config.NewLockfileProbe = func(projectDir string) LockfileProbe {
		return NewLockfileProbe(projectDir, extractor.PnpmLockfile)
	}

	return config
}

// Yarn removes extraneous packages as part of install.
func DefaultYarnAdapterConfig() AdapterConfig {
	return npmFamilyAdapterConfig("yarn", []runner.Command{
		{Exe: "yarn", Args: []string{"install"}},
	})
}

func DefaultBunAdapterConfig() AdapterConfig {
	config := npmFamilyAdapterConfig("bun", []runner.Command{
		{Exe: "bun", Args: []string{"install"}},
	})

	config.NewLockfileProbe = func(projectDir string) LockfileProbe {
		return NewLockfileProbe(projectDir, extractor.BunLockfile)
	}

	return config
}

// All node package managers share package.json and node_modules, so
// only one of them can be active in a scenario at a time.
func npmFamilyAdapterConfig(name string, installCommands []runner.Command) AdapterConfig {
	return AdapterConfig{
		Name:            name,
		ManifestFile:    npmManifestFile,
		PackagesDir:     npmPackagesDir,
		InstallCommands: installCommands,
		ManifestOverlay: npmOverlayManifest,
		NewVersionProbe: func(packagesDir string) VersionProbe {
			return NewNodeModulesVersionProbe(packagesDir)
		},
	}
}

// npmOverlayManifest overlays dependencies and devDependencies onto a
// package.json document. Key order and all other content is preserved.
func npmOverlayManifest(manifest []byte, depSet DependencySet) ([]byte, error) {
	doc := newJSONObject()
	if err := doc.UnmarshalJSON(manifest); err != nil {
		return nil, err
	}

	sections := []struct {
		key  string
		deps map[string]string
	}{
		{key: "dependencies", deps: depSet.Dependencies},
		{key: "devDependencies", deps: depSet.DevDependencies},
	}

	for _, section := range sections {
		if len(section.deps) == 0 {
			continue
		}

		if err := overlayJSONSection(doc, section.key, section.deps); err != nil {
			return nil, err
		}
	}

	return encodeJSON(doc, "  ")
}
