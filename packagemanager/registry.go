package packagemanager

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/safedep/tryout/runner"
)

// DefaultAdapterConfigs returns the configuration of every supported
// ecosystem.
func DefaultAdapterConfigs() []AdapterConfig {
	return []AdapterConfig{
		DefaultNpmAdapterConfig(),
		DefaultPnpmAdapterConfig(),
		DefaultYarnAdapterConfig(),
		DefaultBunAdapterConfig(),
		DefaultPipAdapterConfig(),
	}
}

// Registry maps ecosystem keys to the adapters of one project.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]PackageManagerAdapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]PackageManagerAdapter),
	}
}

// NewDefaultRegistry creates an adapter for every supported ecosystem
// bound to the project directory.
func NewDefaultRegistry(projectDir string, cmdRunner runner.CommandRunner) (*Registry, error) {
	registry := NewRegistry()

	for _, config := range DefaultAdapterConfigs() {
		adapter, err := NewAdapter(config, projectDir, cmdRunner)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s adapter: %w", config.Name, err)
		}

		registry.Register(adapter)
	}

	return registry, nil
}

// Register adds an adapter under its name, replacing an adapter already
// registered under the same name.
func (r *Registry) Register(adapter PackageManagerAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters[adapter.Name()] = adapter
}

func (r *Registry) Get(name string) (PackageManagerAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[name]
	return adapter, ok
}

// All returns the registered adapters ordered by name.
func (r *Registry) All() []PackageManagerAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapters := make([]PackageManagerAdapter, 0, len(r.adapters))
	for _, name := range slices.Sorted(maps.Keys(r.adapters)) {
		adapters = append(adapters, r.adapters[name])
	}

	return adapters
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.adapters))
}
