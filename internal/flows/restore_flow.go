package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/safedep/dry/log"
	"github.com/safedep/tryout/catalog"
	"github.com/safedep/tryout/config"
	"github.com/safedep/tryout/internal/eventlog"
	"github.com/safedep/tryout/internal/ui"
	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/scenario"
)

type restoreFlow struct {
	flowDependencies
}

// Restore creates the flow that restores backups left behind by an
// interrupted run
func Restore(cfg *config.RuntimeConfig) (*restoreFlow, error) {
	deps, err := newFlowDependencies(cfg)
	if err != nil {
		return nil, err
	}

	return &restoreFlow{flowDependencies: deps}, nil
}

// Run restores every adapter with a leftover backup and returns the names
// of the restored ecosystems. Adapters are limited to ecosystems when given,
// otherwise to the ecosystems of the catalog. Without a readable catalog
// every supported ecosystem is checked.
func (f *restoreFlow) Run(ctx context.Context, ecosystems []string) ([]string, error) {
	registry, err := f.registry()
	if err != nil {
		return nil, fmt.Errorf("failed to create package manager adapters: %w", err)
	}

	names, err := f.candidates(registry, ecosystems)
	if err != nil {
		return nil, err
	}

	var restored []string
	var errs []error

	for _, name := range names {
		adapter, _ := registry.Get(name)

		// npm family adapters share their backup paths, an earlier one may
		// already have restored it
		if !adapter.HasBackup() {
			continue
		}

		ui.SetStatus(fmt.Sprintf("Restoring %s dependencies", name))

		if err := adapter.Cleanup(ctx); err != nil {
			ui.ClearStatus()
			log.Errorf("Failed to restore %s: %v", name, err)
			eventlog.LogRestoreFailed("", "", err)

			errs = append(errs, err)
			continue
		}

		ui.ClearStatus()
		eventlog.LogRestored(name)
		restored = append(restored, name)
	}

	return restored, errors.Join(errs...)
}

func (f *restoreFlow) candidates(registry *packagemanager.Registry, ecosystems []string) ([]string, error) {
	if len(ecosystems) > 0 {
		for _, name := range ecosystems {
			if _, ok := registry.Get(name); !ok {
				return nil, scenario.ErrUnknownEcosystem.Wrap(fmt.Errorf("ecosystem %q", name))
			}
		}

		return ecosystems, nil
	}

	cat, err := catalog.Load(f.config.CatalogFilePath())
	if err != nil {
		log.Debugf("No readable catalog, checking every ecosystem: %v", err)
		return registry.Names(), nil
	}

	var names []string
	for _, name := range cat.Ecosystems() {
		if _, ok := registry.Get(name); ok {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return registry.Names(), nil
	}

	return names, nil
}
