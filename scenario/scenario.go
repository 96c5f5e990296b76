package scenario

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/safedep/tryout/packagemanager"
)

type (
	DependencySet    = packagemanager.DependencySet
	DependencyResult = packagemanager.DependencyResult
)

// Scenario is a named set of dependency overrides, keyed by ecosystem.
type Scenario struct {
	Name string

	// Command overrides the catalog default command for this scenario
	Command string

	DependencySets map[string]DependencySet
}

// Ecosystems returns the ecosystem keys of the scenario in sorted order.
func (s *Scenario) Ecosystems() []string {
	return slices.Sorted(maps.Keys(s.DependencySets))
}

// validate rejects scenarios that drive more than one node package manager,
// they would back up the same package.json and node_modules.
func (s *Scenario) validate() error {
	var npmFamily []string
	for _, name := range s.Ecosystems() {
		if packagemanager.IsNpmFamily(name) {
			npmFamily = append(npmFamily, name)
		}
	}

	if len(npmFamily) > 1 {
		return ErrInvalidCatalog.Wrap(fmt.Errorf("scenario %q uses more than one node package manager: %s",
			s.Name, strings.Join(npmFamily, ", ")))
	}

	return nil
}

// Catalog is the list of scenarios available to a project.
type Catalog struct {
	// Command is the default command name for scenarios without one
	Command string

	Scenarios []Scenario
}

// FindByName returns the scenario with the given name or ErrScenarioNotFound.
func (c *Catalog) FindByName(name string) (*Scenario, error) {
	for i := range c.Scenarios {
		if c.Scenarios[i].Name == name {
			return &c.Scenarios[i], nil
		}
	}

	return nil, ErrScenarioNotFound.Wrap(fmt.Errorf("scenario %q", name))
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		names = append(names, s.Name)
	}

	return names
}

// Ecosystems returns every ecosystem key referenced by any scenario.
func (c *Catalog) Ecosystems() []string {
	seen := make(map[string]bool)
	for _, s := range c.Scenarios {
		for name := range s.DependencySets {
			seen[name] = true
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Validate checks that scenario names are present and unique and that no
// scenario drives more than one node package manager.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Scenarios))
	for i, s := range c.Scenarios {
		if s.Name == "" {
			return ErrInvalidCatalog.Wrap(fmt.Errorf("scenario at index %d has no name", i))
		}

		if seen[s.Name] {
			return ErrInvalidCatalog.Wrap(fmt.Errorf("duplicate scenario name %q", s.Name))
		}

		seen[s.Name] = true

		if err := s.validate(); err != nil {
			return err
		}
	}

	return nil
}
