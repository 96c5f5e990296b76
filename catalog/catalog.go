// Package catalog loads scenario catalogs from YAML files.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/safedep/dry/log"
	"github.com/safedep/tryout/packagemanager"
	"github.com/safedep/tryout/scenario"
	"github.com/safedep/tryout/usefulerror"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the catalog location relative to the project directory.
var DefaultPath = filepath.Join("config", "tryout.yml")

var ErrCatalogNotFound = usefulerror.Useful().
	WithCode(usefulerror.ErrCodeNotFound).
	WithHumanError("Scenario catalog not found.").
	WithHelp("Create config/tryout.yml in the project or pass --config-path.").
	Msg("catalog not found")

type catalogDocument struct {
	Command   string             `yaml:"command"`
	Scenarios []scenarioDocument `yaml:"scenarios"`
}

// Every scenario key besides name and command is an ecosystem key.
type scenarioDocument struct {
	Name       string                                  `yaml:"name"`
	Command    string                                  `yaml:"command"`
	Ecosystems map[string]packagemanager.DependencySet `yaml:",inline"`
}

// Load reads and validates the catalog at path.
func Load(path string) (*scenario.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCatalogNotFound.Wrap(fmt.Errorf("%s: %w", path, err))
		}

		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	catalog, err := Parse(data)
	if err != nil {
		return nil, err
	}

	log.Debugf("Loaded %d scenarios from %s", len(catalog.Scenarios), path)

	return catalog, nil
}

// Parse decodes a catalog document. An empty document is an empty catalog.
func Parse(data []byte) (*scenario.Catalog, error) {
	var doc catalogDocument

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, scenario.ErrInvalidCatalog.Wrap(fmt.Errorf("failed to parse YAML: %w", err))
	}

	catalog := &scenario.Catalog{
		Command:   doc.Command,
		Scenarios: make([]scenario.Scenario, 0, len(doc.Scenarios)),
	}

	for _, s := range doc.Scenarios {
		sets := s.Ecosystems
		if sets == nil {
			sets = map[string]packagemanager.DependencySet{}
		}

		catalog.Scenarios = append(catalog.Scenarios, scenario.Scenario{
			Name:           s.Name,
			Command:        s.Command,
			DependencySets: sets,
		})
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return catalog, nil
}
