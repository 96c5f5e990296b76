package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/safedep/tryout/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
command: test
scenarios:
  - name: old
    command: verify
    npm:
      dependencies:
        widget: "1.0.0"
      devDependencies:
        mocha: ^9.0.0
    pip:
      dependencies:
        requests: 2.31
  - name: default
`

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		content string
		assert  func(t *testing.T, catalog *scenario.Catalog, err error)
	}{
		{
			name:    "full catalog",
			content: testCatalog,
			assert: func(t *testing.T, catalog *scenario.Catalog, err error) {
				require.NoError(t, err)

				assert.Equal(t, "test", catalog.Command)
				assert.Equal(t, []string{"old", "default"}, catalog.Names())

				old, err := catalog.FindByName("old")
				require.NoError(t, err)

				assert.Equal(t, "verify", old.Command)
				assert.Equal(t, []string{"npm", "pip"}, old.Ecosystems())
				assert.Equal(t, map[string]string{"widget": "1.0.0"}, old.DependencySets["npm"].Dependencies)
				assert.Equal(t, map[string]string{"mocha": "^9.0.0"}, old.DependencySets["npm"].DevDependencies)
				assert.Equal(t, map[string]string{"requests": "2.31"}, old.DependencySets["pip"].Dependencies)

				def, err := catalog.FindByName("default")
				require.NoError(t, err)
				assert.Empty(t, def.Command)
				assert.Empty(t, def.Ecosystems())
			},
		},
		{
			name:    "empty document",
			content: "",
			assert: func(t *testing.T, catalog *scenario.Catalog, err error) {
				require.NoError(t, err)
				assert.Empty(t, catalog.Scenarios)
			},
		},
		{
			name:    "duplicate scenario",
			content: "scenarios:\n  - name: a\n  - name: a\n",
			assert: func(t *testing.T, catalog *scenario.Catalog, err error) {
				assert.ErrorIs(t, err, scenario.ErrInvalidCatalog)
			},
		},
		{
			name:    "dependency map with nested value",
			content: "scenarios:\n  - name: a\n    npm:\n      dependencies:\n        widget:\n          version: 1.0.0\n",
			assert: func(t *testing.T, catalog *scenario.Catalog, err error) {
				assert.ErrorIs(t, err, scenario.ErrInvalidCatalog)
			},
		},
		{
			name:    "unknown dependency set key",
			content: "scenarios:\n  - name: a\n    npm:\n      dependency:\n        widget: 1.0.0\n",
			assert: func(t *testing.T, catalog *scenario.Catalog, err error) {
				assert.ErrorIs(t, err, scenario.ErrInvalidCatalog)
			},
		},
		{
			name:    "invalid yaml",
			content: "scenarios: [",
			assert: func(t *testing.T, catalog *scenario.Catalog, err error) {
				assert.ErrorIs(t, err, scenario.ErrInvalidCatalog)
			},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			catalog, err := Parse([]byte(test.content))
			test.assert(t, catalog, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tryout.yml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	catalog, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Scenarios, 2)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, ErrCatalogNotFound)
}
