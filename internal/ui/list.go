package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/safedep/tryout/scenario"
)

func PrintScenarioList(cat *scenario.Catalog) {
	RenderScenarioList(os.Stdout, cat)
}

// RenderScenarioList renders the scenarios of a catalog in catalog order
func RenderScenarioList(w io.Writer, cat *scenario.Catalog) {
	if len(cat.Scenarios) == 0 {
		fmt.Fprintln(w, Colors.Dim("No scenarios in the catalog"))
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendHeader(table.Row{"Scenario", "Command", "Ecosystems", "Overrides"})

	for _, sc := range cat.Scenarios {
		command := sc.Command
		if command == "" {
			command = Colors.Dim("%s", "default")
		}

		overrides := 0
		for _, set := range sc.DependencySets {
			overrides += len(set.Overrides())
		}

		ecosystems := strings.Join(sc.Ecosystems(), ", ")
		if ecosystems == "" {
			ecosystems = "-"
		}

		tbl.AppendRow(table.Row{sc.Name, command, ecosystems, overrides})
	}

	tbl.Render()
}
