package summary

import (
	"io"

	"github.com/pterm/pterm"
)

// FeatureRow describes one feature for the list table.
type FeatureRow struct {
	Name        string
	Description string
	Version     string
	Enabled     bool
	Installed   bool
}

// RenderTable writes the feature listing as a pterm table.
func RenderTable(w io.Writer, rows []FeatureRow) error {
	data := pterm.TableData{{"FEATURE", "ENABLED", "INSTALLED", "VERSION", "DESCRIPTION"}}
	for _, row := range rows {
		enabled := "no"
		if row.Enabled {
			enabled = "yes"
		}
		installed := "no"
		if row.Installed {
			installed = "yes"
		}
		data = append(data, []string{row.Name, enabled, installed, orDash(row.Version), row.Description})
	}
	return pterm.DefaultTable.
		WithHasHeader().
		WithWriter(w).
		WithData(data).
		Render()
}
