package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/preset"
)

// EmptyListText is shown in place of an empty preset list
const EmptyListText = "No screws loaded"

// PresetLine renders one list entry as "Name  T: 40 | S: 50"
func PresetLine(p preset.Preset) string {
	return fmt.Sprintf("T: %s | S: %s", preset.FormatValue(p.Torque), preset.FormatValue(p.Speed))
}

// PresetTable renders presets as a table. The selected row is marked;
// values outside the configured ranges are flagged. selected may be -1.
func PresetTable(presets []preset.Preset, selected int, torque, speed config.Range) string {
	if len(presets) == 0 {
		return MutedStyle.Render("  " + EmptyListText)
	}

	nameWidth := len(preset.ColumnName)
	for _, p := range presets {
		if w := lipgloss.Width(p.Name); w > nameWidth {
			nameWidth = w
		}
	}
	nameCol := lipgloss.NewStyle().Width(nameWidth + 2)
	numCol := lipgloss.NewStyle().Width(10).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString("    ")
	b.WriteString(TableHeaderStyle.Render(nameCol.Render(preset.ColumnName)))
	b.WriteString(TableHeaderStyle.Render(numCol.Render(preset.ColumnTorque)))
	b.WriteString(TableHeaderStyle.Render(numCol.Render(preset.ColumnSpeed)))
	b.WriteString("\n")

	for i, p := range presets {
		marker := "  "
		style := ValueStyle
		if i == selected {
			marker = SelectedMarker + " "
			style = SelectedRowStyle
		}

		t := numCol.Render(preset.FormatValue(p.Torque))
		if !torque.Contains(p.Torque) {
			t = WarningStyle.Render(t)
		}
		s := numCol.Render(preset.FormatValue(p.Speed))
		if !speed.Contains(p.Speed) {
			s = WarningStyle.Render(s)
		}

		fmt.Fprintf(&b, "  %s%s%s%s\n", marker, style.Render(nameCol.Render(p.Name)), t, s)
	}
	return strings.TrimRight(b.String(), "\n")
}
