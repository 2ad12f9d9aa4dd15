package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under headers. selected highlights a data row; pass -1
// for none.
func Table(headers []string, rows [][]string, selected int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(DividerStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderCellStyle
			case row == selected:
				return SelectedCellStyle
			default:
				return CellStyle
			}
		})
	return t.Render()
}
