// Package preview renders a converted table for the terminal before the CSV
// files are written.
package preview

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/recsheet/pkg/types"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Render draws t as a bordered table. At most maxRows data rows are shown;
// maxRows <= 0 shows every row. A footer line reports hidden rows.
func Render(t types.ProjectedTable, maxRows int) string {
	rows := t.Rows
	hidden := 0
	if maxRows > 0 && len(rows) > maxRows {
		hidden = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	out := tbl.String()
	if hidden > 0 {
		out += fmt.Sprintf("\n… %d more row(s)", hidden)
	}
	return out + "\n"
}
