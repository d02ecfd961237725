package report

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	countStyle = cellStyle.Align(lipgloss.Right)

	threatStyle  = cellStyle.Foreground(lipgloss.Color("#FF5555"))
	measureStyle = cellStyle.Foreground(lipgloss.Color("#00FF00"))
	groupStyle   = cellStyle.Foreground(lipgloss.Color("#888888"))
)

// Table columns
const (
	colKind = iota
	colName
	colCount
)

// Headers are the column titles of RenderTable
var Headers = []string{"KIND", "NAME", "STOPS"}

// RenderTable renders rows as a bordered table with kind-colored cells
func RenderTable(rows []Row) string {
	return NewTable(rows).Render()
}

// NewTable builds the lipgloss table behind RenderTable, for callers that
// want to adjust width or borders.
func NewTable(rows []Row) *table.Table {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Kind, r.Name, strconv.FormatInt(r.SuccessCount, 10)}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers(Headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch col {
			case colCount:
				return countStyle
			case colKind:
				return kindStyle(data[row][colKind])
			default:
				return cellStyle
			}
		})
}

func kindStyle(kind string) lipgloss.Style {
	switch kind {
	case "threat":
		return threatStyle
	case "measure":
		return measureStyle
	default:
		return groupStyle
	}
}
