// Package report summarizes finished simulation campaigns.
package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/dd0wney/cluso-attacktree/pkg/simulation"
	"github.com/dd0wney/cluso-attacktree/pkg/tree"
)

// Row is one node's line in a campaign report
type Row struct {
	NodeID       uint64
	Kind         string
	Name         string
	SuccessCount int64
}

// Rows lists every registered node by ascending success count. Nodes with
// equal counts keep their creation order, so the most effective stopping
// points come last.
func Rows(reg *tree.Registry) []Row {
	nodes := reg.Nodes()
	rows := make([]Row, len(nodes))
	for i, n := range nodes {
		rows[i] = Row{
			NodeID:       n.ID,
			Kind:         n.Kind.String(),
			Name:         n.Name,
			SuccessCount: n.SuccessCount(),
		}
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(a.SuccessCount, b.SuccessCount)
	})
	return rows
}

// WriteCSV writes kind;name;count lines with no header
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	for _, r := range rows {
		if err := cw.Write([]string{r.Kind, r.Name, strconv.FormatInt(r.SuccessCount, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary returns the closing line of a campaign report
func Summary(res *simulation.Result) string {
	return "Percentage of successful attacks: " + formatPercent(res.Percentage())
}

func formatPercent(p float64) string {
	if p == math.Trunc(p) {
		return strconv.FormatFloat(p, 'f', 1, 64)
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// Write prints rows in the given format ("csv" or "table") followed by the
// summary line.
func Write(w io.Writer, format string, rows []Row, res *simulation.Result) error {
	switch format {
	case "csv":
		if err := WriteCSV(w, rows); err != nil {
			return err
		}
	case "table":
		if _, err := fmt.Fprintln(w, RenderTable(rows)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	_, err := fmt.Fprintln(w, Summary(res))
	return err
}
