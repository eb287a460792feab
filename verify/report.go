package verify

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// MaxListedMismatches bounds the mismatch table.
const MaxListedMismatches = 20

// Report is the outcome of a comparison.
type Report struct {
	Name        string
	Rows, Cols  int
	Cycles      uint64
	MissingRows int
	ExtraRows   int
	Mismatches  []Mismatch
}

// OK reports whether the result matched exactly.
func (r *Report) OK() bool {
	return r.MissingRows == 0 && r.ExtraRows == 0 && len(r.Mismatches) == 0
}

// WriteReport writes the summary and the first mismatches as tables.
func (r *Report) WriteReport(w io.Writer) {
	status := "PASSED"
	if !r.OK() {
		status = "FAILED"
	}

	summary := table.NewWriter()
	summary.SetTitle(fmt.Sprintf("%s: %s", r.Name, status))
	summary.AppendHeader(table.Row{"Rows", "Cols", "Cycles", "Missing",
		"Extra", "Mismatches"})
	summary.AppendRow(table.Row{r.Rows, r.Cols, r.Cycles, r.MissingRows,
		r.ExtraRows, len(r.Mismatches)})
	fmt.Fprintln(w, summary.Render())

	if len(r.Mismatches) == 0 {
		return
	}

	detail := table.NewWriter()
	detail.SetTitle("Mismatches")
	detail.AppendHeader(table.Row{"Row", "Col", "Got", "Want"})
	for i, m := range r.Mismatches {
		if i == MaxListedMismatches {
			detail.AppendFooter(table.Row{"...",
				fmt.Sprintf("%d more", len(r.Mismatches)-i), "", ""})
			break
		}
		detail.AppendRow(table.Row{m.Row, m.Col, m.Got, m.Want})
	}
	fmt.Fprintln(w, detail.Render())
}
