package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table is a plain column layout for terminal reports.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AddRow appends one row; missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table to w with the title highlighted.
func (t *Table) Render(w io.Writer, scheme *ColorScheme) error {
	if scheme == nil {
		scheme = NoColorScheme()
	}
	if t.Title != "" {
		if _, err := fmt.Fprintln(w, scheme.Highlight.Sprint(t.Title)); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		copy(cells, row)
		if len(row) > len(cells) {
			cells = row
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
