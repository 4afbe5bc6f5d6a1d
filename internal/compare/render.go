package compare

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Glyphs used by RenderText
const (
	GlyphYes = "✓"
	GlyphNo  = "✗"
	GlyphNA  = "N/A"
)

// String renders a cell the way the compare table shows it.
func (c Cell) String() string {
	switch c.Kind {
	case CellBool:
		if c.Bool {
			return GlyphYes
		}
		return GlyphNo
	case CellText:
		return c.Text
	}
	return GlyphNA
}

// RenderText writes the matrix as an aligned plain-text table.
func RenderText(w io.Writer, m Matrix) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	header := []string{"Feature"}
	for _, c := range m.Columns {
		header = append(header, c.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, rows := range [][]Row{m.Fixed, m.Features} {
		for _, r := range rows {
			line := []string{r.Label}
			for _, c := range r.Cells {
				line = append(line, c.String())
			}
			fmt.Fprintln(tw, strings.Join(line, "\t"))
		}
	}
	return tw.Flush()
}
