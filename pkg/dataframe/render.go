package dataframe

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ColumnWidths returns, per column, the widest rendered cell including the
// header itself.
func (df *DataFrame) ColumnWidths() []int {
	widths := make([]int, df.width)
	for i, h := range df.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for i, v := range df.data {
		if w := runewidth.StringWidth(v.Format(df.mode)); w > widths[i%df.width] {
			widths[i%df.width] = w
		}
	}
	return widths
}

// Render writes df as a bordered grid.
func (df *DataFrame) Render(w io.Writer) error {
	_, err := io.WriteString(w, df.String())
	return err
}

// String renders df as a bordered grid.
func (df *DataFrame) String() string {
	if df.width == 0 {
		return ""
	}
	widths := df.ColumnWidths()

	var b strings.Builder
	border := func() {
		for _, w := range widths {
			b.WriteByte('+')
			b.WriteString(strings.Repeat("-", w+2))
		}
		b.WriteString("+\n")
	}
	line := func(cells []string) {
		for i, c := range cells {
			b.WriteString("| ")
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteByte(' ')
		}
		b.WriteString("|\n")
	}

	border()
	line(df.headers)
	border()
	cells := make([]string, df.width)
	for r := 0; r < df.height; r++ {
		for c := 0; c < df.width; c++ {
			cells[c] = df.data[r*df.width+c].Format(df.mode)
		}
		line(cells)
	}
	if df.height > 0 {
		border()
	}
	return b.String()
}
