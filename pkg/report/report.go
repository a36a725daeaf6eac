// Package report renders DataFrames as GitHub-flavored Markdown tables and
// as HTML converted from that Markdown with goldmark.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ssargent/tabula/pkg/dataframe"
)

// Markdown returns df as a GFM table. Numeric columns are right-aligned.
// A frame without columns renders as the empty string.
func Markdown(df *dataframe.DataFrame) string {
	if df.Width() == 0 {
		return ""
	}
	var b strings.Builder
	headers := df.Headers()

	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = escape(h)
	}
	writeRow(&b, names)
	align := make([]string, len(headers))
	for i, h := range headers {
		align[i] = "---"
		if k, _ := df.ColumnKind(h); k.IsSigned() || k.IsUnsigned() || k.IsFloat() {
			align[i] = "---:"
		}
	}
	writeRow(&b, align)

	cells := make([]string, df.Width())
	for r := 0; r < df.Height(); r++ {
		row, _ := df.RowValues(r)
		for i, v := range row {
			cells[i] = escape(v.Format(df.DisplayMode()))
		}
		writeRow(&b, cells)
	}
	return b.String()
}

// WriteMarkdown writes Markdown(df) to w.
func WriteMarkdown(w io.Writer, df *dataframe.DataFrame) error {
	_, err := io.WriteString(w, Markdown(df))
	return err
}

// WriteHTML writes df to w as an HTML table fragment.
func WriteHTML(w io.Writer, df *dataframe.DataFrame) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(df)), &buf); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

var escaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "<", `\<`, "&", `\&`,
	"*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`,
)

// escape keeps a cell inside its column and renders it as literal text.
func escape(s string) string {
	return escaper.Replace(s)
}
