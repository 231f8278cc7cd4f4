package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatFields formats a list of fields as JSON
func (f *Formatter) FormatFields(fields []FieldDTO) error {
	return f.FormatJSON(fields)
}

// FormatJSON formats any result as indented JSON
func (f *Formatter) FormatJSON(result any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

var fieldTableHeader = []string{"NAME", "SYMBOL", "UNIT", "KIND", "DESCRIPTION"}

// FormatFieldTable writes an aligned text table. Column widths are display
// widths, so unicode symbols such as "σ" or "Ω·m" line up. Descriptions are
// wrapped at wrapWidth; 0 disables wrapping.
func (f *Formatter) FormatFieldTable(fields []FieldDTO, wrapWidth int) error {
	rows := make([][]string, 0, len(fields)+1)
	rows = append(rows, fieldTableHeader)
	for _, d := range fields {
		rows = append(rows, []string{d.Name, d.Symbol, d.Unit, d.Kind, d.Description})
	}

	last := len(fieldTableHeader) - 1
	widths := make([]int, last)
	for _, row := range rows {
		for i := 0; i < last; i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	indent := 0
	for _, w := range widths {
		indent += w + 2
	}

	var b strings.Builder
	for _, row := range rows {
		for i := 0; i < last; i++ {
			b.WriteString(runewidth.FillRight(row[i], widths[i]))
			b.WriteString("  ")
		}

		desc := row[last]
		if wrapWidth > 0 {
			desc = wordwrap.String(desc, wrapWidth)
		}
		lines := strings.Split(desc, "\n")
		b.WriteString(lines[0])
		for _, l := range lines[1:] {
			b.WriteString("\n")
			b.WriteString(strings.Repeat(" ", indent))
			b.WriteString(l)
		}
		b.WriteString("\n")
	}

	out := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	for i, l := range out {
		out[i] = strings.TrimRight(l, " ")
	}
	_, err := io.WriteString(f.writer, strings.Join(out, "\n")+"\n")
	return err
}

// FormatLines writes one line per value.
func (f *Formatter) FormatLines(values []string) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(f.writer, v); err != nil {
			return err
		}
	}
	return nil
}
