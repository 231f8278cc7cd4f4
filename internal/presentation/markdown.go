package presentation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zjrosen/fieldunits/internal/ui/markdown"
)

// RenderFieldMarkdown describes a field as a markdown document.
func RenderFieldMarkdown(d FieldDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}

	b.WriteString("| Property | Value |\n|---|---|\n")
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(v, "|", `\|`))
		}
	}
	row("Symbol", "`"+d.Symbol+"`")
	row("LaTeX", "`"+d.LatexSymbol+"`")
	row("Unit", fmt.Sprintf("%s (%s)", d.Unit, d.UnitName))
	row("Kind", d.Kind)
	row("Category", d.Category)
	if d.DefaultValue != nil {
		row("Default", fmt.Sprintf("%g %s", *d.DefaultValue, d.Unit))
	}

	if len(d.Aliases) > 0 {
		b.WriteString("\n## Aliases\n\n")
		for _, a := range d.Aliases {
			fmt.Fprintf(&b, "- `%s`\n", a)
		}
	}
	if len(d.ExcludeRegions) > 0 {
		b.WriteString("\n## Excluded regions\n\n")
		for _, r := range d.ExcludeRegions {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	var extra []string
	for k := range d.Metadata {
		if k != "category" {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		b.WriteString("\n## Metadata\n\n")
		for _, k := range extra {
			fmt.Fprintf(&b, "- **%s**: %v\n", k, d.Metadata[k])
		}
	}
	return b.String()
}

// FormatFieldDescription writes the rendered markdown description of a field.
// plain disables ANSI styling.
func (f *Formatter) FormatFieldDescription(d FieldDTO, width int, plain bool) error {
	newRenderer := markdown.New
	if plain {
		newRenderer = markdown.NewPlain
	}
	r, err := newRenderer(width)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(RenderFieldMarkdown(d))
	if err != nil {
		return fmt.Errorf("rendering field %s: %w", d.Name, err)
	}
	_, err = fmt.Fprint(f.writer, out)
	return err
}
