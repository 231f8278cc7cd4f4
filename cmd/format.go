package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/fieldunits/internal/flags"
	"github.com/zjrosen/fieldunits/internal/format"
	"github.com/zjrosen/fieldunits/internal/presentation"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Inspect data format definitions",
	Long: `Format definitions describe the columns of a measurement data file:
each column's field type, unit and symbol, plus the file's delimiter, header
and comment conventions. Definitions are JSON, YAML or TOML files.

A definition is addressed by file path, or by format name when formats_dir is
configured.`,
}

var formatShowCmd = &cobra.Command{
	Use:   "show <file|name>",
	Short: "Summarize a format definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadDefinition(cmd.Context(), args[0], nil)
		if err != nil {
			return err
		}
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			return formatter.FormatJSON(presentation.FromDefinition(def))
		}
		return formatter.FormatLines([]string{def.Summary()})
	},
}

var formatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the definitions in formats_dir",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		defs, err := loadFormatsDir(cmd.Context(), nil)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(defs))
		for n := range defs {
			names = append(names, n)
		}
		sort.Strings(names)

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			dtos := make([]presentation.FormatDTO, len(names))
			for i, n := range names {
				dtos[i] = presentation.FromDefinition(defs[n])
			}
			return formatter.FormatJSON(dtos)
		}
		lines := make([]string, len(names))
		for i, n := range names {
			d := defs[n]
			lines[i] = fmt.Sprintf("%-20s %3d columns  %s", n, d.Len(), d.Metadata().Description)
		}
		return formatter.FormatLines(lines)
	},
}

func init() {
	formatCmd.AddCommand(formatShowCmd, formatListCmd)
	rootCmd.AddCommand(formatCmd)
}

func formatOptions(tracer trace.Tracer) format.Options {
	return format.Options{
		Strict: featureFlags.Enabled(flags.FlagStrictFormatUnits),
		System: unitSystem,
		Tracer: tracer,
	}
}

func loadFormatsDir(ctx context.Context, tracer trace.Tracer) (map[string]*format.Definition, error) {
	if cfg.FormatsDir == "" {
		return nil, fmt.Errorf("formats_dir is not configured")
	}
	return format.LoadDir(ctx, os.DirFS(cfg.FormatsDir), ".", formatOptions(tracer))
}

// loadDefinition loads ref as a file when it exists, else looks it up by
// format name in formats_dir.
func loadDefinition(ctx context.Context, ref string, tracer trace.Tracer) (*format.Definition, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(ref); err == nil {
		return format.LoadFile(ctx, ref, formatOptions(tracer))
	}
	if cfg.FormatsDir == "" {
		return nil, fmt.Errorf("format definition %q not found", ref)
	}
	defs, err := loadFormatsDir(ctx, tracer)
	if err != nil {
		return nil, err
	}
	def, ok := defs[ref]
	if !ok {
		return nil, fmt.Errorf("format %q not found in %s", ref, cfg.FormatsDir)
	}
	return def, nil
}
