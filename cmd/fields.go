package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/fieldunits/internal/presentation"
)

var (
	fieldsCategory   string
	fieldsLabelUnit  string
	fieldsLabelLatex bool
	fieldsPlain      bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Inspect registered fields",
	Long: `Inspect the fields registered from the configured catalogs.

A field is addressed by its name, its symbol or one of its aliases, in that
order of precedence.`,
}

var fieldsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered fields",
	Long: `List registered fields in registration order.

Examples:
  # Every field as an aligned table
  fieldunits fields list

  # Only thermal fields, as JSON
  fieldunits fields list --category thermal -o json

  # Parse specific fields with jq
  fieldunits fields list -o json | jq '.[].symbol'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if fieldsCategory != "" && !slices.Contains(fieldRegistry.Categories(), fieldsCategory) {
			return fmt.Errorf("unknown category %q (known: %s)",
				fieldsCategory, strings.Join(fieldRegistry.Categories(), ", "))
		}

		dtos := presentation.FromFields(fieldRegistry.List(fieldsCategory))
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			return formatter.FormatFields(dtos)
		}
		return formatter.FormatFieldTable(dtos, cfg.Display.WrapWidth)
	},
}

var fieldsGetCmd = &cobra.Command{
	Use:   "get <name|symbol|alias>",
	Short: "Show one field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := lookupField(args[0])
		if err != nil {
			return err
		}
		dto := presentation.FromField(f)
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			return formatter.FormatJSON(dto)
		}
		return formatter.FormatFieldTable([]presentation.FieldDTO{dto}, cfg.Display.WrapWidth)
	},
}

var fieldsDescribeCmd = &cobra.Command{
	Use:   "describe <name|symbol|alias>",
	Short: "Render the full description of a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := lookupField(args[0])
		if err != nil {
			return err
		}
		width := cfg.Display.WrapWidth
		if width <= 0 {
			width = 80
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).
			FormatFieldDescription(presentation.FromField(f), width, fieldsPlain)
	},
}

var fieldsLabelCmd = &cobra.Command{
	Use:   "label <name|symbol|alias>",
	Short: "Print an axis label such as \"B [mT]\"",
	Long: `Print the plot label of a field. Without --unit the bare symbol is
printed; with --unit the label is "<symbol> [<unit>]".

Examples:
  fieldunits fields label B --unit mT        # B [mT]
  fieldunits fields label temp --latex       # $T$`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := lookupField(args[0])
		if err != nil {
			return err
		}
		label, err := f.FormatLabel(fieldsLabelUnit, fieldsLabelLatex || cfg.Display.UseLatex)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), label)
		return err
	},
}

func init() {
	fieldsListCmd.Flags().StringVar(&fieldsCategory, "category", "", "only fields of this category")
	fieldsDescribeCmd.Flags().BoolVar(&fieldsPlain, "plain", false, "no colors or styling")
	fieldsLabelCmd.Flags().StringVarP(&fieldsLabelUnit, "unit", "u", "", "unit shown in brackets")
	fieldsLabelCmd.Flags().BoolVar(&fieldsLabelLatex, "latex", false, "use the LaTeX symbol")

	fieldsCmd.AddCommand(fieldsListCmd, fieldsGetCmd, fieldsDescribeCmd, fieldsLabelCmd)
	rootCmd.AddCommand(fieldsCmd)
}
