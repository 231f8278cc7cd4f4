package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/fieldunits/internal/convert"
	"github.com/zjrosen/fieldunits/internal/presentation"
)

var (
	convertTo   string
	convertFrom string
)

var convertCmd = &cobra.Command{
	Use:   "convert <name|symbol|alias> <value>...",
	Short: "Convert values of a field to another unit",
	Long: `Convert values of a field from its unit (or --from) to the --to unit.

Examples:
  fieldunits convert B 0.5 1.2 --to mT
  fieldunits convert temp 20 --from degC --to degF
  fieldunits convert B 1 --to gauss -o json`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args[1:])
		if err != nil {
			return err
		}
		f, err := lookupField(args[0])
		if err != nil {
			return err
		}

		from := f.Unit().String()
		rebased := values
		if convertFrom != "" {
			// values are re-expressed in the field unit first
			rebased, err = convert.Slice(unitSystem, values, convertFrom, from)
			if err != nil {
				return fmt.Errorf("converting from %s: %w", convertFrom, err)
			}
			from = convertFrom
		}

		out, err := f.ConvertSlice(rebased, convertTo)
		if err != nil {
			return err
		}
		return writeValues(cmd, presentation.ConversionDTO{
			Field:  f.Name(),
			From:   from,
			To:     convertTo,
			Input:  values,
			Output: out,
		})
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "", "target unit (required)")
	convertCmd.Flags().StringVarP(&convertFrom, "from", "f", "", "unit of the input values (default: the field unit)")
	_ = convertCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(convertCmd)
}

func parseValues(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", a)
		}
		values = append(values, v)
	}
	return values, nil
}

// writeValues prints a conversion result as JSON or one value per line.
func writeValues(cmd *cobra.Command, result presentation.ConversionDTO) error {
	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if jsonOutput() {
		return formatter.FormatJSON(result)
	}
	lines := make([]string, len(result.Output))
	for i, v := range result.Output {
		lines[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return formatter.FormatLines(lines)
}
