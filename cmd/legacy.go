package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/fieldunits/internal/compat"
	"github.com/zjrosen/fieldunits/internal/flags"
	"github.com/zjrosen/fieldunits/internal/presentation"
)

var legacyCategory string

var legacyCmd = &cobra.Command{
	Use:   "legacy",
	Short: "Work with legacy units dictionaries",
	Long: `Older post-processing tools describe fields with a dictionary keyed by
field name:

  MagneticField:
    Symbol: B
    mSymbol: $B$
    Units: [tesla, millitesla]
    Exclude: [Air]

"Units" holds the input and output unit of each field.`,
}

var legacyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export registered fields as a legacy dictionary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dict := compat.FieldUnitsDict(fieldRegistry.List(legacyCategory))
		if jsonOutput() {
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatJSON(dict)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(dict); err != nil {
			return fmt.Errorf("encoding legacy dictionary: %w", err)
		}
		return enc.Close()
	},
}

var legacyConvertCmd = &cobra.Command{
	Use:   "convert <dictionary> <identifier> <value>...",
	Short: "Convert values with the units of a legacy dictionary",
	Long: `Convert values from the input to the output unit the dictionary lists
for identifier. Identifiers missing from the dictionary are resolved through
the registry (name, symbol, alias) while the symbol-fallback flag is on;
otherwise the values pass through unchanged.

Examples:
  fieldunits legacy export > units.yaml
  fieldunits legacy convert units.yaml B 0.5 1.5`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dict, err := readLegacyDict(args[0])
		if err != nil {
			return err
		}
		values, err := parseValues(args[2:])
		if err != nil {
			return err
		}

		unitMap := compat.Units(dict)
		out, err := compat.ConvertRegistryData(fieldRegistry, unitMap, values, args[1],
			featureFlags.Enabled(flags.FlagSymbolFallback))
		if err != nil {
			return err
		}

		result := presentation.ConversionDTO{Field: args[1], Input: values, Output: out}
		if pair, ok := unitMap[args[1]]; ok {
			result.From, result.To = pair[0], pair[1]
		}
		return writeValues(cmd, result)
	},
}

func init() {
	legacyExportCmd.Flags().StringVar(&legacyCategory, "category", "", "only fields of this category")
	legacyCmd.AddCommand(legacyExportCmd, legacyConvertCmd)
	rootCmd.AddCommand(legacyCmd)
}

// readLegacyDict reads a YAML or JSON legacy dictionary. JSON is valid YAML,
// so one decoder serves both.
func readLegacyDict(path string) (map[string]compat.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy dictionary: %w", err)
	}
	var dict map[string]compat.Entry
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("decoding legacy dictionary %s: %w", path, err)
	}
	return dict, nil
}
