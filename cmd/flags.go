package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/fieldunits/internal/flags"
	"github.com/zjrosen/fieldunits/internal/presentation"
)

// FlagDTO is one feature flag and its effective state.
type FlagDTO struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Show feature flags and their state",
	Long: `Show every feature flag with its effective state. Flags are set in the
"flags" section of the config file:

  flags:
    strict-format-units: true`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dtos := make([]FlagDTO, 0, len(flags.Known()))
		for _, name := range flags.Known() {
			dtos = append(dtos, FlagDTO{
				Name:        name,
				Enabled:     featureFlags.Enabled(name),
				Description: flags.Describe(name),
			})
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			return formatter.FormatJSON(dtos)
		}
		lines := make([]string, len(dtos))
		for i, d := range dtos {
			state := "off"
			if d.Enabled {
				state = "on"
			}
			lines[i] = fmt.Sprintf("%-22s %-3s  %s", d.Name, state, d.Description)
		}
		return formatter.FormatLines(lines)
	},
}

func init() {
	rootCmd.AddCommand(flagsCmd)
}
