package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/fieldunits/internal/convert"
	"github.com/zjrosen/fieldunits/internal/presentation"
	"github.com/zjrosen/fieldunits/internal/units"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Inspect unit expressions",
}

// UnitDTO describes one parsed unit expression.
type UnitDTO struct {
	Expression string  `json:"expression"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Dimension  string  `json:"dimension"`
	Scale      float64 `json:"scale"`
}

// CheckDTO is the result of a compatibility check.
type CheckDTO struct {
	From       UnitDTO  `json:"from"`
	To         UnitDTO  `json:"to"`
	Compatible bool     `json:"compatible"`
	Factor     *float64 `json:"factor,omitempty"`
}

var unitsShowCmd = &cobra.Command{
	Use:   "show <unit>",
	Short: "Show the canonical form and dimension of a unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := unitSystem.Parse(args[0])
		if err != nil {
			return err
		}
		dto := unitDTO(args[0], u)
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			return formatter.FormatJSON(dto)
		}
		return formatter.FormatLines([]string{
			"symbol:    " + dto.Symbol,
			"name:      " + dto.Name,
			"dimension: " + dto.Dimension,
			"scale:     " + strconv.FormatFloat(dto.Scale, 'g', -1, 64),
		})
	},
}

var unitsCheckCmd = &cobra.Command{
	Use:   "check <unit> <unit>",
	Short: "Check whether two units are convertible",
	Long: `Check whether two unit expressions share a dimension. Exits non-zero
when they do not.

Examples:
  fieldunits units check tesla gauss      # 1 T = 10000 G
  fieldunits units check m3/h l/min
  fieldunits units check kelvin meter     # error`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := unitSystem.Parse(args[0])
		if err != nil {
			return err
		}
		b, err := unitSystem.Parse(args[1])
		if err != nil {
			return err
		}

		dto := CheckDTO{
			From:       unitDTO(args[0], a),
			To:         unitDTO(args[1], b),
			Compatible: convert.Compatible(unitSystem, args[0], args[1]),
		}
		if dto.Compatible {
			factor, err := convert.Value(unitSystem, 1, args[0], args[1])
			if err != nil {
				return err
			}
			dto.Factor = &factor
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			if err := formatter.FormatJSON(dto); err != nil {
				return err
			}
		} else if dto.Compatible {
			line := fmt.Sprintf("1 %s = %s %s", dto.From.Symbol,
				strconv.FormatFloat(*dto.Factor, 'g', -1, 64), dto.To.Symbol)
			if err := formatter.FormatLines([]string{line}); err != nil {
				return err
			}
		}

		if !dto.Compatible {
			return fmt.Errorf("%w: %s [%s] and %s [%s]", units.ErrIncompatibleUnits,
				dto.From.Symbol, dto.From.Dimension, dto.To.Symbol, dto.To.Dimension)
		}
		return nil
	},
}

func init() {
	unitsCmd.AddCommand(unitsShowCmd, unitsCheckCmd)
	rootCmd.AddCommand(unitsCmd)
}

func unitDTO(expr string, u units.Unit) UnitDTO {
	pretty, err := convert.UnitString(unitSystem, expr, true)
	if err != nil {
		pretty = unitSystem.Render(u)
	}
	return UnitDTO{
		Expression: expr,
		Symbol:     pretty,
		Name:       u.LongName(),
		Dimension:  u.Dimension().String(),
		Scale:      u.Scale(),
	}
}
