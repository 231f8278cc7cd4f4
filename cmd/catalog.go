package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/fieldunits/internal/catalog"
	"github.com/zjrosen/fieldunits/internal/config"
	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/presentation"
)

// CatalogDTO describes a standard catalog and whether config enables it.
type CatalogDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Fields      int      `json:"fields"`
	Subsets     []string `json:"subsets"`
	Enabled     bool     `json:"enabled"`
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the standard field catalogs",
	Long: `Manage which standard catalogs are registered at startup.

Entries are catalog names ("thermal") or subsets ("mechanical.stress").
enable and disable edit the "catalogs" list of the config file in place,
keeping its comments.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List standard catalogs and their subsets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		all, err := catalog.All()
		if err != nil {
			return err
		}

		dtos := make([]CatalogDTO, 0, len(all))
		for _, c := range all {
			dtos = append(dtos, CatalogDTO{
				Name:        c.Name(),
				Description: c.Description(),
				Fields:      c.Len(),
				Subsets:     c.Subsets(),
				Enabled:     slices.Contains(cfg.Catalogs, c.Name()),
			})
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if jsonOutput() {
			return formatter.FormatJSON(dtos)
		}
		lines := make([]string, 0, len(dtos))
		for _, d := range dtos {
			mark := " "
			if d.Enabled {
				mark = "*"
			}
			lines = append(lines, fmt.Sprintf("%s %-16s %3d fields  %s", mark, d.Name, d.Fields, d.Description))
			for _, s := range d.Subsets {
				sub := d.Name + "." + s
				subMark := " "
				if slices.Contains(cfg.Catalogs, sub) {
					subMark = "*"
				}
				lines = append(lines, fmt.Sprintf("  %s %s", subMark, sub))
			}
		}
		return formatter.FormatLines(lines)
	},
}

var catalogEnableCmd = &cobra.Command{
	Use:   "enable <catalog[.subset]>",
	Short: "Register a catalog at startup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := args[0]
		if err := checkCatalogEntry(entry); err != nil {
			return err
		}
		if !slices.Contains(cfg.Catalogs, entry) {
			// refuse entries whose fields collide with already enabled ones
			scratch := field.NewRegistry()
			defer scratch.Close()
			if err := catalog.RegisterNamed(scratch, unitSystem, append(slices.Clone(cfg.Catalogs), entry)...); err != nil {
				return fmt.Errorf("cannot enable %s: %w", entry, err)
			}
		}
		updated, err := config.EnableCatalog(configFilePath(), entry, cfg.Catalogs)
		if err != nil {
			return err
		}
		cfg.Catalogs = updated
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "enabled %s (catalogs: %s)\n", entry, strings.Join(updated, ", "))
		return err
	},
}

var catalogDisableCmd = &cobra.Command{
	Use:   "disable <catalog[.subset]>",
	Short: "Stop registering a catalog at startup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		updated, err := config.DisableCatalog(configFilePath(), args[0], cfg.Catalogs)
		if err != nil {
			return err
		}
		cfg.Catalogs = updated
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "disabled %s (catalogs: %s)\n", args[0], strings.Join(updated, ", "))
		return err
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogEnableCmd, catalogDisableCmd)
	rootCmd.AddCommand(catalogCmd)
}

// checkCatalogEntry verifies the catalog and, for "name.subset", the subset.
func checkCatalogEntry(entry string) error {
	name, subset, hasSubset := strings.Cut(entry, ".")
	c, err := catalog.Lookup(name)
	if err != nil {
		return fmt.Errorf("%w (known: %s)", err, strings.Join(catalog.Names(), ", "))
	}
	if hasSubset && !slices.Contains(c.Subsets(), subset) {
		return fmt.Errorf("%w: %s (known: %s)", catalog.ErrSubsetNotFound, entry, strings.Join(c.Subsets(), ", "))
	}
	return nil
}
