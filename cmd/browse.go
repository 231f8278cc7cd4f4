package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/fieldunits/internal/catalog"
	"github.com/zjrosen/fieldunits/internal/config"
	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/ui/browser"
	"github.com/zjrosen/fieldunits/internal/watcher"
)

var browseNoWatch bool

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse registered fields interactively",
	Long: `Open the field browser: a filterable field list grouped by category
next to the rendered description of the selected field.

While the browser runs, the config file is watched; enabling or disabling a
catalog from another terminal updates the list in place.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseNoWatch, "no-watch", false, "do not reload catalogs when the config file changes")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := browser.New(ctx, fieldRegistry, fieldRegistry.Subscribe(ctx))

	if path := viper.ConfigFileUsed(); path != "" && !browseNoWatch {
		if err := watchCatalogs(ctx, path, fieldRegistry); err != nil {
			log.ErrorErr(log.CatWatcher, "Config watch unavailable", err, "path", path)
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// watchCatalogs re-syncs reg with the catalogs of the config file whenever
// the file changes. The browser sees the difference as registry events.
func watchCatalogs(ctx context.Context, path string, reg *field.Registry) error {
	w, err := watcher.New(watcher.Config{Paths: []string{path}, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}

	go func() {
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if err := reloadCatalogs(path, reg); err != nil {
					log.ErrorErr(log.CatConfig, "Catalog reload failed", err, "path", path)
				}
			}
		}
	}()
	return nil
}

func reloadCatalogs(path string, reg *field.Registry) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	entries := v.GetStringSlice("catalogs")
	if !v.IsSet("catalogs") {
		entries = config.DefaultCatalogs()
	}
	if err := config.ValidateCatalogs(entries, catalog.Names()); err != nil {
		return err
	}
	_, _, err := catalog.Sync(reg, unitSystem, entries...)
	return err
}
