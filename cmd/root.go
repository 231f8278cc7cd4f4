package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/fieldunits/internal/catalog"
	"github.com/zjrosen/fieldunits/internal/config"
	"github.com/zjrosen/fieldunits/internal/domain/field"
	"github.com/zjrosen/fieldunits/internal/flags"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/paths"
	"github.com/zjrosen/fieldunits/internal/tracing"
	"github.com/zjrosen/fieldunits/internal/units"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	outputFlag string
	cfg        config.Config

	unitSystem      *units.System
	fieldRegistry   *field.Registry
	featureFlags    *flags.Registry
	tracingProvider *tracing.Provider
	logCleanup      func()
)

var rootCmd = &cobra.Command{
	Use:   "fieldunits",
	Short: "Physical field definitions with unit conversion",
	Long: `fieldunits manages named physical fields (magnetic field, temperature,
pressure, ...) with their symbols, units and aliases, converts values between
compatible units and relabels columns of measurement data files.

Run without a subcommand to browse the registered fields interactively.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runBrowse,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: nearest .fieldunits/config.yaml, then ~/.config/fieldunits/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by "+log.EnvDebug+")")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "",
		"output format: table or json (overrides display.output)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("catalogs", defaults.Catalogs)
	viper.SetDefault("formats_dir", defaults.FormatsDir)
	viper.SetDefault("display.use_latex", defaults.Display.UseLatex)
	viper.SetDefault("display.output", defaults.Display.Output)
	viper.SetDefault("display.wrap_width", defaults.Display.WrapWidth)
	viper.SetDefault("cache.unit_ttl", defaults.Cache.UnitTTL)
	viper.SetDefault("cache.cleanup_interval", defaults.Cache.CleanupInterval)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)

	_ = viper.BindPFlag("display.output", rootCmd.PersistentFlags().Lookup("output"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .fieldunits/config.yaml (current directory or a parent)
		// 2. ~/.config/fieldunits/config.yaml (user config)
		if local, ok := paths.FindLocalConfig("."); ok {
			viper.SetConfigFile(local)
		} else {
			viper.AddConfigPath(paths.UserConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the default user config
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			defaultPath := paths.UserConfigFile()
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// configFilePath is where catalog changes are saved.
func configFilePath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return paths.UserConfigFile()
}

// setup builds the unit system and the field registry from the loaded
// configuration. Every subcommand runs it.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv(log.EnvDebug) != "" {
		logPath := os.Getenv("FIELDUNITS_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "fieldunits")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateCatalogs(cfg.Catalogs, catalog.Names()); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	tracingProvider = tp

	unitSystem = units.New(cfg.Cache.UnitOptions())
	featureFlags = flags.New(cfg.Flags)
	fieldRegistry = field.NewRegistry()
	if err := registerCatalogs(cmd.Context(), fieldRegistry, cfg.Catalogs); err != nil {
		return err
	}

	log.Info(log.CatConfig, "configuration loaded",
		"file", viper.ConfigFileUsed(),
		"catalogs", cfg.Catalogs,
		"fields", fieldRegistry.Len())
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if unitSystem != nil {
		stats := unitSystem.CacheStats()
		log.Debug(log.CatCache, "unit cache stats",
			"hits", stats.Hits, "misses", stats.Misses, "shared", stats.Shared, "errors", stats.Errors)
	}
	if fieldRegistry != nil {
		fieldRegistry.Close()
	}
	if tracingProvider != nil {
		if err := tracingProvider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "Tracer shutdown failed", err)
		}
		tracingProvider = nil
	}
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

func registerCatalogs(ctx context.Context, reg *field.Registry, names []string) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := tracing.Start(ctx, tracingProvider.Tracer(), tracing.SpanCatalogRegister,
		attribute.StringSlice(tracing.AttrCatalog, names))
	defer func() { tracing.Finish(span, err) }()

	if err := catalog.RegisterNamed(reg, unitSystem, names...); err != nil {
		return fmt.Errorf("registering catalogs: %w", err)
	}
	span.SetAttributes(attribute.Int("catalog.fields", reg.Len()))
	return nil
}

// lookupField resolves a name, symbol or alias in the registry.
func lookupField(identifier string) (*field.Field, error) {
	f, ok := fieldRegistry.Get(identifier)
	if !ok {
		return nil, fmt.Errorf("field %q not found (try `fieldunits fields list`)", identifier)
	}
	return f, nil
}

func jsonOutput() bool {
	return cfg.Display.Output == config.OutputJSON
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
