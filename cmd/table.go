package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/fieldunits/internal/format"
	"github.com/zjrosen/fieldunits/internal/log"
	"github.com/zjrosen/fieldunits/internal/tracing"
	"github.com/zjrosen/fieldunits/internal/watcher"
)

var (
	tableTargets []string
	tableWatch   bool
	tableLabels  bool
	tableLatex   bool
	tableOut     string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Process measurement data files",
}

var tableConvertCmd = &cobra.Command{
	Use:   "convert <definition> <data>",
	Short: "Convert columns of a data file to other units",
	Long: `Read a data file described by a format definition, convert the
requested columns and write the result with the definition's delimiter.

Each --to takes column=unit; the column is matched by its header name.
With --watch the conversion re-runs whenever the definition or the data file
changes, until interrupted.

Examples:
  fieldunits table convert pupitre.json run1.txt --to Field=gauss --to Tin1=kelvin
  fieldunits table convert pupitre run1.txt --to Field=mT --labels
  fieldunits table convert pupitre.json run1.txt --to Field=mT --watch -O out.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runTableConvert,
}

func init() {
	tableConvertCmd.Flags().StringArrayVar(&tableTargets, "to", nil, "column=unit target (repeatable)")
	tableConvertCmd.Flags().BoolVarP(&tableWatch, "watch", "w", false, "re-run when the definition or data file changes")
	tableConvertCmd.Flags().BoolVar(&tableLabels, "labels", false, "write \"symbol [unit]\" headers")
	tableConvertCmd.Flags().BoolVar(&tableLatex, "latex", false, "use LaTeX symbols in --labels headers")
	tableConvertCmd.Flags().StringVarP(&tableOut, "out", "O", "", "write to this file instead of stdout")
	tableCmd.AddCommand(tableConvertCmd)
	rootCmd.AddCommand(tableCmd)
}

func runTableConvert(cmd *cobra.Command, args []string) error {
	targets, err := format.ParseTargets(tableTargets)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	defPath, dataPath := args[0], args[1]
	run := func() error {
		return convertTableOnce(ctx, tracingProvider.Tracer(), defPath, dataPath, targets, cmd.OutOrStdout())
	}

	if !tableWatch {
		return run()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchTable(ctx, cmd, []string{defPath, dataPath}, run)
}

// watchTable runs fn once, then again after every debounced change to paths.
// Conversion errors are reported and the watch continues.
func watchTable(ctx context.Context, cmd *cobra.Command, paths []string, fn func() error) error {
	if _, err := os.Stat(paths[0]); err != nil {
		// a format name, not a file: only the data file can change
		paths = paths[1:]
	}
	w, err := watcher.New(watcher.Config{Paths: paths, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	report := func() {
		if err := fn(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		}
	}
	report()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			log.Info(log.CatWatcher, "Input changed, converting again", "paths", paths)
			report()
		}
	}
}

func convertTableOnce(ctx context.Context, tracer trace.Tracer, defRef, dataPath string, targets map[string]string, stdout io.Writer) (err error) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanPrefixCommand+"table_convert",
		attribute.String(tracing.AttrFormatFile, defRef),
		attribute.String(tracing.AttrDataFile, dataPath))
	defer func() { tracing.Finish(span, err) }()

	def, err := loadDefinition(ctx, defRef, tracer)
	if err != nil {
		return err
	}

	f, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	tbl, err := format.ReadTable(ctx, f, def)
	if err != nil {
		return fmt.Errorf("%s: %w", dataPath, err)
	}
	converted, err := tbl.ConvertColumns(ctx, targets)
	if err != nil {
		return fmt.Errorf("%s: %w", dataPath, err)
	}

	out := stdout
	if tableOut != "" {
		file, err := os.Create(tableOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer file.Close()
		out = file
	}

	log.Debug(log.CatFormat, "Converted table", "format", def.Name(), "rows", converted.Len(),
		"trace_id", tracing.TraceIDFromContext(ctx))
	return converted.Write(out, format.WriteOptions{
		Labels:   tableLabels,
		UseLatex: tableLatex || cfg.Display.UseLatex,
	})
}
