package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/couchcryptid/air-quality-eda/internal/config"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/observability"
	"github.com/spf13/cobra"
)

// flags holds command-line overrides. They win over the environment only
// when explicitly set.
type flags struct {
	seed      uint64
	outputDir string
	format    string
	noCharts  bool
}

var (
	metricsOnce sync.Once
	metrics     *observability.Metrics
)

// appMetrics registers the process metrics on first use.
func appMetrics() *observability.Metrics {
	metricsOnce.Do(func() { metrics = observability.NewMetrics() })
	return metrics
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "aqeda",
		Short:         "Exploratory analysis of synthetic air-quality data for Indian cities",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Uint64Var(&f.seed, "seed", 0, "generator seed (overrides SEED)")

	root.AddCommand(newRunCmd(f), newServeCmd(f), newExportCmd(f))
	return root
}

// addOutputFlags registers the flags shared by run and serve.
func addOutputFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "directory for panel, summary and CSV (overrides OUTPUT_DIR)")
	cmd.Flags().StringVar(&f.format, "format", "", "summary format: text, json or yaml (overrides REPORT_FORMAT)")
	cmd.Flags().BoolVar(&f.noCharts, "no-charts", false, "skip building and rendering the chart panel")
}

// loadConfig reads the environment and applies any flags the user set. The
// output flags are only consulted, and the output and sink settings only
// validated, for commands registered with addOutputFlags.
func loadConfig(cmd *cobra.Command, f *flags, withOutput bool) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if changed(cmd, "seed") {
		cfg.Seed, cfg.SeedSet = f.seed, true
	}
	if withOutput {
		if changed(cmd, "output-dir") {
			cfg.OutputDir = f.outputDir
		}
		if changed(cmd, "format") {
			cfg.ReportFormat = strings.ToLower(f.format)
		}
		if changed(cmd, "no-charts") {
			cfg.ChartsEnabled = !f.noCharts
		}
	}
	if !cfg.SeedSet {
		cfg.Seed, cfg.SeedSet = uint64(domain.Now().UnixNano()), true
	}
	if !withOutput {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func changed(cmd *cobra.Command, name string) bool {
	fl := cmd.Flags().Lookup(name)
	return fl != nil && fl.Changed
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return observability.NewLogger(cfg, w)
}
