package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/air-quality-eda/internal/adapter/filesystem"
	kafkaadapter "github.com/couchcryptid/air-quality-eda/internal/adapter/kafka"
	"github.com/couchcryptid/air-quality-eda/internal/config"
	"github.com/couchcryptid/air-quality-eda/internal/pipeline"
	"github.com/couchcryptid/air-quality-eda/internal/report"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/spf13/cobra"
)

func newRunCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, analyse and write the report, chart panel and CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f, true)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, closeSinks, err := buildPipeline(cfg, logger)
			if err != nil {
				return err
			}
			defer closeSinks()

			res, runErr := p.Run(ctx)
			if res != nil {
				if err := printReport(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	addOutputFlags(cmd, f)
	return cmd
}

// buildPipeline wires the generator source to the filesystem sink and, when
// enabled, the Kafka publisher. The returned func closes the sinks.
func buildPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func(), error) {
	format, err := report.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return nil, nil, err
	}
	metrics := appMetrics()

	sinks := []pipeline.Sink{
		filesystem.NewSink(cfg.OutputDir, format, cfg.ChartWidthIn, cfg.ChartHeightIn, logger),
	}
	closeSinks := func() {}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		sinks = append(sinks, writer)
		closeSinks = func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		pipeline.NewGeneratorSource(cfg.Seed, logger),
		sinks,
		logger,
		metrics,
		pipeline.WithCharts(cfg.ChartsEnabled),
	)
	return p, closeSinks, nil
}

// printReport writes the dataset overview followed by the analysis report.
func printReport(w io.Writer, res *pipeline.Result) error {
	ov, err := stats.Describe(res.Records, 5)
	if err != nil {
		return err
	}
	if err := report.WriteOverview(w, ov); err != nil {
		return fmt.Errorf("print overview: %w", err)
	}
	if err := report.WriteText(w, res.Analysis); err != nil {
		return fmt.Errorf("print report: %w", err)
	}
	return nil
}

// isShutdown reports whether err only reflects a signal-driven stop.
func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}
