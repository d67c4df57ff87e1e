package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportCmd(f *flags) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the generated dataset as CSV, JSON or YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f, false)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			if !isExportFormat(format) {
				return fmt.Errorf("unsupported export format %q: must be csv, json or yaml", format)
			}

			g := generator.New(cfg.Seed)
			records := g.Generate()
			if err := writeExport(cmd.OutOrStdout(), output, records, format); err != nil {
				return err
			}
			appMetrics().RecordsGenerated.Add(float64(len(records)))
			logger.Info("dataset exported", "seed", g.Seed(), "records", len(records), "format", format, "output", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "dataset format: csv, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")
	return cmd
}

// writeExport writes records to path, or to stdout when path is "-" or empty.
// A file is only reported written once it has been closed successfully.
func writeExport(stdout io.Writer, path string, records []domain.Measurement, format string) error {
	if path == "" || path == "-" {
		return exportRecords(stdout, records, format)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := exportRecords(file, records, format); err != nil {
		file.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func isExportFormat(s string) bool {
	switch strings.ToLower(s) {
	case "csv", "json", "yaml":
		return true
	}
	return false
}

func exportRecords(w io.Writer, records []domain.Measurement, format string) error {
	switch strings.ToLower(format) {
	case "csv":
		return stats.WriteCSV(w, records)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q: must be csv, json or yaml", format)
	}
}
