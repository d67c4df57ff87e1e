// Package filesystem writes run outputs into a directory.
package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/air-quality-eda/internal/pipeline"
	"github.com/couchcryptid/air-quality-eda/internal/render"
	"github.com/couchcryptid/air-quality-eda/internal/report"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"gonum.org/v1/plot/vg"
)

// File names written into the output directory.
const (
	PanelFile        = "panel.png"
	MeasurementsFile = "measurements.csv"
	summaryBase      = "summary"
)

// Sink writes the chart panel, the summary and the dataset CSV.
// It implements pipeline.Sink.
type Sink struct {
	dir    string
	format report.Format
	width  vg.Length
	height vg.Length
	logger *slog.Logger
}

// NewSink creates a Sink writing into dir. Panel dimensions are in inches.
func NewSink(dir string, format report.Format, widthIn, heightIn float64, logger *slog.Logger) *Sink {
	return &Sink{
		dir:    dir,
		format: format,
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
		logger: logger,
	}
}

// Name implements pipeline.Sink.
func (s *Sink) Name() string { return "filesystem" }

// SummaryFile is the summary's file name for the configured format.
func (s *Sink) SummaryFile() string {
	return summaryBase + "." + s.format.Ext()
}

// Load writes every output. The panel is skipped when the result carries no
// chart configs.
func (s *Sink) Load(ctx context.Context, r *pipeline.Result) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if len(r.Panel) > 0 {
		var png bytes.Buffer
		if err := render.Panel(&png, r.Panel, s.width, s.height); err != nil {
			return fmt.Errorf("render panel: %w", err)
		}
		if err := s.write(PanelFile, png.Bytes()); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var summary bytes.Buffer
	if err := report.Write(&summary, r.Analysis, s.format); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := s.write(s.SummaryFile(), summary.Bytes()); err != nil {
		return err
	}

	var csv bytes.Buffer
	if err := stats.WriteCSV(&csv, r.Records); err != nil {
		return fmt.Errorf("write measurements: %w", err)
	}
	return s.write(MeasurementsFile, csv.Bytes())
}

// write replaces name atomically via a temp file in the same directory.
func (s *Sink) write(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	s.logger.Info("output written", "path", path, "bytes", len(data))
	return nil
}
