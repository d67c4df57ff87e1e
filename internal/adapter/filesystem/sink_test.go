package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/chart"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/pipeline"
	"github.com/couchcryptid/air-quality-eda/internal/report"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult(t *testing.T, charts bool) *pipeline.Result {
	t.Helper()
	g := generator.New(3)
	records := g.Generate()
	a, err := analysis.Analyze(records, g.Seed(), g.DailyProfile())
	require.NoError(t, err)
	r := &pipeline.Result{Records: records, Analysis: a}
	if charts {
		r.Panel = chart.BuildPanel(a)
	}
	return r
}

func TestSink_Load_AllOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	s := NewSink(dir, report.FormatJSON, 10, 8, slog.Default())
	res := testResult(t, true)

	require.NoError(t, s.Load(context.Background(), res))

	png, err := os.ReadFile(filepath.Join(dir, PanelFile))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	summary, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(summary, &decoded))
	assert.Equal(t, res.Analysis.RunID, decoded["run_id"])

	f, err := os.Open(filepath.Join(dir, MeasurementsFile))
	require.NoError(t, err)
	defer f.Close()
	back, err := stats.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, back, 360)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "temp files should not be left behind")
}

func TestSink_Load_NoCharts(t *testing.T) {
	dir := t.TempDir()
	s := NewSink(dir, report.FormatText, 10, 8, slog.Default())
	require.NoError(t, s.Load(context.Background(), testResult(t, false)))

	_, err := os.Stat(filepath.Join(dir, PanelFile))
	assert.True(t, os.IsNotExist(err))

	text, err := os.ReadFile(filepath.Join(dir, "summary.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "SUMMARY REPORT")
}

func TestSink_SummaryFile(t *testing.T) {
	assert.Equal(t, "summary.yaml", NewSink("x", report.FormatYAML, 1, 1, slog.Default()).SummaryFile())
	assert.Equal(t, "filesystem", NewSink("x", report.FormatYAML, 1, 1, slog.Default()).Name())
}

func TestSink_Load_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	s := NewSink(filepath.Join(file, "out"), report.FormatJSON, 4, 4, slog.Default())
	err := s.Load(context.Background(), testResult(t, false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create output dir")
}
