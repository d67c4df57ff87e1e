package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testAnalysis(t *testing.T) (*analysis.Analysis, []domain.Measurement) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedTime))
	t.Cleanup(func() { domain.SetClock(clockwork.NewRealClock()) })

	g := generator.New(99)
	records := g.Generate()
	a, err := analysis.Analyze(records, g.Seed(), g.DailyProfile())
	require.NoError(t, err)
	return a, records
}

func TestWriteText_Sections(t *testing.T) {
	a, _ := testAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a))
	out := buf.String()

	for _, want := range []string{
		"ANALYSIS RESULTS",
		"1. PM2.5 Analysis",
		"2. City Analysis",
		"3. Pollutant Correlations",
		"4. Seasonal Patterns",
		"SUMMARY REPORT",
		"KEY FINDINGS:",
		"HEALTH IMPLICATIONS:",
		"DATA QUALITY:",
		"RECOMMENDATIONS:",
		"Dataset contains 360 records across 10 cities",
		"Alert: Average PM2.5",
		"Top 3 most polluted cities (PM2.5):",
		"PM2.5-NO2: ",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteText_SeasonLines(t *testing.T) {
	a, _ := testAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a))

	for _, s := range a.Seasonal {
		assert.Contains(t, buf.String(), s.Label+": PM2.5=")
	}
	assert.Contains(t, buf.String(), "Winter (Dec-Feb): PM2.5=")
	assert.NotContains(t, buf.String(), "Summer (Jun-Aug)")
}

func TestWriteText_WithinGuideline(t *testing.T) {
	a, _ := testAnalysis(t)
	a.ExceedsWHO = false
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, a))
	assert.Contains(t, buf.String(), "within WHO guidelines")
	assert.NotContains(t, buf.String(), "Alert:")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteText_PropagatesWriteError(t *testing.T) {
	a, _ := testAnalysis(t)
	err := WriteText(failingWriter{}, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteOverview(t *testing.T) {
	_, records := testAnalysis(t)
	ov, err := stats.Describe(records, 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOverview(&buf, ov))
	out := buf.String()
	assert.Contains(t, out, "Dataset Shape: (360, 6)")
	assert.Contains(t, out, "First 5 rows:")
	assert.Contains(t, out, "Statistical Summary:")
	assert.Contains(t, out, "Delhi")
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"text", "JSON", " yaml "} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, "txt", FormatText.Ext())
	assert.Equal(t, "json", FormatJSON.Ext())
	assert.Equal(t, "yaml", FormatYAML.Ext())
}

func TestNewSummary(t *testing.T) {
	a, _ := testAnalysis(t)
	s := NewSummary(a)

	assert.Equal(t, a.RunID, s.RunID)
	assert.Equal(t, uint64(99), s.Seed)
	assert.Equal(t, fixedTime, s.GeneratedAt)
	assert.Equal(t, 360, s.Records)
	assert.Len(t, s.TopPM25, analysis.TopCities)
	assert.Len(t, s.Correlations, 3)
	assert.Equal(t, "PM2.5-NO2", s.Correlations[0].Pair)
	assert.Len(t, s.Matrix, 3)
	assert.Equal(t, a.HighestNO2.Key, s.HighestNO2.City)
}

func TestExport_JSON(t *testing.T) {
	a, _ := testAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, NewSummary(a), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 360, decoded["records"], 0)
	assert.Contains(t, decoded, "correlation_matrix")
	assert.Contains(t, decoded, "seasonal")
}

func TestExport_YAML(t *testing.T) {
	a, _ := testAnalysis(t)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, NewSummary(a), FormatYAML))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 360, decoded["records"])
	assert.True(t, strings.Contains(buf.String(), "run_id: "))
}

func TestExport_TextUnsupported(t *testing.T) {
	err := Export(&bytes.Buffer{}, &Summary{}, FormatText)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExport_NaNCorrelation(t *testing.T) {
	s := &Summary{
		Strongest: Correlation{Pair: "PM2.5-NO2", R: Coefficient(math.NaN()), Strength: "Very weak"},
		Matrix:    [][]Coefficient{{1, Coefficient(math.NaN())}},
	}

	var js bytes.Buffer
	require.NoError(t, Export(&js, s, FormatJSON))
	assert.Contains(t, js.String(), `"r": null`)

	var ym bytes.Buffer
	require.NoError(t, Export(&ym, s, FormatYAML))
	assert.Contains(t, ym.String(), "r: null")
}

func TestWrite_Dispatch(t *testing.T) {
	a, _ := testAnalysis(t)

	var text bytes.Buffer
	require.NoError(t, Write(&text, a, FormatText))
	assert.Contains(t, text.String(), "SUMMARY REPORT")

	var js bytes.Buffer
	require.NoError(t, Write(&js, a, FormatJSON))
	assert.True(t, json.Valid(js.Bytes()))
}
