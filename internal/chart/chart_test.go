package chart

import (
	"testing"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnalysis(t *testing.T) *analysis.Analysis {
	t.Helper()
	g := generator.New(17)
	a, err := analysis.Analyze(g.Generate(), g.Seed(), g.DailyProfile())
	require.NoError(t, err)
	return a
}

func TestBuildPanel_Kinds(t *testing.T) {
	panel := BuildPanel(testAnalysis(t))
	require.Len(t, panel, 9)

	want := []Kind{
		KindBar, KindScatter, KindLine,
		KindHeatmap, KindBoxPlot, KindGroupedBar,
		KindHorizontalBar, KindPie, KindLine,
	}
	for i, c := range panel {
		assert.Equal(t, want[i], c.Kind, "panel %d (%s)", i+1, c.Title)
		assert.NotEmpty(t, c.Title)
	}
}

func TestBuildPanel_CityBar(t *testing.T) {
	a := testAnalysis(t)
	c := BuildPanel(a)[0]

	assert.Equal(t, a.CityPM25.Keys(), c.Categories)
	require.Len(t, c.Series, 1)
	assert.Equal(t, a.CityPM25.Values(), c.Series[0].Values)
	require.NotNil(t, c.Reference)
	assert.InDelta(t, domain.WHOGuidelinePM25, c.Reference.Value, 1e-9)
	assert.Equal(t, "WHO Guideline (15)", c.Reference.Label)
	assert.True(t, c.ValueLabels)
}

func TestBuildPanel_SeriesShapes(t *testing.T) {
	a := testAnalysis(t)
	panel := BuildPanel(a)

	scatter := panel[1]
	require.NotNil(t, scatter.Trend)
	assert.Len(t, scatter.Series[0].X, 360)
	assert.Len(t, scatter.Series[0].Values, 360)

	monthly := panel[2]
	require.Len(t, monthly.Series, 3)
	assert.Equal(t, []float64{1, 2, 3}, monthly.Series[0].X)

	heat := panel[3]
	assert.Equal(t, []string{"PM2.5", "NO2", "SO2"}, heat.Categories)
	assert.Len(t, heat.Matrix, 3)

	box := panel[4]
	assert.Len(t, box.Categories, 10)
	assert.Len(t, box.Distributions, 10)

	seasonal := panel[5]
	assert.Equal(t, []string{"Winter", "Spring"}, seasonal.Categories)
	for _, s := range seasonal.Series {
		assert.Len(t, s.Values, 2)
	}

	top := panel[6]
	assert.Equal(t, "Top 5 Most Polluted Cities (PM2.5)", top.Title)
	assert.Len(t, top.Categories, 5)
	assert.Equal(t, []string{Red, Orange, Yellow, LightGreen, Green}, top.Colors)

	pie := panel[7]
	total := 0.0
	for _, v := range pie.Series[0].Values {
		total += v
	}
	assert.InDelta(t, 360.0, total, 1e-9)
	assert.Len(t, pie.Colors, len(pie.Categories))

	daily := panel[8]
	require.Len(t, daily.Series, 2)
	assert.Len(t, daily.Series[0].X, 24)
}
