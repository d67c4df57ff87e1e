package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSeed(t *testing.T, seed uint64) *Analysis {
	t.Helper()
	g := generator.New(seed)
	records := g.Generate()
	a, err := Analyze(records, g.Seed(), g.DailyProfile())
	require.NoError(t, err)
	return a
}

func TestAnalyze_GeneratedDataset(t *testing.T) {
	frozen := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	a := analyzeSeed(t, 99)

	assert.NotEmpty(t, a.RunID)
	assert.Equal(t, uint64(99), a.Seed)
	assert.Equal(t, frozen, a.GeneratedAt)
	assert.Equal(t, 360, a.Records)
	assert.Equal(t, 10, a.Cities)
	assert.True(t, a.ExceedsWHO, "every draw is above the guideline")

	require.Len(t, a.CityPM25, 10)
	require.Len(t, a.CityNO2, 10)
	assert.Equal(t, a.CityNO2[0], a.HighestNO2)
	for i := 1; i < len(a.CityPM25); i++ {
		assert.GreaterOrEqual(t, a.CityPM25[i-1].Value, a.CityPM25[i].Value)
	}
	assert.Equal(t, a.CityPM25[:3], a.TopPM25)
	assert.Equal(t, a.CityPM25[:5], a.TopChart())

	require.Len(t, a.Correlations, 3)
	assert.Equal(t, "PM2.5-NO2", a.Correlations[0].Name())
	assert.Equal(t, "PM2.5-SO2", a.Correlations[1].Name())
	assert.Equal(t, "NO2-SO2", a.Correlations[2].Name())
	for _, p := range a.Correlations {
		assert.Equal(t, stats.CorrelationStrength(p.R), p.Strength)
		assert.LessOrEqual(t, math.Abs(p.R), math.Abs(a.Strongest.R))
	}

	require.Len(t, a.Monthly, 3)
	require.Len(t, a.Seasonal, 2)
	assert.Equal(t, domain.Winter, a.Seasonal[0].Season)
	assert.Equal(t, 240, a.Seasonal[0].Count)
	assert.Equal(t, domain.Spring, a.Seasonal[1].Season)
	assert.Equal(t, 120, a.Seasonal[1].Count)

	total := 0
	for _, c := range a.Categories {
		total += c.Count
	}
	assert.Equal(t, 360, total)

	require.Len(t, a.Distributions, 10)
	for _, d := range a.Distributions {
		assert.Len(t, d.Values, 36)
	}
	assert.Len(t, a.Daily, 24)
	assert.Len(t, a.PM25, 360)
	assert.Len(t, a.NO2, 360)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	_, err := Analyze(nil, 0, nil)
	assert.ErrorIs(t, err, stats.ErrEmptyInput)
}

func TestAnalyze_SingleRecord(t *testing.T) {
	records := generator.New(3).Generate()[:1]
	a, err := Analyze(records, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Records)
	assert.Equal(t, 1, a.Cities)
	assert.Nil(t, a.Trend)
	assert.InDelta(t, records[0].PM25, a.Means.PM25, 1e-9)
}

func TestAnalyze_MeanIndependentOfRunIdentity(t *testing.T) {
	a := analyzeSeed(t, 7)
	b := analyzeSeed(t, 7)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Means, b.Means)
	assert.Equal(t, a.CityPM25, b.CityPM25)
}

func TestStrongest(t *testing.T) {
	pairs := []Pair{
		{A: domain.PM25, B: domain.NO2, R: math.NaN()},
		{A: domain.PM25, B: domain.SO2, R: -0.4},
		{A: domain.NO2, B: domain.SO2, R: 0.2},
	}
	assert.Equal(t, pairs[1], strongest(pairs))
	assert.Equal(t, Pair{}, strongest(nil))
}
