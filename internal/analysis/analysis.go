// Package analysis composes the statistics into the named aggregates that the
// report, charts and HTTP API consume.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/google/uuid"
)

// Pair is the correlation between two pollutants.
type Pair struct {
	A        domain.Pollutant `json:"a" yaml:"a"`
	B        domain.Pollutant `json:"b" yaml:"b"`
	R        float64          `json:"r" yaml:"r"`
	Strength string           `json:"strength" yaml:"strength"`
}

// Name renders the pair as "PM2.5-NO2".
func (p Pair) Name() string {
	return p.A.Label() + "-" + p.B.Label()
}

// CityDistribution holds the raw PM2.5 values of one city.
type CityDistribution struct {
	City   domain.City `json:"city" yaml:"city"`
	Values []float64   `json:"values" yaml:"values"`
}

// Analysis is the full set of aggregates derived from one dataset.
type Analysis struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Seed        uint64    `json:"seed" yaml:"seed"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Records int `json:"records" yaml:"records"`
	Cities  int `json:"cities" yaml:"cities"`

	Means         stats.PollutantMeans      `json:"means" yaml:"means"`
	ExceedsWHO    bool                      `json:"exceeds_who" yaml:"exceeds_who"`
	CityNO2       stats.Ranking             `json:"city_no2" yaml:"city_no2"`
	CityPM25      stats.Ranking             `json:"city_pm25" yaml:"city_pm25"`
	HighestNO2    stats.Entry               `json:"highest_no2" yaml:"highest_no2"`
	TopPM25       stats.Ranking             `json:"top_pm25" yaml:"top_pm25"`
	Correlations  []Pair                    `json:"correlations" yaml:"correlations"`
	Strongest     Pair                      `json:"strongest" yaml:"strongest"`
	Matrix        [][]float64               `json:"matrix" yaml:"matrix"`
	Monthly       []stats.MonthMeans        `json:"monthly" yaml:"monthly"`
	Seasonal      []stats.SeasonMeans       `json:"seasonal" yaml:"seasonal"`
	Categories    []stats.CategoryCount     `json:"categories" yaml:"categories"`
	UnhealthyPM25 int                       `json:"unhealthy_pm25" yaml:"unhealthy_pm25"`
	HighNO2       int                       `json:"high_no2" yaml:"high_no2"`
	Trend         *stats.Line               `json:"trend,omitempty" yaml:"trend,omitempty"`
	Distributions []CityDistribution        `json:"-" yaml:"-"`
	Daily         []generator.HourlyReading `json:"daily" yaml:"daily"`

	// Scatter inputs, kept for chart building.
	PM25 []float64 `json:"-" yaml:"-"`
	NO2  []float64 `json:"-" yaml:"-"`
}

// TopCities is the number of cities listed in the report ranking.
const TopCities = 3

// TopChartCities is the number of cities drawn in the ranking chart.
const TopChartCities = 5

// correlatedPairs lists the pollutant pairs reported individually.
var correlatedPairs = [][2]domain.Pollutant{
	{domain.PM25, domain.NO2},
	{domain.PM25, domain.SO2},
	{domain.NO2, domain.SO2},
}

// Analyze computes every aggregate over records. seed and daily are carried
// through for reporting.
func Analyze(records []domain.Measurement, seed uint64, daily []generator.HourlyReading) (*Analysis, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("analyze: %w", stats.ErrEmptyInput)
	}

	means, err := stats.MeansOf(records)
	if err != nil {
		return nil, err
	}

	cityNO2, err := stats.GroupMean(records, domain.NO2, stats.ByCity)
	if err != nil {
		return nil, err
	}
	cityNO2 = stats.SortDescending(cityNO2)

	cityPM25, err := stats.GroupMean(records, domain.PM25, stats.ByCity)
	if err != nil {
		return nil, err
	}
	cityPM25 = stats.SortDescending(cityPM25)

	pm25 := stats.Values(records, domain.PM25)
	no2 := stats.Values(records, domain.NO2)
	// A single observation has no trend; the scatter is drawn without one.
	var trend *stats.Line
	if line, err := stats.LinearFit(pm25, no2); err == nil {
		trend = &line
	} else if !errors.Is(err, stats.ErrTooFewPoints) {
		return nil, err
	}

	a := &Analysis{
		RunID:         uuid.NewString(),
		Seed:          seed,
		GeneratedAt:   domain.Now(),
		Records:       len(records),
		Cities:        len(cityPM25),
		Means:         means,
		ExceedsWHO:    means.PM25 > domain.WHOGuidelinePM25,
		CityNO2:       cityNO2,
		CityPM25:      cityPM25,
		HighestNO2:    cityNO2[0],
		TopPM25:       stats.TopN(cityPM25, TopCities),
		Matrix:        stats.CorrelationMatrix(records, domain.Pollutants),
		Monthly:       stats.MonthlyMeans(records),
		Seasonal:      stats.SeasonalAggregate(records, domain.CanonicalSeasons),
		Categories:    stats.CategoryCounts(records),
		UnhealthyPM25: stats.CountAbove(records, domain.PM25, domain.UnhealthyPM25),
		HighNO2:       stats.CountAbove(records, domain.NO2, domain.HighNO2),
		Trend:         trend,
		Daily:         daily,
		PM25:          pm25,
		NO2:           no2,
	}

	for _, pair := range correlatedPairs {
		r := stats.Correlation(records, pair[0], pair[1])
		a.Correlations = append(a.Correlations, Pair{
			A:        pair[0],
			B:        pair[1],
			R:        r,
			Strength: stats.CorrelationStrength(r),
		})
	}
	a.Strongest = strongest(a.Correlations)

	for _, g := range stats.GroupValues(records, domain.PM25, stats.ByCity) {
		a.Distributions = append(a.Distributions, CityDistribution{City: domain.City(g.Key), Values: g.Values})
	}

	return a, nil
}

// strongest picks the pair with the largest |r|. NaN coefficients never win;
// the first pair is returned when every coefficient is NaN.
func strongest(pairs []Pair) Pair {
	if len(pairs) == 0 {
		return Pair{}
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if math.IsNaN(p.R) {
			continue
		}
		if math.IsNaN(best.R) || math.Abs(p.R) > math.Abs(best.R) {
			best = p
		}
	}
	return best
}

// TopChart returns the cities drawn in the ranking chart.
func (a *Analysis) TopChart() stats.Ranking {
	return stats.TopN(a.CityPM25, TopChartCities)
}
