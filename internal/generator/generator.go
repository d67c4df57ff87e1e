// Package generator builds the synthetic measurement table.
package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"gonum.org/v1/gonum/stat/distuv"
)

// PointsPerCity is the number of observations generated for each city.
const PointsPerCity = 36

// Rows is the size of a generated table.
const Rows = len(domain.Cities) * PointsPerCity

// SampleDates are the observation dates. Each date covers one block of
// len(domain.Cities) consecutive rows and the cycle repeats until the table
// is full.
var SampleDates = []time.Time{
	time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC),
	time.Date(2023, time.February, 15, 0, 0, 0, 0, time.UTC),
	time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
}

// Half-open integer ranges for the raw draws.
type drawRange struct{ lo, hi int }

var (
	pm25Range = drawRange{50, 300}
	no2Range  = drawRange{20, 150}
	so2Range  = drawRange{10, 80}
)

func (r drawRange) draw(rng *rand.Rand) float64 {
	return float64(r.lo + rng.IntN(r.hi-r.lo))
}

// Bounds returns the half-open range [lo, hi) of raw integer draws for p,
// before any seasonal multiplier.
func Bounds(p domain.Pollutant) (lo, hi float64) {
	var r drawRange
	switch p {
	case domain.PM25:
		r = pm25Range
	case domain.NO2:
		r = no2Range
	case domain.SO2:
		r = so2Range
	}
	return float64(r.lo), float64(r.hi)
}

// Adjustment scales PM2.5 and NO2 for records whose month is listed.
type Adjustment struct {
	Months []int
	PM25   float64
	NO2    float64
}

// SeasonalAdjustments holds the multipliers applied after the raw draw.
// Winter inflates particulates and NO2; spring dampens them.
var SeasonalAdjustments = []Adjustment{
	{Months: []int{12, 1, 2}, PM25: 1.5, NO2: 1.3},
	{Months: []int{3, 4, 5}, PM25: 0.8, NO2: 0.9},
}

// Generator draws measurements from a seeded source.
type Generator struct {
	seed uint64
	rng  *rand.Rand
}

// New returns a Generator whose output is fully determined by seed.
func New(seed uint64) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Generate draws a full table and applies the seasonal adjustments once.
// Columns are drawn one after another: all PM2.5 values, then NO2, then SO2.
func (g *Generator) Generate() []domain.Measurement {
	records := make([]domain.Measurement, Rows)
	for i := range records {
		records[i].City = domain.Cities[i%len(domain.Cities)]
		records[i].Date = SampleDates[(i/len(domain.Cities))%len(SampleDates)]
	}
	for i := range records {
		records[i].PM25 = pm25Range.draw(g.rng)
	}
	for i := range records {
		records[i].NO2 = no2Range.draw(g.rng)
	}
	for i := range records {
		records[i].SO2 = so2Range.draw(g.rng)
	}

	ApplySeasonalAdjustments(records)
	return records
}

// ApplySeasonalAdjustments multiplies PM2.5 and NO2 in place for every record
// matched by SeasonalAdjustments. Calling it twice compounds the effect.
func ApplySeasonalAdjustments(records []domain.Measurement) {
	for _, adj := range SeasonalAdjustments {
		for i := range records {
			if !containsMonth(adj.Months, records[i].Month()) {
				continue
			}
			records[i].PM25 *= adj.PM25
			records[i].NO2 *= adj.NO2
		}
	}
}

// Multiplier is the combined seasonal factor applied to p in month.
func Multiplier(p domain.Pollutant, month int) float64 {
	m := 1.0
	for _, adj := range SeasonalAdjustments {
		if !containsMonth(adj.Months, month) {
			continue
		}
		switch p {
		case domain.PM25:
			m *= adj.PM25
		case domain.NO2:
			m *= adj.NO2
		}
	}
	return m
}

func containsMonth(months []int, m int) bool {
	for _, v := range months {
		if v == m {
			return true
		}
	}
	return false
}

// HourlyReading is one point of the simulated 24-hour pattern.
type HourlyReading struct {
	Hour int     `json:"hour" yaml:"hour"`
	PM25 float64 `json:"pm25" yaml:"pm25"`
	NO2  float64 `json:"no2" yaml:"no2"`
}

// DailyProfile simulates a diurnal cycle: a sine wave per pollutant with
// gaussian noise. PM2.5 peaks around noon, NO2 two hours later.
func (g *Generator) DailyProfile() []HourlyReading {
	pmNoise := distuv.Normal{Mu: 0, Sigma: 5, Src: g.rng}
	no2Noise := distuv.Normal{Mu: 0, Sigma: 3, Src: g.rng}

	out := make([]HourlyReading, 24)
	for h := range out {
		hf := float64(h)
		out[h] = HourlyReading{
			Hour: h,
			PM25: 80 + 20*math.Sin((hf-6)*math.Pi/12) + pmNoise.Rand(),
			NO2:  45 + 15*math.Sin((hf-8)*math.Pi/12) + no2Noise.Rand(),
		}
	}
	return out
}
