// Package stats implements the aggregation and correlation functions used by
// the analysis. Every function is pure: it reads the record slice and never
// mutates it.
package stats

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyInput is returned when an aggregate is requested over zero records.
var ErrEmptyInput = errors.New("empty input")

// ErrTooFewPoints is returned when a fit needs more samples than it was given.
var ErrTooFewPoints = errors.New("too few points")

// KeyFunc derives a grouping key from a record.
type KeyFunc func(domain.Measurement) string

// Grouping keys.
var (
	ByCity  KeyFunc = func(m domain.Measurement) string { return string(m.City) }
	ByMonth KeyFunc = func(m domain.Measurement) string { return strconv.Itoa(m.Month()) }
)

// Values extracts one pollutant column.
func Values(records []domain.Measurement, p domain.Pollutant) []float64 {
	out := make([]float64, len(records))
	for i := range records {
		out[i] = p.Value(records[i])
	}
	return out
}

// Mean returns the arithmetic mean of a pollutant across all records.
func Mean(records []domain.Measurement, p domain.Pollutant) (float64, error) {
	if len(records) == 0 {
		return math.NaN(), fmt.Errorf("mean %s: %w", p, ErrEmptyInput)
	}
	return stat.Mean(Values(records, p), nil), nil
}

// PollutantMeans holds the mean of every pollutant over one record subset.
type PollutantMeans struct {
	PM25 float64 `json:"pm25" yaml:"pm25"`
	NO2  float64 `json:"no2" yaml:"no2"`
	SO2  float64 `json:"so2" yaml:"so2"`
}

// Get returns the mean for p.
func (m PollutantMeans) Get(p domain.Pollutant) float64 {
	switch p {
	case domain.PM25:
		return m.PM25
	case domain.NO2:
		return m.NO2
	case domain.SO2:
		return m.SO2
	default:
		return math.NaN()
	}
}

// MeansOf averages all three pollutants.
func MeansOf(records []domain.Measurement) (PollutantMeans, error) {
	if len(records) == 0 {
		return PollutantMeans{}, fmt.Errorf("pollutant means: %w", ErrEmptyInput)
	}
	return PollutantMeans{
		PM25: stat.Mean(Values(records, domain.PM25), nil),
		NO2:  stat.Mean(Values(records, domain.NO2), nil),
		SO2:  stat.Mean(Values(records, domain.SO2), nil),
	}, nil
}

// Entry is one grouped mean.
type Entry struct {
	Key   string  `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
	Count int     `json:"count" yaml:"count"`
}

// Ranking is an ordered list of grouped means.
type Ranking []Entry

// Keys returns the entry keys in order.
func (r Ranking) Keys() []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.Key
	}
	return out
}

// Values returns the entry values in order.
func (r Ranking) Values() []float64 {
	out := make([]float64, len(r))
	for i, e := range r {
		out[i] = e.Value
	}
	return out
}

// Group is the raw values of one grouping key.
type Group struct {
	Key    string
	Values []float64
}

// GroupValues splits a pollutant column by key, preserving the order in
// which keys first appear.
func GroupValues(records []domain.Measurement, p domain.Pollutant, by KeyFunc) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		k := by(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Values = append(groups[i].Values, p.Value(r))
	}
	return groups
}

// GroupMean averages a pollutant per group key. Entries follow first
// appearance order; call SortDescending to rank them.
func GroupMean(records []domain.Measurement, p domain.Pollutant, by KeyFunc) (Ranking, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("group mean %s: %w", p, ErrEmptyInput)
	}
	groups := GroupValues(records, p, by)
	out := make(Ranking, len(groups))
	for i, g := range groups {
		out[i] = Entry{Key: g.Key, Value: stat.Mean(g.Values, nil), Count: len(g.Values)}
	}
	return out, nil
}

// SortDescending orders a ranking by value, highest first. Ties fall back to
// the key so the result is stable across runs.
func SortDescending(r Ranking) Ranking {
	out := slices.Clone(r)
	slices.SortStableFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// TopN returns the first n entries of an already sorted ranking.
func TopN(r Ranking, n int) Ranking {
	n = max(0, min(n, len(r)))
	return slices.Clone(r[:n])
}

// Correlation returns the Pearson coefficient between two pollutants. It is
// NaN when either column is constant or fewer than two records are given.
func Correlation(records []domain.Measurement, a, b domain.Pollutant) float64 {
	return Pearson(Values(records, a), Values(records, b))
}

// Pearson computes the correlation of two equal-length samples, clamped to
// [-1, 1].
func Pearson(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return math.NaN()
	}
	if constant(xs) || constant(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

func constant(xs []float64) bool {
	return floats.Min(xs) == floats.Max(xs)
}

// CorrelationMatrix returns the symmetric matrix of pairwise coefficients.
func CorrelationMatrix(records []domain.Measurement, ps []domain.Pollutant) [][]float64 {
	cols := make([][]float64, len(ps))
	for i, p := range ps {
		cols[i] = Values(records, p)
	}
	m := make([][]float64, len(ps))
	for i := range ps {
		m[i] = make([]float64, len(ps))
	}
	for i := range ps {
		for j := i; j < len(ps); j++ {
			r := Pearson(cols[i], cols[j])
			m[i][j] = r
			m[j][i] = r
		}
	}
	return m
}

// CorrelationStrength labels a coefficient by its magnitude. Each tier
// requires a strictly greater magnitude, so exactly 0.7 is Moderate.
func CorrelationStrength(v float64) string {
	a := math.Abs(v)
	switch {
	case a > 0.7:
		return "Strong"
	case a > 0.5:
		return "Moderate"
	case a > 0.3:
		return "Weak"
	default:
		return "Very weak"
	}
}

// SeasonMeans are the pollutant means of one season bucket.
type SeasonMeans struct {
	PollutantMeans `yaml:",inline"`

	Season domain.Season `json:"season" yaml:"season"`
	Label  string        `json:"label" yaml:"label"`
	Count  int           `json:"count" yaml:"count"`
}

// SeasonalAggregate averages every pollutant per season in definition order.
// Seasons without matching records are omitted.
func SeasonalAggregate(records []domain.Measurement, seasons []domain.SeasonDefinition) []SeasonMeans {
	var out []SeasonMeans
	for _, def := range seasons {
		var subset []domain.Measurement
		for _, r := range records {
			if def.Contains(r.Month()) {
				subset = append(subset, r)
			}
		}
		means, err := MeansOf(subset)
		if err != nil {
			continue
		}
		out = append(out, SeasonMeans{
			Season:         def.Season,
			Label:          def.Label,
			Count:          len(subset),
			PollutantMeans: means,
		})
	}
	return out
}

// MonthMeans are the pollutant means of one calendar month.
type MonthMeans struct {
	PollutantMeans `yaml:",inline"`

	Month int `json:"month" yaml:"month"`
	Count int `json:"count" yaml:"count"`
}

// MonthlyMeans averages every pollutant per month, ordered by month.
func MonthlyMeans(records []domain.Measurement) []MonthMeans {
	byMonth := make(map[int][]domain.Measurement)
	for _, r := range records {
		byMonth[r.Month()] = append(byMonth[r.Month()], r)
	}
	months := make([]int, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	slices.Sort(months)

	out := make([]MonthMeans, 0, len(months))
	for _, m := range months {
		means, _ := MeansOf(byMonth[m])
		out = append(out, MonthMeans{Month: m, Count: len(byMonth[m]), PollutantMeans: means})
	}
	return out
}

// CategoryCount is the number of records in one pollution band.
type CategoryCount struct {
	Category domain.Category `json:"category" yaml:"category"`
	Count    int             `json:"count" yaml:"count"`
}

// CategoryCounts tallies records per PM2.5 band, most frequent first. Bands
// with no records are omitted; ties keep ordinal order.
func CategoryCounts(records []domain.Measurement) []CategoryCount {
	counts := make(map[domain.Category]int)
	for _, r := range records {
		counts[r.Category()]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, c := range domain.Categories {
		if n := counts[c]; n > 0 {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	slices.SortStableFunc(out, func(a, b CategoryCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// CountAbove counts records whose pollutant value is strictly above threshold.
func CountAbove(records []domain.Measurement, p domain.Pollutant, threshold float64) int {
	n := 0
	for _, r := range records {
		if p.Value(r) > threshold {
			n++
		}
	}
	return n
}

// Line is a first-order least-squares fit y = Intercept + Slope*x.
type Line struct {
	Intercept float64 `json:"intercept" yaml:"intercept"`
	Slope     float64 `json:"slope" yaml:"slope"`
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// LinearFit fits a straight line through the samples.
func LinearFit(xs, ys []float64) (Line, error) {
	switch {
	case len(xs) != len(ys):
		return Line{}, fmt.Errorf("linear fit: %d x values but %d y values", len(xs), len(ys))
	case len(xs) == 0:
		return Line{}, fmt.Errorf("linear fit: %w", ErrEmptyInput)
	case len(xs) < 2:
		return Line{}, fmt.Errorf("linear fit over %d point: %w", len(xs), ErrTooFewPoints)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Line{Intercept: alpha, Slope: beta}, nil
}
