package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"gopkg.in/yaml.v3"
)

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ErrUnsupportedFormat is returned for a format outside Formats, or for text
// where only structured output is possible.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ParseFormat validates s case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Ext is the file extension used for summaries in this format.
func (f Format) Ext() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Coefficient is a correlation value that serialises NaN as null.
type Coefficient float64

// MarshalJSON implements json.Marshaler.
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(c), 'f', -1, 64)), nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Coefficient) MarshalYAML() (any, error) {
	if math.IsNaN(float64(c)) {
		return nil, nil
	}
	return float64(c), nil
}

// Correlation is a serialisable pollutant pair.
type Correlation struct {
	Pair     string      `json:"pair" yaml:"pair"`
	R        Coefficient `json:"r" yaml:"r"`
	Strength string      `json:"strength" yaml:"strength"`
}

// CityValue is a city and one of its pollutant means.
type CityValue struct {
	City  string  `json:"city" yaml:"city"`
	Value float64 `json:"value" yaml:"value"`
}

// Summary is the exported form of an analysis.
type Summary struct {
	RunID         string                `json:"run_id" yaml:"run_id"`
	Seed          uint64                `json:"seed" yaml:"seed"`
	GeneratedAt   time.Time             `json:"generated_at" yaml:"generated_at"`
	Records       int                   `json:"records" yaml:"records"`
	Cities        int                   `json:"cities" yaml:"cities"`
	Means         stats.PollutantMeans  `json:"means" yaml:"means"`
	ExceedsWHO    bool                  `json:"exceeds_who_guideline" yaml:"exceeds_who_guideline"`
	HighestNO2    CityValue             `json:"highest_no2" yaml:"highest_no2"`
	TopPM25       []CityValue           `json:"top_pm25" yaml:"top_pm25"`
	Correlations  []Correlation         `json:"correlations" yaml:"correlations"`
	Strongest     Correlation           `json:"strongest_correlation" yaml:"strongest_correlation"`
	Matrix        [][]Coefficient       `json:"correlation_matrix" yaml:"correlation_matrix"`
	Seasonal      []stats.SeasonMeans   `json:"seasonal" yaml:"seasonal"`
	Monthly       []stats.MonthMeans    `json:"monthly" yaml:"monthly"`
	Categories    []stats.CategoryCount `json:"categories" yaml:"categories"`
	UnhealthyPM25 int                   `json:"unhealthy_pm25_records" yaml:"unhealthy_pm25_records"`
	HighNO2       int                   `json:"high_no2_records" yaml:"high_no2_records"`
}

// NewSummary flattens an analysis into its exported form.
func NewSummary(a *analysis.Analysis) *Summary {
	s := &Summary{
		RunID:         a.RunID,
		Seed:          a.Seed,
		GeneratedAt:   a.GeneratedAt,
		Records:       a.Records,
		Cities:        a.Cities,
		Means:         a.Means,
		ExceedsWHO:    a.ExceedsWHO,
		HighestNO2:    CityValue{City: a.HighestNO2.Key, Value: a.HighestNO2.Value},
		Strongest:     correlation(a.Strongest),
		Seasonal:      a.Seasonal,
		Monthly:       a.Monthly,
		Categories:    a.Categories,
		UnhealthyPM25: a.UnhealthyPM25,
		HighNO2:       a.HighNO2,
	}
	for _, e := range a.TopPM25 {
		s.TopPM25 = append(s.TopPM25, CityValue{City: e.Key, Value: e.Value})
	}
	for _, p := range a.Correlations {
		s.Correlations = append(s.Correlations, correlation(p))
	}
	for _, row := range a.Matrix {
		out := make([]Coefficient, len(row))
		for i, v := range row {
			out[i] = Coefficient(v)
		}
		s.Matrix = append(s.Matrix, out)
	}
	return s
}

func correlation(p analysis.Pair) Correlation {
	return Correlation{Pair: p.Name(), R: Coefficient(p.R), Strength: p.Strength}
}

// Export writes s as JSON or YAML.
func Export(w io.Writer, s *Summary, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode summary json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode summary yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flush summary yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// Write renders a in the given format: the text report for FormatText and
// the exported summary otherwise.
func Write(w io.Writer, a *analysis.Analysis, format Format) error {
	if format == FormatText {
		return WriteText(w, a)
	}
	return Export(w, NewSummary(a), format)
}
