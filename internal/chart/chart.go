// Package chart describes the nine-panel figure as plain data. Rendering lives
// in package render; this package only decides what is drawn.
package chart

import (
	"fmt"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
)

// Kind selects how a Config is drawn.
type Kind string

const (
	KindBar           Kind = "bar"
	KindScatter       Kind = "scatter"
	KindLine          Kind = "line"
	KindHeatmap       Kind = "heatmap"
	KindBoxPlot       Kind = "boxplot"
	KindGroupedBar    Kind = "grouped_bar"
	KindHorizontalBar Kind = "horizontal_bar"
	KindPie           Kind = "pie"
)

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Named colors used by individual panels.
const (
	Red        = "#E41A1C"
	Orange     = "#FF8C00"
	Yellow     = "#FFD700"
	LightGreen = "#90EE90"
	Green      = "#228B22"
	Blue       = "#1F77B4"
)

// Series is one named sequence of values. X is empty for categorical charts.
type Series struct {
	Name   string    `json:"name"`
	X      []float64 `json:"x,omitempty"`
	Values []float64 `json:"values"`
	Color  string    `json:"color,omitempty"`
}

// Reference is a horizontal guide line.
type Reference struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Config is a render-ready chart description.
type Config struct {
	Kind          Kind        `json:"kind"`
	Title         string      `json:"title"`
	XAxis         string      `json:"x_axis,omitempty"`
	YAxis         string      `json:"y_axis,omitempty"`
	Categories    []string    `json:"categories,omitempty"`
	Series        []Series    `json:"series,omitempty"`
	Colors        []string    `json:"colors,omitempty"`
	Reference     *Reference  `json:"reference,omitempty"`
	Trend         *stats.Line `json:"trend,omitempty"`
	ValueLabels   bool        `json:"value_labels,omitempty"`
	Matrix        [][]float64 `json:"matrix,omitempty"`
	Distributions [][]float64 `json:"distributions,omitempty"`
	ShowLegend    bool        `json:"show_legend"`
	ShowGrid      bool        `json:"show_grid"`
}

const concentrationAxis = "Concentration (μg/m³)"

// BuildPanel returns the nine panel charts in row-major order.
func BuildPanel(a *analysis.Analysis) []Config {
	return []Config{
		cityBar(a),
		pm25VsNO2(a),
		monthlyTrends(a),
		correlationHeatmap(a),
		cityBoxPlot(a),
		seasonalComparison(a),
		topCities(a),
		categoryPie(a),
		dailyPattern(a),
	}
}

func cityBar(a *analysis.Analysis) Config {
	return Config{
		Kind:       KindBar,
		Title:      "Average PM2.5 Levels by City",
		XAxis:      "Cities",
		YAxis:      "PM2.5 (μg/m³)",
		Categories: a.CityPM25.Keys(),
		Series:     []Series{{Name: domain.PM25.Label(), Values: a.CityPM25.Values(), Color: Red}},
		Reference: &Reference{
			Value: domain.WHOGuidelinePM25,
			Label: fmt.Sprintf("WHO Guideline (%g)", domain.WHOGuidelinePM25),
			Color: Orange,
		},
		ValueLabels: true,
		ShowLegend:  true,
		ShowGrid:    true,
	}
}

func pm25VsNO2(a *analysis.Analysis) Config {
	return Config{
		Kind:     KindScatter,
		Title:    "PM2.5 vs NO2 Relationship",
		XAxis:    "PM2.5 (μg/m³)",
		YAxis:    "NO2 (μg/m³)",
		Series:   []Series{{Name: "Observations", X: a.PM25, Values: a.NO2, Color: Blue}},
		Trend:    a.Trend,
		ShowGrid: true,
	}
}

func monthlyTrends(a *analysis.Analysis) Config {
	months := make([]float64, len(a.Monthly))
	for i, m := range a.Monthly {
		months[i] = float64(m.Month)
	}
	series := make([]Series, len(domain.Pollutants))
	for i, p := range domain.Pollutants {
		values := make([]float64, len(a.Monthly))
		for j, m := range a.Monthly {
			values[j] = m.Get(p)
		}
		series[i] = Series{Name: p.Label(), X: months, Values: values, Color: defaultColors[i]}
	}
	return Config{
		Kind:       KindLine,
		Title:      "Monthly Pollutant Trends",
		XAxis:      "Month",
		YAxis:      concentrationAxis,
		Series:     series,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

func correlationHeatmap(a *analysis.Analysis) Config {
	labels := make([]string, len(domain.Pollutants))
	for i, p := range domain.Pollutants {
		labels[i] = p.Label()
	}
	return Config{
		Kind:       KindHeatmap,
		Title:      "Pollutant Correlation Heatmap",
		Categories: labels,
		Matrix:     a.Matrix,
		ShowLegend: true,
	}
}

func cityBoxPlot(a *analysis.Analysis) Config {
	cities := make([]string, len(a.Distributions))
	dists := make([][]float64, len(a.Distributions))
	for i, d := range a.Distributions {
		cities[i] = string(d.City)
		dists[i] = d.Values
	}
	return Config{
		Kind:          KindBoxPlot,
		Title:         "PM2.5 Distribution by City",
		YAxis:         "PM2.5 (μg/m³)",
		Categories:    cities,
		Distributions: dists,
		ShowGrid:      true,
	}
}

func seasonalComparison(a *analysis.Analysis) Config {
	seasons := make([]string, len(a.Seasonal))
	for i, s := range a.Seasonal {
		seasons[i] = string(s.Season)
	}
	series := make([]Series, len(domain.Pollutants))
	for i, p := range domain.Pollutants {
		values := make([]float64, len(a.Seasonal))
		for j, s := range a.Seasonal {
			values[j] = s.Get(p)
		}
		series[i] = Series{Name: p.Label(), Values: values, Color: defaultColors[i]}
	}
	return Config{
		Kind:       KindGroupedBar,
		Title:      "Seasonal Pollutant Comparison",
		XAxis:      "Season",
		YAxis:      concentrationAxis,
		Categories: seasons,
		Series:     series,
		ShowLegend: true,
		ShowGrid:   true,
	}
}

func topCities(a *analysis.Analysis) Config {
	top := a.TopChart()
	palette := []string{Red, Orange, Yellow, LightGreen, Green}
	return Config{
		Kind:       KindHorizontalBar,
		Title:      fmt.Sprintf("Top %d Most Polluted Cities (PM2.5)", len(top)),
		XAxis:      "PM2.5 (μg/m³)",
		Categories: top.Keys(),
		Series:     []Series{{Name: domain.PM25.Label(), Values: top.Values()}},
		Colors:     palette[:len(top)],
		ShowGrid:   true,
	}
}

func categoryPie(a *analysis.Analysis) Config {
	labels := make([]string, len(a.Categories))
	counts := make([]float64, len(a.Categories))
	for i, c := range a.Categories {
		labels[i] = string(c.Category)
		counts[i] = float64(c.Count)
	}
	return Config{
		Kind:       KindPie,
		Title:      "Air Quality Categories Distribution",
		Categories: labels,
		Series:     []Series{{Name: "Records", Values: counts}},
		Colors:     assignColors(len(labels)),
		ShowLegend: true,
	}
}

func dailyPattern(a *analysis.Analysis) Config {
	hours := make([]float64, len(a.Daily))
	pm25 := make([]float64, len(a.Daily))
	no2 := make([]float64, len(a.Daily))
	for i, r := range a.Daily {
		hours[i] = float64(r.Hour)
		pm25[i] = r.PM25
		no2[i] = r.NO2
	}
	return Config{
		Kind:  KindLine,
		Title: "Daily Pollution Pattern (Sample)",
		XAxis: "Hour of Day",
		YAxis: concentrationAxis,
		Series: []Series{
			{Name: domain.PM25.Label(), X: hours, Values: pm25, Color: defaultColors[0]},
			{Name: domain.NO2.Label(), X: hours, Values: no2, Color: defaultColors[1]},
		},
		ShowLegend: true,
		ShowGrid:   true,
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
