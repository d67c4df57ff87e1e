package observability

import (
	"math"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "air_quality"

// Metrics holds the Prometheus counters, histograms, and gauges for the analysis pipeline.
type Metrics struct {
	RecordsGenerated  prometheus.Counter
	ChartsBuilt       prometheus.Counter
	RecordsPublished  prometheus.Counter
	SinkErrors        *prometheus.CounterVec // labels: sink
	PipelineRunning   prometheus.Gauge
	AnalysisDuration  prometheus.Histogram
	PollutantMean     *prometheus.GaugeVec // labels: pollutant
	CityPollutantMean *prometheus.GaugeVec // labels: city, pollutant
	Correlation       *prometheus.GaugeVec // labels: pair
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_generated_total",
			Help:      "Total synthetic measurements generated.",
		}),
		ChartsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_built_total",
			Help:      "Total chart configurations built for panels.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Total measurements written to the Kafka topic.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Sink failures by sink name.",
		}, []string{"sink"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress, 0 otherwise.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of dataset generation, analysis and chart building, excluding sinks.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PollutantMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pollutant_mean",
			Help:      "Mean concentration across all cities in μg/m³.",
		}, []string{"pollutant"}),
		CityPollutantMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "city_pollutant_mean",
			Help:      "Mean concentration per city in μg/m³.",
		}, []string{"city", "pollutant"}),
		Correlation: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pollutant_correlation",
			Help:      "Pearson correlation coefficient between two pollutants.",
		}, []string{"pair"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsGenerated,
		m.ChartsBuilt,
		m.RecordsPublished,
		m.SinkErrors,
		m.PipelineRunning,
		m.AnalysisDuration,
		m.PollutantMean,
		m.CityPollutantMean,
		m.Correlation,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

// RecordAnalysis publishes the headline aggregates as gauges. NaN
// correlations are skipped so the previous value is not overwritten.
func (m *Metrics) RecordAnalysis(a *analysis.Analysis) {
	for _, p := range domain.Pollutants {
		m.PollutantMean.WithLabelValues(string(p)).Set(a.Means.Get(p))
	}
	recordCities(m.CityPollutantMean, a.CityPM25, domain.PM25)
	recordCities(m.CityPollutantMean, a.CityNO2, domain.NO2)
	for _, pair := range a.Correlations {
		if math.IsNaN(pair.R) {
			continue
		}
		m.Correlation.WithLabelValues(pair.Name()).Set(pair.R)
	}
}

func recordCities(g *prometheus.GaugeVec, r stats.Ranking, p domain.Pollutant) {
	for _, e := range r {
		g.WithLabelValues(e.Key, string(p)).Set(e.Value)
	}
}
