package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/chart"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/generator"
	"github.com/couchcryptid/air-quality-eda/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

// Dataset is one generated batch of measurements plus the hourly profile.
type Dataset struct {
	Records []domain.Measurement
	Seed    uint64
	Daily   []generator.HourlyReading
}

// Source produces the dataset to analyse.
type Source interface {
	Generate(ctx context.Context) (Dataset, error)
}

// Sink receives the finished result.
type Sink interface {
	Name() string
	Load(ctx context.Context, r *Result) error
}

// Result is everything one run produced. It is never mutated after Run
// returns it.
type Result struct {
	Records  []domain.Measurement
	Analysis *analysis.Analysis
	// Panel is nil when charts are disabled.
	Panel []chart.Config
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCharts toggles building the chart panel.
func WithCharts(enabled bool) Option {
	return func(p *Pipeline) { p.charts = enabled }
}

// WithSinkRetry sets how many times a failing sink is attempted and the
// initial backoff between attempts.
func WithSinkRetry(attempts int, backoff time.Duration) Option {
	return func(p *Pipeline) {
		p.attempts = max(attempts, 1)
		p.backoff = backoff
	}
}

// Pipeline orchestrates the generate-analyse-load run.
type Pipeline struct {
	source   Source
	sinks    []Sink
	logger   *slog.Logger
	metrics  *observability.Metrics
	charts   bool
	attempts int
	backoff  time.Duration

	ready  atomic.Bool
	result atomic.Pointer[Result]
}

// New creates a Pipeline with the given stages and observability. Sinks run
// in the order given.
func New(source Source, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		charts:   true,
		attempts: 3,
		backoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has produced a result, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Result returns the latest completed result, or nil before the first run.
func (p *Pipeline) Result() *Result {
	return p.result.Load()
}

// Run generates a dataset, analyses it and hands the result to every sink.
// A failing sink does not stop later sinks; all sink errors are joined into
// the returned error alongside the result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	p.logger.Info("pipeline started", "sinks", len(p.sinks), "charts", p.charts)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	start := time.Now()

	ds, err := p.source.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	p.metrics.RecordsGenerated.Add(float64(len(ds.Records)))

	a, err := analysis.Analyze(ds.Records, ds.Seed, ds.Daily)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordAnalysis(a)

	res := &Result{Records: ds.Records, Analysis: a}
	if p.charts {
		res.Panel = chart.BuildPanel(a)
		p.metrics.ChartsBuilt.Add(float64(len(res.Panel)))
	}
	p.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	p.result.Store(res)
	p.ready.Store(true)

	var errs []error
	for _, s := range p.sinks {
		if err := p.load(ctx, s, res); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			p.logger.Error("sink failed", "sink", s.Name(), "error", err)
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
		}
	}

	p.logger.Info("pipeline finished",
		"run_id", a.RunID,
		"seed", a.Seed,
		"records", a.Records,
		"duration", time.Since(start),
	)
	return res, errors.Join(errs...)
}

// load runs one sink with exponential backoff between attempts.
func (p *Pipeline) load(ctx context.Context, s Sink, res *Result) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = s.Load(ctx, res); err == nil {
			return nil
		}
		if attempt == p.attempts {
			break
		}
		p.logger.Warn("sink attempt failed, retrying",
			"sink", s.Name(), "attempt", attempt, "backoff", backoff, "error", err)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, 5*time.Second)
	}
	return err
}
