package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-eda/internal/analysis"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/observability"
	"github.com/couchcryptid/air-quality-eda/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var sample = domain.Measurement{
	City: "Delhi",
	Date: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
	PM25: 185.4,
	NO2:  92.1,
	SO2:  30.2,
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(sample, "run-1")
	require.NoError(t, err)

	assert.Equal(t, []byte("Delhi"), msg.Key)
	var decoded domain.Measurement
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, sample.City, decoded.City)
	assert.True(t, sample.Date.Equal(decoded.Date))
	assert.InDelta(t, sample.PM25, decoded.PM25, 1e-9)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "run_id", msg.Headers[0].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[0].Value)
	assert.Equal(t, "season", msg.Headers[1].Key)
	assert.Equal(t, []byte("Winter"), msg.Headers[1].Value)
	assert.Equal(t, "category", msg.Headers[2].Key)
	assert.Equal(t, []byte("Very Unhealthy"), msg.Headers[2].Value)
}

func TestWriter_Load(t *testing.T) {
	fw := &fakeWriter{}
	metrics, _ := observability.NewMetricsForTesting()
	w := &Writer{writer: fw, logger: slog.Default(), metrics: metrics}

	res := &pipeline.Result{
		Records:  []domain.Measurement{sample, sample},
		Analysis: &analysis.Analysis{RunID: "run-2"},
	}
	require.NoError(t, w.Load(context.Background(), res))
	assert.Len(t, fw.msgs, 2)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.RecordsPublished), 1e-9)
	assert.Equal(t, "kafka", w.Name())

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_LoadEmpty(t *testing.T) {
	fw := &fakeWriter{err: errors.New("should not be called")}
	w := &Writer{writer: fw, logger: slog.Default()}
	require.NoError(t, w.Load(context.Background(), &pipeline.Result{Analysis: &analysis.Analysis{}}))
}

func TestWriter_LoadError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	w := &Writer{writer: fw, logger: slog.Default()}
	res := &pipeline.Result{Records: []domain.Measurement{sample}, Analysis: &analysis.Analysis{}}

	err := w.Load(context.Background(), res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
