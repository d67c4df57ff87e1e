package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/air-quality-eda/internal/config"
	"github.com/couchcryptid/air-quality-eda/internal/domain"
	"github.com/couchcryptid/air-quality-eda/internal/observability"
	"github.com/couchcryptid/air-quality-eda/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes every measurement of a run to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Name implements pipeline.Sink.
func (w *Writer) Name() string { return "kafka" }

// Load serializes and publishes all measurements in a single WriteMessages
// call. Messages are keyed by city so each city stays on one partition.
func (w *Writer) Load(ctx context.Context, r *pipeline.Result) error {
	if len(r.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(r.Records))
	for i := range r.Records {
		msg, err := serializeToMessage(r.Records[i], r.Analysis.RunID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish measurements: %w", err)
	}
	if w.metrics != nil {
		w.metrics.RecordsPublished.Add(float64(len(msgs)))
	}
	w.logger.Info("measurements published", "count", len(msgs), "run_id", r.Analysis.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Measurement into a Kafka message.
func serializeToMessage(m domain.Measurement, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize measurement: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(m.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "season", Value: []byte(m.Season())},
			{Key: "category", Value: []byte(m.Category())},
		},
	}, nil
}
