package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wildfire-dashboard/internal/config"
	"github.com/couchcryptid/wildfire-dashboard/internal/pipeline"
)

// Writer publishes rendered dashboard pages to a Kafka topic.
// It implements pipeline.SnapshotPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSnapshotTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes a rendered page and writes it keyed by its snapshot id.
func (w *Writer) Publish(ctx context.Context, page *pipeline.Page) error {
	msg, err := serializeToMessage(page)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", page.SnapshotID, err)
	}
	w.logger.Debug("snapshot published", "page", page.ID, "snapshot", page.SnapshotID, "bytes", len(msg.Value))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a rendered page into a Kafka message.
func serializeToMessage(page *pipeline.Page) (kafkago.Message, error) {
	data, err := json.Marshal(page)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(page.SnapshotID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "page", Value: []byte(page.ID)},
			{Key: "rendered_at", Value: []byte(page.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
