package recorder

import (
	"context"

	"RoastGate/internal/domain/models"
	pkgkafka "RoastGate/pkg/kafka"
)

// KafkaSink publishes events to a Kafka topic, keyed by session so one
// visitor's events land on one partition in order.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSink creates a Kafka-backed event sink.
func NewKafkaSink(producer *pkgkafka.Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

// Record publishes the event.
func (s *KafkaSink) Record(ctx context.Context, event *models.Event) error {
	var key []byte
	if event.SessionID != "" {
		key = []byte(event.SessionID)
	}
	return s.producer.Publish(ctx, s.topic, key, event)
}

// Close closes the underlying producer.
func (s *KafkaSink) Close() error { return s.producer.Close() }

// Name identifies the sink.
func (s *KafkaSink) Name() string { return "kafka" }
