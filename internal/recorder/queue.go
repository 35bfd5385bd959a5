package recorder

import (
	"context"

	"RoastGate/internal/domain/models"
	"RoastGate/pkg/queue"
)

// QueueSink pushes events onto the Redis queue for out-of-process
// aggregation workers.
type QueueSink struct {
	queue *queue.RedisQueue
}

// NewQueueSink creates a Redis-queue-backed event sink.
func NewQueueSink(q *queue.RedisQueue) *QueueSink {
	return &QueueSink{queue: q}
}

// Record enqueues the event.
func (s *QueueSink) Record(ctx context.Context, event *models.Event) error {
	return s.queue.PublishMessage(ctx, event.Name, event)
}

// Close stops the publisher.
func (s *QueueSink) Close() error {
	return s.queue.Stop(context.Background())
}

// Name identifies the sink.
func (s *QueueSink) Name() string { return "redis" }
