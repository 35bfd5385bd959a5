package repository

import (
	"context"

	"RoastGate/internal/domain/models"
)

// EventSink persists analytics events for out-of-process aggregation.
// Implementations must be safe for concurrent use.
type EventSink interface {
	Record(ctx context.Context, event *models.Event) error
	Close() error
	Name() string
}

// SnapshotSource provides the aggregate analytics view. Implementations
// return a usable snapshot even when the backing store is unreachable.
type SnapshotSource interface {
	Fetch(ctx context.Context) *models.Snapshot
}

// Metrics records gateway-level counters.
type Metrics interface {
	RecordUpstream(endpoint, result string, seconds float64)
	RecordFallback()
	RecordRateLimited()
	RecordEvent(result string)
}
