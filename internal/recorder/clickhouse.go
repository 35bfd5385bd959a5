package recorder

import (
	"context"
	"encoding/json"
	"fmt"

	"RoastGate/internal/domain/models"
	pkgch "RoastGate/pkg/clickhouse"
)

const eventsSchema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	name       String,
	session_id String,
	ts         DateTime64(3),
	payload    String
) ENGINE = MergeTree()
ORDER BY (ts, session_id)`

// ClickHouseSink appends events to an analytics_events table. The raw
// payload travels as a JSON string column so schema changes upstream
// never break inserts.
type ClickHouseSink struct {
	client *pkgch.Client
}

// NewClickHouseSink creates the sink and ensures the table exists.
func NewClickHouseSink(ctx context.Context, client *pkgch.Client) (*ClickHouseSink, error) {
	if err := client.InitSchema(ctx, []string{eventsSchema}); err != nil {
		return nil, err
	}
	return &ClickHouseSink{client: client}, nil
}

// Record inserts the event.
func (s *ClickHouseSink) Record(ctx context.Context, event *models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.client.DB().ExecContext(ctx,
		"INSERT INTO analytics_events (name, session_id, ts, payload) VALUES (?, ?, ?, ?)",
		event.Name, event.SessionID, event.Timestamp, string(payload))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *ClickHouseSink) Close() error { return s.client.Close() }

// Name identifies the sink.
func (s *ClickHouseSink) Name() string { return "clickhouse" }
