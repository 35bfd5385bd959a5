package recorder

import (
	"context"

	"RoastGate/internal/domain/models"
	"RoastGate/pkg/logger"
)

// LogSink writes events to the structured log. It is the default sink
// for deployments without an external pipeline.
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a log-backed event sink.
func NewLogSink(lgr *logger.Logger) *LogSink {
	return &LogSink{logger: lgr}
}

// Record logs the event.
func (s *LogSink) Record(ctx context.Context, event *models.Event) error {
	s.logger.Info("analytics event",
		logger.String("event", event.Name),
		logger.String("session_id", event.SessionID),
		logger.Any("payload", event.Fields))
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }

// Name identifies the sink.
func (s *LogSink) Name() string { return "log" }
