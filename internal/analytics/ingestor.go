package analytics

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"RoastGate/internal/domain/models"
	"RoastGate/internal/domain/repository"
	"RoastGate/pkg/logger"
)

var (
	// ErrUnauthorized means the bearer credential did not match.
	ErrUnauthorized = errors.New("invalid analytics credentials")

	// ErrBadEvent means the payload was not a JSON object.
	ErrBadEvent = errors.New("event payload must be a JSON object")
)

// RecordingError wraps a sink failure so handlers can map it to a
// server-side status.
type RecordingError struct {
	Err error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("record event: %v", e.Err)
}

func (e *RecordingError) Unwrap() error { return e.Err }

// Ingestor authenticates and persists client-reported usage events.
type Ingestor struct {
	logger  *logger.Logger
	sink    repository.EventSink
	metrics repository.Metrics
	secret  string
}

// NewIngestor creates an event ingestor.
func NewIngestor(lgr *logger.Logger, sink repository.EventSink, m repository.Metrics, secret string) *Ingestor {
	return &Ingestor{
		logger:  lgr,
		sink:    sink,
		metrics: m,
		secret:  secret,
	}
}

// Ingest validates the bearer credential, parses the event envelope and
// hands it to the sink. The payload beyond the envelope is opaque.
func (i *Ingestor) Ingest(ctx context.Context, authHeader string, body []byte) error {
	if !i.authorized(authHeader) {
		i.metrics.RecordEvent("unauthorized")
		return ErrUnauthorized
	}

	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		i.metrics.RecordEvent("invalid")
		return ErrBadEvent
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := i.sink.Record(ctx, &event); err != nil {
		i.metrics.RecordEvent("sink_error")
		i.logger.Error("event sink failure",
			logger.Error(err),
			logger.String("sink", i.sink.Name()),
			logger.String("event", event.Name))
		return &RecordingError{Err: err}
	}

	i.metrics.RecordEvent("accepted")
	return nil
}

func (i *Ingestor) authorized(authHeader string) bool {
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(i.secret)) == 1
}
