package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoastGate/internal/domain/models"
)

type captureSink struct {
	mu     sync.Mutex
	events []*models.Event
	err    error
}

func (s *captureSink) Record(ctx context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) Close() error { return nil }
func (s *captureSink) Name() string { return "capture" }

type countMetrics struct {
	mu     sync.Mutex
	events map[string]int
}

func (m *countMetrics) RecordUpstream(string, string, float64) {}
func (m *countMetrics) RecordFallback()                        {}
func (m *countMetrics) RecordRateLimited()                     {}
func (m *countMetrics) RecordEvent(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		m.events = map[string]int{}
	}
	m.events[result]++
}

func newTestIngestor(t *testing.T, sink *captureSink) (*Ingestor, *countMetrics) {
	t.Helper()
	m := &countMetrics{}
	return NewIngestor(testLogger(t), sink, m, "test-secret"), m
}

func TestIngestRejectsMissingCredential(t *testing.T) {
	sink := &captureSink{}
	ing, m := newTestIngestor(t, sink)

	err := ing.Ingest(context.Background(), "", []byte(`{"event":"page_view"}`))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, sink.events)
	assert.Equal(t, 1, m.events["unauthorized"])
}

func TestIngestRejectsWrongCredential(t *testing.T) {
	sink := &captureSink{}
	ing, _ := newTestIngestor(t, sink)

	err := ing.Ingest(context.Background(), "Bearer nope", []byte(`{"event":"page_view"}`))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, sink.events)
}

func TestIngestRejectsNonBearerScheme(t *testing.T) {
	sink := &captureSink{}
	ing, _ := newTestIngestor(t, sink)

	err := ing.Ingest(context.Background(), "Basic dGVzdA==", []byte(`{"event":"x"}`))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIngestAcceptsValidEvent(t *testing.T) {
	sink := &captureSink{}
	ing, m := newTestIngestor(t, sink)

	body := []byte(`{"event":"roast_submitted","sessionId":"session-1700000000000-abc",` +
		`"tickers":["AAPL"],"custom":{"depth":2}}`)
	err := ing.Ingest(context.Background(), "Bearer test-secret", body)
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	got := sink.events[0]
	assert.Equal(t, "roast_submitted", got.Name)
	assert.Equal(t, "session-1700000000000-abc", got.SessionID)
	assert.False(t, got.Timestamp.IsZero())

	// opaque payload fields survive verbatim
	assert.Contains(t, got.Fields, "tickers")
	assert.Contains(t, got.Fields, "custom")
	assert.Equal(t, 1, m.events["accepted"])
}

func TestIngestRejectsMalformedBody(t *testing.T) {
	sink := &captureSink{}
	ing, m := newTestIngestor(t, sink)

	err := ing.Ingest(context.Background(), "Bearer test-secret", []byte("not json"))
	assert.ErrorIs(t, err, ErrBadEvent)
	assert.Empty(t, sink.events)
	assert.Equal(t, 1, m.events["invalid"])
}

func TestIngestWrapsSinkFailure(t *testing.T) {
	sink := &captureSink{err: errors.New("broker down")}
	ing, m := newTestIngestor(t, sink)

	err := ing.Ingest(context.Background(), "Bearer test-secret", []byte(`{"event":"page_view"}`))

	var re *RecordingError
	require.True(t, errors.As(err, &re))
	assert.ErrorContains(t, re, "broker down")
	assert.Equal(t, 1, m.events["sink_error"])
}
