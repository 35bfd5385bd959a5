package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoastGate/internal/analytics"
	"RoastGate/internal/domain/models"
	"RoastGate/internal/upstream"
	xhttp "RoastGate/pkg/http"
	"RoastGate/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordUpstream(string, string, float64) {}
func (noopMetrics) RecordFallback()                        {}
func (noopMetrics) RecordRateLimited()                     {}
func (noopMetrics) RecordEvent(string)                     {}

type memSink struct {
	events []*models.Event
	err    error
}

func (s *memSink) Record(ctx context.Context, e *models.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *memSink) Close() error { return nil }
func (s *memSink) Name() string { return "mem" }

func newTestHandler(t *testing.T, backendURL string, sink *memSink) *echo.Echo {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	forwarder := upstream.NewForwarder(l,
		xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), backendURL, noopMetrics{})
	aggregator := analytics.NewAggregator(l, nil)
	ingestor := analytics.NewIngestor(l, sink, noopMetrics{}, "gateway-secret")

	h := NewGatewayHandler(l, forwarder, aggregator, ingestor)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSubmitRoastSuccess(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-User-ID"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"roast": "your portfolio called, it wants diversification",
			"score": 61,
			"stocks": map[string]interface{}{
				"AAPL": map[string]interface{}{"company": "Apple", "pros": []string{}, "cons": []string{}},
				"TSLA": map[string]interface{}{"company": "Tesla", "pros": []string{}, "cons": []string{}},
			},
		})
	}))
	defer backend.Close()

	e := newTestHandler(t, backend.URL, &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast", `{"tickers":["aapl","tsla"]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.RoastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Stocks, 2)
	require.NotNil(t, result.Score)
	assert.Equal(t, 61, *result.Score)
}

func TestSubmitRoastAcceptsCommaSeparatedString(t *testing.T) {
	var gotTickers []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tickers []string `json:"tickers"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTickers = body.Tickers
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"roast": "ok", "stocks": map[string]interface{}{}})
	}))
	defer backend.Close()

	e := newTestHandler(t, backend.URL, &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast", `{"tickers":"aapl, tsla, xyz1, "}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL", "TSLA"}, gotTickers)
}

func TestSubmitRoastRejectsMissingTickers(t *testing.T) {
	e := newTestHandler(t, "http://127.0.0.1:1", &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRoastRejectsAllInvalidTickers(t *testing.T) {
	e := newTestHandler(t, "http://127.0.0.1:1", &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast", `{"tickers":["123","toolonged"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRoastRejectsOversizedBatch(t *testing.T) {
	e := newTestHandler(t, "http://127.0.0.1:1", &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast",
		`{"tickers":["A","B","C","D","E","F","G","H","I","J","K"]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRoastTranslatesThrottle(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer backend.Close()

	e := newTestHandler(t, backend.URL, &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast", `{"tickers":["AAPL"]}`, nil)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
		Message    string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body.Error)
	assert.Equal(t, 30, body.RetryAfter)
	assert.NotEmpty(t, body.Message)
}

func TestSubmitRoastServesFallbackWhenBackendDown(t *testing.T) {
	e := newTestHandler(t, "http://127.0.0.1:1", &memSink{})
	rec := doJSON(e, http.MethodPost, "/api/roast", `{"tickers":["AAPL","GME"]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.RoastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Stocks, 2)
	require.NotNil(t, result.Score)
	assert.Equal(t, 50, *result.Score)
}

func TestGetAnalyticsAlwaysSucceeds(t *testing.T) {
	e := newTestHandler(t, "http://127.0.0.1:1", &memSink{})
	rec := doJSON(e, http.MethodGet, "/api/analytics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.NotNil(t, snap.RequestsPerMinute)
	assert.NotNil(t, snap.TotalRequests)
	assert.False(t, snap.LastUpdate.IsZero())
}

func TestRecordEventRequiresCredential(t *testing.T) {
	sink := &memSink{}
	e := newTestHandler(t, "http://127.0.0.1:1", sink)

	rec := doJSON(e, http.MethodPost, "/api/analytics/events",
		`{"event":"page_view"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sink.events)
}

func TestRecordEventAccepted(t *testing.T) {
	sink := &memSink{}
	e := newTestHandler(t, "http://127.0.0.1:1", sink)

	rec := doJSON(e, http.MethodPost, "/api/analytics/events",
		`{"event":"roast_submitted","sessionId":"s-1","tickers":["AAPL"]}`,
		map[string]string{"Authorization": "Bearer gateway-secret"})

	require.Equal(t, http.StatusOK, rec.Code)
	var ack map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.True(t, ack["success"])
	require.Len(t, sink.events, 1)
	assert.Equal(t, "roast_submitted", sink.events[0].Name)
}

func TestRecordEventSinkFailure(t *testing.T) {
	sink := &memSink{err: errors.New("broker down")}
	e := newTestHandler(t, "http://127.0.0.1:1", sink)

	rec := doJSON(e, http.MethodPost, "/api/analytics/events",
		`{"event":"page_view"}`,
		map[string]string{"Authorization": "Bearer gateway-secret"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	e := newTestHandler(t, "http://127.0.0.1:1", &memSink{})
	rec := doJSON(e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
