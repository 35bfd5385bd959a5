package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scrape(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServerMetricsRouteEnabledByDefault(t *testing.T) {
	s := NewServer(nil)
	rec := scrape(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestServerMetricsRouteDisabledByEmptyPath(t *testing.T) {
	s := NewServer(nil, WithMetricsPath(""))
	rec := scrape(s, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerCustomMetricsPath(t *testing.T) {
	s := NewServer(nil, WithMetricsPath("/internal/metrics"))
	assert.Equal(t, http.StatusOK, scrape(s, "/internal/metrics").Code)
	assert.Equal(t, http.StatusNotFound, scrape(s, "/metrics").Code)
}
