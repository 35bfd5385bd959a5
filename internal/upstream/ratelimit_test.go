package upstream

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func limitedResponse(headers map[string]string, body string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestTranslateRateLimitRetryAfterSeconds(t *testing.T) {
	sig := TranslateRateLimit(limitedResponse(map[string]string{
		"Retry-After":           "45",
		"X-RateLimit-Limit":     "5",
		"X-RateLimit-Remaining": "0",
	}, ""))

	assert.Equal(t, 45, sig.RetryAfterSeconds)
	assert.Equal(t, 5, sig.Limit)
	assert.Equal(t, 0, sig.Remaining)
}

func TestTranslateRateLimitResetTimestamp(t *testing.T) {
	reset := time.Now().Add(90 * time.Second).Unix()
	sig := TranslateRateLimit(limitedResponse(map[string]string{
		"X-RateLimit-Reset": fmt.Sprintf("%d", reset),
	}, ""))

	assert.InDelta(t, 90, sig.RetryAfterSeconds, 2)
}

func TestTranslateRateLimitBodyFallback(t *testing.T) {
	sig := TranslateRateLimit(limitedResponse(nil,
		`{"retryAfter": 30, "message": "slow down"}`))

	assert.Equal(t, 30, sig.RetryAfterSeconds)
	assert.Equal(t, "slow down", sig.Message)
}

func TestTranslateRateLimitDefaults(t *testing.T) {
	sig := TranslateRateLimit(limitedResponse(nil, "not json"))

	assert.Equal(t, 60, sig.RetryAfterSeconds)
	assert.Equal(t, 1, sig.Limit)
	assert.Equal(t, 0, sig.Remaining)
	assert.Empty(t, sig.Message)
}

func TestTranslateRateLimitIgnoresStaleReset(t *testing.T) {
	// a reset in the past must not produce a non-positive wait
	past := time.Now().Add(-time.Minute).Unix()
	sig := TranslateRateLimit(limitedResponse(map[string]string{
		"X-RateLimit-Reset": fmt.Sprintf("%d", past),
	}, ""))

	assert.Equal(t, 60, sig.RetryAfterSeconds)
}
