package roastclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func throttlingGateway(retryAfter int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":      "Rate limit exceeded",
			"retryAfter": retryAfter,
		})
	}))
}

func TestCountdownRunsToReady(t *testing.T) {
	gw := throttlingGateway(45)
	defer gw.Close()

	var mu sync.Mutex
	var ticks []int
	c := New(gw.URL,
		WithTickInterval(time.Millisecond),
		WithOnTick(func(remaining int) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		}))
	defer c.Close()

	_, err := c.Submit(context.Background(), []string{"AAPL"})
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, StateRateLimited, c.State())
	assert.Equal(t, 45, c.RetryRemaining())

	require.Eventually(t, func() bool {
		return c.State() == StateReady
	}, 2*time.Second, 5*time.Millisecond)

	assert.Zero(t, c.RetryRemaining())
	assert.True(t, c.CanSubmit())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, ticks)
	assert.Equal(t, 44, ticks[0])
	assert.Equal(t, 0, ticks[len(ticks)-1])
	for i, v := range ticks {
		assert.GreaterOrEqual(t, v, 0)
		if i > 0 {
			assert.Less(t, v, ticks[i-1])
		}
	}
}

func TestCountdownBlocksResubmission(t *testing.T) {
	gw := throttlingGateway(3600)
	defer gw.Close()

	c := New(gw.URL, WithTickInterval(time.Hour))
	defer c.Close()

	_, err := c.Submit(context.Background(), []string{"AAPL"})
	require.ErrorIs(t, err, ErrRateLimited)

	assert.False(t, c.CanSubmit())
	_, err = c.Submit(context.Background(), []string{"AAPL"})
	assert.ErrorIs(t, err, ErrSubmissionBlocked)
}

func TestCountdownCancelledByClose(t *testing.T) {
	gw := throttlingGateway(3600)
	defer gw.Close()

	c := New(gw.URL, WithTickInterval(time.Millisecond))
	_, err := c.Submit(context.Background(), []string{"AAPL"})
	require.ErrorIs(t, err, ErrRateLimited)

	// Close must stop the ticker goroutine without the wait elapsing.
	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	assert.Positive(t, c.RetryRemaining())
}

func TestCountdownZeroWaitGoesStraightToReady(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"retryAfter": 0, "error": "x"})
	}))
	defer gw.Close()

	c := New(gw.URL, WithTickInterval(time.Millisecond))
	defer c.Close()

	_, err := c.Submit(context.Background(), []string{"AAPL"})
	require.ErrorIs(t, err, ErrRateLimited)

	// body retryAfter 0 is unusable and no header is set, so the 60s
	// default applies; at 1ms ticks that resolves quickly
	require.Eventually(t, func() bool {
		return c.State() == StateReady
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, c.RetryRemaining())
}
