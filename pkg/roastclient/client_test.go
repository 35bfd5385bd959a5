package roastclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "RoastGate/pkg/http"
)

func newFastClient() *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(500 * time.Millisecond))
}

func TestSubmitSuccess(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/roast", r.URL.Path)
		score := 88
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"roast": "surprisingly sane picks",
			"score": score,
			"stocks": map[string]interface{}{
				"MSFT": map[string]interface{}{"company": "Microsoft", "pros": []string{}, "cons": []string{}},
			},
		})
	}))
	defer gw.Close()

	c := New(gw.URL)
	defer c.Close()

	assert.Equal(t, StateIdle, c.State())
	result, err := c.Submit(context.Background(), []string{"MSFT"})
	require.NoError(t, err)

	assert.Equal(t, StateSuccess, c.State())
	assert.Equal(t, "surprisingly sane picks", result.Roast)
	assert.Same(t, result, c.Result())
	assert.True(t, c.CanSubmit())
}

func TestSubmitGatewayError(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer gw.Close()

	c := New(gw.URL)
	defer c.Close()

	_, err := c.Submit(context.Background(), []string{"MSFT"})
	require.Error(t, err)
	assert.Equal(t, StateError, c.State())
	assert.Error(t, c.LastError())

	// errors do not block a retry
	assert.True(t, c.CanSubmit())
}

func TestSubmitUnreachableGateway(t *testing.T) {
	c := New("http://127.0.0.1:1", WithHTTPClient(newFastClient()))
	defer c.Close()

	_, err := c.Submit(context.Background(), []string{"MSFT"})
	require.Error(t, err)
	assert.Equal(t, StateError, c.State())
}

func TestSubmitValidatesLocally(t *testing.T) {
	called := false
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer gw.Close()

	c := New(gw.URL)
	defer c.Close()

	_, err := c.Submit(context.Background(), []string{"123", "toolonged"})
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, StateIdle, c.State())
}

func TestSessionIDShape(t *testing.T) {
	c := New("http://example.invalid")
	defer c.Close()

	id := c.SessionID()
	assert.True(t, strings.HasPrefix(id, "session-"))
	assert.Len(t, strings.Split(id, "-"), 3)
}

func TestTrackSubmissionReportsEvent(t *testing.T) {
	got := make(chan map[string]interface{}, 1)
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics/events", r.URL.Path)
		require.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		got <- payload
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}))
	defer gw.Close()

	c := New(gw.URL, WithAnalyticsSecret("sekrit"))
	c.TrackSubmission([]string{"AAPL", "TSLA"})
	c.Close()

	select {
	case payload := <-got:
		assert.Equal(t, "roast_submitted", payload["event"])
		assert.Equal(t, c.SessionID(), payload["sessionId"])
		assert.Equal(t, float64(2), payload["tickerCount"])
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestTrackWithoutSecretIsNoop(t *testing.T) {
	called := false
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer gw.Close()

	c := New(gw.URL)
	c.TrackPageView("/")
	c.Close()
	assert.False(t, called)
}

func TestFetchSnapshot(t *testing.T) {
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"requestsPerMinute": map[string]float64{"roast": 1.7},
			"totalRequests":     map[string]int64{"roast": 1234},
			"requestsToday":     map[string]int64{"roast": 87},
			"concurrentUsers":   3,
			"highestConcurrent": 17,
			"credentialMetrics": []interface{}{},
			"lastUpdate":        time.Now().UTC().Format(time.RFC3339),
		})
	}))
	defer gw.Close()

	c := New(gw.URL)
	defer c.Close()

	snap, err := c.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1234), snap.TotalRequests["roast"])
	assert.Equal(t, int64(17), snap.HighestConcurrent)
}
