package roastclient

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"RoastGate/internal/domain/models"
	xhttp "RoastGate/pkg/http"
	"RoastGate/pkg/logger"
)

// newSessionID builds a per-client analytics session identifier.
func newSessionID() string {
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(),
		strconv.FormatInt(rand.Int63n(1<<48), 36))
}

// TrackPageView reports a page view event. Fire and forget: failures
// never surface to the caller.
func (c *Client) TrackPageView(path string) {
	c.track("page_view", map[string]interface{}{"path": path})
}

// TrackSubmission reports a roast submission event.
func (c *Client) TrackSubmission(tickers []string) {
	c.track("roast_submitted", map[string]interface{}{
		"tickers":     tickers,
		"tickerCount": len(tickers),
	})
}

func (c *Client) track(name string, fields map[string]interface{}) {
	if c.secret == "" {
		return
	}

	payload := map[string]interface{}{
		"event":     name,
		"sessionId": c.sessionID,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		payload[k] = v
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: http.MethodPost,
			URL:    c.baseURL + "/api/analytics/events",
			Headers: map[string]string{
				"Authorization": "Bearer " + c.secret,
			},
			Body: payload,
		}, nil)
		if err != nil && c.logger != nil {
			c.logger.Debug("event report dropped",
				logger.String("event", name), logger.Error(err))
		}
	}()
}

// FetchSnapshot retrieves the gateway's analytics snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/api/analytics",
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
