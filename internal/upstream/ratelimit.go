package upstream

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"RoastGate/internal/domain/models"
	"RoastGate/pkg/util"
)

const defaultRetryAfterSeconds = 60

// TranslateRateLimit extracts a throttle signal from an upstream 429
// response. Sources, in order: Retry-After header (delta seconds or
// HTTP timestamp), X-RateLimit-Reset (unix seconds), then the JSON
// body's retryAfter field. Anything unusable falls back to 60s.
func TranslateRateLimit(resp *http.Response) *models.RateLimitSignal {
	sig := &models.RateLimitSignal{
		RetryAfterSeconds: defaultRetryAfterSeconds,
		Limit:             util.ParseIntDefault(resp.Header.Get("X-RateLimit-Limit"), 1),
		Remaining:         util.ParseIntDefault(resp.Header.Get("X-RateLimit-Remaining"), 0),
	}

	retryAfter := 0
	if h := resp.Header.Get("Retry-After"); h != "" {
		if secs := util.ParseIntDefault(h, 0); secs > 0 {
			retryAfter = secs
		} else if t, err := http.ParseTime(h); err == nil {
			retryAfter = int(time.Until(t).Seconds())
		}
	}
	if retryAfter <= 0 {
		if t, ok := util.ParseTime(resp.Header.Get("X-RateLimit-Reset")); ok {
			retryAfter = int(time.Until(t).Seconds())
		}
	}

	var body struct {
		RetryAfter int    `json:"retryAfter"`
		Message    string `json:"message"`
		Error      string `json:"error"`
	}
	if resp.Body != nil {
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err == nil && json.Unmarshal(data, &body) == nil {
			if retryAfter <= 0 && body.RetryAfter > 0 {
				retryAfter = body.RetryAfter
			}
			if body.Message != "" {
				sig.Message = body.Message
			} else if body.Error != "" {
				sig.Message = body.Error
			}
		}
	}

	if retryAfter > 0 {
		sig.RetryAfterSeconds = retryAfter
	}
	return sig
}
