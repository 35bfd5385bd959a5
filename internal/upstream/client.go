package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"RoastGate/internal/domain/models"
	"RoastGate/internal/domain/repository"
	xhttp "RoastGate/pkg/http"
	"RoastGate/pkg/logger"
)

// Caller carries per-request identity forwarded to the backend.
type Caller struct {
	UserID    string
	UserAgent string
}

// RateLimitedError signals that the backend throttled the request.
type RateLimitedError struct {
	Signal *models.RateLimitSignal
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("upstream rate limited, retry after %ds", e.Signal.RetryAfterSeconds)
}

// Forwarder proxies roast submissions to the analysis backend and
// absorbs its failures. Callers always get a usable RoastResult unless
// the backend explicitly throttled them.
type Forwarder struct {
	logger  *logger.Logger
	client  *xhttp.Client
	baseURL string
	metrics repository.Metrics
}

// NewForwarder creates a backend forwarder.
func NewForwarder(lgr *logger.Logger, client *xhttp.Client, baseURL string, m repository.Metrics) *Forwarder {
	return &Forwarder{
		logger:  lgr,
		client:  client,
		baseURL: baseURL,
		metrics: m,
	}
}

// Roast forwards a normalized ticker batch upstream. On throttle it
// returns *RateLimitedError; on any other failure it degrades to a
// synthesized fallback with a nil error.
func (f *Forwarder) Roast(ctx context.Context, tickers []string, caller Caller) (*models.RoastResult, error) {
	start := time.Now()

	headers := map[string]string{
		"Content-Type": "application/json",
		"X-User-ID":    caller.UserID,
	}
	if caller.UserAgent != "" {
		headers["User-Agent"] = caller.UserAgent
	}

	resp, err := f.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:  http.MethodPost,
		URL:     f.baseURL + "/roast",
		Headers: headers,
		Body:    map[string]interface{}{"tickers": tickers},
	})
	if err != nil {
		f.metrics.RecordUpstream("roast", "error", time.Since(start).Seconds())
		f.logger.Warn("upstream unreachable, serving fallback",
			logger.Error(err), logger.Strings("tickers", tickers))
		f.metrics.RecordFallback()
		return BuildFallback(tickers), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		sig := TranslateRateLimit(resp)
		f.metrics.RecordUpstream("roast", "rate_limited", time.Since(start).Seconds())
		f.metrics.RecordRateLimited()
		f.logger.Info("upstream throttled",
			logger.Int("retry_after", sig.RetryAfterSeconds),
			logger.String("user_id", caller.UserID))
		return nil, &RateLimitedError{Signal: sig}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.metrics.RecordUpstream("roast", "error", time.Since(start).Seconds())
		f.logger.Warn("upstream error status, serving fallback",
			logger.Int("status", resp.StatusCode))
		f.metrics.RecordFallback()
		return BuildFallback(tickers), nil
	}

	var result models.RoastResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		f.metrics.RecordUpstream("roast", "error", time.Since(start).Seconds())
		f.logger.Warn("upstream response undecodable, serving fallback", logger.Error(err))
		f.metrics.RecordFallback()
		return BuildFallback(tickers), nil
	}

	f.metrics.RecordUpstream("roast", "ok", time.Since(start).Seconds())
	fillMissingAssessments(&result, tickers)
	return &result, nil
}

// fillMissingAssessments guarantees one entry per submitted ticker even
// when the backend skipped some.
func fillMissingAssessments(result *models.RoastResult, tickers []string) {
	if result.Stocks == nil {
		result.Stocks = make(map[string]*models.StockAssessment, len(tickers))
	}
	for _, sym := range tickers {
		if _, ok := result.Stocks[sym]; ok {
			continue
		}
		result.Stocks[sym] = &models.StockAssessment{
			Company: sym,
			Pros:    []string{"No assessment returned"},
			Cons:    []string{"The analysts skipped this one"},
		}
	}
}
