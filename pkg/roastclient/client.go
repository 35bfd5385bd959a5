// Package roastclient is the Go client for the roast gateway. It
// mirrors the gateway's throttle contract: after a 429 the client
// counts the advertised wait down locally and re-opens submissions
// only when it reaches zero.
package roastclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"RoastGate/internal/domain/models"
	"RoastGate/internal/ticker"
	xhttp "RoastGate/pkg/http"
	"RoastGate/pkg/logger"
)

// State is the client's submission lifecycle state.
type State int

const (
	StateIdle State = iota
	StatePending
	StateRateLimited
	StateReady
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRateLimited:
		return "rate_limited"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmissionBlocked means a submit was attempted while one is in
	// flight or the throttle countdown is still running.
	ErrSubmissionBlocked = errors.New("submission blocked by current state")

	// ErrRateLimited means the gateway throttled the submission. The
	// client's countdown has started.
	ErrRateLimited = errors.New("rate limited by gateway")
)

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom transport client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTickInterval overrides the 1s countdown tick. Tests use this.
func WithTickInterval(d time.Duration) Option {
	return func(c *Client) { c.tickInterval = d }
}

// WithAnalyticsSecret sets the bearer credential for event reporting.
func WithAnalyticsSecret(secret string) Option {
	return func(c *Client) { c.secret = secret }
}

// WithLogger sets a structured logger.
func WithLogger(lgr *logger.Logger) Option {
	return func(c *Client) { c.logger = lgr }
}

// WithOnTick registers a callback invoked with the remaining seconds
// after every countdown tick.
func WithOnTick(fn func(remaining int)) Option {
	return func(c *Client) { c.onTick = fn }
}

// Client talks to the gateway and tracks submission state.
type Client struct {
	baseURL      string
	http         *xhttp.Client
	secret       string
	sessionID    string
	tickInterval time.Duration
	logger       *logger.Logger
	onTick       func(remaining int)

	mu             sync.Mutex
	state          State
	retryRemaining int
	result         *models.RoastResult
	lastErr        error
	cancelTimer    context.CancelFunc

	wg sync.WaitGroup
}

// New creates a client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		http:         xhttp.NewClient(xhttp.WithTimeout(40 * time.Second)),
		sessionID:    newSessionID(),
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RetryRemaining returns the seconds left on the throttle countdown.
func (c *Client) RetryRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retryRemaining
}

// Result returns the last successful roast, if any.
func (c *Client) Result() *models.RoastResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// LastError returns the error behind StateError.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SessionID returns this client's analytics session identifier.
func (c *Client) SessionID() string { return c.sessionID }

// CanSubmit reports whether a new submission is currently allowed.
func (c *Client) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Client) canSubmitLocked() bool {
	switch c.state {
	case StatePending, StateRateLimited:
		return false
	default:
		return true
	}
}

// Submit normalizes the batch locally, then sends it to the gateway.
// Invalid input fails before any network call. On throttle it starts
// the local countdown and returns ErrRateLimited.
func (c *Client) Submit(ctx context.Context, tickers []string) (*models.RoastResult, error) {
	normalized, err := ticker.Normalize(tickers)
	if err != nil {
		return nil, err
	}
	tickers = normalized

	c.mu.Lock()
	if !c.canSubmitLocked() {
		c.mu.Unlock()
		return nil, ErrSubmissionBlocked
	}
	c.state = StatePending
	c.mu.Unlock()

	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: http.MethodPost,
		URL:    c.baseURL + "/api/roast",
		Body:   map[string]interface{}{"tickers": tickers},
	})
	if err != nil {
		c.setError(err)
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		c.startCountdown(parseRetryAfter(resp))
		return nil, ErrRateLimited

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result models.RoastResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			err = fmt.Errorf("decode roast: %w", err)
			c.setError(err)
			return nil, err
		}
		c.mu.Lock()
		c.state = StateSuccess
		c.result = &result
		c.lastErr = nil
		c.mu.Unlock()
		return &result, nil

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("gateway status %d: %s", resp.StatusCode, body)
		c.setError(err)
		return nil, err
	}
}

// Close cancels any running countdown and waits for background work.
func (c *Client) Close() {
	c.mu.Lock()
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastErr = err
	c.mu.Unlock()
}

func parseRetryAfter(resp *http.Response) int {
	var body struct {
		RetryAfter int `json:"retryAfter"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(data, &body) == nil && body.RetryAfter > 0 {
		return body.RetryAfter
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		var secs int
		if _, err := fmt.Sscanf(h, "%d", &secs); err == nil && secs > 0 {
			return secs
		}
	}
	return 60
}
