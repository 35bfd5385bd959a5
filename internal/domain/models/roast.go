package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TickerInput accepts either a JSON string ("AAPL, TSLA") or an array
// of strings (["AAPL","TSLA"]). Clients send both shapes.
type TickerInput []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TickerInput) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*t = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = strings.Split(s, ",")
		return nil
	}
	return fmt.Errorf("tickers must be a string or an array of strings")
}

// RoastRequest is the inbound payload for a roast submission.
type RoastRequest struct {
	Tickers TickerInput `json:"tickers" validate:"required,min=1"`
}

// StockAssessment is the per-ticker verdict within a roast result.
type StockAssessment struct {
	Company string   `json:"company"`
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
}

// RoastResult is the response contract for a roast. Score is a pointer
// so a missing upstream score stays distinguishable from zero.
type RoastResult struct {
	Roast  string                      `json:"roast"`
	Score  *int                        `json:"score,omitempty"`
	Stocks map[string]*StockAssessment `json:"stocks"`
}

// RateLimitSignal carries upstream throttle information back to the
// caller. Limit and Remaining travel in headers only.
type RateLimitSignal struct {
	RetryAfterSeconds int    `json:"retryAfter"`
	Message           string `json:"message,omitempty"`
	Limit             int    `json:"-"`
	Remaining         int    `json:"-"`
}
