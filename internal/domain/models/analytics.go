package models

import (
	"encoding/json"
	"time"
)

// CredentialMetrics reports per-credential usage of the upstream pool.
type CredentialMetrics struct {
	Index        int        `json:"index"`
	Name         string     `json:"name"`
	RequestCount int64      `json:"requestCount"`
	ErrorCount   int64      `json:"errorCount"`
	LastUsed     *time.Time `json:"lastUsed,omitempty"`
	IsActive     bool       `json:"isActive"`
}

// Snapshot is the aggregate analytics view served to dashboards. The
// request counters are maps keyed by endpoint name ("roast",
// "analytics", ...); per-minute rates are fractional.
type Snapshot struct {
	RequestsPerMinute map[string]float64  `json:"requestsPerMinute"`
	TotalRequests     map[string]int64    `json:"totalRequests"`
	RequestsToday     map[string]int64    `json:"requestsToday"`
	UniqueUsers       int64               `json:"uniqueUsers"`
	TotalPageVisits   int64               `json:"totalPageVisits"`
	ConcurrentUsers   int64               `json:"concurrentUsers"`
	HighestConcurrent int64               `json:"highestConcurrent"`
	CredentialMetrics []CredentialMetrics `json:"credentialMetrics"`
	SystemUptime      float64             `json:"systemUptime"`
	LastUpdate        time.Time           `json:"lastUpdate"`
}

// Event is a client-reported usage event. Beyond the envelope fields
// the payload is opaque and preserved verbatim for downstream sinks.
type Event struct {
	Name      string
	SessionID string
	Timestamp time.Time
	Fields    map[string]interface{}
}

// UnmarshalJSON keeps unknown fields alongside the known envelope.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["event"].(string); ok {
		e.Name = v
	}
	if v, ok := raw["sessionId"].(string); ok {
		e.SessionID = v
	}
	if v, ok := raw["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			e.Timestamp = ts
		}
	}
	e.Fields = raw
	return nil
}

// MarshalJSON writes the envelope fields merged over the raw payload.
func (e *Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Fields)+3)
	for k, v := range e.Fields {
		out[k] = v
	}
	if e.Name != "" {
		out["event"] = e.Name
	}
	if e.SessionID != "" {
		out["sessionId"] = e.SessionID
	}
	if !e.Timestamp.IsZero() {
		out["timestamp"] = e.Timestamp.Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}
