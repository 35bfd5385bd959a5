package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	fallbackServed   prometheus.Counter
	rateLimited      prometheus.Counter
	eventsTotal      *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		upstreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roastgate_upstream_requests_total",
				Help: "Total calls issued to the upstream roast backend",
			},
			[]string{"endpoint", "result"},
		),
		fallbackServed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "roastgate_fallback_responses_total",
				Help: "Roast responses synthesized because the upstream was unavailable",
			},
		),
		rateLimited: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "roastgate_rate_limited_total",
				Help: "Upstream throttling signals translated to callers",
			},
		),
		eventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roastgate_analytics_events_total",
				Help: "Analytics events by ingestion outcome",
			},
			[]string{"result"},
		),
		upstreamLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roastgate_upstream_duration_seconds",
				Help:    "Upstream call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// RecordUpstream records an upstream call outcome and its latency.
func (r *Recorder) RecordUpstream(endpoint, result string, seconds float64) {
	r.upstreamRequests.WithLabelValues(endpoint, result).Inc()
	r.upstreamLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordFallback records a synthesized fallback response.
func (r *Recorder) RecordFallback() {
	r.fallbackServed.Inc()
}

// RecordRateLimited records a translated throttling signal.
func (r *Recorder) RecordRateLimited() {
	r.rateLimited.Inc()
}

// RecordEvent records an analytics event ingestion outcome.
func (r *Recorder) RecordEvent(result string) {
	r.eventsTotal.WithLabelValues(result).Inc()
}
