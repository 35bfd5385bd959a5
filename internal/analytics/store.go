package analytics

import (
	"context"
	"net/http"

	"RoastGate/internal/domain/models"
	xhttp "RoastGate/pkg/http"
)

// UpstreamStore reads the snapshot from the backend's analytics
// endpoint, where the real counters live.
type UpstreamStore struct {
	client  *xhttp.Client
	baseURL string
}

// NewUpstreamStore creates a store reading from <base>/analytics.
func NewUpstreamStore(client *xhttp.Client, baseURL string) *UpstreamStore {
	return &UpstreamStore{client: client, baseURL: baseURL}
}

// Snapshot implements Store.
func (s *UpstreamStore) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    s.baseURL + "/analytics",
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
