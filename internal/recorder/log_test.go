package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoastGate/internal/domain/models"
	"RoastGate/pkg/logger"
)

func TestLogSinkRecord(t *testing.T) {
	l, err := logger.New(&logger.Config{Level: "info", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	sink := NewLogSink(l)
	event := &models.Event{
		Name:      "page_view",
		SessionID: "session-1",
		Timestamp: time.Now(),
		Fields:    map[string]interface{}{"event": "page_view", "path": "/"},
	}

	assert.NoError(t, sink.Record(context.Background(), event))
	assert.Equal(t, "log", sink.Name())
	assert.NoError(t, sink.Close())
}
