package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsAggregatesLatency(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/v1/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/v1/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/v1/tickets", "GET", 500, 5*time.Millisecond)

	stats := m.RequestStats("/api/v1/tickets", "GET", 200)
	assert.Equal(t, int64(2), stats.Count)
	assert.Equal(t, 40*time.Millisecond, stats.TotalLatency)
	assert.Equal(t, 30*time.Millisecond, stats.MaxLatency)

	assert.Zero(t, m.RequestStats("/api/v1/users", "GET", 200).Count)
}

func TestMetricsErrorCount(t *testing.T) {
	m := NewMetrics()

	m.RecordError("/api/v1/tickets", "POST", "VALIDATION_FAILED")
	m.RecordError("/api/v1/tickets", "POST", "VALIDATION_FAILED")

	assert.Equal(t, int64(2), m.ErrorCount("/api/v1/tickets", "POST", "VALIDATION_FAILED"))
	assert.Zero(t, m.ErrorCount("/api/v1/tickets", "POST", "FORBIDDEN"))
}

func TestMetricsNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	assert.Zero(t, m.RequestStats("/x", "GET", 200).Count)
	assert.Zero(t, m.ErrorCount("/x", "GET", "INTERNAL_ERROR"))
}
