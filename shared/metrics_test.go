package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()
	a := registry.Register("B_Service")
	assert.Same(t, a, registry.Register("B_Service"))
	registry.Register("A_Service").RecordRequest(false, time.Millisecond)
	a.RecordRequest(true, time.Millisecond)
	a.IncrementCustomCounter("hits")

	snapshots := registry.Snapshots()
	require.Len(t, snapshots, 2)
	assert.Equal(t, "A_Service", snapshots[0].ServiceName)
	assert.Equal(t, int64(1), snapshots[0].FailedRequests)
	assert.Equal(t, int64(1), snapshots[1].CustomCounters["hits"])
	assert.Equal(t, 100.0, a.GetSuccessRate())
}

func TestServiceMetricsSnapshot(t *testing.T) {
	m := NewServiceMetrics("Payment_Service")
	assert.Zero(t, m.GetSuccessRate())

	m.RecordRequest(true, 10*time.Millisecond)
	m.RecordRequest(true, 30*time.Millisecond)
	m.RecordRequest(false, 20*time.Millisecond)

	snapshot := m.GetSnapshot()
	assert.Equal(t, int64(3), snapshot.TotalRequests)
	assert.Equal(t, int64(2), snapshot.SuccessfulRequests)
	assert.Equal(t, 20*time.Millisecond, snapshot.AverageProcessingTime)
	assert.Equal(t, 30*time.Millisecond, snapshot.MaxProcessingTime)
	assert.InDelta(t, 66.67, snapshot.SuccessRate, 0.01)

	// snapshots are copies
	snapshot.CustomCounters["x"] = 5
	assert.Empty(t, m.GetSnapshot().CustomCounters)
}
