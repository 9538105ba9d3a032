package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceMetrics tracks performance and success metrics for services
type ServiceMetrics struct {
	serviceName         string
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	totalProcessingTime time.Duration
	lastUpdated         time.Time
	customCounters      map[string]int64
	performance         *PerformanceMetrics
	mutex               sync.RWMutex
}

// MetricsSnapshot is a point-in-time copy of ServiceMetrics
type MetricsSnapshot struct {
	ServiceName           string           `json:"service_name"`
	TotalRequests         int64            `json:"total_requests"`
	SuccessfulRequests    int64            `json:"successful_requests"`
	FailedRequests        int64            `json:"failed_requests"`
	SuccessRate           float64          `json:"success_rate"`
	AverageProcessingTime time.Duration    `json:"average_processing_time"`
	P95ProcessingTime     time.Duration    `json:"p95_processing_time"`
	MaxProcessingTime     time.Duration    `json:"max_processing_time"`
	LastUpdated           time.Time        `json:"last_updated"`
	CustomCounters        map[string]int64 `json:"custom_counters"`
}

// NewServiceMetrics creates a new metrics tracker for a service
func NewServiceMetrics(serviceName string) *ServiceMetrics {
	return &ServiceMetrics{
		serviceName:    serviceName,
		lastUpdated:    time.Now(),
		customCounters: make(map[string]int64),
		performance:    NewPerformanceMetrics(),
	}
}

// RecordRequest records a request with its success status and processing time
func (m *ServiceMetrics) RecordRequest(success bool, processingTime time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests++
	m.totalProcessingTime += processingTime
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}
	m.lastUpdated = time.Now()
	m.performance.RecordProcessingTime(processingTime)
}

// IncrementCustomCounter increments a named counter
func (m *ServiceMetrics) IncrementCustomCounter(key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.customCounters[key]++
	m.lastUpdated = time.Now()
}

// GetSuccessRate returns the success rate as a percentage
func (m *ServiceMetrics) GetSuccessRate() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.successRateLocked()
}

func (m *ServiceMetrics) successRateLocked() float64 {
	if m.totalRequests == 0 {
		return 0.0
	}
	return float64(m.successfulRequests) / float64(m.totalRequests) * 100.0
}

// GetSnapshot returns a thread-safe snapshot of current metrics
func (m *ServiceMetrics) GetSnapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.customCounters))
	for k, v := range m.customCounters {
		counters[k] = v
	}

	var average time.Duration
	if m.totalRequests > 0 {
		average = time.Duration(int64(m.totalProcessingTime) / m.totalRequests)
	}
	perf := m.performance.GetPerformanceSnapshot()

	return MetricsSnapshot{
		ServiceName:           m.serviceName,
		TotalRequests:         m.totalRequests,
		SuccessfulRequests:    m.successfulRequests,
		FailedRequests:        m.failedRequests,
		SuccessRate:           m.successRateLocked(),
		AverageProcessingTime: average,
		P95ProcessingTime:     perf.P95,
		MaxProcessingTime:     perf.Max,
		LastUpdated:           m.lastUpdated,
		CustomCounters:        counters,
	}
}

// LogSummary logs a metrics summary
func (m *ServiceMetrics) LogSummary() {
	snapshot := m.GetSnapshot()
	logrus.WithFields(logrus.Fields{
		"service_name":            snapshot.ServiceName,
		"total_requests":          snapshot.TotalRequests,
		"successful_requests":     snapshot.SuccessfulRequests,
		"failed_requests":         snapshot.FailedRequests,
		"success_rate":            snapshot.SuccessRate,
		"average_processing_time": snapshot.AverageProcessingTime,
		"p95_processing_time":     snapshot.P95ProcessingTime,
		"custom_counters":         snapshot.CustomCounters,
	}).Info("Service metrics summary")
}

// PerformanceMetrics keeps a sliding window of processing times
type PerformanceMetrics struct {
	mutex           sync.RWMutex
	min             time.Duration
	max             time.Duration
	processingTimes []time.Duration
}

// PerformanceSnapshot is a copy of PerformanceMetrics
type PerformanceSnapshot struct {
	Min time.Duration
	Max time.Duration
	P95 time.Duration
	P99 time.Duration
}

const performanceWindow = 1000

// NewPerformanceMetrics creates a new performance metrics tracker
func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		processingTimes: make([]time.Duration, 0, performanceWindow),
	}
}

// RecordProcessingTime records a processing time, keeping the last 1000 samples
func (pm *PerformanceMetrics) RecordProcessingTime(duration time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.min == 0 || duration < pm.min {
		pm.min = duration
	}
	if duration > pm.max {
		pm.max = duration
	}
	if len(pm.processingTimes) >= performanceWindow {
		pm.processingTimes = pm.processingTimes[1:]
	}
	pm.processingTimes = append(pm.processingTimes, duration)
}

// GetPerformanceSnapshot returns min/max and percentiles over the window
func (pm *PerformanceMetrics) GetPerformanceSnapshot() PerformanceSnapshot {
	pm.mutex.RLock()
	times := make([]time.Duration, len(pm.processingTimes))
	copy(times, pm.processingTimes)
	snapshot := PerformanceSnapshot{Min: pm.min, Max: pm.max}
	pm.mutex.RUnlock()

	if len(times) == 0 {
		return snapshot
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	snapshot.P95 = times[percentileIndex(len(times), 0.95)]
	snapshot.P99 = times[percentileIndex(len(times), 0.99)]
	return snapshot
}

func percentileIndex(n int, p float64) int {
	idx := int(float64(n) * p)
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// MetricsRegistry collects the ServiceMetrics of every service for the metrics endpoint
type MetricsRegistry struct {
	mutex   sync.RWMutex
	metrics map[string]*ServiceMetrics
}

// NewMetricsRegistry creates an empty registry
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{metrics: make(map[string]*ServiceMetrics)}
}

// Register returns the metrics for name, creating them on first use
func (r *MetricsRegistry) Register(name string) *ServiceMetrics {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if m, ok := r.metrics[name]; ok {
		return m
	}
	m := NewServiceMetrics(name)
	r.metrics[name] = m
	return m
}

// Snapshots returns snapshots sorted by service name
func (r *MetricsRegistry) Snapshots() []MetricsSnapshot {
	r.mutex.RLock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	r.mutex.RUnlock()

	sort.Strings(names)
	out := make([]MetricsSnapshot, 0, len(names))
	for _, name := range names {
		r.mutex.RLock()
		m := r.metrics[name]
		r.mutex.RUnlock()
		out = append(out, m.GetSnapshot())
	}
	return out
}
