package observability

import (
	"strconv"
	"sync"
	"time"
)

// RouteStats aggregates observations for one path/method/status key.
type RouteStats struct {
	Count        int64
	TotalLatency time.Duration
	MaxLatency   time.Duration
}

// Metrics keeps in-memory request and error counters. A nil receiver
// disables collection.
type Metrics struct {
	mu         sync.Mutex
	requests   map[string]*RouteStats
	errorCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:   make(map[string]*RouteStats),
		errorCount: make(map[string]int64),
	}
}

// RecordRequest counts a completed request and folds its latency into the
// per-route aggregate.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[key]
	if !ok {
		stats = &RouteStats{}
		m.requests[key] = stats
	}
	stats.Count++
	stats.TotalLatency += duration
	if duration > stats.MaxLatency {
		stats.MaxLatency = duration
	}
}

// RecordError increments the error counter for a route/code pair.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RequestStats returns a copy of the aggregate for one route key.
func (m *Metrics) RequestStats(path, method string, status int) RouteStats {
	if m == nil {
		return RouteStats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.requests[pathKey(path, method, status)]; ok {
		return *stats
	}
	return RouteStats{}
}

// ErrorCount returns the error counter for a route/code pair.
func (m *Metrics) ErrorCount(path, method, code string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorCount[path+"|"+method+"|"+code]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
