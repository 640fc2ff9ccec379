package qsearch

import (
	"sort"
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	Sessions     int64
	Attempts     int64
	Successes    int64
	Exhausted    int64
	Faults       int64
	TotalAttempt time.Duration

	AverageAttemptLatency time.Duration
	P95AttemptLatency     time.Duration
	P99AttemptLatency     time.Duration
	SuccessRate           float64

	// Sliding window for percentile calculation
	latencyWindow []time.Duration
	windowSize    int
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindow: make([]time.Duration, 0, 1000), // Store last 1000 measurements
		windowSize:    1000,
	}
}

func (m *Metrics) recordSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions++
}

func (m *Metrics) recordAttempt(startTime time.Time, found bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Attempts++
	m.TotalAttempt += duration

	if found {
		m.Successes++
	}
	m.SuccessRate = float64(m.Successes) / float64(m.Attempts)

	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) recordFault() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Faults++
}

func (m *Metrics) recordExhausted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exhausted++
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageAttemptLatency = m.TotalAttempt / time.Duration(m.Attempts)

	m.latencyWindow = append(m.latencyWindow, duration)

	// Remove oldest entries if we exceed window size
	if len(m.latencyWindow) > m.windowSize {
		m.latencyWindow = m.latencyWindow[1:]
	}

	sorted := make([]time.Duration, len(m.latencyWindow))
	copy(sorted, m.latencyWindow)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
	p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

	m.P95AttemptLatency = sorted[p95Index]
	m.P99AttemptLatency = sorted[p99Index]
}

func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"sessions":     m.Sessions,
		"attempts":     m.Attempts,
		"successes":    m.Successes,
		"exhausted":    m.Exhausted,
		"faults":       m.Faults,
		"success_rate": m.SuccessRate,
		"avg_latency":  m.AverageAttemptLatency.Microseconds(),
		"p95_latency":  m.P95AttemptLatency.Microseconds(),
		"p99_latency":  m.P99AttemptLatency.Microseconds(),
	}
}
