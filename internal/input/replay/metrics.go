package replay

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

const latencySamples = 512

// Metrics counts replayed input and measures how long injector calls take.
// It is safe for concurrent use.
type Metrics struct {
	// Event counters
	pressesTotal   atomic.Uint64
	gesturesTotal  atomic.Uint64
	ticksTotal     atomic.Uint64
	cancelledTotal atomic.Uint64
	injectorErrors atomic.Uint64

	// Emit latency ring buffer
	mu        sync.Mutex
	latencies []time.Duration
	idx       int

	peakLatency atomic.Int64
	startTime   time.Time
}

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies: make([]time.Duration, latencySamples),
		startTime: time.Now(),
	}
}

// RecordPress records a chord or a held press.
func (m *Metrics) RecordPress() {
	m.pressesTotal.Add(1)
}

// RecordGesture records a wheel gesture that emitted ticks clicks.
func (m *Metrics) RecordGesture(ticks int) {
	m.gesturesTotal.Add(1)
	m.ticksTotal.Add(uint64(max(ticks, 0)))
}

// RecordCancelled records a task that stopped before its natural end.
func (m *Metrics) RecordCancelled() {
	m.cancelledTotal.Add(1)
}

// RecordInjectorError records a failed injector call.
func (m *Metrics) RecordInjectorError() {
	m.injectorErrors.Add(1)
}

// RecordEmit records how long one batch of injector calls took.
func (m *Metrics) RecordEmit(latency time.Duration) {
	latencyNs := latency.Nanoseconds()
	for {
		current := m.peakLatency.Load()
		if latencyNs <= current {
			break
		}
		if m.peakLatency.CompareAndSwap(current, latencyNs) {
			break
		}
	}

	m.mu.Lock()
	m.latencies[m.idx] = latency
	m.idx = (m.idx + 1) % len(m.latencies)
	m.mu.Unlock()
}

// timeEmit runs fn and records its duration.
func (m *Metrics) timeEmit(fn func()) {
	start := time.Now()
	fn()
	m.RecordEmit(time.Since(start))
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	PressesTotal   uint64
	GesturesTotal  uint64
	TicksTotal     uint64
	CancelledTotal uint64
	InjectorErrors uint64

	AvgEmitLatency  time.Duration
	MaxEmitLatency  time.Duration
	P99EmitLatency  time.Duration
	PeakEmitLatency time.Duration

	Uptime time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	latencies := slices.Clone(m.latencies)
	start := m.startTime
	m.mu.Unlock()

	snap := MetricsSnapshot{
		PressesTotal:    m.pressesTotal.Load(),
		GesturesTotal:   m.gesturesTotal.Load(),
		TicksTotal:      m.ticksTotal.Load(),
		CancelledTotal:  m.cancelledTotal.Load(),
		InjectorErrors:  m.injectorErrors.Load(),
		PeakEmitLatency: time.Duration(m.peakLatency.Load()),
		Uptime:          time.Since(start),
	}
	snap.AvgEmitLatency, snap.MaxEmitLatency, snap.P99EmitLatency = latencyStats(latencies)
	return snap
}

// latencyStats computes average, max, and p99 over the non-zero samples.
func latencyStats(latencies []time.Duration) (avg, maxLat, p99 time.Duration) {
	valid := slices.DeleteFunc(latencies, func(l time.Duration) bool { return l <= 0 })
	if len(valid) == 0 {
		return 0, 0, 0
	}

	var sum time.Duration
	for _, l := range valid {
		sum += l
	}
	avg = sum / time.Duration(len(valid))

	slices.Sort(valid)
	maxLat = valid[len(valid)-1]
	idx := min(int(float64(len(valid))*0.99), len(valid)-1)
	return avg, maxLat, valid[idx]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.pressesTotal.Store(0)
	m.gesturesTotal.Store(0)
	m.ticksTotal.Store(0)
	m.cancelledTotal.Store(0)
	m.injectorErrors.Store(0)
	m.peakLatency.Store(0)

	m.mu.Lock()
	clear(m.latencies)
	m.idx = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}

// HealthStatus summarizes whether input emission is working.
type HealthStatus struct {
	Healthy          bool
	InjectorErrors   uint64
	P99Latency       time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck reports unhealthy if any injector call failed or the p99 emit
// latency exceeds latencyThreshold.
func (m *Metrics) HealthCheck(latencyThreshold time.Duration) HealthStatus {
	status := HealthStatus{
		Healthy:          true,
		InjectorErrors:   m.injectorErrors.Load(),
		P99Latency:       m.Snapshot().P99EmitLatency,
		LatencyThreshold: latencyThreshold,
		Message:          "healthy",
	}

	switch {
	case status.InjectorErrors > 0:
		status.Healthy = false
		status.Message = "injector errors detected"
	case status.P99Latency > latencyThreshold:
		status.Healthy = false
		status.Message = "latency threshold exceeded"
	}
	return status
}
