package serialqueue

import (
	"math"
	"sync"
	"time"
)

// Metrics accumulates lightweight runtime statistics for a Queue: async
// queue depth (sampled on enqueue) and per-item execution
// latency, the latter tracked with a streaming P-Square quantile estimator
// so that percentile reporting costs O(1) per observation and never
// retains the raw samples. Enabled per-Queue via WithMetrics.
//
// Thread Safety: safe for concurrent use; every method takes mu.
type Metrics struct {
	mu sync.Mutex

	maxDepth     int
	enqueued     uint64
	dequeued     uint64
	latency      *pSquareMultiQuantile
	latencyOrder []float64
}

// latencyPercentiles are the quantiles tracked for item execution latency.
var latencyPercentiles = []float64{0.5, 0.95, 0.99}

func newMetrics() *Metrics {
	return &Metrics{
		latency:      newPSquareMultiQuantile(latencyPercentiles...),
		latencyOrder: latencyPercentiles,
	}
}

func (m *Metrics) recordEnqueue(depthAfter int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.enqueued++
	if depthAfter > m.maxDepth {
		m.maxDepth = depthAfter
	}
	m.mu.Unlock()
}

func (m *Metrics) recordDequeue(depthAfter int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.dequeued++
	m.mu.Unlock()
}

func (m *Metrics) recordLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.latency.Update(float64(d))
	m.mu.Unlock()
}

// MetricsSnapshot is a point-in-time copy of a Queue's Metrics, safe to
// read without further synchronization.
type MetricsSnapshot struct {
	// ItemsEnqueued is the total number of work items (async submissions
	// plus fired timers) ever pushed onto the async queue.
	ItemsEnqueued uint64
	// ItemsDequeued is the total number of work items the drain loop has
	// taken off the async queue to run.
	ItemsDequeued uint64
	// MaxDepth is the highest async queue length observed at any enqueue.
	MaxDepth int
	// LatencyP50, LatencyP95, and LatencyP99 are streaming estimates of
	// the corresponding percentiles of per-item execution duration.
	LatencyP50 time.Duration
	LatencyP95 time.Duration
	LatencyP99 time.Duration
	// LatencyMean is the arithmetic mean of every recorded duration.
	LatencyMean time.Duration
	// LatencyMax is the largest single duration recorded.
	LatencyMax time.Duration
	// LatencyCount is the number of durations recorded.
	LatencyCount int
}

func (m *Metrics) snapshot() *MetricsSnapshot {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &MetricsSnapshot{
		ItemsEnqueued: m.enqueued,
		ItemsDequeued: m.dequeued,
		MaxDepth:      m.maxDepth,
		LatencyMean:   durationFromNanos(m.latency.Mean()),
		LatencyMax:    durationFromNanos(m.latency.Max()),
		LatencyCount:  m.latency.Count(),
	}
	for i, p := range m.latencyOrder {
		v := durationFromNanos(m.latency.Quantile(i))
		switch p {
		case 0.5:
			s.LatencyP50 = v
		case 0.95:
			s.LatencyP95 = v
		case 0.99:
			s.LatencyP99 = v
		}
	}
	return s
}

func durationFromNanos(ns float64) time.Duration {
	if ns <= 0 || math.IsNaN(ns) {
		return 0
	}
	return time.Duration(ns)
}
