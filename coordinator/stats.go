package coordinator

import (
	"sync"
	"time"
)

const stealLatencyWindow = 100

// StealingStats accumulates work-stealing telemetry for this instance.
// Grounded on the teacher's atomic-counter Metrics/MetricsSnapshot shape
// (orchestrate/hub/metrics.go), adapted here with a mutex rather than pure
// atomics since recording a sample also requires maintaining a bounded
// running-mean window, which atomics alone can't express.
type StealingStats struct {
	mu            sync.Mutex
	attempts      int64
	successes     int64
	failures      int64
	latencies     []time.Duration
	latencyCursor int
	lastSuccessAt time.Time
}

func newStealingStats() *StealingStats {
	return &StealingStats{latencies: make([]time.Duration, 0, stealLatencyWindow)}
}

func (s *StealingStats) recordAttempt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
}

func (s *StealingStats) recordSuccess(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes++
	s.lastSuccessAt = time.Now()
	if len(s.latencies) < stealLatencyWindow {
		s.latencies = append(s.latencies, latency)
	} else {
		s.latencies[s.latencyCursor] = latency
		s.latencyCursor = (s.latencyCursor + 1) % stealLatencyWindow
	}
}

func (s *StealingStats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

// StealingStatsSnapshot is an immutable point-in-time read of StealingStats.
type StealingStatsSnapshot struct {
	Attempts        int64
	Successes       int64
	Failures        int64
	MeanLatencyMs   float64
	LastSuccessAt   time.Time
}

// GetStealingStats returns a snapshot of this instance's work-stealing
// telemetry.
func (c *Coordinator) GetStealingStats() StealingStatsSnapshot {
	c.stealing.mu.Lock()
	defer c.stealing.mu.Unlock()

	var mean float64
	if n := len(c.stealing.latencies); n > 0 {
		var sum time.Duration
		for _, l := range c.stealing.latencies {
			sum += l
		}
		mean = float64(sum.Milliseconds()) / float64(n)
	}

	return StealingStatsSnapshot{
		Attempts:      c.stealing.attempts,
		Successes:     c.stealing.successes,
		Failures:      c.stealing.failures,
		MeanLatencyMs: mean,
		LastSuccessAt: c.stealing.lastSuccessAt,
	}
}
