package loop

import "time"

// Jitter selects the backoff jitter strategy for the retry wrapper.
type Jitter string

const (
	JitterFull    Jitter = "full"
	JitterPartial Jitter = "partial"
	JitterNone    Jitter = "none"
)

// Config bundles every pacing/threshold knob the loop consults, per
// spec.md §6's environment-variable surface. One Config is built once
// (by config.LoadEnv) and threaded down as a parameter — no component
// below this reads the environment directly.
type Config struct {
	// Retry wrapper (§4.4 step 3).
	MaxRetries        int
	InitialDelayMs    int
	MaxDelayMs        int
	BackoffMultiplier float64
	Jitter            Jitter
	MaxRateLimitRetries int
	MaxRateLimitWaitMs  int

	// Cycle pacing.
	MinCycleIntervalMs int
	MaxCycleIntervalMs int
	PerspectiveDelayMs int
	HighRejectionThreshold int

	// UL mode.
	MaxPhaseRetries          int
	PhaseCompletionLengthMin int

	// Stagnation.
	StagnationThreshold   float64
	MaxStagnationCount    int
	TrajectoryWindow      int

	// Ring buffer caps.
	CycleSummaryCap     int
	SuccessfulPatternCap int

	// Score thresholds (spec.md §4.4 post-cycle handling).
	HighScoreThreshold float64
	EarlyStopScore     float64

	// DetectionMinFlagged is the minimum number of independently-flagged
	// detect patterns (out of the eight run by detect.Run, separate from
	// MetacognitiveCheck) a low-score cycle needs before its findings are
	// folded into the next cycle's/phase's prompt. ShouldTriggerVerification
	// firing on its own bypasses this count.
	DetectionMinFlagged int

	DisableWorkStealing bool
}

// DefaultConfig returns the documented defaults for every loop knob.
func DefaultConfig() Config {
	return Config{
		MaxRetries:          5,
		InitialDelayMs:      500,
		MaxDelayMs:          30_000,
		BackoffMultiplier:   2.0,
		Jitter:              JitterFull,
		MaxRateLimitRetries: 3,
		MaxRateLimitWaitMs:  60_000,

		MinCycleIntervalMs:    2_000,
		MaxCycleIntervalMs:    60_000,
		PerspectiveDelayMs:    500,
		HighRejectionThreshold: 3,

		MaxPhaseRetries:          3,
		PhaseCompletionLengthMin: 200,

		StagnationThreshold: 0.85,
		MaxStagnationCount:  3,
		TrajectoryWindow:    50,

		CycleSummaryCap:      20,
		SuccessfulPatternCap: 10,

		HighScoreThreshold: 75,
		EarlyStopScore:     0.95,

		DetectionMinFlagged: 2,

		DisableWorkStealing: false,
	}
}

// Merge returns cfg with every non-zero field of other overlaid, matching
// the Merge convention used by coordinator.Config and ratelimit.Config.
func (cfg Config) Merge(other Config) Config {
	if other.MaxRetries != 0 {
		cfg.MaxRetries = other.MaxRetries
	}
	if other.InitialDelayMs != 0 {
		cfg.InitialDelayMs = other.InitialDelayMs
	}
	if other.MaxDelayMs != 0 {
		cfg.MaxDelayMs = other.MaxDelayMs
	}
	if other.BackoffMultiplier != 0 {
		cfg.BackoffMultiplier = other.BackoffMultiplier
	}
	if other.Jitter != "" {
		cfg.Jitter = other.Jitter
	}
	if other.MaxRateLimitRetries != 0 {
		cfg.MaxRateLimitRetries = other.MaxRateLimitRetries
	}
	if other.MaxRateLimitWaitMs != 0 {
		cfg.MaxRateLimitWaitMs = other.MaxRateLimitWaitMs
	}
	if other.MinCycleIntervalMs != 0 {
		cfg.MinCycleIntervalMs = other.MinCycleIntervalMs
	}
	if other.MaxCycleIntervalMs != 0 {
		cfg.MaxCycleIntervalMs = other.MaxCycleIntervalMs
	}
	if other.PerspectiveDelayMs != 0 {
		cfg.PerspectiveDelayMs = other.PerspectiveDelayMs
	}
	if other.HighRejectionThreshold != 0 {
		cfg.HighRejectionThreshold = other.HighRejectionThreshold
	}
	if other.MaxPhaseRetries != 0 {
		cfg.MaxPhaseRetries = other.MaxPhaseRetries
	}
	if other.PhaseCompletionLengthMin != 0 {
		cfg.PhaseCompletionLengthMin = other.PhaseCompletionLengthMin
	}
	if other.StagnationThreshold != 0 {
		cfg.StagnationThreshold = other.StagnationThreshold
	}
	if other.MaxStagnationCount != 0 {
		cfg.MaxStagnationCount = other.MaxStagnationCount
	}
	if other.TrajectoryWindow != 0 {
		cfg.TrajectoryWindow = other.TrajectoryWindow
	}
	if other.CycleSummaryCap != 0 {
		cfg.CycleSummaryCap = other.CycleSummaryCap
	}
	if other.SuccessfulPatternCap != 0 {
		cfg.SuccessfulPatternCap = other.SuccessfulPatternCap
	}
	if other.HighScoreThreshold != 0 {
		cfg.HighScoreThreshold = other.HighScoreThreshold
	}
	if other.EarlyStopScore != 0 {
		cfg.EarlyStopScore = other.EarlyStopScore
	}
	if other.DetectionMinFlagged != 0 {
		cfg.DetectionMinFlagged = other.DetectionMinFlagged
	}
	if other.DisableWorkStealing {
		cfg.DisableWorkStealing = true
	}
	return cfg
}

// clampDuration bounds a millisecond delay between the configured
// min/max cycle interval, per §8's boundary behavior.
func clampDuration(ms, minMs, maxMs int) time.Duration {
	if ms < minMs {
		ms = minMs
	}
	if ms > maxMs {
		ms = maxMs
	}
	return time.Duration(ms) * time.Millisecond
}
