package ratelimit

import "time"

// Config tunes the adaptive rate controller. Zero fields mean "use the
// default", per the Default+Merge convention used across this module.
type Config struct {
	// OriginalLimit is each (provider, model)'s baseline concurrency cap
	// before any adaptive reduction.
	OriginalLimit int
	// RejectionWindow is how far back record_rejection's rolling window
	// looks when computing density and predicted_rejection_probability.
	RejectionWindow time.Duration
	// RecoveryThreshold is the number of consecutive successes required
	// before adaptive_limit is nudged back up toward original_limit.
	RecoveryThreshold int
	// ThrottleDensity is the rejections-per-second-of-window above which
	// should_throttle is set.
	ThrottleDensity float64
	// HardCeilingPerSecond and HardCeilingPerMinute configure the secondary
	// catrate.Limiter hard ceiling layered under the adaptive soft limit.
	// Zero disables the hard ceiling.
	HardCeilingPerSecond int
	HardCeilingPerMinute int
}

// DefaultConfig returns this package's built-in defaults.
func DefaultConfig() Config {
	return Config{
		OriginalLimit:        6,
		RejectionWindow:      60 * time.Second,
		RecoveryThreshold:    5,
		ThrottleDensity:      0.1, // roughly 1 rejection per 10s sustained
		HardCeilingPerSecond: 10,
		HardCeilingPerMinute: 120,
	}
}

// Merge overwrites only the non-zero fields of other onto a copy of c.
func (c Config) Merge(other Config) Config {
	merged := c
	if other.OriginalLimit != 0 {
		merged.OriginalLimit = other.OriginalLimit
	}
	if other.RejectionWindow != 0 {
		merged.RejectionWindow = other.RejectionWindow
	}
	if other.RecoveryThreshold != 0 {
		merged.RecoveryThreshold = other.RecoveryThreshold
	}
	if other.ThrottleDensity != 0 {
		merged.ThrottleDensity = other.ThrottleDensity
	}
	if other.HardCeilingPerSecond != 0 {
		merged.HardCeilingPerSecond = other.HardCeilingPerSecond
	}
	if other.HardCeilingPerMinute != 0 {
		merged.HardCeilingPerMinute = other.HardCeilingPerMinute
	}
	return merged
}
