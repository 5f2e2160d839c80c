package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tailored-agentic-units/llmctl/coordinator"
	"github.com/tailored-agentic-units/llmctl/loop"
	"github.com/tailored-agentic-units/llmctl/ratelimit"
)

// bound pairs a clamped integer env var with its min/max, per spec.md
// §6's "clamped to explicit min/max bounds with fallback to the default
// on violation" rule. The bounds themselves are not named in spec.md;
// they are decided here and recorded in the project's design ledger.
type bound struct {
	name     string
	min, max int
}

var intBounds = []bound{
	{"total_max_llm", 1, 64},
	{"heartbeat_interval", 1, 3600},
	{"heartbeat_timeout", 5, 7200},

	{"max_retries", 0, 20},
	{"initial_delay_ms", 10, 60_000},
	{"max_delay_ms", 100, 600_000},
	{"max_rate_limit_retries", 0, 20},
	{"max_rate_limit_wait_ms", 1_000, 3_600_000},
	{"min_cycle_interval_ms", 0, 600_000},
	{"max_cycle_interval_ms", 1_000, 3_600_000},
	{"perspective_delay_ms", 0, 60_000},
	{"high_rejection_threshold", 1, 100},

	{"max_phase_retries", 1, 20},
	{"phase_completion_length_min", 1, 100_000},
}

// floatBound pairs a clamped float env var with its min/max, mirroring
// bound for the one knob (retry backoff multiplier) that isn't integral.
type floatBound struct {
	name     string
	min, max float64
}

var floatBounds = []floatBound{
	{"backoff_multiplier", 1.0, 10.0},
}

// Overrides is the immutable set of env-derived values, merged over each
// subsystem's DefaultConfig exactly once at module init per the Design
// Notes' config-layering instruction.
type Overrides struct {
	Coordinator coordinator.Config
	RateLimit   ratelimit.Config
	Loop        loop.Config
}

// LoadEnv reads the documented environment-variable surface exactly once
// and returns the three subsystem configs it affects, each merged over
// its package DefaultConfig. A malformed or out-of-bounds value is
// ignored, leaving the default in place; nothing here panics or exits.
func LoadEnv() Overrides {
	raw := make(map[string]int, len(intBounds))
	for _, b := range intBounds {
		if v, ok := clampedEnvInt(b); ok {
			raw[b.name] = v
		}
	}

	rawFloat := make(map[string]float64, len(floatBounds))
	for _, b := range floatBounds {
		if v, ok := clampedEnvFloat(b); ok {
			rawFloat[b.name] = v
		}
	}

	coordCfg := coordinator.Config{}
	if v, ok := raw["total_max_llm"]; ok {
		coordCfg.TotalMaxLLM = v
	}
	if v, ok := raw["heartbeat_interval"]; ok {
		coordCfg.HeartbeatInterval = secondsToDuration(v)
	}
	if v, ok := raw["heartbeat_timeout"]; ok {
		coordCfg.HeartbeatTimeout = secondsToDuration(v)
	}
	if envBool("disable_work_stealing") {
		coordCfg.DisableWorkStealing = true
	}

	loopCfg := loop.Config{}
	if v, ok := raw["max_retries"]; ok {
		loopCfg.MaxRetries = v
	}
	if v, ok := raw["initial_delay_ms"]; ok {
		loopCfg.InitialDelayMs = v
	}
	if v, ok := raw["max_delay_ms"]; ok {
		loopCfg.MaxDelayMs = v
	}
	if v, ok := rawFloat["backoff_multiplier"]; ok {
		loopCfg.BackoffMultiplier = v
	}
	if j, ok := envJitter("jitter"); ok {
		loopCfg.Jitter = j
	}
	if v, ok := raw["max_rate_limit_retries"]; ok {
		loopCfg.MaxRateLimitRetries = v
	}
	if v, ok := raw["max_rate_limit_wait_ms"]; ok {
		loopCfg.MaxRateLimitWaitMs = v
	}
	if v, ok := raw["min_cycle_interval_ms"]; ok {
		loopCfg.MinCycleIntervalMs = v
	}
	if v, ok := raw["max_cycle_interval_ms"]; ok {
		loopCfg.MaxCycleIntervalMs = v
	}
	if v, ok := raw["perspective_delay_ms"]; ok {
		loopCfg.PerspectiveDelayMs = v
	}
	if v, ok := raw["high_rejection_threshold"]; ok {
		loopCfg.HighRejectionThreshold = v
	}
	if v, ok := raw["max_phase_retries"]; ok {
		loopCfg.MaxPhaseRetries = v
	}
	if v, ok := raw["phase_completion_length_min"]; ok {
		loopCfg.PhaseCompletionLengthMin = v
	}
	if envBool("disable_work_stealing") {
		loopCfg.DisableWorkStealing = true
	}

	return Overrides{
		Coordinator: coordinator.DefaultConfig().Merge(coordCfg),
		RateLimit:   ratelimit.DefaultConfig(),
		Loop:        loop.DefaultConfig().Merge(loopCfg),
	}
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// clampedEnvInt reads b.name and accepts it only within [b.min, b.max];
// malformed, unset or out-of-range values report "not set" (ok=false)
// rather than being clamped.
func clampedEnvInt(b bound) (int, bool) {
	raw, set := os.LookupEnv(b.name)
	if !set {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if v < b.min || v > b.max {
		return 0, false
	}
	return v, true
}

// clampedEnvFloat mirrors clampedEnvInt for the one non-integral knob.
func clampedEnvFloat(b floatBound) (float64, bool) {
	raw, set := os.LookupEnv(b.name)
	if !set {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if v < b.min || v > b.max {
		return 0, false
	}
	return v, true
}

func envBool(name string) bool {
	raw, set := os.LookupEnv(name)
	if !set {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return v
}

func envJitter(name string) (loop.Jitter, bool) {
	raw, set := os.LookupEnv(name)
	if !set {
		return "", false
	}
	switch loop.Jitter(raw) {
	case loop.JitterFull, loop.JitterPartial, loop.JitterNone:
		return loop.Jitter(raw), true
	default:
		return "", false
	}
}
