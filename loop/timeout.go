package loop

import "github.com/tailored-agentic-units/llmctl/hostcap"

// modelBaselineMs is the per-model baseline timeout before thinking-level
// scaling. Unknown models fall back to a conservative default.
var modelBaselineMs = map[string]int64{
	"claude-opus":   120_000,
	"claude-sonnet": 60_000,
	"claude-haiku":  20_000,
	"gpt-5":         90_000,
	"gpt-5-mini":    30_000,
}

const defaultModelBaselineMs = 45_000

var thinkingMultiplier = map[hostcap.ThinkingLevel]float64{
	hostcap.ThinkingNone:   1.0,
	hostcap.ThinkingLow:    1.25,
	hostcap.ThinkingMedium: 1.75,
	hostcap.ThinkingHigh:   2.5,
}

// computeCallTimeoutMs scales a model's baseline timeout by its thinking
// level, enforced per attempt rather than per retry sequence (§5).
func computeCallTimeoutMs(modelID string, level hostcap.ThinkingLevel) int64 {
	baseline, ok := modelBaselineMs[modelID]
	if !ok {
		baseline = defaultModelBaselineMs
	}
	mult, ok := thinkingMultiplier[level]
	if !ok {
		mult = 1.0
	}
	return int64(float64(baseline) * mult)
}
