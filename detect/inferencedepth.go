package detect

// InferenceDepthScore aggregates a MetacognitiveResult into a single
// [0,1] monitoring value: baseline 0.5, adjusted by bounded positive and
// negative contributions. It is never used to gate termination, only
// surfaced for the loop's prompt construction and run log.
func InferenceDepthScore(r MetacognitiveResult) float64 {
	score := 0.5

	if r.InferenceChain.Validity == ValidityValid {
		score += 0.15
	} else if r.InferenceChain.Validity == ValidityInvalid {
		score -= 0.15
	}

	if len(r.InferenceChain.Gaps) > 0 {
		score -= 0.05 * float64(min(len(r.InferenceChain.Gaps), 3))
	}

	score -= 0.05 * float64(min(len(r.Fallacies), 3))

	validRatio := 0.0
	total := len(r.ValidPatterns) + len(r.InvalidPatterns)
	if total > 0 {
		validRatio = float64(len(r.ValidPatterns)) / float64(total)
	}
	score += 0.1 * (validRatio - 0.5)

	switch r.CurrentThinkingMode {
	case ThinkingModeReflective:
		score += 0.1
	case ThinkingModeShallow:
		score -= 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
