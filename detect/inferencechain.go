package detect

import (
	"regexp"
	"strings"
)

var (
	premiseLine    = regexp.MustCompile(`(?mi)^\s*PREMISE\s*:\s*(.+)$`)
	conclusionLine = regexp.MustCompile(`(?mi)^\s*(CONCLUSION|THEREFORE)\s*:\s*(.+)$`)
	stepLine       = regexp.MustCompile(`(?mi)^\s*STEP\s*\d*\s*:\s*(.+)$`)
	thereforeWord  = regexp.MustCompile(`(?i)\btherefore\b|\bthus\b|\bhence\b`)
	unsupportedGap = regexp.MustCompile(`(?i)\bit follows that\b|\bclearly\b.{0,10}\bmust\b`)
)

// extractInferenceChain pulls an explicit PREMISE:/STEP:/CONCLUSION:
// structure from output when present, falling back to a best-effort
// single-conclusion read keyed on "therefore"/"thus"/"hence" markers.
func extractInferenceChain(output string) InferenceChain {
	chain := InferenceChain{Validity: ValidityUnknown}

	for _, m := range premiseLine.FindAllStringSubmatch(output, -1) {
		chain.Premises = append(chain.Premises, strings.TrimSpace(m[1]))
	}
	for _, m := range stepLine.FindAllStringSubmatch(output, -1) {
		chain.Steps = append(chain.Steps, strings.TrimSpace(m[1]))
	}
	if m := conclusionLine.FindStringSubmatch(output); m != nil {
		chain.Conclusion = strings.TrimSpace(m[2])
	} else if loc := thereforeWord.FindStringIndex(output); loc != nil {
		chain.Conclusion = strings.TrimSpace(firstSentenceAfter(output, loc[1]))
	}

	switch {
	case chain.Conclusion == "":
		chain.Validity = ValidityUnknown
	case len(chain.Premises) == 0:
		chain.Validity = ValidityUnknown
		chain.Gaps = append(chain.Gaps, "conclusion present with no stated premises")
	case unsupportedGap.MatchString(output) && len(chain.Premises) < 2:
		chain.Validity = ValidityInvalid
		chain.Gaps = append(chain.Gaps, "conclusion asserted as self-evident from a single premise")
	default:
		chain.Validity = ValidityValid
	}

	return chain
}

func firstSentenceAfter(s string, idx int) string {
	if idx >= len(s) {
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexAny(rest, ".\n"); end >= 0 {
		return rest[:end]
	}
	return rest
}

// classifyInferencePatterns splits an InferenceChain's steps into those
// that plausibly support the conclusion and those that look like
// non-sequiturs, based on whether each step shares key terms with the
// conclusion.
func classifyInferencePatterns(chain InferenceChain) (valid, invalid []string) {
	if chain.Conclusion == "" {
		return nil, nil
	}
	conclusionTerms := keyTerms(chain.Conclusion)
	for _, step := range chain.Steps {
		if overlapsTerms(keyTerms(step), conclusionTerms) {
			valid = append(valid, step)
		} else {
			invalid = append(invalid, step)
		}
	}
	return valid, invalid
}
