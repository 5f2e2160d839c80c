package detect

import (
	"regexp"
	"strconv"
)

var (
	conclusionMarkers = compileAll(`\bconclusion\b`, `\bin summary\b`, `\btherefore\b`, `\bwe (should|will)\b`)
	alternativeMarkers = compileAll(
		`\balternative(ly)?\b`, `\bhowever\b`, `\bcounter[- ]?evidence\b`,
		`\blimitation(s)?\b`, `\bon the other hand\b`, `\binstead\b`, `\btrade[- ]?off\b`,
	)
)

// DetectMissingAlternatives flags a high-confidence conclusion that
// offers no alternative, counter-evidence, limitation, or discussion
// markers, per spec.md §4.5.
func DetectMissingAlternatives(output string) bool {
	hasConclusion := matchesAny(conclusionMarkers, output)
	highConfidence := countMatches(highCertaintyMarkers, output) > 0 || confidenceAbove(output, 0.85)
	hasAlternative := matchesAny(alternativeMarkers, output)

	return hasConclusion && highConfidence && !hasAlternative
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func confidenceAbove(output string, threshold float64) bool {
	m := confidenceLine.FindStringSubmatch(output)
	if m == nil {
		return false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	return err == nil && v > threshold
}
