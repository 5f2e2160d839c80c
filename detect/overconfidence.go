package detect

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	confidenceLine = regexp.MustCompile(`(?mi)^\s*CONFIDENCE\s*:\s*([0-9.]+)\s*$`)
	evidenceLine   = regexp.MustCompile(`(?mi)^\s*EVIDENCE\s*:\s*(.+)$`)
	specificityMarkers = regexp.MustCompile("`[^`]+`|\\b[\\w/.\\-]+\\.[a-zA-Z]{1,5}\\b|:\\d+\\b")
)

// OverconfidenceResult is the outcome of DetectOverconfidence.
type OverconfidenceResult struct {
	Flagged bool
	Reason  string
}

// DetectOverconfidence parses CONFIDENCE: and EVIDENCE: and flags output
// that asserts high confidence without commensurate evidence, per
// spec.md §4.5.
func DetectOverconfidence(output string) OverconfidenceResult {
	confMatch := confidenceLine.FindStringSubmatch(output)
	if confMatch == nil {
		return OverconfidenceResult{}
	}
	confidence, err := strconv.ParseFloat(confMatch[1], 64)
	if err != nil {
		return OverconfidenceResult{}
	}

	evidence := ""
	if m := evidenceLine.FindStringSubmatch(output); m != nil {
		evidence = strings.TrimSpace(m[1])
	}

	if confidence > 0.9 && len(evidence) < 100 {
		return OverconfidenceResult{Flagged: true, Reason: "confidence > 0.9 with evidence under 100 chars"}
	}

	hedges := countMatches(hedgingMarkers, output)
	certainty := countMatches(highCertaintyMarkers, output)
	if confidence > 0.85 && certainty >= 2 && hedges == 0 {
		return OverconfidenceResult{Flagged: true, Reason: "multiple high-confidence markers with no hedging above confidence 0.85"}
	}

	if confidence > 0.85 && !specificityMarkers.MatchString(evidence) {
		return OverconfidenceResult{Flagged: true, Reason: "evidence lacks file path, line number, or code reference"}
	}

	return OverconfidenceResult{}
}
