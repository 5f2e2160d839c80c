package detect

import (
	"regexp"
	"strings"
)

var (
	claimLine  = regexp.MustCompile(`(?mi)^\s*CLAIM\s*:\s*(.+)$`)
	resultLine = regexp.MustCompile(`(?mi)^\s*RESULT\s*:\s*(.+)$`)
	negationWords = regexp.MustCompile(`(?i)\b(not|no|never|fail(ed|s)?|cannot|can't|doesn't|didn't|won't)\b`)
)

// MismatchResult is the outcome of DetectClaimResultMismatch.
type MismatchResult struct {
	Mismatch bool
	Reason   string
}

// DetectClaimResultMismatch extracts CLAIM: and RESULT: lines and flags
// a mismatch when their negation/certainty polarity diverges and their
// key-term overlap is low, per spec.md §4.5.
func DetectClaimResultMismatch(output string) MismatchResult {
	claimMatch := claimLine.FindStringSubmatch(output)
	resultMatch := resultLine.FindStringSubmatch(output)
	if claimMatch == nil || resultMatch == nil {
		return MismatchResult{}
	}
	claim, result := strings.TrimSpace(claimMatch[1]), strings.TrimSpace(resultMatch[1])

	claimNegated := negationWords.MatchString(claim)
	resultNegated := negationWords.MatchString(result)
	claimCertain := countMatches(highCertaintyMarkers, claim) > 0
	resultCertain := countMatches(highCertaintyMarkers, result) > 0

	overlap := termOverlapRatio(keyTerms(result), keyTerms(claim))

	polarityDiverges := claimNegated != resultNegated || claimCertain != resultCertain
	if polarityDiverges && overlap < 0.3 {
		return MismatchResult{
			Mismatch: true,
			Reason:   "claim and result diverge in negation/certainty polarity with low key-term overlap",
		}
	}
	return MismatchResult{}
}
