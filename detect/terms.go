package detect

import (
	"regexp"
	"strings"
)

var stopWords = map[string]bool{
	"this": true, "that": true, "these": true, "those": true,
	"with": true, "from": true, "have": true, "has": true, "had": true,
	"will": true, "would": true, "could": true, "should": true,
	"been": true, "were": true, "they": true, "them": true,
	"their": true, "there": true, "which": true, "what": true,
	"when": true, "where": true, "while": true, "about": true,
	"into": true, "over": true, "under": true, "than": true,
	"then": true, "does": true, "doing": true, "done": true,
	"also": true, "just": true, "only": true, "very": true,
	"some": true, "such": true, "each": true, "more": true,
	"most": true, "because": true, "after": true, "before": true,
}

var wordPattern = regexp.MustCompile(`[A-Za-z]{4,}`)

// keyTerms extracts lowercase words of length > 3 that are not in the
// fixed stop-word set, per §4.5's claim/result mismatch detector.
func keyTerms(s string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(s, -1) {
		w = strings.ToLower(w)
		if !stopWords[w] {
			terms[w] = true
		}
	}
	return terms
}

// overlapsTerms reports whether a and b share at least one term.
func overlapsTerms(a, b map[string]bool) bool {
	for t := range a {
		if b[t] {
			return true
		}
	}
	return false
}

// termOverlapRatio returns |a ∩ b| / max(1, |b|), used to gauge how much
// a candidate shares with a reference term set.
func termOverlapRatio(a, b map[string]bool) float64 {
	if len(b) == 0 {
		return 0
	}
	shared := 0
	for t := range a {
		if b[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(b))
}
