package detect

import "regexp"

// PatternMatch is the outcome of one shallow-root-causing detector.
type PatternMatch struct {
	Flagged bool
	Snippet string
}

var (
	firstReasonMarkers = compileAll(
		`\bfound the (cause|issue|bug|reason)\b`, `\bthat('?s| is) (the|why)\b`,
		`\bstopped (looking|investigating) (once|after)\b`,
	)
	furtherInvestigationMarkers = compileAll(
		`\balso check(ed)?\b`, `\bruled out\b`, `\bconsidered other\b`, `\bdouble[- ]check(ed)?\b`,
	)
)

// FirstReasonStopping flags output that declares a cause found and stops
// there without signs of checking for other contributing causes.
func FirstReasonStopping(output string) PatternMatch {
	if matchesAny(firstReasonMarkers, output) && !matchesAny(furtherInvestigationMarkers, output) {
		return PatternMatch{Flagged: true, Snippet: firstMatch(firstReasonMarkers, output)}
	}
	return PatternMatch{}
}

var (
	proximityMarkers = compileAll(
		`\bthe (last|most recent) change\b.{0,40}\bmust be\b`,
		`\bsince i just (changed|edited|touched)\b`,
	)
)

// ProximityBias flags reasoning that blames the most recently touched
// code purely because of its recency, rather than evidence.
func ProximityBias(output string) PatternMatch {
	if matchesAny(proximityMarkers, output) {
		return PatternMatch{Flagged: true, Snippet: firstMatch(proximityMarkers, output)}
	}
	return PatternMatch{}
}

var concretenessMarkers = compileAll(
	`\bprobably\b.{0,20}\bsomewhere\b`, `\bsome (config|setting|flag)\b.{0,20}\bsomewhere\b`,
	`\bmight be (related|relevant)\b.{0,20}\bsomehow\b`,
)

// ConcretenessBias flags vague attributions that never name a concrete
// file, function, or line.
func ConcretenessBias(output string) PatternMatch {
	if matchesAny(concretenessMarkers, output) && !specificityMarkers.MatchString(output) {
		return PatternMatch{Flagged: true, Snippet: firstMatch(concretenessMarkers, output)}
	}
	return PatternMatch{}
}

var palliativeMarkers = compileAll(
	`\badded a (try/catch|null check|retry) (around (\w+ ){0,3})?(to )?(suppress|swallow|avoid) the error\b`,
	`\bsilenc(e|ed|ing) the (warning|error)\b`,
	`\bworkaround\b.{0,30}\bwithout (fixing|addressing)\b`,
)

// PalliativeFix flags changes that visibly suppress a symptom instead of
// addressing its root cause.
func PalliativeFix(output string) PatternMatch {
	if matchesAny(palliativeMarkers, output) {
		return PatternMatch{Flagged: true, Snippet: firstMatch(palliativeMarkers, output)}
	}
	return PatternMatch{}
}

func firstMatch(patterns []*regexp.Regexp, output string) string {
	for _, re := range patterns {
		if m := re.FindString(output); m != "" {
			return m
		}
	}
	return ""
}
