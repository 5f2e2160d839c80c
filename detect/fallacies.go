package detect

import "regexp"

type fallacyPattern struct {
	fallacyType string
	description string
	pattern     *regexp.Regexp
}

var fallacyCatalog = []fallacyPattern{
	{"hasty_generalization", "concludes a general rule from a single instance",
		regexp.MustCompile(`(?i)\b(this proves|always works|never fails)\b.{0,40}\b(one|single|this) (test|case|example)\b`)},
	{"false_dichotomy", "presents only two options where more exist",
		regexp.MustCompile(`(?i)\b(either|only two (options|choices))\b.{0,60}\bor\b`)},
	{"appeal_to_authority", "relies on authority instead of evidence",
		regexp.MustCompile(`(?i)\b(the docs say|according to|experts agree)\b.{0,60}\bso it must be\b`)},
	{"circular_reasoning", "conclusion restates the premise",
		regexp.MustCompile(`(?i)\bit works because it works\b|\bcorrect because it is correct\b`)},
	{"slippery_slope", "assumes an extreme consequence without justification",
		regexp.MustCompile(`(?i)\bif we (allow|do) this\b.{0,60}\b(will (inevitably|eventually))\b`)},
}

// detectFallacies scans output for surface cues of common logical fallacies.
func detectFallacies(output string) []LogicalFallacy {
	var out []LogicalFallacy
	for _, f := range fallacyCatalog {
		if f.pattern.MatchString(output) {
			out = append(out, LogicalFallacy{Type: f.fallacyType, Description: f.description})
		}
	}
	return out
}
