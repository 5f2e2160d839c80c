// Package detect implements the pure-function verification and detection
// utilities described in spec.md §4.5: a metacognitive scan over a
// perspective's concatenated output, a set of targeted bias/shallow-fix
// detectors, and a high-stakes trigger catalog. Every function here is a
// pure string-in/struct-out transform with no I/O, so the loop can call
// them freely between cycles without touching the suspension model.
package detect

import "regexp"

// LensID names one of the fixed philosophical lenses the metacognitive
// scan reports on.
type LensID string

const (
	LensBinaryOppositions    LensID = "binary_oppositions"
	LensAporias              LensID = "aporias"
	LensDesireProduction     LensID = "desire_production"
	LensInnerAuthoritarianism LensID = "inner_authoritarianism"
	LensPleasureTrap         LensID = "pleasure_trap"
	LensTotalitarianRisk     LensID = "totalitarian_risk"
)

// ThinkingMode classifies the depth of reasoning a perspective appears
// to be operating in.
type ThinkingMode string

const (
	ThinkingModeShallow    ThinkingMode = "shallow"
	ThinkingModeAnalytical ThinkingMode = "analytical"
	ThinkingModeReflective ThinkingMode = "reflective"
)

// Validity classifies an extracted inference chain.
type Validity string

const (
	ValidityValid   Validity = "valid"
	ValidityInvalid Validity = "invalid"
	ValidityUnknown Validity = "unknown"
)

// LogicalFallacy names a detected fallacy and its catalog description.
type LogicalFallacy struct {
	Type        string
	Description string
}

// InferenceChain is the extracted premises/conclusion/steps structure,
// with a best-effort validity classification.
type InferenceChain struct {
	Premises   []string
	Conclusion string
	Steps      []string
	Validity   Validity
	Gaps       []string
}

// MetacognitiveResult is the full record the scan returns: one entry per
// lens that matched, holding its matched cue snippets, an overall metacognition level, the
// current vs. recommended thinking mode, detected fallacies, an
// inference-chain record, and lists of valid/invalid inference patterns.
type MetacognitiveResult struct {
	Lenses                  map[LensID][]string
	MetacognitionLevel      float64
	CurrentThinkingMode     ThinkingMode
	RecommendedThinkingMode ThinkingMode
	Fallacies               []LogicalFallacy
	InferenceChain          InferenceChain
	ValidPatterns           []string
	InvalidPatterns         []string
}

// lensCatalog maps each lens to the cue patterns that count as evidence
// of it appearing in a perspective's output. These are heuristic surface
// cues, not a claim of philosophical rigor.
var lensCatalog = map[LensID][]*regexp.Regexp{
	LensBinaryOppositions: compileAll(
		`\beither\b.{0,40}\bor\b`,
		`\bgood\b.{0,20}\bbad\b`,
		`\bcorrect\b.{0,20}\bwrong\b`,
		`\ball[- ]or[- ]nothing\b`,
	),
	LensAporias: compileAll(
		`\bunresolvable\b`,
		`\bcontradiction\b`,
		`\bparadox\b`,
		`\bcannot be reconciled\b`,
	),
	LensDesireProduction: compileAll(
		`\bwant(ed|s)? to\b.{0,30}\bbecause\b`,
		`\bdrive[ns]?\b.{0,20}\bto (build|add|change)\b`,
		`\bmotivat\w+\b`,
	),
	LensInnerAuthoritarianism: compileAll(
		`\bmust\b.{0,15}\bnever\b`,
		`\balways\b.{0,15}\brequired\b`,
		`\bno exceptions\b`,
	),
	LensPleasureTrap: compileAll(
		`\bquick win\b`,
		`\beasy fix\b`,
		`\bfeels? (good|satisfying)\b`,
	),
	LensTotalitarianRisk: compileAll(
		`\bone[- ]size[- ]fits[- ]all\b`,
		`\beveryone must\b`,
		`\bcentraliz\w+ control\b`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

var hedgingMarkers = compileAll(`\bmight\b`, `\bmay\b`, `\bpossibly\b`, `\bseems? to\b`, `\bi think\b`, `\bnot sure\b`, `\bunclear\b`)
var highCertaintyMarkers = compileAll(`\bdefinitely\b`, `\bcertainly\b`, `\bguaranteed\b`, `\bwithout a doubt\b`, `\balways works\b`)

// MetacognitiveCheck scans the concatenated perspective output and
// produces the full lens/fallacy/inference-chain record.
func MetacognitiveCheck(output string) MetacognitiveResult {
	result := MetacognitiveResult{Lenses: make(map[LensID][]string, len(lensCatalog))}

	for lens, patterns := range lensCatalog {
		var matches []string
		for _, re := range patterns {
			matches = append(matches, re.FindAllString(output, -1)...)
		}
		if matches != nil {
			result.Lenses[lens] = matches
		}
	}

	hedges := countMatches(hedgingMarkers, output)
	certainty := countMatches(highCertaintyMarkers, output)

	result.Fallacies = detectFallacies(output)
	result.InferenceChain = extractInferenceChain(output)
	result.ValidPatterns, result.InvalidPatterns = classifyInferencePatterns(result.InferenceChain)

	result.MetacognitionLevel = metacognitionLevel(result, hedges, certainty)
	result.CurrentThinkingMode = currentThinkingMode(hedges, certainty, len(result.Fallacies))
	result.RecommendedThinkingMode = recommendedThinkingMode(result.CurrentThinkingMode, result.MetacognitionLevel)

	return result
}

func countMatches(patterns []*regexp.Regexp, output string) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllString(output, -1))
	}
	return n
}

// metacognitionLevel aggregates lens hits, fallacy count, and the
// hedging/certainty balance into a single [0,1] score: baseline 0.5,
// nudged up by hedging and down by unchecked fallacies/lens hits.
func metacognitionLevel(r MetacognitiveResult, hedges, certainty int) float64 {
	level := 0.5
	level += 0.05 * float64(min(hedges, 4))
	level -= 0.05 * float64(min(certainty, 4))
	level -= 0.05 * float64(min(len(r.Fallacies), 4))
	lensHits := 0
	for _, matches := range r.Lenses {
		lensHits += len(matches)
	}
	level -= 0.02 * float64(min(lensHits, 6))
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return level
}

func currentThinkingMode(hedges, certainty, fallacyCount int) ThinkingMode {
	switch {
	case certainty > hedges && fallacyCount > 0:
		return ThinkingModeShallow
	case hedges > certainty:
		return ThinkingModeReflective
	default:
		return ThinkingModeAnalytical
	}
}

func recommendedThinkingMode(current ThinkingMode, level float64) ThinkingMode {
	if current == ThinkingModeShallow || level < 0.4 {
		return ThinkingModeReflective
	}
	return current
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
