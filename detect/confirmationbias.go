package detect

var (
	positiveEvidenceMarkers = compileAll(`\bconfirms\b`, `\bsupports\b`, `\bas expected\b`, `\bvalidated\b`, `\bproves\b`)
	negativeEvidenceMarkers = compileAll(`\bcontradicts\b`, `\brefutes\b`, `\bunexpected\b`, `\bfailed to\b`, `\bdisproves\b`)
	disconfirmationSearchMarkers = compileAll(
		`\blooked for counter[- ]?examples\b`, `\btried to disprove\b`,
		`\bchecked for edge cases\b`, `\bsearched for exceptions\b`,
	)
)

// DetectConfirmationBias flags evidence that enumerates several positive
// markers with no negative markers and no search-for-disconfirmation
// marker, per spec.md §4.5.
func DetectConfirmationBias(output string) bool {
	positive := countMatches(positiveEvidenceMarkers, output)
	negative := countMatches(negativeEvidenceMarkers, output)
	searchedForDisconfirmation := matchesAny(disconfirmationSearchMarkers, output)

	return positive >= 2 && negative == 0 && !searchedForDisconfirmation
}
