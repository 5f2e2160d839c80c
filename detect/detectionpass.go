package detect

// Pass is the result of an integrated detection pass: every targeted
// detector's verdict over one output, plus the verification-trigger
// decision that gates whether the pass counts as actionable. spec.md
// §4.4's post-cycle handling calls for this whenever a cycle's score
// falls below the high-score threshold, in addition to the
// metacognitive check.
type Pass struct {
	Mismatch            MismatchResult
	Overconfidence      OverconfidenceResult
	MissingAlternatives bool
	ConfirmationBias    bool
	FirstReasonStopping PatternMatch
	ProximityBias       PatternMatch
	ConcretenessBias    PatternMatch
	PalliativeFix       PatternMatch
	Trigger             TriggerResult

	// FlaggedCount is how many of the eight detectors above fired.
	FlaggedCount int
	// Actionable reports whether the pass cleared MinFlagged or
	// ShouldTriggerVerification independently triggered; callers should
	// only fold a non-actionable pass's findings into guidance text when
	// they want every single hit surfaced regardless of confidence.
	Actionable bool
}

// Run executes every detector in the catalog over output, counts how
// many independently flagged a pattern, and gates the result against
// minFlagged (the minimum pattern confidence threshold spec.md §4.4
// requires) or ctx/confidence's own verification trigger — whichever
// fires first marks the pass actionable.
func Run(output string, confidence float64, ctx Context, minFlagged int) Pass {
	p := Pass{
		Mismatch:            DetectClaimResultMismatch(output),
		Overconfidence:      DetectOverconfidence(output),
		MissingAlternatives: DetectMissingAlternatives(output),
		ConfirmationBias:    DetectConfirmationBias(output),
		FirstReasonStopping: FirstReasonStopping(output),
		ProximityBias:       ProximityBias(output),
		ConcretenessBias:    ConcretenessBias(output),
		PalliativeFix:       PalliativeFix(output),
		Trigger:             ShouldTriggerVerification(output, confidence, ctx),
	}

	if p.Mismatch.Mismatch {
		p.FlaggedCount++
	}
	if p.Overconfidence.Flagged {
		p.FlaggedCount++
	}
	if p.MissingAlternatives {
		p.FlaggedCount++
	}
	if p.ConfirmationBias {
		p.FlaggedCount++
	}
	if p.FirstReasonStopping.Flagged {
		p.FlaggedCount++
	}
	if p.ProximityBias.Flagged {
		p.FlaggedCount++
	}
	if p.ConcretenessBias.Flagged {
		p.FlaggedCount++
	}
	if p.PalliativeFix.Flagged {
		p.FlaggedCount++
	}

	p.Actionable = p.Trigger.Trigger || p.FlaggedCount >= minFlagged
	return p
}

// Summary renders the flagged findings as short guidance lines, for
// folding into a next-cycle/phase prompt alongside the metacognitive
// check's own guidance.
func (p Pass) Summary() []string {
	var lines []string
	if p.Mismatch.Mismatch {
		lines = append(lines, "Claim/result mismatch: "+p.Mismatch.Reason)
	}
	if p.Overconfidence.Flagged {
		lines = append(lines, "Overconfidence: "+p.Overconfidence.Reason)
	}
	if p.MissingAlternatives {
		lines = append(lines, "No alternative approaches were considered.")
	}
	if p.ConfirmationBias {
		lines = append(lines, "Evidence gathering looks one-sided; check for disconfirming evidence.")
	}
	if p.FirstReasonStopping.Flagged {
		lines = append(lines, "Investigation stopped at the first plausible cause: "+p.FirstReasonStopping.Snippet)
	}
	if p.ProximityBias.Flagged {
		lines = append(lines, "Blame attributed to the most recent change without evidence: "+p.ProximityBias.Snippet)
	}
	if p.ConcretenessBias.Flagged {
		lines = append(lines, "Attribution is vague; name a concrete file, function, or line: "+p.ConcretenessBias.Snippet)
	}
	if p.PalliativeFix.Flagged {
		lines = append(lines, "Fix looks like it suppresses a symptom rather than the root cause: "+p.PalliativeFix.Snippet)
	}
	if p.Trigger.Trigger {
		lines = append(lines, "Verification pass recommended ("+string(p.Trigger.Mode)+"): "+p.Trigger.Reason)
	}
	return lines
}
