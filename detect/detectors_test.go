package detect

import "testing"

func TestDetectClaimResultMismatch_FlagsDivergence(t *testing.T) {
	output := "CLAIM: the fix resolves the crash\nRESULT: the server still fails under load"
	got := DetectClaimResultMismatch(output)
	if !got.Mismatch {
		t.Fatal("expected mismatch between an affirmative claim and a negated result")
	}
}

func TestDetectClaimResultMismatch_NoSectionsNoFlag(t *testing.T) {
	got := DetectClaimResultMismatch("just some prose with no structured sections")
	if got.Mismatch {
		t.Fatal("expected no mismatch when CLAIM/RESULT sections are absent")
	}
}

func TestDetectOverconfidence_HighConfidenceShortEvidence(t *testing.T) {
	output := "CONFIDENCE: 0.95\nEVIDENCE: it looked fine"
	got := DetectOverconfidence(output)
	if !got.Flagged {
		t.Fatal("expected overconfidence flag for confidence > 0.9 with short evidence")
	}
}

func TestDetectOverconfidence_LowConfidenceNotFlagged(t *testing.T) {
	output := "CONFIDENCE: 0.4\nEVIDENCE: ran the suite, see output.log line 12 and `handler.go`"
	got := DetectOverconfidence(output)
	if got.Flagged {
		t.Fatal("expected no overconfidence flag at low confidence")
	}
}

func TestDetectMissingAlternatives_FlagsBareConclusion(t *testing.T) {
	output := "In summary, this is definitely the correct approach."
	if !DetectMissingAlternatives(output) {
		t.Fatal("expected missing-alternatives flag for a bare high-confidence conclusion")
	}
}

func TestDetectMissingAlternatives_NotFlaggedWithLimitation(t *testing.T) {
	output := "In summary, this is definitely the correct approach. However, this has a limitation under high concurrency."
	if DetectMissingAlternatives(output) {
		t.Fatal("expected no flag when a limitation is discussed")
	}
}

func TestDetectConfirmationBias_FlagsOneSidedEvidence(t *testing.T) {
	output := "This confirms our hypothesis. The result supports the theory, as expected."
	if !DetectConfirmationBias(output) {
		t.Fatal("expected confirmation bias flag for one-sided evidence")
	}
}

func TestDetectConfirmationBias_NotFlaggedWithDisconfirmationSearch(t *testing.T) {
	output := "This confirms our hypothesis and supports the theory. We also looked for counter-examples and found none."
	if DetectConfirmationBias(output) {
		t.Fatal("expected no flag when disconfirmation was searched for")
	}
}

func TestFirstReasonStopping(t *testing.T) {
	got := FirstReasonStopping("Found the cause: a stale cache entry. That's why it failed.")
	if !got.Flagged {
		t.Fatal("expected first_reason_stopping to flag a single stated cause")
	}
}

func TestFirstReasonStopping_NotFlaggedWithFurtherChecks(t *testing.T) {
	got := FirstReasonStopping("Found the cause: a stale cache entry. Also checked the retry path and ruled out a race.")
	if got.Flagged {
		t.Fatal("expected no flag once further investigation markers are present")
	}
}

func TestPalliativeFix(t *testing.T) {
	got := PalliativeFix("Added a try/catch around to suppress the error rather than fixing the root cause.")
	if !got.Flagged {
		t.Fatal("expected palliative_fix to flag error-suppression language")
	}
}

func TestShouldTriggerVerification_HighStakes(t *testing.T) {
	got := ShouldTriggerVerification("running DROP TABLE users in production", 0.9, Context{})
	if !got.Trigger || got.Mode != TriggerHighStakes {
		t.Fatalf("expected high-stakes trigger, got %+v", got)
	}
}

func TestShouldTriggerVerification_LowConfidence(t *testing.T) {
	got := ShouldTriggerVerification("a routine refactor", 0.5, Context{})
	if !got.Trigger || got.Mode != TriggerLowConfidence {
		t.Fatalf("expected low-confidence trigger, got %+v", got)
	}
}

func TestShouldTriggerVerification_NoTrigger(t *testing.T) {
	got := ShouldTriggerVerification("a routine refactor", 0.9, Context{})
	if got.Trigger {
		t.Fatalf("expected no trigger for unremarkable high-confidence output, got %+v", got)
	}
}
