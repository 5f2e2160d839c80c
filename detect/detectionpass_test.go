package detect

import "testing"

func TestRun_LowConfidenceIsActionableEvenWithNoPatternHits(t *testing.T) {
	pass := Run("a routine refactor with no notable claims", 0.5, Context{}, 2)
	if !pass.Actionable {
		t.Fatal("expected the pass to be actionable on a low-confidence trigger alone")
	}
	if pass.Trigger.Mode != TriggerLowConfidence {
		t.Fatalf("expected TriggerLowConfidence, got %+v", pass.Trigger)
	}
	if len(pass.Summary()) == 0 {
		t.Fatal("expected at least the verification-trigger line in Summary()")
	}
}

func TestRun_HighConfidenceBelowMinFlaggedIsNotActionable(t *testing.T) {
	pass := Run("a routine refactor with no notable claims", 0.9, Context{}, 2)
	if pass.Actionable {
		t.Fatalf("expected no actionable pass for unremarkable high-confidence output with 0 flags, got %+v", pass)
	}
}

func TestRun_CountsMultipleFlaggedPatterns(t *testing.T) {
	output := "Found the cause: a stale cache entry. That's why it failed.\n" +
		"CONFIDENCE: 0.95\nEVIDENCE: it looked fine\n" +
		"In summary, this is definitely the correct approach."
	pass := Run(output, 0.9, Context{}, 2)
	if pass.FlaggedCount < 2 {
		t.Fatalf("FlaggedCount = %d, want >= 2 for stacked overconfidence/first-reason/missing-alternatives patterns", pass.FlaggedCount)
	}
	if !pass.Actionable {
		t.Fatal("expected the pass to clear MinFlagged and be actionable")
	}
}
