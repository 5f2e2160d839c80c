package detect

import "testing"

func TestMetacognitiveCheck_DetectsLensCues(t *testing.T) {
	output := "We must always require this, no exceptions. Either it works or it doesn't."
	result := MetacognitiveCheck(output)

	if len(result.Lenses[LensInnerAuthoritarianism]) == 0 {
		t.Fatal("expected inner_authoritarianism lens to match 'no exceptions'")
	}
	if len(result.Lenses[LensBinaryOppositions]) == 0 {
		t.Fatal("expected binary_oppositions lens to match 'either...or'")
	}
}

func TestMetacognitiveCheck_ReflectiveOnHedging(t *testing.T) {
	output := "I think this might work, but I'm not sure; it seems to address the issue."
	result := MetacognitiveCheck(output)
	if result.CurrentThinkingMode != ThinkingModeReflective {
		t.Fatalf("expected reflective mode for heavily hedged output, got %s", result.CurrentThinkingMode)
	}
}

func TestMetacognitiveCheck_ShallowOnUnhedgedCertaintyWithFallacy(t *testing.T) {
	output := "This definitely proves it always works, it works because it works."
	result := MetacognitiveCheck(output)
	if len(result.Fallacies) == 0 {
		t.Fatal("expected circular_reasoning fallacy to be detected")
	}
	if result.CurrentThinkingMode != ThinkingModeShallow {
		t.Fatalf("expected shallow mode, got %s", result.CurrentThinkingMode)
	}
}

func TestExtractInferenceChain_ExplicitStructure(t *testing.T) {
	output := "PREMISE: the test suite passed\nSTEP 1: no regressions observed\nCONCLUSION: the change is safe"
	chain := extractInferenceChain(output)
	if len(chain.Premises) != 1 || chain.Conclusion != "the change is safe" {
		t.Fatalf("unexpected chain: %+v", chain)
	}
	if chain.Validity != ValidityValid {
		t.Fatalf("expected valid chain with premises and steps, got %s", chain.Validity)
	}
}

func TestExtractInferenceChain_ConclusionWithoutPremises(t *testing.T) {
	output := "Therefore the fix is correct."
	chain := extractInferenceChain(output)
	if chain.Validity != ValidityUnknown {
		t.Fatalf("expected unknown validity with no premises, got %s", chain.Validity)
	}
	if len(chain.Gaps) == 0 {
		t.Fatal("expected a gap to be recorded for missing premises")
	}
}

func TestInferenceDepthScore_Bounded(t *testing.T) {
	r := MetacognitiveResult{InferenceChain: InferenceChain{Validity: ValidityInvalid, Gaps: []string{"a", "b", "c", "d"}}, Fallacies: []LogicalFallacy{{}, {}, {}, {}}}
	score := InferenceDepthScore(r)
	if score < 0 || score > 1 {
		t.Fatalf("score out of [0,1] bounds: %v", score)
	}
}
