package loop

import (
	"strconv"
	"strings"
	"testing"
)

func TestBuildPerspectivePromptIncludesTaskAndFormat(t *testing.T) {
	rs := NewRunState("r1", "refactor the parser", DefaultConfig(), false, false, false, 5)
	prompt := buildPerspectivePrompt(rs, Perspectives[0], "")

	if !strings.Contains(prompt, "refactor the parser") {
		t.Errorf("prompt missing task text:\n%s", prompt)
	}
	if !strings.Contains(prompt, "FINDINGS:") {
		t.Errorf("prompt missing response-format instruction:\n%s", prompt)
	}
}

func TestBuildPerspectivePromptIncludesTrailingSummaries(t *testing.T) {
	rs := NewRunState("r1", "task", DefaultConfig(), false, false, false, 10)
	for i := 1; i <= 5; i++ {
		rs.appendCycleSummary(CycleSummary{Cycle: i, MeanScore: 0.5, Summary: "did something"}, 20)
	}

	prompt := buildPerspectivePrompt(rs, Perspectives[0], "")
	for i := 3; i <= 5; i++ {
		if !strings.Contains(prompt, "cycle "+strconv.Itoa(i)) {
			t.Errorf("prompt should include cycle %d within the trailing window", i)
		}
	}
	if strings.Contains(prompt, "cycle "+strconv.Itoa(1)) {
		t.Errorf("prompt should not include cycle 1, outside the trailing window of 3")
	}
}

func TestBuildPerspectivePromptIncludesQualityGuidance(t *testing.T) {
	rs := NewRunState("r1", "task", DefaultConfig(), false, false, false, 5)
	prompt := buildPerspectivePrompt(rs, Perspectives[0], "watch for hasty generalization")
	if !strings.Contains(prompt, "watch for hasty generalization") {
		t.Errorf("prompt should surface quality guidance when provided")
	}
}

func TestOutstandingImprovementsCapped(t *testing.T) {
	rs := NewRunState("r1", "task", DefaultConfig(), false, false, false, 5)
	state := rs.PerspectiveStates[Perspectives[0].ID]
	for i := 0; i < 10; i++ {
		state.Improvements = append(state.Improvements, "improvement")
	}

	got := outstandingImprovements(rs, 5)
	if len(got) != 5 {
		t.Fatalf("len(outstandingImprovements) = %d, want 5", len(got))
	}
}

