package loop

import (
	"fmt"
	"strings"
)

const trailingSummaryWindow = 3
const maxOutstandingImprovements = 5
const maxSuccessfulPatternsInPrompt = 3

// buildPerspectivePrompt assembles the prompt for one perspective sweep,
// per §4.4 step 2: task, a trailing window of prior cycle summaries, a
// strategy hint derived from score history and the trajectory tracker's
// recommended action, optional quality guidance from the previous
// cycle's metacognitive check, up to five outstanding improvements, and
// up to three high-scoring successful patterns.
func buildPerspectivePrompt(rs *RunState, descriptor PerspectiveDescriptor, qualityGuidance string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n\n", rs.Task)
	fmt.Fprintf(&b, "Perspective: %s — %s\n\n", descriptor.DisplayName, descriptor.Description)

	if len(rs.CycleSummaries) > 0 {
		b.WriteString("Recent cycle summaries:\n")
		start := len(rs.CycleSummaries) - trailingSummaryWindow
		if start < 0 {
			start = 0
		}
		for _, s := range rs.CycleSummaries[start:] {
			fmt.Fprintf(&b, "- cycle %d (score %.2f): %s\n", s.Cycle, s.MeanScore, s.Summary)
		}
		b.WriteString("\n")
	}

	action := rs.Trajectory.RecommendedAction()
	fmt.Fprintf(&b, "Strategy hint: recommended action is %q based on recent trajectory.\n\n", action)

	if qualityGuidance != "" {
		fmt.Fprintf(&b, "Quality guidance from the previous cycle's self-check:\n%s\n\n", qualityGuidance)
	}

	if improvements := outstandingImprovements(rs, maxOutstandingImprovements); len(improvements) > 0 {
		b.WriteString("Outstanding improvement actions:\n")
		for _, imp := range improvements {
			fmt.Fprintf(&b, "- %s\n", imp)
		}
		b.WriteString("\n")
	}

	if patterns := rs.recentSuccessfulPatterns(maxSuccessfulPatternsInPrompt); len(patterns) > 0 {
		b.WriteString("Prior successful patterns:\n")
		for _, p := range patterns {
			fmt.Fprintf(&b, "- cycle %d (avg score %.0f%%): %s\n", p.Cycle, p.AvgScore, p.ActionSummary)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with FINDINGS:, QUESTIONS:, IMPROVEMENTS:, SCORE: (0-100), and SUMMARY: sections.\n")
	return b.String()
}

// outstandingImprovements collects up to n improvement items from the
// perspective states, taking perspectives in sweep order and each one's
// items most recently recorded first. Whether an item was already applied
// is not tracked, so applied items are not filtered out.
func outstandingImprovements(rs *RunState, n int) []string {
	var out []string
	for _, d := range Perspectives {
		state := rs.PerspectiveStates[d.ID]
		if state == nil {
			continue
		}
		for i := len(state.Improvements) - 1; i >= 0 && len(out) < n; i-- {
			out = append(out, state.Improvements[i])
		}
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
