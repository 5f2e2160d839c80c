package loop

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tailored-agentic-units/llmctl/hostcap"
)

// commitTypeAllowList is the fixed set of conventional-commit types a
// model-generated commit message must start with to be accepted.
var commitTypeAllowList = []string{"feat", "fix", "refactor", "test", "docs", "chore", "perf", "style"}

var commitHeaderPattern = regexp.MustCompile(`^(` + strings.Join(commitTypeAllowList, "|") + `)(\([^)]+\))?:\s*.+`)

// exclusionRules maps a path match to the .gitignore pattern it
// contributes when excluded from a commit, per §4.6 step 2.
var exclusionRules = []struct {
	match   *regexp.Regexp
	pattern string
}{
	{regexp.MustCompile(`(^|/)\.env(\.[\w.-]+)?$`), ".env*"},
	{regexp.MustCompile(`(^|/)(id_rsa|\.pem|\.key|credentials\.json)$`), "*.pem"},
	{regexp.MustCompile(`(^|/)(node_modules|\.cache|__pycache__|dist|build)(/|$)`), "node_modules/"},
	{regexp.MustCompile(`\.log$`), "*.log"},
	{regexp.MustCompile(`(^|/)(package-lock\.json|yarn\.lock|Cargo\.lock|go\.sum)$`), "# lockfiles intentionally excluded per-commit, not ignored"},
}

// isLockfile reports whether path is a lockfile, which is excluded from
// the commit but must never be added to .gitignore (it needs to stay
// tracked; it is simply not part of *this* cycle's new changes).
func isLockfile(path string) bool {
	base := filepath.Base(path)
	switch base {
	case "package-lock.json", "yarn.lock", "Cargo.lock", "go.sum":
		return true
	}
	return false
}

// classifyForExclusion returns the .gitignore pattern to add for an
// excluded path, or "" if path should be committed normally.
func classifyForExclusion(path string) string {
	if isLockfile(path) {
		return ""
	}
	for _, rule := range exclusionRules {
		if rule.match.MatchString(path) {
			return rule.pattern
		}
	}
	return ""
}

// CommitResult reports the outcome of runCommitPipeline.
type CommitResult struct {
	Committed        bool
	ShortHash        string
	GitignoreUpdated bool
	Skipped          bool
	SkipReason       string
}

// runCommitPipeline implements §4.6 end to end: diff new changes against
// filesBefore, apply the exclusion policy, stage survivors individually,
// request a commit message from the model, validate or fall back, and
// commit. VCS errors are absorbed per the vcs_error taxonomy entry: the
// cycle continues regardless.
func runCommitPipeline(ctx context.Context, vcs hostcap.VCS, call hostcap.CallModel, rs *RunState, diffStats string, perspectiveScores [7]float64) (CommitResult, error) {
	changed, err := vcs.ChangedFiles(ctx)
	if err != nil {
		return CommitResult{Skipped: true, SkipReason: "vcs_error: " + err.Error()}, nil
	}

	var toStage []string
	var newGitignorePatterns []string
	for _, f := range changed {
		if rs.FilesChangedBeforeCycle[f.Path] {
			continue // not a new change this cycle
		}
		if pattern := classifyForExclusion(f.Path); pattern != "" {
			if !strings.HasPrefix(pattern, "#") {
				newGitignorePatterns = append(newGitignorePatterns, pattern)
			}
			continue
		}
		toStage = append(toStage, f.Path)
	}

	if len(toStage) == 0 {
		rs.GitignorePatternsToAdd = appendNewPatterns(rs.GitignorePatternsToAdd, newGitignorePatterns)
		return CommitResult{Skipped: true, SkipReason: "nothing new to commit"}, nil
	}

	for _, path := range toStage {
		if err := vcs.StageFile(ctx, path); err != nil {
			return CommitResult{Skipped: true, SkipReason: "vcs_error: " + err.Error()}, nil
		}
	}

	stats, err := vcs.StagedStats(ctx)
	if err != nil {
		return CommitResult{Skipped: true, SkipReason: "vcs_error: " + err.Error()}, nil
	}

	message := requestCommitMessage(ctx, call, stats, perspectiveScores)
	if err := vcs.Commit(ctx, message); err != nil {
		return CommitResult{Skipped: true, SkipReason: "vcs_error: " + err.Error()}, nil
	}

	shortHash, err := vcs.HeadShortHash(ctx)
	if err != nil {
		shortHash = ""
	}

	result := CommitResult{Committed: true, ShortHash: shortHash}

	rs.GitignorePatternsToAdd = appendNewPatterns(rs.GitignorePatternsToAdd, newGitignorePatterns)
	if len(rs.GitignorePatternsToAdd) > 0 {
		if err := vcs.WriteGitignore(ctx, rs.GitignorePatternsToAdd); err == nil {
			choreMsg := "chore: update .gitignore for excluded paths"
			if cerr := vcs.StageFile(ctx, ".gitignore"); cerr == nil {
				if cerr := vcs.Commit(ctx, choreMsg); cerr == nil {
					result.GitignoreUpdated = true
				}
			}
		}
		rs.GitignorePatternsToAdd = nil
	}

	return result, nil
}

func appendNewPatterns(existing, fresh []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p] = true
	}
	for _, p := range fresh {
		if !seen[p] {
			existing = append(existing, p)
			seen[p] = true
		}
	}
	return existing
}

// requestCommitMessage asks the model for a commit message carrying diff
// stats and perspective scores, strips thinking-style preambles, and
// falls back to a deterministic template if the result does not start
// with an allow-listed `type(scope):` header.
func requestCommitMessage(ctx context.Context, call hostcap.CallModel, stats hostcap.StagedStats, scores [7]float64) string {
	prompt := buildCommitPrompt(stats, scores)
	resp, err := call(ctx, hostcap.CallRequest{
		Prompt:  prompt,
		Label:   "commit-message",
		Timeout: 15_000,
	})
	if err != nil {
		return fallbackCommitMessage(stats)
	}

	message := stripThinkingPreamble(resp.Text)
	if commitHeaderPattern.MatchString(strings.SplitN(message, "\n", 2)[0]) {
		return message
	}
	return fallbackCommitMessage(stats)
}

var thinkingPreamble = regexp.MustCompile(`(?is)^.*?(<think>.*?</think>|^thinking:.*?\n\n)`)

func stripThinkingPreamble(text string) string {
	stripped := thinkingPreamble.ReplaceAllString(text, "")
	return strings.TrimSpace(stripped)
}

func buildCommitPrompt(stats hostcap.StagedStats, scores [7]float64) string {
	var b strings.Builder
	b.WriteString("Write a single-line conventional commit message for this change.\n")
	fmt.Fprintf(&b, "Files changed: %d, insertions: %d, deletions: %d\n", stats.FilesChanged, stats.Insertions, stats.Deletions)
	b.WriteString("Perspective scores: ")
	for i, s := range scores {
		fmt.Fprintf(&b, "%s=%.2f ", Perspectives[i].ID, s)
	}
	b.WriteString("\nUse one of: feat, fix, refactor, test, docs, chore, perf, style.\n")
	b.WriteString("Respond with only the commit message, no preamble.\n")
	return b.String()
}

func fallbackCommitMessage(stats hostcap.StagedStats) string {
	return fmt.Sprintf("chore: update %d file(s) (+%d/-%d)", stats.FilesChanged, stats.Insertions, stats.Deletions)
}
