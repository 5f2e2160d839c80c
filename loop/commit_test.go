package loop

import (
	"context"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/llmctl/hostcap"
)

func modelThatReturns(text string) hostcap.CallModel {
	return func(_ context.Context, _ hostcap.CallRequest) (hostcap.CallResponse, error) {
		return hostcap.CallResponse{Text: text}, nil
	}
}

func TestRunCommitPipelineCommitsNewFiles(t *testing.T) {
	vcs := hostcap.NewFakeVCS([]hostcap.FileStatus{
		{Path: "internal/foo.go", Status: "M"},
		{Path: ".env", Status: "??"},
	})
	rs := NewRunState("r1", "task", DefaultConfig(), false, true, false, 5)
	rs.FilesChangedBeforeCycle = map[string]bool{}

	result, err := runCommitPipeline(context.Background(), vcs, modelThatReturns("fix: tighten bounds check"), rs, "", [7]float64{})
	if err != nil {
		t.Fatalf("runCommitPipeline returned error: %v", err)
	}
	if !result.Committed {
		t.Fatalf("expected a commit, got %+v", result)
	}
	if vcs.Staged["internal/foo.go"] {
		t.Errorf("internal/foo.go should not remain staged after commit resets the staged map, got %v", vcs.Staged)
	}
	if len(vcs.Commits) == 0 || vcs.Commits[0] != "fix: tighten bounds check" {
		t.Errorf("commits = %v, want accepted model message", vcs.Commits)
	}
	if len(vcs.Gitignore) == 0 || vcs.Gitignore[0] != ".env*" {
		t.Errorf("gitignore = %v, want .env* added", vcs.Gitignore)
	}
}

func TestRunCommitPipelineSkipsAlreadySeenFiles(t *testing.T) {
	vcs := hostcap.NewFakeVCS([]hostcap.FileStatus{{Path: "main.go", Status: "M"}})
	rs := NewRunState("r1", "task", DefaultConfig(), false, true, false, 5)
	rs.FilesChangedBeforeCycle = map[string]bool{"main.go": true}

	result, err := runCommitPipeline(context.Background(), vcs, modelThatReturns("feat: x"), rs, "", [7]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Committed {
		t.Errorf("should skip when only pre-existing changes remain")
	}
	if result.SkipReason != "nothing new to commit" {
		t.Errorf("SkipReason = %q", result.SkipReason)
	}
}

func TestRunCommitPipelineFallsBackOnMalformedMessage(t *testing.T) {
	vcs := hostcap.NewFakeVCS([]hostcap.FileStatus{{Path: "main.go", Status: "M"}})
	rs := NewRunState("r1", "task", DefaultConfig(), false, true, false, 5)
	rs.FilesChangedBeforeCycle = map[string]bool{}

	result, err := runCommitPipeline(context.Background(), vcs, modelThatReturns("updated some stuff"), rs, "", [7]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Committed {
		t.Fatalf("expected fallback commit to still succeed")
	}
	if !strings.HasPrefix(vcs.Commits[0], "chore: update") {
		t.Errorf("commit message = %q, want deterministic chore fallback", vcs.Commits[0])
	}
}

func TestIsLockfileNeverGitignored(t *testing.T) {
	vcs := hostcap.NewFakeVCS([]hostcap.FileStatus{
		{Path: "go.sum", Status: "M"},
		{Path: "main.go", Status: "M"},
	})
	rs := NewRunState("r1", "task", DefaultConfig(), false, true, false, 5)
	rs.FilesChangedBeforeCycle = map[string]bool{}

	_, err := runCommitPipeline(context.Background(), vcs, modelThatReturns("fix: y"), rs, "", [7]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vcs.Staged["go.sum"] {
		t.Errorf("go.sum should never be staged as part of a cycle commit")
	}
	for _, p := range vcs.Gitignore {
		if strings.Contains(p, "go.sum") {
			t.Errorf("go.sum must never be added to .gitignore, got pattern %q", p)
		}
	}
}

func TestStripThinkingPreamble(t *testing.T) {
	in := "<think>reasoning about the diff</think>feat: add retry wrapper"
	got := stripThinkingPreamble(in)
	if got != "feat: add retry wrapper" {
		t.Errorf("stripThinkingPreamble() = %q", got)
	}
}
