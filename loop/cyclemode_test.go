package loop

import (
	"context"
	"os"
	"testing"

	"github.com/tailored-agentic-units/llmctl/hostcap"
)

func fixedScoreModel(score float64) hostcap.CallModel {
	return func(_ context.Context, _ hostcap.CallRequest) (hostcap.CallResponse, error) {
		text := "FINDINGS:\n- looks fine\nIMPROVEMENTS:\n- add docs\nSCORE: " +
			formatScore(score) + "\nSUMMARY: ok\n"
		return hostcap.CallResponse{Text: text, StatusCode: 200}, nil
	}
}

func formatScore(score float64) string {
	switch {
	case score >= 100:
		return "100"
	case score <= 0:
		return "0"
	default:
		return "50"
	}
}

func newTestDeps(t *testing.T, call hostcap.CallModel) (Deps, *RunLog) {
	t.Helper()
	dir := t.TempDir()
	log, err := NewRunLog(dir, "test-run")
	if err != nil {
		t.Fatalf("NewRunLog: %v", err)
	}
	cfg := DefaultConfig()
	cfg.PerspectiveDelayMs = 0
	cfg.MinCycleIntervalMs = 1
	cfg.MaxCycleIntervalMs = 1
	return Deps{
		CallModel:     call,
		VCS:           hostcap.NewFakeVCS(nil),
		Host:          hostcap.NewFakeHost(),
		ProjectDir:    dir,
		Provider:      "test-provider",
		ModelID:       "claude-haiku",
		ThinkingLevel: hostcap.ThinkingNone,
		Config:        cfg,
	}, log
}

func TestRunCycleModeStopsEarlyOnHighScore(t *testing.T) {
	deps, log := newTestDeps(t, fixedScoreModel(100))
	rs := NewRunState("r1", "task", deps.Config, false, false, false, 10)

	err := RunCycleMode(context.Background(), rs, deps, log)
	if err != nil {
		t.Fatalf("RunCycleMode returned error: %v", err)
	}
	if rs.StopReason != StopCompleted {
		t.Errorf("StopReason = %q, want %q", rs.StopReason, StopCompleted)
	}
	if rs.Cycle != 1 {
		t.Errorf("Cycle = %d, want 1 (should stop after the first high-scoring cycle)", rs.Cycle)
	}
}

func TestRunCycleModeStopsAtMaxCycles(t *testing.T) {
	deps, log := newTestDeps(t, fixedScoreModel(50))
	rs := NewRunState("r1", "task", deps.Config, false, false, false, 2)

	err := RunCycleMode(context.Background(), rs, deps, log)
	if err != nil {
		t.Fatalf("RunCycleMode returned error: %v", err)
	}
	if rs.StopReason != StopCompleted {
		t.Errorf("StopReason = %q, want %q", rs.StopReason, StopCompleted)
	}
	if rs.Cycle != 2 {
		t.Errorf("Cycle = %d, want 2 (max_cycles reached)", rs.Cycle)
	}
}

func TestRunCycleModeHonorsStopSignalFile(t *testing.T) {
	deps, log := newTestDeps(t, fixedScoreModel(50))
	rs := NewRunState("r1", "task", deps.Config, false, false, false, 50)

	callCount := 0
	deps.CallModel = func(ctx context.Context, req hostcap.CallRequest) (hostcap.CallResponse, error) {
		callCount++
		if callCount == 1 {
			writeStopSignal(t, deps.ProjectDir)
		}
		return fixedScoreModel(50)(ctx, req)
	}

	err := RunCycleMode(context.Background(), rs, deps, log)
	if err != nil {
		t.Fatalf("RunCycleMode returned error: %v", err)
	}
	if rs.StopReason != StopUserReq {
		t.Errorf("StopReason = %q, want %q", rs.StopReason, StopUserReq)
	}
}

func TestRunCycleModeRecordsDetectionFindingsOnLowScore(t *testing.T) {
	deps, log := newTestDeps(t, fixedScoreModel(50))
	rs := NewRunState("r1", "task", deps.Config, false, false, false, 1)

	err := RunCycleMode(context.Background(), rs, deps, log)
	if err != nil {
		t.Fatalf("RunCycleMode returned error: %v", err)
	}
	if len(rs.LastDetectionFindings) == 0 {
		t.Errorf("LastDetectionFindings is empty, want at least one finding (score 50%% is below the confidence trigger threshold)")
	}
}

func TestRunCycleModeClearsDetectionFindingsOnHighScore(t *testing.T) {
	deps, log := newTestDeps(t, fixedScoreModel(100))
	rs := NewRunState("r1", "task", deps.Config, false, false, false, 1)

	err := RunCycleMode(context.Background(), rs, deps, log)
	if err != nil {
		t.Fatalf("RunCycleMode returned error: %v", err)
	}
	if rs.LastDetectionFindings != nil {
		t.Errorf("LastDetectionFindings = %v, want nil for a high-scoring cycle", rs.LastDetectionFindings)
	}
}

func writeStopSignal(t *testing.T, projectDir string) {
	t.Helper()
	if err := os.WriteFile(stopSignalPath(projectDir), []byte("STOP"), 0o644); err != nil {
		t.Fatalf("write stop signal: %v", err)
	}
}
