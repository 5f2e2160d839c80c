package loop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/llmctl/detect"
	"github.com/tailored-agentic-units/llmctl/hostcap"
	"github.com/tailored-agentic-units/llmctl/observability"
	"github.com/tailored-agentic-units/llmctl/pool"
)

// perspectiveOutcome is one perspective's parsed sweep result, produced by
// the worker pool in §4.1's "per-call wrapper" data-flow role.
type perspectiveOutcome struct {
	ID           PerspectiveID
	Text         string
	Score        float64
	Improvements []string
}

// RunCycleMode drives the non-UL cycle-mode loop described in spec.md
// §4.4: each cycle sweeps all seven perspectives, scores the sweep, runs
// post-cycle handling, and sleeps an adaptive inter-cycle delay until one
// of the termination conditions in step 8 fires.
func RunCycleMode(ctx context.Context, rs *RunState, deps Deps, log *RunLog) error {
	cfg := deps.Config
	stagnation := newStagnationDetector(cfg.StagnationThreshold, cfg.MaxStagnationCount)
	var cycleMeans []float64
	var lastQualityGuidance string

	for {
		if checkStopSignal(deps.ProjectDir) {
			rs.StopReason = StopUserReq
			return nil
		}
		if ctx.Err() != nil {
			rs.StopReason = StopUserReq
			return ErrCancelled
		}
		if rs.Cycle >= rs.MaxCycles {
			rs.StopReason = StopCompleted
			return nil
		}

		rs.Cycle++
		rs.InFlightCycle = true

		deps.observer().OnEvent(ctx, observability.Event{Type: EventCycleStart, Level: observability.LevelInfo, Source: "loop", Data: map[string]any{"run_id": rs.RunID, "cycle": rs.Cycle}})

		changed, err := deps.VCS.ChangedFiles(ctx)
		if err == nil {
			before := make(map[string]bool, len(changed))
			for _, f := range changed {
				before[f.Path] = true
			}
			rs.FilesChangedBeforeCycle = before
		}

		if checkStopSignal(deps.ProjectDir) {
			rs.StopReason = StopUserReq
			return nil
		}

		limit := deps.parallelLimit(len(Perspectives))
		perspectiveWorker := func(workerCtx context.Context, descriptor PerspectiveDescriptor) (perspectiveOutcome, error) {
			prompt := buildPerspectivePrompt(rs, descriptor, lastQualityGuidance)
			timeout := computeCallTimeoutMs(deps.ModelID, deps.ThinkingLevel)

			deps.observer().OnEvent(workerCtx, observability.Event{Type: EventPerspectiveCall, Level: observability.LevelVerbose, Source: "loop", Data: map[string]any{"perspective": string(descriptor.ID), "cycle": rs.Cycle}})

			resp, callErr := callWithRetry(workerCtx, deps.CallModel, hostcap.CallRequest{
				Provider:      deps.Provider,
				ModelID:       deps.ModelID,
				ThinkingLevel: deps.ThinkingLevel,
				Prompt:        prompt,
				Timeout:       timeout,
				Label:         "perspective:" + string(descriptor.ID),
			}, cfg, deps.RateController)
			if callErr != nil {
				return perspectiveOutcome{}, fmt.Errorf("perspective %s: %w", descriptor.ID, callErr)
			}

			result := ParsePerspectiveResult(resp.Text)
			rs.PerspectiveStates[descriptor.ID].Apply(result, time.Now())

			if cfg.PerspectiveDelayMs > 0 {
				if err := sleepWithCancel(workerCtx, time.Duration(cfg.PerspectiveDelayMs)*time.Millisecond); err != nil {
					return perspectiveOutcome{}, err
				}
			}

			return perspectiveOutcome{ID: descriptor.ID, Text: resp.Text, Score: result.Score, Improvements: result.Improvements}, nil
		}

		poolResult, sweepErr := pool.RunWithLimit(ctx, Perspectives, limit, perspectiveWorker, pool.Options[PerspectiveDescriptor]{
			Observer: deps.observer(),
		})
		if sweepErr != nil {
			if isCancelled(sweepErr) || ctx.Err() != nil {
				rs.StopReason = StopUserReq
				return ErrCancelled
			}
			// rate_limited after cap exhausted: surfaced to caller per §7.
			rs.StopReason = StopError
			return fmt.Errorf("loop: perspective sweep failed: %w", sweepErr)
		}

		var scores [7]float64
		var allOutputs strings.Builder
		var allImprovements []string
		for i, outcome := range poolResult.Values {
			scores[i] = outcome.Score
			allOutputs.WriteString(outcome.Text)
			allOutputs.WriteString("\n")
			allImprovements = append(allImprovements, outcome.Improvements...)
		}

		meanScore := meanOf(scores[:])
		rs.PerspectiveScoreHistory = append(rs.PerspectiveScoreHistory, scores)
		cycleMeans = append(cycleMeans, meanScore)
		rs.Trajectory.Record(StepSignature(allImprovements))

		meta := detect.MetacognitiveCheck(allOutputs.String())
		lastQualityGuidance = ""
		rs.LastDetectionFindings = nil

		meanScorePercent := meanScore * 100
		if meanScorePercent >= cfg.HighScoreThreshold {
			rs.appendSuccessfulPattern(SuccessfulPattern{
				Cycle:               rs.Cycle,
				AvgScore:            meanScorePercent,
				ActionSummary:       truncate(strings.Join(allImprovements, "; "), 100),
				AppliedPerspectives: allPerspectiveIDs(),
			}, cfg.SuccessfulPatternCap)
		} else {
			pass := detect.Run(allOutputs.String(), meanScore, detect.Context{}, cfg.DetectionMinFlagged)
			var findings []string
			if pass.Actionable {
				findings = pass.Summary()
				rs.LastDetectionFindings = findings
				deps.observer().OnEvent(ctx, observability.Event{Type: EventDetectionFlagged, Level: observability.LevelVerbose, Source: "loop",
					Data: map[string]any{"run_id": rs.RunID, "cycle": rs.Cycle, "detection_flagged": pass.FlaggedCount, "detection_trigger": string(pass.Trigger.Mode)}})
			}
			lastQualityGuidance = buildQualityGuidance(meta, allImprovements, findings)
		}

		summary := truncate(strings.Join(allImprovements, "; "), 200)
		rs.appendCycleSummary(CycleSummary{Cycle: rs.Cycle, MeanScore: meanScore, Summary: summary, StoppedAt: time.Now()}, cfg.CycleSummaryCap)
		_ = log.WriteCycleEntry(rs.Cycle, meanScore, summary)

		if rs.AutoCommit && len(allImprovements) > 0 {
			commitResult, _ := runCommitPipeline(ctx, deps.VCS, deps.CallModel, rs, "", scores)
			if commitResult.Committed {
				rs.LastCommitHash = commitResult.ShortHash
				_ = log.WriteCommitEntry(commitResult.ShortHash, "")
				deps.observer().OnEvent(ctx, observability.Event{Type: EventCommit, Level: observability.LevelInfo, Source: "loop", Data: map[string]any{"hash": commitResult.ShortHash, "cycle": rs.Cycle}})
			} else {
				deps.observer().OnEvent(ctx, observability.Event{Type: EventCommitSkipped, Level: observability.LevelVerbose, Source: "loop", Data: map[string]any{"reason": commitResult.SkipReason, "cycle": rs.Cycle}})
			}
		}

		rs.InFlightCycle = false
		deps.observer().OnEvent(ctx, observability.Event{Type: EventCycleComplete, Level: observability.LevelInfo, Source: "loop", Data: map[string]any{"run_id": rs.RunID, "cycle": rs.Cycle, "mean_score": meanScore}})

		if meanScore >= cfg.EarlyStopScore {
			rs.StopReason = StopCompleted
			return nil
		}
		if rs.Trajectory.IsStuck() {
			rs.StopReason = StopStagnation
			deps.observer().OnEvent(ctx, observability.Event{Type: EventStagnation, Level: observability.LevelWarning, Source: "loop", Data: map[string]any{"cycle": rs.Cycle, "reason": "trajectory_stuck"}})
			return nil
		}
		if stagnation.Observe(cycleMeans) {
			rs.StopReason = StopStagnation
			deps.observer().OnEvent(ctx, observability.Event{Type: EventStagnation, Level: observability.LevelWarning, Source: "loop", Data: map[string]any{"cycle": rs.Cycle, "reason": "low_variance"}})
			return nil
		}
		if rs.Cycle >= rs.MaxCycles {
			rs.StopReason = StopCompleted
			return nil
		}

		delay := computeAdaptiveDelay(deps, cfg)
		if err := sleepWithCancel(ctx, delay); err != nil {
			rs.StopReason = StopUserReq
			return ErrCancelled
		}
	}
}

func isCancelled(err error) bool {
	return err != nil && strings.Contains(err.Error(), ErrCancelled.Error())
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func allPerspectiveIDs() []PerspectiveID {
	ids := make([]PerspectiveID, len(Perspectives))
	for i, d := range Perspectives {
		ids[i] = d.ID
	}
	return ids
}

// buildQualityGuidance turns a low-score cycle's metacognitive check,
// integrated detection pass, and improvement list into text for the next
// cycle's prompt, per §4.4's post-cycle handling for low scores.
func buildQualityGuidance(meta detect.MetacognitiveResult, improvements []string, findings []string) string {
	var b strings.Builder
	if meta.CurrentThinkingMode == detect.ThinkingModeShallow {
		fmt.Fprintf(&b, "Prior cycle reasoning was shallow; aim for %s thinking.\n", meta.RecommendedThinkingMode)
	}
	for _, f := range meta.Fallacies {
		fmt.Fprintf(&b, "Watch for %s: %s\n", f.Type, f.Description)
	}
	for _, finding := range findings {
		fmt.Fprintf(&b, "%s\n", finding)
	}
	if len(improvements) > 0 {
		fmt.Fprintf(&b, "Address: %s\n", strings.Join(improvements, "; "))
	}
	return b.String()
}

// computeAdaptiveDelay derives the inter-cycle delay from the rate
// controller's summary for the configured model, bounded by
// min/max_cycle_interval_ms, per §4.3/§8.
func computeAdaptiveDelay(deps Deps, cfg Config) time.Duration {
	base := cfg.MinCycleIntervalMs
	if deps.RateController != nil {
		summary := deps.RateController.GetSummary(deps.Provider, deps.ModelID)
		scale := 1.0 + summary.PredictedRejectionProbability*4
		base = int(float64(cfg.MinCycleIntervalMs) * scale)
		if summary.RecentRejectionCount >= cfg.HighRejectionThreshold {
			base = cfg.MaxCycleIntervalMs
		}
	}
	return clampDuration(base, cfg.MinCycleIntervalMs, cfg.MaxCycleIntervalMs)
}
