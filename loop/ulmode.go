package loop

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/llmctl/detect"
	"github.com/tailored-agentic-units/llmctl/hostcap"
	"github.com/tailored-agentic-units/llmctl/observability"
)

// ulPhaseMarker matches the [[UL_PHASE:<run_id>:<phase>:CYCLE:<n>]] marker
// a phase's output is expected to carry, per §4.4's UL-mode design.
var ulPhaseMarker = regexp.MustCompile(`\[\[UL_PHASE:([^:]+):([a-z]+):CYCLE:(\d+)\]\]`)

var ulPerspectiveScores = regexp.MustCompile(`(?m)^PERSPECTIVE_SCORES:\s*(.+)$`)
var ulLoopStatus = regexp.MustCompile(`(?m)^LOOP_STATUS:\s*(continue|done)\s*$`)
var ulScorePair = regexp.MustCompile(`(\w+)\s*=\s*(\d+(\.\d+)?)`)

// phaseResult is what one dispatched phase resolved to, used to drive the
// FSM transition in RunULMode.
type phaseResult struct {
	text        string
	markerFound bool
	markerPhase Phase
}

// RunULMode drives the UL-mode (unattended-loop: research/plan/implement)
// phase state machine described in spec.md §4.4. Transitions are a pure
// function of (current phase, parsed output, completion length, retry
// count), per the design note calling for an explicit FSM rather than
// loop-local closures holding callback state.
func RunULMode(ctx context.Context, rs *RunState, deps Deps, log *RunLog) error {
	cfg := deps.Config
	stagnation := newStagnationDetector(cfg.StagnationThreshold, cfg.MaxStagnationCount)
	var cycleMeans []float64
	var lastQualityGuidance string

	waiter := newAgentEndWaiter(deps.Host)
	defer waiter.Close()

	if rs.Cycle == 0 {
		rs.Cycle = 1
	}
	if rs.CurrentPhase == "" {
		rs.CurrentPhase = PhaseResearch
	}

	for {
		if checkStopSignal(deps.ProjectDir) {
			rs.StopReason = StopUserReq
			return nil
		}
		if ctx.Err() != nil {
			rs.StopReason = StopUserReq
			return ErrCancelled
		}
		if rs.Cycle > rs.MaxCycles {
			rs.StopReason = StopCompleted
			return nil
		}

		changed, err := deps.VCS.ChangedFiles(ctx)
		if err == nil && rs.CurrentPhase == PhaseResearch {
			before := make(map[string]bool, len(changed))
			for _, f := range changed {
				before[f.Path] = true
			}
			rs.FilesChangedBeforeCycle = before
		}

		deps.observer().OnEvent(ctx, observability.Event{Type: EventPhaseDispatch, Level: observability.LevelInfo, Source: "loop",
			Data: map[string]any{"run_id": rs.RunID, "phase": string(rs.CurrentPhase), "cycle": rs.Cycle}})

		prompt := buildPhasePrompt(rs, lastQualityGuidance)
		result, dispatchErr := dispatchPhase(ctx, deps, waiter, rs, prompt)
		if dispatchErr != nil {
			if isCancelled(dispatchErr) {
				rs.StopReason = StopUserReq
				return ErrCancelled
			}
			rs.StopReason = StopError
			return dispatchErr
		}

		advance, retryErr := applyPhaseTransition(rs, cfg, result)
		if retryErr != nil {
			rs.StopReason = StopError
			deps.observer().OnEvent(ctx, observability.Event{Type: EventPhaseRetry, Level: observability.LevelWarning, Source: "loop",
				Data: map[string]any{"run_id": rs.RunID, "phase": string(rs.CurrentPhase), "retry_count": rs.PhaseRetryCount}})
			return retryErr
		}
		if !advance {
			deps.observer().OnEvent(ctx, observability.Event{Type: EventPhaseRetry, Level: observability.LevelWarning, Source: "loop",
				Data: map[string]any{"run_id": rs.RunID, "phase": string(rs.CurrentPhase), "retry_count": rs.PhaseRetryCount}})
			continue
		}

		rs.PhaseContext = rs.PhaseContext.Set(string(rs.CurrentPhase), result.text)

		if rs.CurrentPhase == PhaseImplement {
			scores, status := parseImplementSignals(result.text)
			mean := meanOf(scores[:])
			rs.PerspectiveScoreHistory = append(rs.PerspectiveScoreHistory, scores)
			cycleMeans = append(cycleMeans, mean)
			rs.Trajectory.Record(StepSignature(extractImprovementLines(result.text)))

			summary := truncate(result.text, 200)
			rs.appendCycleSummary(CycleSummary{Cycle: rs.Cycle, MeanScore: mean, Summary: summary, StoppedAt: time.Now()}, cfg.CycleSummaryCap)
			_ = log.WriteCycleEntry(rs.Cycle, mean, summary)

			lastQualityGuidance = ""
			rs.LastDetectionFindings = nil
			if mean*100 >= cfg.HighScoreThreshold {
				rs.appendSuccessfulPattern(SuccessfulPattern{
					Cycle:               rs.Cycle,
					AvgScore:            mean * 100,
					ActionSummary:       truncate(summary, 100),
					AppliedPerspectives: allPerspectiveIDs(),
				}, cfg.SuccessfulPatternCap)
			} else {
				meta := detect.MetacognitiveCheck(result.text)
				pass := detect.Run(result.text, mean, detect.Context{}, cfg.DetectionMinFlagged)
				var findings []string
				if pass.Actionable {
					findings = pass.Summary()
					rs.LastDetectionFindings = findings
					deps.observer().OnEvent(ctx, observability.Event{Type: EventDetectionFlagged, Level: observability.LevelVerbose, Source: "loop",
						Data: map[string]any{"run_id": rs.RunID, "cycle": rs.Cycle, "detection_flagged": pass.FlaggedCount, "detection_trigger": string(pass.Trigger.Mode)}})
				}
				lastQualityGuidance = buildQualityGuidance(meta, extractImprovementLines(result.text), findings)
			}

			if rs.AutoCommit {
				commitResult, _ := runCommitPipeline(ctx, deps.VCS, deps.CallModel, rs, "", scores)
				if commitResult.Committed {
					rs.LastCommitHash = commitResult.ShortHash
					_ = log.WriteCommitEntry(commitResult.ShortHash, "")
					deps.observer().OnEvent(ctx, observability.Event{Type: EventCommit, Level: observability.LevelInfo, Source: "loop",
						Data: map[string]any{"hash": commitResult.ShortHash, "cycle": rs.Cycle}})
				}
			}

			deps.observer().OnEvent(ctx, observability.Event{Type: EventCycleComplete, Level: observability.LevelInfo, Source: "loop",
				Data: map[string]any{"run_id": rs.RunID, "cycle": rs.Cycle, "mean_score": mean}})

			switch {
			case mean >= cfg.EarlyStopScore:
				rs.StopReason = StopCompleted
				return nil
			case status == "done":
				rs.StopReason = StopCompleted
				return nil
			case rs.Trajectory.IsStuck():
				rs.StopReason = StopStagnation
				return nil
			case stagnation.Observe(cycleMeans):
				rs.StopReason = StopStagnation
				return nil
			case rs.Cycle >= rs.MaxCycles:
				rs.StopReason = StopCompleted
				return nil
			}

			rs.Cycle++
			rs.CurrentPhase = PhaseResearch
			continue
		}

		rs.CurrentPhase = nextPhase(rs.CurrentPhase)
		deps.observer().OnEvent(ctx, observability.Event{Type: EventPhaseAdvance, Level: observability.LevelInfo, Source: "loop",
			Data: map[string]any{"run_id": rs.RunID, "phase": string(rs.CurrentPhase), "cycle": rs.Cycle}})
	}
}

func nextPhase(p Phase) Phase {
	switch p {
	case PhaseResearch:
		return PhasePlan
	case PhasePlan:
		return PhaseImplement
	default:
		return PhaseResearch
	}
}

// buildPhasePrompt composes the dispatch text for the current phase,
// instructing the model to emit the UL_PHASE marker on completion and,
// for the implement phase, the PERSPECTIVE_SCORES/LOOP_STATUS footer.
// qualityGuidance carries the previous cycle's metacognitive check into the
// research phase that starts the next cycle, per §4.4's "persist latest
// results into run state for next-cycle prompt construction".
func buildPhasePrompt(rs *RunState, qualityGuidance string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", rs.Task)
	fmt.Fprintf(&b, "Phase: %s (cycle %d)\n\n", rs.CurrentPhase, rs.Cycle)

	if rs.CurrentPhase != PhaseResearch {
		if prior, ok := rs.PhaseContext.Get(string(prevPhase(rs.CurrentPhase))); ok {
			fmt.Fprintf(&b, "Output of the previous phase:\n%v\n\n", prior)
		}
	} else if qualityGuidance != "" {
		fmt.Fprintf(&b, "Quality guidance from the previous cycle:\n%s\n", qualityGuidance)
	}

	switch rs.CurrentPhase {
	case PhaseImplement:
		b.WriteString("Implement the plan. When finished, end your response with a line for each of the seven perspectives scoring this cycle's work, as:\n")
		b.WriteString("PERSPECTIVE_SCORES: architect=<0-100> security=<0-100> performance=<0-100> maintainer=<0-100> tester=<0-100> skeptic=<0-100> user_advocate=<0-100>\n")
		b.WriteString("LOOP_STATUS: continue|done\n")
	}

	fmt.Fprintf(&b, "\nWhen this phase is complete, end your response with the marker:\n[[UL_PHASE:%s:%s:CYCLE:%d]]\n", rs.RunID, rs.CurrentPhase, rs.Cycle)
	return b.String()
}

func prevPhase(p Phase) Phase {
	switch p {
	case PhasePlan:
		return PhaseResearch
	case PhaseImplement:
		return PhasePlan
	default:
		return PhaseResearch
	}
}

// agentEndWaiter bridges the host's callback-based OnAgentEnd subscription
// into a blocking wait, since the FSM itself is expressed as an explicit
// state transition function rather than callback-held closures.
type agentEndWaiter struct {
	host hostcap.Host
	mu   sync.Mutex
	ch   chan hostcap.AgentEndEvent
	unsub func()
}

func newAgentEndWaiter(host hostcap.Host) *agentEndWaiter {
	w := &agentEndWaiter{host: host, ch: make(chan hostcap.AgentEndEvent, 1)}
	w.unsub = host.OnAgentEnd(func(ev hostcap.AgentEndEvent) {
		w.mu.Lock()
		defer w.mu.Unlock()
		select {
		case w.ch <- ev:
		default:
		}
	})
	return w
}

func (w *agentEndWaiter) Wait(ctx context.Context) (hostcap.AgentEndEvent, error) {
	select {
	case ev := <-w.ch:
		return ev, nil
	case <-ctx.Done():
		return hostcap.AgentEndEvent{}, ErrCancelled
	}
}

func (w *agentEndWaiter) Close() {
	if w.unsub != nil {
		w.unsub()
	}
}

// dispatchPhase sends the phase prompt into the host's active turn and
// waits for the resulting agent_end event, classifying whether it carries
// a recognizable UL_PHASE marker.
func dispatchPhase(ctx context.Context, deps Deps, waiter *agentEndWaiter, rs *RunState, prompt string) (phaseResult, error) {
	if err := deps.Host.SendUserMessage(ctx, prompt, hostcap.SendOptions{DeliverAs: hostcap.DeliverAsText}); err != nil {
		return phaseResult{}, fmt.Errorf("loop: dispatch phase: %w", err)
	}

	ev, err := waiter.Wait(ctx)
	if err != nil {
		return phaseResult{}, err
	}

	m := ulPhaseMarker.FindStringSubmatch(ev.Text)
	if m == nil {
		return phaseResult{text: ev.Text, markerFound: false}, nil
	}
	return phaseResult{text: ev.Text, markerFound: true, markerPhase: Phase(m[2])}, nil
}

// applyPhaseTransition implements the transition rule from §4.4: marker
// present and matching the current phase advances unconditionally; no
// marker but output at or above the completion-length floor advances
// anyway ("completed anyway"); otherwise the same phase is re-dispatched
// and the retry count increments, terminating once the count reaches
// max_phase_retries. Returns (advance, error).
func applyPhaseTransition(rs *RunState, cfg Config, result phaseResult) (bool, error) {
	if result.markerFound && result.markerPhase == rs.CurrentPhase {
		rs.PhaseRetryCount = 0
		return true, nil
	}
	if len(result.text) >= cfg.PhaseCompletionLengthMin {
		rs.PhaseRetryCount = 0
		return true, nil
	}
	rs.PhaseRetryCount++
	if rs.PhaseRetryCount >= cfg.MaxPhaseRetries {
		return false, fmt.Errorf("loop: phase %s: %w", rs.CurrentPhase, ErrPhaseRetriesExhausted)
	}
	return false, nil
}

// parseImplementSignals extracts the PERSPECTIVE_SCORES and LOOP_STATUS
// footer lines from the implement phase's output.
func parseImplementSignals(text string) ([7]float64, string) {
	var scores [7]float64
	for i := range scores {
		scores[i] = 0.5
	}

	if m := ulPerspectiveScores.FindStringSubmatch(text); m != nil {
		pairs := ulScorePair.FindAllStringSubmatch(m[1], -1)
		byName := make(map[string]float64, len(pairs))
		for _, p := range pairs {
			v, err := strconv.ParseFloat(p[2], 64)
			if err == nil {
				byName[p[1]] = clamp(0, 100, v) / 100
			}
		}
		for i, d := range Perspectives {
			if v, ok := byName[string(d.ID)]; ok {
				scores[i] = v
			}
		}
	}

	status := "continue"
	if m := ulLoopStatus.FindStringSubmatch(text); m != nil {
		status = m[1]
	}
	return scores, status
}

func extractImprovementLines(text string) []string {
	parsed := ParsePerspectiveResult(text)
	return parsed.Improvements
}
