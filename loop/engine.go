package loop

import (
	"context"

	"github.com/tailored-agentic-units/llmctl/coordinator"
	"github.com/tailored-agentic-units/llmctl/hostcap"
	"github.com/tailored-agentic-units/llmctl/observability"
	"github.com/tailored-agentic-units/llmctl/ratelimit"
)

// Deps bundles every external capability the loop needs, resolved once
// by the caller (typically cmd/llmctl) and threaded down as a parameter
// rather than read from globals, per §9's config-layering design note.
type Deps struct {
	CallModel      hostcap.CallModel
	VCS            hostcap.VCS
	Host           hostcap.Host
	RateController *ratelimit.Controller
	Coordinator    *coordinator.Coordinator
	Observer       observability.Observer

	ProjectDir    string
	Provider      string
	ModelID       string
	ThinkingLevel hostcap.ThinkingLevel

	Config Config
}

// parallelLimit returns this instance's fair share of the process-wide LLM
// concurrency budget, per §4.1's "the worker pool is used with a per-call
// wrapper that consults ... the coordinator" data-flow note. Falls back to
// fallback when no Coordinator is wired (e.g. a standalone run).
func (d Deps) parallelLimit(fallback int) int {
	if d.Coordinator == nil {
		return fallback
	}
	limit, err := d.Coordinator.GetParallelLimit()
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}

func (d Deps) observer() observability.Observer {
	if d.Observer == nil {
		return observability.NoOpObserver{}
	}
	return d.Observer
}

// Run dispatches to the cycle-mode or UL-mode engine based on rs.ULMode
// and always writes the header/footer regardless of how the run ends,
// per §7's user-visible-behavior contract.
func Run(ctx context.Context, rs *RunState, deps Deps, log *RunLog) error {
	if err := log.WriteHeader(rs); err != nil {
		return err
	}
	deps.observer().OnEvent(ctx, observability.Event{Type: EventRunStart, Level: observability.LevelInfo, Source: "loop", Data: map[string]any{"run_id": rs.RunID, "ul_mode": rs.ULMode}})

	var runErr error
	if rs.ULMode {
		runErr = RunULMode(ctx, rs, deps, log)
	} else {
		runErr = RunCycleMode(ctx, rs, deps, log)
	}

	if runErr != nil && rs.StopReason == StopNone {
		rs.StopReason = StopError
	}
	clearStopSignal(deps.ProjectDir)
	_ = log.WriteFooter(rs)
	deps.observer().OnEvent(ctx, observability.Event{Type: EventRunStop, Level: observability.LevelInfo, Source: "loop", Data: map[string]any{"run_id": rs.RunID, "stop_reason": string(rs.StopReason)}})
	return runErr
}
