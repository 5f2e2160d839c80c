package loop

import "github.com/tailored-agentic-units/llmctl/observability"

const (
	EventRunStart        observability.EventType = "loop.run.start"
	EventRunStop         observability.EventType = "loop.run.stop"
	EventCycleStart      observability.EventType = "loop.cycle.start"
	EventCycleComplete   observability.EventType = "loop.cycle.complete"
	EventPerspectiveCall observability.EventType = "loop.perspective.call"
	EventPhaseDispatch   observability.EventType = "loop.phase.dispatch"
	EventPhaseRetry      observability.EventType = "loop.phase.retry"
	EventPhaseAdvance    observability.EventType = "loop.phase.advance"
	EventCommit          observability.EventType = "loop.commit"
	EventCommitSkipped   observability.EventType = "loop.commit.skipped"
	EventStagnation      observability.EventType = "loop.stagnation"
	EventRejectionRetry  observability.EventType = "loop.retry.rejection"
	EventDetectionFlagged observability.EventType = "loop.detection.flagged"
)
