package pool

import "github.com/tailored-agentic-units/llmctl/observability"

// Event types emitted by RunWithLimit.
const (
	EventPoolStart    observability.EventType = "pool.start"
	EventPoolComplete observability.EventType = "pool.complete"
	EventTaskStart    observability.EventType = "pool.task.start"
	EventTaskComplete observability.EventType = "pool.task.complete"
)
