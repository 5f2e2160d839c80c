package ratelimit

import "github.com/tailored-agentic-units/llmctl/observability"

const (
	EventRejection observability.EventType = "ratelimit.rejection"
	EventRecovery  observability.EventType = "ratelimit.recovery"
)
