package coordinator

import "github.com/tailored-agentic-units/llmctl/observability"

const (
	EventRegister         observability.EventType = "coordinator.register"
	EventUnregister       observability.EventType = "coordinator.unregister"
	EventHeartbeat        observability.EventType = "coordinator.heartbeat"
	EventCleanupInstances observability.EventType = "coordinator.cleanup.instances"
	EventCleanupQueue     observability.EventType = "coordinator.cleanup.queue"
	EventCleanupLocks     observability.EventType = "coordinator.cleanup.locks"
	EventLockAcquire      observability.EventType = "coordinator.lock.acquire"
	EventLockRelease      observability.EventType = "coordinator.lock.release"
	EventLockConflict     observability.EventType = "coordinator.lock.conflict"
	EventStealAttempt     observability.EventType = "coordinator.steal.attempt"
	EventStealSuccess     observability.EventType = "coordinator.steal.success"
	EventStealFailure     observability.EventType = "coordinator.steal.failure"
)
