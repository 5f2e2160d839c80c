package coordinator

import "time"

// Priority is the fixed ordering used to rank stealable entries.
type Priority string

const (
	PriorityCritical   Priority = "critical"
	PriorityHigh       Priority = "high"
	PriorityNormal     Priority = "normal"
	PriorityLow        Priority = "low"
	PriorityBackground Priority = "background"
)

// priorityRank returns a lower-is-higher-priority rank. Unknown values sort
// last, below background.
func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	case PriorityBackground:
		return 4
	default:
		return 5
	}
}

// ActiveModel records that an instance has a (provider, model) pair in use.
type ActiveModel struct {
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
	Since    time.Time `json:"since"`
}

// InstanceRecord is the on-disk, owner-writable record for one live process.
type InstanceRecord struct {
	InstanceID          string        `json:"instance_id"`
	ProcessID           int           `json:"process_id"`
	SessionID           string        `json:"session_id"`
	StartedAt           time.Time     `json:"started_at"`
	LastHeartbeatAt      time.Time    `json:"last_heartbeat_at"`
	WorkingDir           string       `json:"working_dir"`
	ActiveModels         []ActiveModel `json:"active_models"`
	PendingTaskCount     int          `json:"pending_task_count"`
	AvgLatencyMs         float64      `json:"avg_latency_ms"`
	LastTaskCompletedAt  time.Time    `json:"last_task_completed_at,omitempty"`
}

// alive reports whether the record's heartbeat is within timeout of now.
func (r InstanceRecord) alive(now time.Time, timeout time.Duration) bool {
	return now.Sub(r.LastHeartbeatAt) < timeout
}

// StealableEntry is one queue entry a peer has published for possible theft.
type StealableEntry struct {
	ID             string    `json:"id"`
	ToolName       string    `json:"tool_name"`
	Priority       Priority  `json:"priority"`
	InstanceID     string    `json:"instance_id"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
	DurationHintMs int       `json:"duration_hint_ms,omitempty"`
	RoundHint      int       `json:"round_hint,omitempty"`
}

// QueueState is one instance's broadcast workload snapshot.
type QueueState struct {
	InstanceID           string           `json:"instance_id"`
	Timestamp            time.Time        `json:"timestamp"`
	PendingTaskCount     int              `json:"pending_task_count"`
	ActiveOrchestrations int              `json:"active_orchestrations"`
	AvgLatencyMs         float64          `json:"avg_latency_ms"`
	StealableEntries     []StealableEntry `json:"stealable_entries"`
}

// Lock is a distributed, file-backed mutual-exclusion record.
type Lock struct {
	LockID     string    `json:"lock_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Resource   string    `json:"resource"`
}

func (l Lock) expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
